// Package watchlist persists the set of starred domains. Watching a domain
// is independent of its acquisition workflow stage.
package watchlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the persisted watchlist.
type Store struct {
	db  *gorm.DB
	log logger.Logger
}

// NewStore creates a watchlist store.
func NewStore(db *gorm.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// Toggle stars or un-stars a domain by name. It returns true when the domain
// is watched after the call.
func (s *Store) Toggle(name string) (bool, error) {
	var entry models.WatchlistEntry
	err := s.db.Where("name = ?", name).First(&entry).Error

	switch {
	case err == nil:
		if err := s.db.Delete(&entry).Error; err != nil {
			return true, fmt.Errorf("remove watchlist entry %s: %w", name, err)
		}
		s.log.Debug("unwatched domain", zap.String("domain", name))
		return false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = models.WatchlistEntry{Name: name, AddedAt: time.Now()}
		if err := s.db.Create(&entry).Error; err != nil {
			return false, fmt.Errorf("add watchlist entry %s: %w", name, err)
		}
		s.log.Debug("watched domain", zap.String("domain", name))
		return true, nil

	default:
		return false, fmt.Errorf("lookup watchlist entry %s: %w", name, err)
	}
}

// IsWatched reports whether a domain is starred.
func (s *Store) IsWatched(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.WatchlistEntry{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count watchlist entry %s: %w", name, err)
	}
	return count > 0, nil
}

// List returns all entries, oldest first.
func (s *Store) List() ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	if err := s.db.Order("added_at asc, id asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	return entries, nil
}

// Names returns the watched domain names, oldest first.
func (s *Store) Names() ([]string, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// UpdateNotes replaces the free-text notes of an entry.
func (s *Store) UpdateNotes(name, notes string) error {
	res := s.db.Model(&models.WatchlistEntry{}).Where("name = ?", name).Update("notes", notes)
	if res.Error != nil {
		return fmt.Errorf("update watchlist notes %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExportRow is the flat projection of a watched domain for CSV export.
type ExportRow struct {
	Name    string
	TLD     string
	Score   int
	Tier    models.Tier
	Source  models.SourceChannel
	Stage   string
	AddedAt time.Time
}

// ExportCSV writes the projection as CSV with a header row.
func ExportCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"domain", "tld", "score", "tier", "source", "stage", "added_at"}); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			row.TLD,
			fmt.Sprintf("%d", row.Score),
			string(row.Tier),
			string(row.Source),
			row.Stage,
			row.AddedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write export row %s: %w", row.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
