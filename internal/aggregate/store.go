package aggregate

import (
	"errors"
	"fmt"
	"time"

	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"
	"domain-hunter/internal/scoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists the aggregate working set. Insertion order is the record ID
// order, which is what the view sort uses as its stable tiebreak.
type Store struct {
	db  *gorm.DB
	log logger.Logger
}

// NewStore creates an aggregate store.
func NewStore(db *gorm.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// InsertBatch adds normalized records to the working set. Names already
// present are skipped, keeping the first-seen record. Every record is scored
// before insertion. Returns the number actually inserted.
func (s *Store) InsertBatch(records []models.DomainRecord) (int, error) {
	inserted := 0

	for i := range records {
		rec := records[i]
		rec.Score = scoring.Compute(&rec)

		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
		if res.Error != nil {
			s.log.Warn("skipping record", zap.String("domain", rec.Name), zap.Error(res.Error))
			continue
		}
		if res.RowsAffected > 0 {
			inserted++
		}
	}

	return inserted, nil
}

// List returns the whole working set in insertion order.
func (s *Store) List() ([]models.DomainRecord, error) {
	var records []models.DomainRecord
	if err := s.db.Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Get fetches one record by name.
func (s *Store) Get(name string) (*models.DomainRecord, error) {
	var rec models.DomainRecord
	if err := s.db.Where("name = ?", name).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get record %s: %w", name, err)
	}
	return &rec, nil
}

// ApplyEnrichment merges vendor metrics into an existing record by name and
// re-scores it. The score object is replaced as a whole. Unknown names are
// ignored: a response that arrives after the record was removed is a no-op.
func (s *Store) ApplyEnrichment(name string, metrics models.Metrics) error {
	var rec models.DomainRecord
	if err := s.db.Where("name = ?", name).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("load record %s: %w", name, err)
	}

	rec.Metrics = metrics
	rec.Enriched = true
	rec.Score = scoring.Compute(&rec)
	rec.UpdatedAt = time.Now()

	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save enriched record %s: %w", name, err)
	}
	return nil
}

// View lists, filters, sorts, and paginates in one call for the API layer.
func (s *Store) View(f Filter, page, perPage int) ([]models.DomainRecord, int, error) {
	records, err := s.List()
	if err != nil {
		return nil, 0, err
	}
	filtered := Apply(records, f)
	return Page(filtered, page, perPage), len(filtered), nil
}
