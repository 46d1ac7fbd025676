// Package workflow advances domain records through the acquisition pipeline:
// candidate, queued, owned. Owned domains additionally carry the state of
// their asynchronous profile generation.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a named record is not in the expected collection.
	ErrNotFound = errors.New("workflow: record not found")
	// ErrInvalidTransition is returned for backward or skipping stage moves.
	ErrInvalidTransition = errors.New("workflow: invalid stage transition")
	// ErrGenerationInFlight is returned when a profile generation for the
	// same domain is already running.
	ErrGenerationInFlight = errors.New("workflow: profile generation already in flight")
)

// ProfileGenerator is the external collaborator that produces a content
// profile for an owned domain. It must eventually return or fail; the
// service treats it as a black box.
type ProfileGenerator interface {
	Generate(ctx context.Context, name string, metrics models.Metrics) (*models.Profile, error)
}

// Notifier receives workflow milestones. Implementations must not block.
type Notifier interface {
	DomainPurchased(name string)
	ProfileCompleted(name string)
	ProfileFailed(name, reason string)
}

// Service owns the workflow collections. The aggregate view never mutates
// them.
type Service struct {
	db      *gorm.DB
	gen     ProfileGenerator
	notify  Notifier
	log     logger.Logger
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewService creates the workflow service. notify may be nil.
func NewService(db *gorm.DB, gen ProfileGenerator, notify Notifier, log logger.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Service{
		db:       db,
		gen:      gen,
		notify:   notify,
		log:      log,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Wait blocks until all in-flight profile generations have resolved.
func (s *Service) Wait() {
	s.wg.Wait()
}

// AddCandidate pulls a scored record into the pipeline at the candidate
// stage. Adding a name already in the pipeline is a no-op.
func (s *Service) AddCandidate(rec models.DomainRecord) error {
	return s.insert(rec, models.StageCandidate)
}

// QuickQueue inserts a record directly at the queued stage; candidate is not
// a mandatory waypoint.
func (s *Service) QuickQueue(rec models.DomainRecord) error {
	return s.insert(rec, models.StageQueued)
}

func (s *Service) insert(rec models.DomainRecord, stage models.Stage) error {
	wf := models.WorkflowRecord{
		Name:     rec.Name,
		TLD:      rec.TLD,
		Source:   rec.Source,
		Stage:    stage,
		Enriched: rec.Enriched,
		Metrics:  rec.Metrics,
		Score:    rec.Score,
	}

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&wf)
	if res.Error != nil {
		return fmt.Errorf("insert workflow record %s: %w", rec.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		s.log.Debug("workflow record already present", zap.String("domain", rec.Name))
	}
	return nil
}

// Promote moves a candidate forward to the purchase queue.
func (s *Service) Promote(name string) error {
	rec, err := s.get(name)
	if err != nil {
		return err
	}
	if rec.Stage != models.StageCandidate {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, name, rec.Stage)
	}

	rec.Stage = models.StageQueued
	if err := s.db.Save(rec).Error; err != nil {
		return fmt.Errorf("promote %s: %w", name, err)
	}
	return nil
}

// Discard removes a candidate or queued record from the pipeline. Owned
// domains cannot be discarded.
func (s *Service) Discard(name string) error {
	res := s.db.Where("name = ? AND stage IN ?", name, []models.Stage{models.StageCandidate, models.StageQueued}).
		Delete(&models.WorkflowRecord{})
	if res.Error != nil {
		return fmt.Errorf("discard %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Candidates lists candidate records in insertion order.
func (s *Service) Candidates() ([]models.WorkflowRecord, error) {
	return s.listStage(models.StageCandidate)
}

// Queued lists purchase-queue records in insertion order.
func (s *Service) Queued() ([]models.WorkflowRecord, error) {
	return s.listStage(models.StageQueued)
}

func (s *Service) listStage(stage models.Stage) ([]models.WorkflowRecord, error) {
	var recs []models.WorkflowRecord
	if err := s.db.Where("stage = ?", stage).Order("id asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list %s records: %w", stage, err)
	}
	return recs, nil
}

// Owned lists owned domains, most recently purchased first.
func (s *Service) Owned() ([]models.OwnedDomain, error) {
	var owned []models.OwnedDomain
	if err := s.db.Order("purchased_at desc").Find(&owned).Error; err != nil {
		return nil, fmt.Errorf("list owned domains: %w", err)
	}
	return owned, nil
}

// GetOwned fetches one owned domain by name.
func (s *Service) GetOwned(name string) (*models.OwnedDomain, error) {
	var owned models.OwnedDomain
	if err := s.db.Where("name = ?", name).First(&owned).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get owned domain %s: %w", name, err)
	}
	return &owned, nil
}

// Stage reports where a name currently sits in the pipeline.
func (s *Service) Stage(name string) (models.Stage, bool) {
	if _, err := s.GetOwned(name); err == nil {
		return models.StageOwned, true
	}
	rec, err := s.get(name)
	if err != nil {
		return "", false
	}
	return rec.Stage, true
}

func (s *Service) get(name string) (*models.WorkflowRecord, error) {
	var rec models.WorkflowRecord
	if err := s.db.Where("name = ?", name).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get workflow record %s: %w", name, err)
	}
	return &rec, nil
}
