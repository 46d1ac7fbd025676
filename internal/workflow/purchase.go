package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"domain-hunter/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkPurchased moves a queued record to owned. The owned row appears
// immediately with profile generation in progress; the generation call runs
// in the background and resolves out of band.
func (s *Service) MarkPurchased(name string) (*models.OwnedDomain, error) {
	rec, err := s.get(name)
	if err != nil {
		return nil, err
	}
	if rec.Stage != models.StageQueued {
		return nil, fmt.Errorf("%w: %s is %s, not queued", ErrInvalidTransition, name, rec.Stage)
	}

	owned := models.OwnedDomain{
		Name:          rec.Name,
		TLD:           rec.TLD,
		Source:        rec.Source,
		Enriched:      rec.Enriched,
		Metrics:       rec.Metrics,
		Score:         rec.Score,
		PurchasedAt:   time.Now(),
		ProfileStatus: models.ProfileGenerating,
	}

	// Insert-then-delete is two independent steps, not a transaction across
	// collections. An interruption between them leaves the record owned and
	// still queued; re-issuing the purchase clears the leftover queue row.
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&owned)
	if res.Error != nil {
		return nil, fmt.Errorf("insert owned domain %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		existing, err := s.GetOwned(name)
		if err != nil {
			return nil, err
		}
		owned = *existing
	}

	if err := s.db.Where("name = ?", name).Delete(&models.WorkflowRecord{}).Error; err != nil {
		return nil, fmt.Errorf("remove queued record %s: %w", name, err)
	}

	s.log.Info("domain purchased",
		zap.String("domain", name),
		zap.Int("score", owned.Score.Overall))
	if s.notify != nil {
		s.notify.DomainPurchased(name)
	}

	if err := s.startGeneration(owned.Name, owned.Metrics); err != nil {
		// Another generation for this name is already running; the owned
		// row is in place either way.
		s.log.Warn("profile generation not started", zap.String("domain", name), zap.Error(err))
	}

	return &owned, nil
}

// RetryProfile re-issues the generation call for a failed owned domain.
// failed is the only state retry may leave from; the owned row is reused,
// purchasedAt untouched.
func (s *Service) RetryProfile(name string) error {
	owned, err := s.GetOwned(name)
	if err != nil {
		return err
	}
	if owned.ProfileStatus != models.ProfileFailed {
		return fmt.Errorf("%w: profile of %s is %s, not failed", ErrInvalidTransition, name, owned.ProfileStatus)
	}

	s.mu.Lock()
	if _, busy := s.inflight[name]; busy {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.mu.Unlock()

	owned.ProfileStatus = models.ProfileGenerating
	owned.ProfileError = ""
	if err := s.db.Save(owned).Error; err != nil {
		return fmt.Errorf("mark %s generating: %w", name, err)
	}

	return s.startGeneration(owned.Name, owned.Metrics)
}

// MarkSiteCreated records that a website was provisioned for the domain.
// The flag is monotonic; repeated calls are no-ops.
func (s *Service) MarkSiteCreated(name string) error {
	owned, err := s.GetOwned(name)
	if err != nil {
		return err
	}
	if owned.SiteCreated {
		return nil
	}

	if err := s.db.Model(owned).Update("site_created", true).Error; err != nil {
		return fmt.Errorf("mark site created %s: %w", name, err)
	}
	return nil
}

// startGeneration launches the asynchronous profile generation for a domain,
// guarding against duplicate in-flight calls for the same name.
func (s *Service) startGeneration(name string, metrics models.Metrics) error {
	s.mu.Lock()
	if _, busy := s.inflight[name]; busy {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.inflight[name] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, name)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		profile, err := s.gen.Generate(ctx, name, metrics)
		s.applyOutcome(name, profile, err)
	}()

	return nil
}

// applyOutcome records the result of a generation call on the owned row.
// A result for a domain no longer owned is dropped.
func (s *Service) applyOutcome(name string, profile *models.Profile, genErr error) {
	var owned models.OwnedDomain
	if err := s.db.Where("name = ?", name).First(&owned).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("dropping profile result for removed domain", zap.String("domain", name))
			return
		}
		s.log.Error("load owned domain for profile result", zap.String("domain", name), zap.Error(err))
		return
	}

	if genErr != nil {
		owned.ProfileStatus = models.ProfileFailed
		owned.ProfileError = genErr.Error()
		if err := s.db.Save(&owned).Error; err != nil {
			s.log.Error("save failed profile state", zap.String("domain", name), zap.Error(err))
			return
		}
		s.log.Warn("profile generation failed", zap.String("domain", name), zap.Error(genErr))
		if s.notify != nil {
			s.notify.ProfileFailed(name, genErr.Error())
		}
		return
	}

	if err := owned.SetProfile(profile); err != nil {
		owned.ProfileStatus = models.ProfileFailed
		owned.ProfileError = fmt.Sprintf("encode profile: %v", err)
	}
	if err := s.db.Save(&owned).Error; err != nil {
		s.log.Error("save profile result", zap.String("domain", name), zap.Error(err))
		return
	}

	if owned.ProfileStatus == models.ProfileSuccess {
		s.log.Info("profile generated", zap.String("domain", name))
		if s.notify != nil {
			s.notify.ProfileCompleted(name)
		}
	}
}
