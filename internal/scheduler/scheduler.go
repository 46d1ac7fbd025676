package scheduler

import (
	"domain-hunter/internal/logger"
	"domain-hunter/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron   *cron.Cron
	enrich *services.EnrichService
	log    logger.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(enrich *services.EnrichService, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		enrich: enrich,
		log:    log,
	}
}

// Start schedules the periodic watchlist re-enrichment
func (s *Scheduler) Start(checkInterval string) error {
	_, err := s.cron.AddFunc(checkInterval, func() {
		s.log.Info("starting scheduled watchlist refresh")
		if err := s.enrich.RefreshWatchlist(); err != nil {
			s.log.Error("scheduled refresh failed", zap.Error(err))
			return
		}
		s.log.Info("scheduled watchlist refresh completed")
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("interval", checkInterval))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
