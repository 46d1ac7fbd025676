package services

import (
	"fmt"

	"domain-hunter/internal/aggregate"
	"domain-hunter/internal/logger"
	"domain-hunter/internal/watchlist"

	"go.uber.org/zap"
)

// EnrichService attaches vendor metrics to aggregated records and re-scores
// them. Responses for names no longer in the working set are dropped;
// concurrent responses for the same name resolve last-write-wins.
type EnrichService struct {
	vendor *VendorService
	store  *aggregate.Store
	watch  *watchlist.Store
	log    logger.Logger
}

// NewEnrichService creates a new enrichment service
func NewEnrichService(vendor *VendorService, store *aggregate.Store, watch *watchlist.Store, log logger.Logger) *EnrichService {
	return &EnrichService{
		vendor: vendor,
		store:  store,
		watch:  watch,
		log:    log,
	}
}

// EnrichDomains fetches vendor metrics for the named domains and merges them
// into the working set. Returns the number of records updated.
func (s *EnrichService) EnrichDomains(names []string) (int, error) {
	enriched, err := s.vendor.Enrich(names)
	if err != nil {
		return 0, fmt.Errorf("vendor enrichment failed: %w", err)
	}

	updated := 0
	for _, rec := range enriched {
		if err := s.store.ApplyEnrichment(rec.Name, rec.Metrics); err != nil {
			s.log.Warn("enrichment not applied", zap.String("domain", rec.Name), zap.Error(err))
			continue
		}
		updated++
	}

	s.log.Info("enrichment applied", zap.Int("requested", len(names)), zap.Int("updated", updated))
	return updated, nil
}

// RefreshWatchlist re-enriches every watched domain. Run on the configured
// schedule.
func (s *EnrichService) RefreshWatchlist() error {
	if !s.vendor.HasCredentials() {
		s.log.Debug("skipping watchlist refresh, vendor API key not configured")
		return nil
	}

	names, err := s.watch.Names()
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}
	if len(names) == 0 {
		return nil
	}

	s.log.Info("refreshing watchlist metrics", zap.Int("domains", len(names)))
	_, err = s.EnrichDomains(names)
	return err
}
