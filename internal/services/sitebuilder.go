package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SiteBuilderService asks the site-provisioning collaborator to stand up a
// website for an owned domain. Its only observable effect here is the
// success signal that flips siteCreated.
type SiteBuilderService struct {
	APIURL  string
	Timeout time.Duration
}

// NewSiteBuilderService creates a new site builder service
func NewSiteBuilderService(apiURL string, timeout time.Duration) *SiteBuilderService {
	return &SiteBuilderService{
		APIURL:  apiURL,
		Timeout: timeout,
	}
}

// CreateSite provisions a site for the domain.
func (s *SiteBuilderService) CreateSite(name string) error {
	payload, err := json.Marshal(map[string]string{"domain": name})
	if err != nil {
		return fmt.Errorf("encode site request: %w", err)
	}

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Post(s.APIURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("site creation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("site builder returned status %d", resp.StatusCode)
	}

	return nil
}
