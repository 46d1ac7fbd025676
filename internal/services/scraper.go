package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"domain-hunter/internal/importer"
	"domain-hunter/internal/models"
)

// ScrapeError is a structured channel failure. ActionRequired carries an
// opaque hint for the caller (e.g. a captcha URL) and is never interpreted
// here.
type ScrapeError struct {
	Message        string `json:"message"`
	ActionRequired string `json:"action_required,omitempty"`
}

func (e *ScrapeError) Error() string {
	return e.Message
}

// ScraperService fetches expired-domain listings from the free scrape
// collaborator.
type ScraperService struct {
	BaseURL string
	Timeout time.Duration
}

// NewScraperService creates a new scraper service
func NewScraperService(baseURL string, timeout time.Duration) *ScraperService {
	return &ScraperService{
		BaseURL: baseURL,
		Timeout: timeout,
	}
}

// Fetch scrapes listings matching the keyword filter and normalizes them
// into records. A failure never disturbs data already aggregated from other
// channels.
func (s *ScraperService) Fetch(keyword string) ([]models.DomainRecord, error) {
	apiURL, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, &ScrapeError{Message: fmt.Sprintf("invalid scraper URL: %v", err)}
	}

	params := url.Values{}
	if keyword != "" {
		params.Add("keyword", keyword)
	}
	apiURL.RawQuery = params.Encode()

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Get(apiURL.String())
	if err != nil {
		return nil, &ScrapeError{Message: fmt.Sprintf("scrape request failed: %v", err)}
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Domains        []string `json:"domains"`
		Error          string   `json:"error"`
		ActionRequired string   `json:"action_required"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, &ScrapeError{Message: fmt.Sprintf("failed to parse scrape response: %v", err)}
	}

	if apiResponse.Error != "" {
		return nil, &ScrapeError{Message: apiResponse.Error, ActionRequired: apiResponse.ActionRequired}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ScrapeError{Message: fmt.Sprintf("scraper returned status %d", resp.StatusCode)}
	}

	return importer.NormalizeScraped(apiResponse.Domains).Records, nil
}
