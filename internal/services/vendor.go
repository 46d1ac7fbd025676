package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"domain-hunter/internal/importer"
	"domain-hunter/internal/models"
)

// VendorService talks to the SpamZilla-style metrics API.
type VendorService struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// NewVendorService creates a new vendor enrichment service
func NewVendorService(apiURL, apiKey string, timeout time.Duration) *VendorService {
	return &VendorService{
		APIURL:  apiURL,
		APIKey:  apiKey,
		Timeout: timeout,
	}
}

// HasCredentials reports whether an API key is configured. Only presence
// matters; nothing inspects the value.
func (s *VendorService) HasCredentials() bool {
	return s.APIKey != ""
}

// Enrich fetches vendor metrics for the given domain names. The response
// carries only the enriched fields; callers merge them into existing records
// by name.
func (s *VendorService) Enrich(names []string) ([]models.DomainRecord, error) {
	if !s.HasCredentials() {
		return nil, fmt.Errorf("vendor API key not configured")
	}
	if len(names) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{"domains": names})
	if err != nil {
		return nil, fmt.Errorf("encode enrichment request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build enrichment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vendor API returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Domains []struct {
			Domain          string  `json:"domain"`
			TrustFlow       float64 `json:"tf"`
			CitationFlow    float64 `json:"cf"`
			DomainAuthority float64 `json:"da"`
			Backlinks       int     `json:"backlinks"`
			RefDomains      int     `json:"ref_domains"`
			AgeYears        float64 `json:"age"`
			RiskScore       float64 `json:"sz_score"`
			Drops           int     `json:"drops"`
			WaybackYears    float64 `json:"wayback_age"`
		} `json:"domains"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse vendor response: %w", err)
	}

	records := make([]models.DomainRecord, 0, len(apiResponse.Domains))
	for _, d := range apiResponse.Domains {
		name := importer.CleanDomain(d.Domain)
		if !importer.ValidDomain(name) {
			continue
		}
		records = append(records, models.DomainRecord{
			Name:     name,
			TLD:      importer.TLDOf(name),
			Enriched: true,
			Metrics: models.Metrics{
				TrustFlow:          d.TrustFlow,
				CitationFlow:       d.CitationFlow,
				DomainAuthority:    d.DomainAuthority,
				BacklinkCount:      d.Backlinks,
				ReferringDomains:   d.RefDomains,
				AgeYears:           d.AgeYears,
				VendorRiskScore:    d.RiskScore,
				PriorDrops:         d.Drops,
				ActiveContentYears: d.WaybackYears,
			},
		})
	}

	return records, nil
}
