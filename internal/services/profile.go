package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"domain-hunter/internal/models"
)

// ProfileService calls the AI provider that writes a content profile for an
// owned domain. It implements workflow.ProfileGenerator.
type ProfileService struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewProfileService creates a new profile generation service
func NewProfileService(apiURL, apiKey, model string, timeout time.Duration) *ProfileService {
	return &ProfileService{
		APIURL:  apiURL,
		APIKey:  apiKey,
		Model:   model,
		Timeout: timeout,
	}
}

// Generate requests a profile for the domain. Any transport failure,
// malformed response, or explicit error field becomes a plain error for the
// workflow to record.
func (s *ProfileService) Generate(ctx context.Context, name string, metrics models.Metrics) (*models.Profile, error) {
	payload, err := json.Marshal(map[string]any{
		"domain":  name,
		"model":   s.Model,
		"metrics": metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("encode profile request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	client := &http.Client{Timeout: s.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile API returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Success bool            `json:"success"`
		Profile *models.Profile `json:"profile"`
		Error   string          `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}

	if !apiResponse.Success || apiResponse.Profile == nil {
		if apiResponse.Error != "" {
			return nil, fmt.Errorf("profile generation rejected: %s", apiResponse.Error)
		}
		return nil, fmt.Errorf("profile generation returned no profile")
	}

	return apiResponse.Profile, nil
}
