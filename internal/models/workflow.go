package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Stage is the acquisition pipeline position of a workflow record.
type Stage string

const (
	StageCandidate Stage = "candidate"
	StageQueued    Stage = "queued"
	StageOwned     Stage = "owned"
)

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	s := Stage(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case StageCandidate, StageQueued, StageOwned:
		return s, true
	}
	return "", false
}

// ProfileStatus is the lifecycle of profile generation for an owned domain.
type ProfileStatus string

const (
	ProfilePending    ProfileStatus = "pending"
	ProfileGenerating ProfileStatus = "generating"
	ProfileSuccess    ProfileStatus = "success"
	ProfileFailed     ProfileStatus = "failed"
)

// Profile is the generated content/marketing profile for an owned domain.
type Profile struct {
	Niche       string   `json:"niche"`
	Keywords    []string `json:"keywords"`
	TopicIdeas  []string `json:"topic_ideas"`
	Description string   `json:"description"`
}

// WorkflowRecord is a domain record the user has pulled into the acquisition
// pipeline. Only candidate and queued records live here; owned records move
// to OwnedDomain.
type WorkflowRecord struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	Name      string        `gorm:"uniqueIndex;not null" json:"name"`
	TLD       string        `json:"tld"`
	Source    SourceChannel `json:"source"`
	Stage     Stage         `json:"stage"`
	Enriched  bool          `json:"enriched"`
	Metrics   Metrics       `gorm:"embedded;embeddedPrefix:metric_" json:"metrics"`
	Score     Score         `gorm:"embedded;embeddedPrefix:score_" json:"score"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OwnedDomain is a purchased domain plus the state of its asynchronous
// profile generation.
type OwnedDomain struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	Name          string        `gorm:"uniqueIndex;not null" json:"name"`
	TLD           string        `json:"tld"`
	Source        SourceChannel `json:"source"`
	Enriched      bool          `json:"enriched"`
	Metrics       Metrics       `gorm:"embedded;embeddedPrefix:metric_" json:"metrics"`
	Score         Score         `gorm:"embedded;embeddedPrefix:score_" json:"score"`
	PurchasedAt   time.Time     `json:"purchased_at"`
	ProfileStatus ProfileStatus `json:"profile_status"`
	ProfileJSON   string        `json:"-"`
	ProfileError  string        `json:"profile_error,omitempty"`
	SiteCreated   bool          `json:"site_created"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// SetProfile attaches a generated profile and marks generation successful.
func (o *OwnedDomain) SetProfile(p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	o.ProfileJSON = string(data)
	o.ProfileError = ""
	o.ProfileStatus = ProfileSuccess
	return nil
}

// Profile decodes the stored profile. It returns nil when generation has not
// succeeded yet.
func (o *OwnedDomain) Profile() *Profile {
	if o.ProfileStatus != ProfileSuccess || o.ProfileJSON == "" {
		return nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(o.ProfileJSON), &p); err != nil {
		return nil
	}
	return &p
}
