package models

import (
	"strings"
	"time"
)

// SourceChannel identifies which import path produced a record.
// It never changes after the record is created.
type SourceChannel string

const (
	SourceManual     SourceChannel = "manual"
	SourceFreeScrape SourceChannel = "free-scrape"
	SourceVendorCSV  SourceChannel = "vendor-csv"
)

// Tier is the qualitative quality bucket derived from vendor metrics.
// Records scored without vendor metrics stay unscored.
type Tier string

const (
	TierGold     Tier = "gold"
	TierSilver   Tier = "silver"
	TierBronze   Tier = "bronze"
	TierAvoid    Tier = "avoid"
	TierUnscored Tier = "unscored"
)

// Recommendation is the buy/avoid label derived from the tier.
type Recommendation string

const (
	RecStrongBuy Recommendation = "strong-buy"
	RecBuy       Recommendation = "buy"
	RecConsider  Recommendation = "consider"
	RecAvoid     Recommendation = "avoid"
)

// tierRank orders tiers best-first for sorting. Unscored sorts last.
var tierRank = map[Tier]int{
	TierGold:     0,
	TierSilver:   1,
	TierBronze:   2,
	TierAvoid:    3,
	TierUnscored: 4,
}

// Rank returns the sort rank of the tier, best-first.
// Unknown tiers rank with unscored.
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return tierRank[TierUnscored]
}

// ParseTier converts a string into a known Tier.
func ParseTier(value string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(value)))
	_, ok := tierRank[t]
	return t, ok
}

// Metrics holds the SEO metrics a vendor export attaches to a domain.
// Zero values mean the metric was not provided.
type Metrics struct {
	TrustFlow          float64 `json:"trust_flow"`
	CitationFlow       float64 `json:"citation_flow"`
	DomainAuthority    float64 `json:"domain_authority"`
	BacklinkCount      int     `json:"backlink_count"`
	ReferringDomains   int     `json:"referring_domains"`
	AgeYears           float64 `json:"age_years"`
	VendorRiskScore    float64 `json:"vendor_risk_score"` // lower is cleaner
	PriorDrops         int     `json:"prior_drops"`
	ActiveContentYears float64 `json:"active_content_years"`
}

// Score is the computed quality assessment of a record. It is replaced as a
// whole on every re-score, never field by field.
type Score struct {
	Overall        int            `json:"overall"`
	Tier           Tier           `json:"tier"`
	Recommendation Recommendation `json:"recommendation"`
	EstimatedValue float64        `json:"estimated_value"`
}

// DomainRecord is one discovered domain in the aggregate working set.
type DomainRecord struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	Name      string        `gorm:"uniqueIndex;not null" json:"name"`
	TLD       string        `json:"tld"`
	Source    SourceChannel `json:"source"`
	Enriched  bool          `json:"enriched"`
	Metrics   Metrics       `gorm:"embedded;embeddedPrefix:metric_" json:"metrics"`
	Score     Score         `gorm:"embedded;embeddedPrefix:score_" json:"score"`
	FetchedAt time.Time     `json:"fetched_at"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// WatchlistEntry is a starred domain. Its lifecycle is independent of the
// acquisition workflow.
type WatchlistEntry struct {
	ID      uint      `gorm:"primarykey" json:"id"`
	Name    string    `gorm:"uniqueIndex;not null" json:"name"`
	Notes   string    `json:"notes"`
	AddedAt time.Time `json:"added_at"`
}

// Setting represents system configuration stored in the database.
type Setting struct {
	Key   string `gorm:"primarykey" json:"key"`
	Value string `json:"value"`
}

// User represents a user account.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Email     string    `json:"email"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
