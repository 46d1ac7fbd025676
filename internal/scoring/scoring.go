// Package scoring computes the quality score, tier, recommendation, and
// estimated value for a domain record. All functions are pure and never fail:
// absent metrics contribute zero.
package scoring

import (
	"math"
	"strings"

	"domain-hunter/internal/models"
)

// Vendor-path weight caps. The five contributions sum to at most 100.
const (
	trustFlowCap = 30 // trustFlow * 1.5, capped
	authorityCap = 25 // domainAuthority * 0.5, capped
	riskCap      = 25 // 25 - vendorRiskScore, floored at 0
	ratioCap     = 10 // trustFlow/citationFlow * 10, capped at ratio 1.0
	ageCap       = 10 // ageYears * 0.5, capped
)

// Tier bands. Gold and silver additionally gate on vendor risk.
const (
	goldMinOverall   = 80
	goldMaxRisk      = 10
	silverMinOverall = 65
	silverMaxRisk    = 20
	bronzeMinOverall = 50
	bronzeMaxRisk    = 30
)

// Estimated-value model.
const (
	valueBase        = 50.0
	valueGoldBonus   = 2000.0
	valueSilverBonus = 750.0
	valueBronzeBonus = 200.0
	valueTrustFactor = 12.0
	valueAuthFactor  = 8.0
	valueComFactor   = 1.5
)

// Compute scores a record, dispatching on whether vendor metrics are
// attached. Records without enrichment get the coarse name/TLD heuristic.
func Compute(rec *models.DomainRecord) models.Score {
	if rec.Enriched {
		return Vendor(rec.Metrics, rec.TLD)
	}
	return Heuristic(rec.Name, rec.TLD)
}

// Vendor computes the full weighted score from vendor metrics.
func Vendor(m models.Metrics, tld string) models.Score {
	trust := math.Min(trustFlowCap, m.TrustFlow*1.5)
	authority := math.Min(authorityCap, m.DomainAuthority*0.5)
	risk := math.Max(0, riskCap-m.VendorRiskScore)

	ratio := 0.0
	if m.CitationFlow > 0 {
		ratio = math.Min(ratioCap, m.TrustFlow/m.CitationFlow*ratioCap)
	}

	age := math.Min(ageCap, m.AgeYears*0.5)

	overall := clamp(int(math.Round(trust + authority + risk + ratio + age)))
	tier := tierFor(overall, m.VendorRiskScore)

	return models.Score{
		Overall:        overall,
		Tier:           tier,
		Recommendation: recommendationFor(tier),
		EstimatedValue: estimatedValue(tier, m, tld),
	}
}

// Heuristic produces a coarse score from the name alone, for records the
// manual or free-scrape channels brought in without metrics. It never
// assigns a tier.
func Heuristic(name, tld string) models.Score {
	label := name
	if tld != "" && strings.HasSuffix(name, "."+tld) {
		label = strings.TrimSuffix(name, "."+tld)
	}

	// Short labels are worth more; the bonus zeroes out around 13 chars.
	length := float64(len(label))
	lengthBonus := math.Max(0, math.Min(30, 30-3*(length-3)))

	overall := clamp(int(math.Round(35 + lengthBonus + tldBonus(tld))))

	rec := models.RecAvoid
	switch {
	case overall >= 70:
		rec = models.RecBuy
	case overall >= 50:
		rec = models.RecConsider
	}

	return models.Score{
		Overall:        overall,
		Tier:           models.TierUnscored,
		Recommendation: rec,
		EstimatedValue: estimatedValue(models.TierUnscored, models.Metrics{}, tld),
	}
}

func tldBonus(tld string) float64 {
	switch strings.ToLower(tld) {
	case "com":
		return 20
	case "net", "org":
		return 12
	case "io", "ai":
		return 10
	case "co", "dev", "app":
		return 8
	default:
		return 3
	}
}

// tierFor is monotonic in both inputs: a higher overall or a lower risk
// never produces a worse tier.
func tierFor(overall int, risk float64) models.Tier {
	switch {
	case overall >= goldMinOverall && risk <= goldMaxRisk:
		return models.TierGold
	case overall >= silverMinOverall && risk <= silverMaxRisk:
		return models.TierSilver
	case overall >= bronzeMinOverall && risk <= bronzeMaxRisk:
		return models.TierBronze
	default:
		return models.TierAvoid
	}
}

func recommendationFor(tier models.Tier) models.Recommendation {
	switch tier {
	case models.TierGold:
		return models.RecStrongBuy
	case models.TierSilver:
		return models.RecBuy
	case models.TierBronze:
		return models.RecConsider
	default:
		return models.RecAvoid
	}
}

func estimatedValue(tier models.Tier, m models.Metrics, tld string) float64 {
	value := valueBase
	switch tier {
	case models.TierGold:
		value += valueGoldBonus
	case models.TierSilver:
		value += valueSilverBonus
	case models.TierBronze:
		value += valueBronzeBonus
	}

	value += m.TrustFlow * valueTrustFactor
	value += m.DomainAuthority * valueAuthFactor

	if strings.EqualFold(tld, "com") {
		value *= valueComFactor
	}

	return math.Round(value*100) / 100
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
