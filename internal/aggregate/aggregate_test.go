package aggregate

import (
	"testing"

	"domain-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name string, source models.SourceChannel, tier models.Tier, overall int) models.DomainRecord {
	return models.DomainRecord{
		Name:   name,
		TLD:    "com",
		Source: source,
		Score:  models.Score{Overall: overall, Tier: tier},
	}
}

func TestMergeFirstWriteWins(t *testing.T) {
	manual := []models.DomainRecord{rec("example.net", models.SourceManual, models.TierUnscored, 40)}
	vendor := []models.DomainRecord{
		rec("example.net", models.SourceVendorCSV, models.TierGold, 90),
		rec("fresh.com", models.SourceVendorCSV, models.TierSilver, 70),
	}

	merged := Merge(manual, vendor)

	require.Len(t, merged, 2)
	assert.Equal(t, models.SourceManual, merged[0].Source, "first channel keeps the name")
	assert.Equal(t, "fresh.com", merged[1].Name)
}

func TestMergeIdempotent(t *testing.T) {
	batch := []models.DomainRecord{
		rec("one.com", models.SourceManual, models.TierUnscored, 50),
		rec("two.com", models.SourceManual, models.TierUnscored, 60),
	}

	once := Merge(batch)
	twice := Merge(batch, batch)

	assert.Equal(t, once, twice)
}

func TestApplyFilters(t *testing.T) {
	records := []models.DomainRecord{
		rec("alpha-poker.com", models.SourceVendorCSV, models.TierGold, 88),
		rec("beta.net", models.SourceManual, models.TierUnscored, 55),
		rec("gamma-casino.org", models.SourceVendorCSV, models.TierBronze, 52),
		rec("delta.com", models.SourceFreeScrape, models.TierUnscored, 61),
	}

	bySource := Apply(records, Filter{Source: models.SourceVendorCSV})
	assert.Len(t, bySource, 2)

	byScore := Apply(records, Filter{MinScore: 60})
	assert.Len(t, byScore, 2)

	byTier := Apply(records, Filter{Tier: models.TierGold})
	require.Len(t, byTier, 1)
	assert.Equal(t, "alpha-poker.com", byTier[0].Name)

	byKeyword := Apply(records, Filter{Keywords: "poker, casino"})
	assert.Len(t, byKeyword, 2)

	all := Apply(records, Filter{})
	assert.Len(t, all, 4)
}

func TestApplySortOrder(t *testing.T) {
	records := []models.DomainRecord{
		rec("bronze-high.com", models.SourceVendorCSV, models.TierBronze, 60),
		rec("gold-low.com", models.SourceVendorCSV, models.TierGold, 81),
		rec("gold-high.com", models.SourceVendorCSV, models.TierGold, 95),
		rec("unscored.com", models.SourceManual, models.TierUnscored, 99),
	}

	sorted := Apply(records, Filter{})

	names := make([]string, len(sorted))
	for i, r := range sorted {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"gold-high.com", "gold-low.com", "bronze-high.com", "unscored.com"}, names)
}

func TestApplySortStable(t *testing.T) {
	records := []models.DomainRecord{
		rec("first.com", models.SourceManual, models.TierSilver, 70),
		rec("second.com", models.SourceManual, models.TierSilver, 70),
		rec("third.com", models.SourceManual, models.TierSilver, 70),
	}

	once := Apply(records, Filter{})
	twice := Apply(once, Filter{})

	assert.Equal(t, once, twice)
	assert.Equal(t, "first.com", once[0].Name)
	assert.Equal(t, "third.com", once[2].Name)
}

func TestPage(t *testing.T) {
	var records []models.DomainRecord
	for _, n := range []string{"a.com", "b.com", "c.com", "d.com", "e.com"} {
		records = append(records, rec(n, models.SourceManual, models.TierUnscored, 50))
	}

	first := Page(records, 1, 2)
	require.Len(t, first, 2)
	assert.Equal(t, "a.com", first[0].Name)

	third := Page(records, 3, 2)
	require.Len(t, third, 1)
	assert.Equal(t, "e.com", third[0].Name)

	assert.Nil(t, Page(records, 4, 2))
}
