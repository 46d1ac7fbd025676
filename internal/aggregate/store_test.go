package aggregate

import (
	"testing"

	"domain-hunter/internal/database"
	"domain-hunter/internal/importer"
	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return NewStore(database.OpenTest(t), logger.NewNopLogger())
}

func TestInsertBatchDeduplicates(t *testing.T) {
	store := newTestStore(t)

	batch := importer.NormalizeManual("example.com\nother.net").Records

	inserted, err := store.InsertBatch(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-merging the same channel result is a no-op.
	inserted, err = store.InsertBatch(batch)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestInsertBatchScoresRecords(t *testing.T) {
	store := newTestStore(t)

	batch := importer.NormalizeVendorCSV("Domain,TF,CF,DA,Age,SZ Score\ndomain.com,40,35,50,6,8\n").Records
	_, err := store.InsertBatch(batch)
	require.NoError(t, err)

	rec, err := store.Get("domain.com")
	require.NoError(t, err)
	assert.Equal(t, 85, rec.Score.Overall)
	assert.Equal(t, models.TierGold, rec.Score.Tier)
}

func TestInsertBatchFirstWriteWins(t *testing.T) {
	store := newTestStore(t)

	_, err := store.InsertBatch(importer.NormalizeManual("example.net").Records)
	require.NoError(t, err)

	csv := importer.NormalizeVendorCSV("Domain,TF,SZ Score\nexample.net,40,5\n")
	_, err = store.InsertBatch(csv.Records)
	require.NoError(t, err)

	rec, err := store.Get("example.net")
	require.NoError(t, err)
	assert.Equal(t, models.SourceManual, rec.Source)
	assert.False(t, rec.Enriched)
}

func TestApplyEnrichmentReplacesScore(t *testing.T) {
	store := newTestStore(t)

	_, err := store.InsertBatch(importer.NormalizeManual("example.com").Records)
	require.NoError(t, err)

	before, err := store.Get("example.com")
	require.NoError(t, err)
	assert.Equal(t, models.TierUnscored, before.Score.Tier)

	metrics := models.Metrics{TrustFlow: 40, CitationFlow: 35, DomainAuthority: 50, VendorRiskScore: 8, AgeYears: 6}
	require.NoError(t, store.ApplyEnrichment("example.com", metrics))

	after, err := store.Get("example.com")
	require.NoError(t, err)
	assert.True(t, after.Enriched)
	assert.Equal(t, models.TierGold, after.Score.Tier)
	assert.Equal(t, 85, after.Score.Overall)
}

func TestApplyEnrichmentUnknownNameIsNoop(t *testing.T) {
	store := newTestStore(t)

	err := store.ApplyEnrichment("gone.com", models.Metrics{TrustFlow: 10})
	assert.NoError(t, err)
}

func TestViewPaginates(t *testing.T) {
	store := newTestStore(t)

	_, err := store.InsertBatch(importer.NormalizeManual("a.com b.com c.com").Records)
	require.NoError(t, err)

	page, total, err := store.View(Filter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)
}
