package watchlist

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"domain-hunter/internal/database"
	"domain-hunter/internal/logger"
	"domain-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return NewStore(database.OpenTest(t), logger.NewNopLogger())
}

func TestToggleRoundTrip(t *testing.T) {
	store := newTestStore(t)

	watched, err := store.Toggle("example.com")
	require.NoError(t, err)
	assert.True(t, watched)

	isWatched, err := store.IsWatched("example.com")
	require.NoError(t, err)
	assert.True(t, isWatched)

	watched, err = store.Toggle("example.com")
	require.NoError(t, err)
	assert.False(t, watched)

	isWatched, err = store.IsWatched("example.com")
	require.NoError(t, err)
	assert.False(t, isWatched)
}

func TestUpdateNotes(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Toggle("example.com")
	require.NoError(t, err)

	require.NoError(t, store.UpdateNotes("example.com", "auction ends friday"))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "auction ends friday", entries[0].Notes)

	assert.Error(t, store.UpdateNotes("missing.com", "nope"))
}

func TestNamesOldestFirst(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"first.com", "second.net", "third.org"} {
		_, err := store.Toggle(name)
		require.NoError(t, err)
	}

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"first.com", "second.net", "third.org"}, names)
}

func TestExportCSV(t *testing.T) {
	rows := []ExportRow{
		{
			Name:    "example.com",
			TLD:     "com",
			Score:   85,
			Tier:    models.TierGold,
			Source:  models.SourceVendorCSV,
			Stage:   "owned",
			AddedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "domain,tld,score,tier,source,stage,added_at", lines[0])
	assert.Contains(t, lines[1], "example.com")
	assert.Contains(t, lines[1], "gold")
}
