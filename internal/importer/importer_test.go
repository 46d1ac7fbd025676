package importer

import (
	"strings"
	"testing"

	"domain-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeManual(t *testing.T) {
	res := NormalizeManual("example.com\nnot a domain\nhttps://www.other.net/page\nfoo,bar.org")

	require.Len(t, res.Records, 3)
	assert.Equal(t, 4, res.Dropped) // "not", "a", "domain", "foo"

	names := []string{res.Records[0].Name, res.Records[1].Name, res.Records[2].Name}
	assert.Equal(t, []string{"example.com", "other.net", "bar.org"}, names)

	for _, rec := range res.Records {
		assert.Equal(t, models.SourceManual, rec.Source)
		assert.False(t, rec.Enriched)
	}
	assert.Equal(t, "net", res.Records[1].TLD)
}

func TestNormalizeManualEmptyInput(t *testing.T) {
	res := NormalizeManual("  \n\n ")

	assert.Empty(t, res.Records)
	assert.Zero(t, res.Dropped)
}

func TestValidDomain(t *testing.T) {
	valid := []string{"example.com", "a-b.co.uk", "x1.io", "deep.sub.domain.net"}
	invalid := []string{"", "example", "-bad.com", "bad-.com", "spaces in.com", "example.c", "example.1com"}

	for _, v := range valid {
		assert.True(t, ValidDomain(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidDomain(v), v)
	}
}

func TestNormalizeVendorCSV(t *testing.T) {
	payload := strings.Join([]string{
		"Domain,TF,CF,DA,Age,SZ Score,Backlinks",
		"domain.com,40,35,50,6,8,1200",
		"second.net,12,30,20,2,25,40",
		"not-a-domain,5,5,5,1,1,1",
	}, "\n")

	res := NormalizeVendorCSV(payload)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Dropped)

	first := res.Records[0]
	assert.Equal(t, "domain.com", first.Name)
	assert.Equal(t, models.SourceVendorCSV, first.Source)
	assert.True(t, first.Enriched)
	assert.Equal(t, 40.0, first.Metrics.TrustFlow)
	assert.Equal(t, 35.0, first.Metrics.CitationFlow)
	assert.Equal(t, 50.0, first.Metrics.DomainAuthority)
	assert.Equal(t, 8.0, first.Metrics.VendorRiskScore)
	assert.Equal(t, 6.0, first.Metrics.AgeYears)
	assert.Equal(t, 1200, first.Metrics.BacklinkCount)
}

func TestNormalizeVendorCSVColumnOrderFree(t *testing.T) {
	payload := "SZ Score,Domain,TF\n9,ordered.com,33\n"

	res := NormalizeVendorCSV(payload)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "ordered.com", res.Records[0].Name)
	assert.Equal(t, 33.0, res.Records[0].Metrics.TrustFlow)
	assert.Equal(t, 9.0, res.Records[0].Metrics.VendorRiskScore)
}

func TestNormalizeVendorCSVFallsBackToManual(t *testing.T) {
	// No trust-flow/risk header pair: treat the payload as free text.
	payload := "example.com\nother.net\n"

	res := NormalizeVendorCSV(payload)

	require.Len(t, res.Records, 2)
	for _, rec := range res.Records {
		assert.Equal(t, models.SourceManual, rec.Source)
		assert.False(t, rec.Enriched)
	}
}

func TestNormalizeVendorCSVMalformedCellsDefaultToZero(t *testing.T) {
	payload := "Domain,TF,SZ Score\ncell.com,not-a-number,\n"

	res := NormalizeVendorCSV(payload)

	require.Len(t, res.Records, 1)
	assert.Zero(t, res.Records[0].Metrics.TrustFlow)
	assert.Zero(t, res.Records[0].Metrics.VendorRiskScore)
}
