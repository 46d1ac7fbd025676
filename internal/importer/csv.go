package importer

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"domain-hunter/internal/models"
)

// Header aliases accepted for each vendor CSV column. Lookup is by header
// name only; column order is free.
var (
	domainHeaders    = []string{"domain", "domain name", "name", "url"}
	trustHeaders     = []string{"tf", "trust flow", "trustflow", "majestic tf"}
	citationHeaders  = []string{"cf", "citation flow", "citationflow", "majestic cf"}
	authorityHeaders = []string{"da", "domain authority", "moz da"}
	backlinkHeaders  = []string{"backlinks", "bl", "backlink count"}
	referringHeaders = []string{"ref domains", "referring domains", "rd", "refdomains"}
	ageHeaders       = []string{"age", "domain age", "age years"}
	riskHeaders      = []string{"sz score", "risk", "risk score", "spam score"}
	dropHeaders      = []string{"drops", "drop count", "dropped"}
	activeHeaders    = []string{"wayback age", "active years", "active content"}
)

type vendorColumns struct {
	domain    int
	trust     int
	citation  int
	authority int
	backlinks int
	referring int
	age       int
	risk      int
	drops     int
	active    int
}

// detectVendorHeader inspects a header row for the vendor export format.
// Detection requires both a trust-flow and a risk-score column to be present.
func detectVendorHeader(header []string) (vendorColumns, bool) {
	cols := vendorColumns{
		domain: -1, trust: -1, citation: -1, authority: -1, backlinks: -1,
		referring: -1, age: -1, risk: -1, drops: -1, active: -1,
	}

	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case cols.domain < 0 && matchesHeader(h, domainHeaders):
			cols.domain = i
		case cols.trust < 0 && matchesHeader(h, trustHeaders):
			cols.trust = i
		case cols.citation < 0 && matchesHeader(h, citationHeaders):
			cols.citation = i
		case cols.authority < 0 && matchesHeader(h, authorityHeaders):
			cols.authority = i
		case cols.backlinks < 0 && matchesHeader(h, backlinkHeaders):
			cols.backlinks = i
		case cols.referring < 0 && matchesHeader(h, referringHeaders):
			cols.referring = i
		case cols.age < 0 && matchesHeader(h, ageHeaders):
			cols.age = i
		case cols.risk < 0 && matchesHeader(h, riskHeaders):
			cols.risk = i
		case cols.drops < 0 && matchesHeader(h, dropHeaders):
			cols.drops = i
		case cols.active < 0 && matchesHeader(h, activeHeaders):
			cols.active = i
		}
	}

	if cols.trust < 0 || cols.risk < 0 {
		return cols, false
	}
	if cols.domain < 0 {
		cols.domain = 0
	}
	return cols, true
}

func matchesHeader(h string, aliases []string) bool {
	for _, alias := range aliases {
		if h == alias {
			return true
		}
	}
	return false
}

// NormalizeVendorCSV parses a vendor export. When the header row does not
// look like the vendor format, the payload is re-parsed as manual free text
// instead of failing the import.
func NormalizeVendorCSV(payload string) Result {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		return NormalizeManual(payload)
	}

	cols, ok := detectVendorHeader(rows[0])
	if !ok {
		return NormalizeManual(payload)
	}

	var res Result
	now := time.Now()

	for _, row := range rows[1:] {
		name := ""
		if cols.domain < len(row) {
			name = CleanDomain(row[cols.domain])
		}
		if !ValidDomain(name) {
			res.Dropped++
			continue
		}

		res.Records = append(res.Records, models.DomainRecord{
			Name:      name,
			TLD:       TLDOf(name),
			Source:    models.SourceVendorCSV,
			Enriched:  true,
			FetchedAt: now,
			Metrics: models.Metrics{
				TrustFlow:          floatCell(row, cols.trust),
				CitationFlow:       floatCell(row, cols.citation),
				DomainAuthority:    floatCell(row, cols.authority),
				BacklinkCount:      intCell(row, cols.backlinks),
				ReferringDomains:   intCell(row, cols.referring),
				AgeYears:           floatCell(row, cols.age),
				VendorRiskScore:    floatCell(row, cols.risk),
				PriorDrops:         intCell(row, cols.drops),
				ActiveContentYears: floatCell(row, cols.active),
			},
		})
	}

	return res
}

func floatCell(row []string, idx int) float64 {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0
	}
	return v
}

func intCell(row []string, idx int) int {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(row[idx]))
	if err != nil {
		return 0
	}
	return v
}
