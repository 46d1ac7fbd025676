// Package aggregate maintains the merged working set of discovered domains
// and produces filtered, deterministically ordered views over it.
package aggregate

import (
	"sort"
	"strings"

	"domain-hunter/internal/models"
)

// Merge combines channel batches into one set, deduplicating by name with a
// first-write-wins policy: a name already present keeps its original fields.
func Merge(batches ...[]models.DomainRecord) []models.DomainRecord {
	seen := make(map[string]struct{})
	var merged []models.DomainRecord

	for _, batch := range batches {
		for _, rec := range batch {
			if _, ok := seen[rec.Name]; ok {
				continue
			}
			seen[rec.Name] = struct{}{}
			merged = append(merged, rec)
		}
	}

	return merged
}

// Filter describes the view constraints over the aggregate set. Zero values
// mean "no constraint".
type Filter struct {
	Source   models.SourceChannel
	MinScore int
	Tier     models.Tier
	Keywords string // comma-separated, OR-combined, case-insensitive
}

// Apply filters records and returns them in the canonical view order:
// tier rank best-first, then overall score descending, insertion order as
// the stable tiebreak.
func Apply(records []models.DomainRecord, f Filter) []models.DomainRecord {
	keywords := splitKeywords(f.Keywords)

	var out []models.DomainRecord
	for _, rec := range records {
		if f.Source != "" && rec.Source != f.Source {
			continue
		}
		if f.MinScore > 0 && rec.Score.Overall < f.MinScore {
			continue
		}
		if f.Tier != "" && rec.Score.Tier != f.Tier {
			continue
		}
		if len(keywords) > 0 && !matchesAnyKeyword(rec.Name, keywords) {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Score.Tier.Rank(), out[j].Score.Tier.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].Score.Overall > out[j].Score.Overall
	})

	return out
}

// Page slices a filtered view. Pages are 1-based; out-of-range pages return
// an empty slice.
func Page(records []models.DomainRecord, page, perPage int) []models.DomainRecord {
	if perPage <= 0 {
		perPage = 25
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(records) {
		return nil
	}

	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

func splitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func matchesAnyKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
