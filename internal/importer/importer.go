// Package importer normalizes raw per-channel input into domain records.
// Invalid rows are dropped and counted, never surfaced as errors.
package importer

import (
	"regexp"
	"strings"
	"time"

	"domain-hunter/internal/models"
)

// domainPattern accepts dot-separated labels ending in a 2-24 letter TLD.
var domainPattern = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,24}$`)

// Result is the outcome of normalizing one batch of raw input.
type Result struct {
	Records []models.DomainRecord
	Dropped int
}

// ValidDomain reports whether value is a syntactically valid domain name.
func ValidDomain(value string) bool {
	return domainPattern.MatchString(strings.ToLower(strings.TrimSpace(value)))
}

// CleanDomain lowercases and trims a raw domain string, stripping a scheme
// or trailing slash a user may have pasted along.
func CleanDomain(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, "http://")
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "www.")
	if i := strings.IndexAny(v, "/?#"); i >= 0 {
		v = v[:i]
	}
	return v
}

// TLDOf returns the final label of a domain name.
func TLDOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// NormalizeManual parses pasted free text into records. Lines may hold one
// or more domains separated by commas or whitespace.
func NormalizeManual(text string) Result {
	return normalizeTokens(splitTokens(text), models.SourceManual)
}

// NormalizeScraped converts names returned by the free-scrape collaborator
// into records, dropping anything malformed the scraper let through.
func NormalizeScraped(names []string) Result {
	return normalizeTokens(names, models.SourceFreeScrape)
}

func normalizeTokens(tokens []string, source models.SourceChannel) Result {
	var res Result
	now := time.Now()

	for _, token := range tokens {
		name := CleanDomain(token)
		if name == "" {
			continue
		}
		if !ValidDomain(name) {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, models.DomainRecord{
			Name:      name,
			TLD:       TLDOf(name),
			Source:    source,
			FetchedAt: now,
		})
	}

	return res
}

func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', ',', ';', '\t', ' ':
			return true
		}
		return false
	})
}
