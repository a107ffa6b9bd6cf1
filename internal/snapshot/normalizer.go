package snapshot

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

var sanitizer = bluemonday.UGCPolicy()

var errMissingName = errors.New("record has no name")

// Normalize cleans one snapshot record for the feed: whitespace cleanup,
// sanitized plain-text description, amount fallback from the display
// string, a generated id when the upstream omitted one, and a discovery
// timestamp default. Missing scoring inputs stay missing; the engine's
// neutral defaults handle them.
func Normalize(opp models.Opportunity, now time.Time) (models.Opportunity, error) {
	opp.Name = cleanText(opp.Name)
	if opp.Name == "" {
		return models.Opportunity{}, errMissingName
	}
	opp.Organization = cleanText(opp.Organization)
	opp.Description = cleanText(HTMLToText(sanitizer.Sanitize(opp.Description)))
	opp.AmountDisplay = cleanText(opp.AmountDisplay)
	opp.Deadline = cleanText(opp.Deadline)

	opp.Tags = cleanList(opp.Tags)
	opp.GeoTags = cleanList(opp.GeoTags)
	opp.Eligibility.States = cleanList(opp.Eligibility.States)
	opp.Eligibility.Citizenship = cleanText(opp.Eligibility.Citizenship)
	opp.Eligibility.GradesEligible = cleanList(opp.Eligibility.GradesEligible)

	if opp.Amount == 0 && opp.AmountDisplay != "" {
		opp.Amount = parseAmountDisplay(opp.AmountDisplay)
	}
	if opp.ID == "" {
		opp.ID = uuid.NewString()
	}
	if opp.DiscoveredAt == "" {
		opp.DiscoveredAt = now.UTC().Format(time.RFC3339)
	}
	return opp, nil
}

// HTMLToText strips markup and returns the readable text. Non-HTML input
// passes through unchanged.
func HTMLToText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// cleanText collapses runs of whitespace and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanList trims every entry and drops empties and case-insensitive
// duplicates, keeping first occurrence.
func cleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, v := range items {
		v = cleanText(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
