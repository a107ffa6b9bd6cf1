package view

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Muhammadurasheed/scholarstream/internal/match"
	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// LocationScope narrows results by geographic relevance.
type LocationScope string

const (
	ScopeAll           LocationScope = "all"
	ScopeLocal         LocationScope = "local"
	ScopeRegional      LocationScope = "regional"
	ScopeNational      LocationScope = "national"
	ScopeInternational LocationScope = "international"
)

// freshWindow is how long after discovery an item counts as new and gets
// boosted to the front of the view.
const freshWindow = 72 * time.Hour

// Options selects and narrows the view. Zero values mean "no filtering".
type Options struct {
	Search      string
	Location    LocationScope
	Source      string
	UserCountry string
	UserState   string
}

// ByType buckets the filtered items by inferred opportunity type.
type ByType struct {
	Scholarships []models.Opportunity `json:"scholarships"`
	Hackathons   []models.Opportunity `json:"hackathons"`
	Bounties     []models.Opportunity `json:"bounties"`
	Competitions []models.Opportunity `json:"competitions"`
}

// Grouped is the final view model: the full filtered list plus derived
// slices. Urgent and HighMatch are views over All, not extra items.
type Grouped struct {
	All       []models.Opportunity `json:"all"`
	Urgent    []models.Opportunity `json:"urgent"`
	HighMatch []models.Opportunity `json:"high_match"`
	ByType    ByType               `json:"by_type"`
}

// Process runs the view pipeline over an already ranked list: search filter,
// location scope, source scope, defensive re-dedup, freshness boost, then
// categorization.
func Process(ranked []models.Opportunity, opts Options) Grouped {
	return ProcessAt(ranked, opts, time.Now())
}

// ProcessAt is Process with an injectable clock.
func ProcessAt(ranked []models.Opportunity, opts Options, now time.Time) Grouped {
	filtered := filterSearch(ranked, opts.Search)
	filtered = filterLocation(filtered, opts)
	filtered = filterSource(filtered, opts.Source)
	filtered = dedupe(filtered)
	filtered = boostFresh(filtered, now)

	g := Grouped{All: filtered}
	for _, opp := range filtered {
		if isUrgent(opp, now) {
			g.Urgent = append(g.Urgent, opp)
		}
		if opp.MatchScore >= 85 {
			g.HighMatch = append(g.HighMatch, opp)
		}
		switch Categorize(opp) {
		case "hackathon":
			g.ByType.Hackathons = append(g.ByType.Hackathons, opp)
		case "bounty":
			g.ByType.Bounties = append(g.ByType.Bounties, opp)
		case "competition":
			g.ByType.Competitions = append(g.ByType.Competitions, opp)
		default:
			g.ByType.Scholarships = append(g.ByType.Scholarships, opp)
		}
	}
	return g
}

func filterSearch(opps []models.Opportunity, search string) []models.Opportunity {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return opps
	}
	out := opps[:0:0]
	for _, opp := range opps {
		if strings.Contains(strings.ToLower(opp.Name), query) ||
			strings.Contains(strings.ToLower(opp.Organization), query) ||
			strings.Contains(strings.ToLower(opp.Description), query) ||
			tagMatches(opp.Tags, query) {
			out = append(out, opp)
		}
	}
	return out
}

func tagMatches(tags []string, query string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func filterLocation(opps []models.Opportunity, opts Options) []models.Opportunity {
	scope := opts.Location
	if scope == "" || scope == ScopeAll {
		return opps
	}
	out := opps[:0:0]
	for _, opp := range opps {
		if matchesScope(opp, scope, opts.UserCountry, opts.UserState) {
			out = append(out, opp)
		}
	}
	return out
}

func matchesScope(opp models.Opportunity, scope LocationScope, userCountry, userState string) bool {
	states := lowerAll(opp.Eligibility.States)
	citizenship := strings.ToLower(opp.Eligibility.Citizenship)
	geoTags := lowerAll(opp.GeoTags)

	isGlobal := containsItem(geoTags, "global") ||
		containsItem(geoTags, "international") ||
		containsItem(geoTags, "remote") ||
		strings.Contains(citizenship, "international") ||
		strings.Contains(citizenship, "any")

	switch scope {
	case ScopeLocal:
		// Strict: no state match means excluded, even for global listings.
		if userState != "" && len(states) > 0 {
			state := strings.ToLower(userState)
			for _, s := range states {
				if strings.Contains(s, state) {
					return true
				}
			}
		}
		return false
	case ScopeRegional, ScopeNational:
		if userCountry != "" {
			country := strings.ToLower(userCountry)
			if strings.Contains(citizenship, country) || containsItem(geoTags, country) {
				return true
			}
		}
		return isGlobal
	case ScopeInternational:
		return isGlobal
	default:
		return true
	}
}

// filterSource keeps items attributable to the given source domain: by
// source_type, then by URL hostname, then by organization name as a
// fallback.
func filterSource(opps []models.Opportunity, source string) []models.Opportunity {
	domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(source), "www."))
	if domain == "" || domain == "all" {
		return opps
	}
	base := strings.SplitN(domain, ".", 2)[0]

	out := opps[:0:0]
	for _, opp := range opps {
		if matchesSource(opp, domain, base) {
			out = append(out, opp)
		}
	}
	return out
}

func matchesSource(opp models.Opportunity, domain, base string) bool {
	if opp.SourceType != "" {
		st := strings.ToLower(opp.SourceType)
		if strings.Contains(domain, st) || strings.Contains(st, base) {
			return true
		}
	}
	if opp.SourceURL != "" {
		if u, err := url.Parse(opp.SourceURL); err == nil {
			hostname := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
			if hostname == domain || strings.HasSuffix(hostname, "."+domain) ||
				strings.Contains(hostname, base) {
				return true
			}
		}
	}
	if opp.Organization != "" && strings.Contains(strings.ToLower(opp.Organization), base) {
		return true
	}
	return false
}

// dedupe drops repeated ids and repeated normalized names, keeping the
// first (best ranked) occurrence.
func dedupe(opps []models.Opportunity) []models.Opportunity {
	seenIDs := make(map[string]struct{}, len(opps))
	seenNames := make(map[string]struct{}, len(opps))
	out := opps[:0:0]
	for _, opp := range opps {
		name := strings.ToLower(strings.TrimSpace(opp.Name))
		if _, ok := seenIDs[opp.ID]; ok {
			continue
		}
		if _, ok := seenNames[name]; ok {
			continue
		}
		seenIDs[opp.ID] = struct{}{}
		seenNames[name] = struct{}{}
		out = append(out, opp)
	}
	return out
}

// boostFresh moves items discovered within the fresh window to the front,
// newest first. Everything else keeps its incoming rank order.
func boostFresh(opps []models.Opportunity, now time.Time) []models.Opportunity {
	var fresh, rest []models.Opportunity
	for _, opp := range opps {
		if isFresh(opp.DiscoveredAt, now) {
			fresh = append(fresh, opp)
		} else {
			rest = append(rest, opp)
		}
	}
	if len(fresh) == 0 {
		return opps
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return discoveredTime(fresh[i].DiscoveredAt).After(discoveredTime(fresh[j].DiscoveredAt))
	})
	return append(fresh, rest...)
}

func isFresh(discoveredAt string, now time.Time) bool {
	t := discoveredTime(discoveredAt)
	if t.IsZero() {
		return false
	}
	age := now.Sub(t)
	return age >= 0 && age <= freshWindow
}

func discoveredTime(discoveredAt string) time.Time {
	if discoveredAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, discoveredAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Categorize infers the opportunity type: explicit source_type first, then
// keyword precedence hackathon > bounty > competition, defaulting to
// scholarship.
func Categorize(opp models.Opportunity) string {
	switch strings.ToLower(opp.SourceType) {
	case "devpost", "mlh":
		return "hackathon"
	case "gitcoin":
		return "bounty"
	case "kaggle":
		return "competition"
	}

	combined := strings.ToLower(strings.Join([]string{
		strings.Join(opp.Tags, " "),
		opp.Description,
		opp.Name,
	}, " "))

	switch {
	case strings.Contains(combined, "hackathon") ||
		strings.Contains(combined, "hack ") ||
		strings.Contains(combined, "devpost"):
		return "hackathon"
	case strings.Contains(combined, "bounty") ||
		strings.Contains(combined, "security") ||
		strings.Contains(combined, "gitcoin"):
		return "bounty"
	case strings.Contains(combined, "competition") ||
		strings.Contains(combined, "contest") ||
		strings.Contains(combined, "kaggle") ||
		strings.Contains(combined, "challenge"):
		return "competition"
	default:
		return "scholarship"
	}
}

func isUrgent(opp models.Opportunity, now time.Time) bool {
	if opp.PriorityLevel == models.PriorityUrgent {
		return true
	}
	if strings.TrimSpace(opp.Deadline) == "" {
		return false
	}
	days := match.DaysUntil(opp.Deadline, now)
	return days >= 0 && days < 7
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsItem(items []string, want string) bool {
	for _, s := range items {
		if s == want {
			return true
		}
	}
	return false
}
