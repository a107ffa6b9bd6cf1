package match

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Muhammadurasheed/scholarstream/internal/models"
)

// Sub-score weights. They sum to 100 so the total is a 0..100 score.
const (
	weightEligibility = 30
	weightInterests   = 20
	weightLocation    = 15
	weightUrgency     = 15
	weightValue       = 10
	weightEffort      = 10
)

// Rank thresholds.
const (
	tierExcellentMin = 85
	tierGoodMin      = 70
	tierPotentialMin = 50
	rankFloor        = 30
)

// defaultDeadlineDays stands in for missing or open-ended deadlines so
// ongoing listings score as comfortably far out rather than expired.
const defaultDeadlineDays = 365

// Breakdown is the full scoring result for one opportunity. Sub-scores are
// already weighted (eligibility is out of 30, interests out of 20, and so
// on); Total is their sum.
type Breakdown struct {
	Eligibility int    `json:"eligibility"`
	Interests   int    `json:"interests"`
	Location    int    `json:"location"`
	Urgency     int    `json:"urgency"`
	Value       int    `json:"value"`
	Effort      int    `json:"effort"`
	Total       int    `json:"total"`
	Explanation string `json:"explanation"`
}

// Score evaluates one opportunity against the profile using the current time.
func Score(opp models.Opportunity, profile models.UserProfile) Breakdown {
	return ScoreAt(opp, profile, time.Now())
}

// ScoreAt is Score with an injectable clock.
func ScoreAt(opp models.Opportunity, profile models.UserProfile, now time.Time) Breakdown {
	days := DaysUntil(opp.Deadline, now)
	if days < 0 {
		return Breakdown{Explanation: "Opportunity has expired"}
	}

	elig := scoreEligibility(opp, profile)
	if elig == 0 {
		return Breakdown{Explanation: "Does not meet strict eligibility"}
	}

	interests := scoreInterests(opp, profile)
	location := scoreLocation(opp, profile)
	urgency := scoreUrgency(days, profile)
	value := scoreValue(opp, profile)
	effort := scoreEffort(opp, profile)

	b := Breakdown{
		Eligibility: weighted(elig, weightEligibility),
		Interests:   weighted(interests, weightInterests),
		Location:    weighted(location, weightLocation),
		Urgency:     weighted(urgency, weightUrgency),
		Value:       weighted(value, weightValue),
		Effort:      weighted(effort, weightEffort),
	}
	b.Total = b.Eligibility + b.Interests + b.Location + b.Urgency + b.Value + b.Effort
	b.Explanation = explain(b)
	return b
}

// Rank scores every opportunity, assigns tier and priority, drops weak
// matches, and orders the rest best-first.
func Rank(opps []models.Opportunity, profile models.UserProfile) []models.Opportunity {
	return RankAt(opps, profile, time.Now())
}

// RankAt is Rank with an injectable clock.
func RankAt(opps []models.Opportunity, profile models.UserProfile, now time.Time) []models.Opportunity {
	ranked := make([]models.Opportunity, 0, len(opps))
	for _, opp := range opps {
		b := ScoreAt(opp, profile, now)
		if b.Total < rankFloor {
			continue
		}
		opp.MatchScore = b.Total
		opp.MatchExplanation = b.Explanation
		opp.MatchTier = tierFor(b.Total)
		opp.PriorityLevel = priorityFor(b.Total, DaysUntil(opp.Deadline, now))
		ranked = append(ranked, opp)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return DaysUntil(ranked[i].Deadline, now) < DaysUntil(ranked[j].Deadline, now)
	})
	return ranked
}

// DaysUntil returns whole days from now to the deadline, truncating toward
// zero so a deadline later today counts as day 0. Open-ended sentinels and
// unparseable values map to defaultDeadlineDays.
func DaysUntil(deadline string, now time.Time) int {
	trimmed := strings.TrimSpace(deadline)
	switch strings.ToLower(trimmed) {
	case "", "ongoing", "tbd", "unknown":
		return defaultDeadlineDays
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return int(t.Sub(now).Hours() / 24)
		}
	}
	return defaultDeadlineDays
}

func tierFor(total int) models.MatchTier {
	switch {
	case total >= tierExcellentMin:
		return models.TierExcellent
	case total >= tierGoodMin:
		return models.TierGood
	case total >= tierPotentialMin:
		return models.TierPotential
	default:
		return models.TierLow
	}
}

func priorityFor(total, days int) models.PriorityLevel {
	switch {
	case days <= 7 && total >= 60:
		return models.PriorityUrgent
	case days <= 14 || total >= 80:
		return models.PriorityHigh
	case days <= 30 || total >= 60:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// academicStatusTags maps an academic status onto the listing tags that
// indicate the listing targets that status.
var academicStatusTags = map[string][]string{
	"High School":   {"high school", "freshman", "sophomore", "junior", "senior", "12th grade", "11th grade"},
	"Undergraduate": {"undergraduate", "college", "university", "bachelor"},
	"Graduate":      {"graduate", "masters", "phd", "doctoral"},
	"Postgraduate":  {"postgraduate", "post-doctoral"},
}

func scoreEligibility(opp models.Opportunity, profile models.UserProfile) float64 {
	score := 1.0

	if len(opp.Eligibility.GradesEligible) > 0 {
		status := strings.ToLower(profile.AcademicStatus)
		matched := false
		for _, grade := range opp.Eligibility.GradesEligible {
			if strings.Contains(status, strings.ToLower(grade)) {
				matched = true
				break
			}
		}
		if !matched {
			score *= 0.5
		}
		return score
	}

	// Unknown status yields no expected tags, so tagged listings take the
	// fallback penalty just like a status mismatch.
	hints := academicStatusTags[profile.AcademicStatus]
	if len(opp.Tags) == 0 {
		return score
	}
	for _, tag := range opp.Tags {
		lower := strings.ToLower(tag)
		for _, hint := range hints {
			if strings.Contains(lower, hint) {
				return score
			}
		}
	}
	return score * 0.7
}

// techInterestHints marks interest keywords that make hackathon-flavored
// listings a safe bet even when the raw keyword-hit ratio is low.
var techInterestHints = []string{"software", "coding", "programming", "ai", "web", "blockchain", "data", "hackathon"}

var hackathonPlatformHints = []string{"hackathon", "devpost", "mlh", "dorahacks"}

func scoreInterests(opp models.Opportunity, profile models.UserProfile) float64 {
	if len(profile.Interests) == 0 {
		return 0.5
	}

	keywords := ExpandInterests(profile.Interests)
	searchText := strings.ToLower(strings.Join([]string{
		strings.Join(opp.Tags, " "),
		opp.Name,
		opp.Description,
		opp.Organization,
		opp.SourceURL,
	}, " "))

	hits := 0
	for kw := range keywords {
		if strings.Contains(searchText, kw) {
			hits++
		}
	}

	denom := len(keywords)
	if denom < 3 {
		denom = 3
	}
	score := clamp(float64(hits)/float64(denom)*1.5, 0.3, 1.0)

	isHackathon := containsAny(searchText, hackathonPlatformHints)
	if isHackathon {
		for _, interest := range profile.Interests {
			if containsAny(strings.ToLower(interest), techInterestHints) {
				score = math.Max(score, 0.7)
				break
			}
		}
	}

	major := strings.ToLower(profile.Major)
	if major != "" && strings.Contains(searchText, major) {
		score = math.Min(score+0.2, 1.0)
	}
	if containsAny(major, []string{"computer", "software", "engineering"}) &&
		(isHackathon || strings.Contains(searchText, "tech") || strings.Contains(searchText, "code")) {
		score = math.Min(score+0.15, 1.0)
	}
	return score
}

func scoreLocation(opp models.Opportunity, profile models.UserProfile) float64 {
	if profile.Country == "" && profile.State == "" {
		return 0.5
	}

	if profile.State != "" {
		state := strings.ToLower(profile.State)
		for _, s := range opp.Eligibility.States {
			if strings.Contains(strings.ToLower(s), state) {
				return 1.0
			}
		}
	}

	citizenship := strings.ToLower(opp.Eligibility.Citizenship)
	country := strings.ToLower(profile.Country)
	if country != "" {
		if citizenship != "" && strings.Contains(citizenship, country) {
			return 0.9
		}
		if (citizenship == "" || citizenship == "any") &&
			(country == "united states" || country == "us") {
			return 0.8
		}
	}
	if strings.Contains(citizenship, "international") {
		return 0.7
	}
	for _, tag := range opp.Tags {
		if strings.EqualFold(tag, "international") {
			return 0.7
		}
	}
	return 0.5
}

func scoreUrgency(days int, profile models.UserProfile) float64 {
	urgentFunding := false
	longTerm := false
	for _, m := range profile.Motivation {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "urgent funding":
			urgentFunding = true
		case "long-term planning":
			longTerm = true
		}
	}

	if urgentFunding {
		switch {
		case days <= 7:
			return 1.0
		case days <= 30:
			return 0.7
		default:
			return 0.3
		}
	}
	if longTerm {
		switch {
		case days > 60:
			return 1.0
		case days > 30:
			return 0.7
		default:
			return 0.4
		}
	}
	if days >= 7 && days <= 60 {
		return 0.8
	}
	return 0.5
}

func scoreValue(opp models.Opportunity, profile models.UserProfile) float64 {
	if profile.FinancialNeed <= 0 {
		return 0.5
	}
	ratio := math.Min(opp.Amount/profile.FinancialNeed, 1.0)
	switch {
	case ratio >= 0.8:
		return 1.0
	case ratio >= 0.5:
		return 0.8
	case ratio >= 0.2:
		return 0.6
	default:
		return 0.4
	}
}

// Time-commitment buckets match case-insensitively so "weekends" and
// "Weekends" behave the same.
func scoreEffort(opp models.Opportunity, profile models.UserProfile) float64 {
	hours := estimatedHours(opp.Tags)
	commitment := strings.ToLower(profile.TimeCommitment)
	switch {
	case strings.Contains(commitment, "few hours"):
		switch {
		case hours <= 5:
			return 1.0
		case hours <= 10:
			return 0.6
		default:
			return 0.3
		}
	case strings.Contains(commitment, "weekend"):
		if hours >= 10 && hours <= 48 {
			return 1.0
		}
		return 0.5
	default:
		return 0.8
	}
}

// estimatedHours guesses the application workload from the listing tags.
// Each complexity indicator counts once no matter how many tags carry it.
func estimatedHours(tags []string) float64 {
	hours := 2.0
	if hasTag(tags, "essay", "statement") {
		hours += 3
	}
	if hasTag(tags, "recommendation", "letter") {
		hours += 1
	}
	if hasTag(tags, "transcript", "documents") {
		hours += 0.5
	}
	return hours
}

func hasTag(tags []string, wanted ...string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}

// explain picks up to three reasons in fixed precedence, from the already
// weighted sub-scores.
func explain(b Breakdown) string {
	var reasons []string
	if b.Location > 10 {
		reasons = append(reasons, "Great location match")
	}
	if b.Interests > 12 {
		reasons = append(reasons, "Aligns with interests")
	}
	if b.Urgency > 10 {
		reasons = append(reasons, "Fits your timeline")
	}
	if b.Value > 8 {
		reasons = append(reasons, "High value")
	}
	if b.Effort > 7 {
		reasons = append(reasons, "Feasible workload")
	}
	if len(reasons) == 0 {
		return "General match based on your profile"
	}
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return strings.Join(reasons, " • ")
}

func weighted(sub float64, weight int) int {
	return int(math.Round(sub * float64(weight)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
