package models

// MatchTier is the coarse quality bucket derived solely from the match score.
// The display layer may alias these ("great", "fair", "poor") but the engine
// only ever produces the four canonical values.
type MatchTier string

const (
	TierExcellent MatchTier = "excellent"
	TierGood      MatchTier = "good"
	TierPotential MatchTier = "potential"
	TierLow       MatchTier = "low"
)

// PriorityLevel is the coarse urgency bucket derived from match score and
// days to deadline.
type PriorityLevel string

const (
	PriorityUrgent PriorityLevel = "urgent"
	PriorityHigh   PriorityLevel = "high"
	PriorityMedium PriorityLevel = "medium"
	PriorityLow    PriorityLevel = "low"
)

// Eligibility carries the structured eligibility restrictions a listing
// declares. All fields are optional; absence means no restriction.
type Eligibility struct {
	States         []string `json:"states,omitempty" yaml:"states,omitempty"`
	Citizenship    string   `json:"citizenship,omitempty" yaml:"citizenship,omitempty"`
	GradesEligible []string `json:"grades_eligible,omitempty" yaml:"grades_eligible,omitempty"`
}

// Opportunity is a single time-bounded listing: a scholarship, hackathon,
// bounty or competition. The id is only stable within one session; cross
// source identity is resolved by the feed's merge step, not by id.
type Opportunity struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Organization  string      `json:"organization" yaml:"organization"`
	Description   string      `json:"description" yaml:"description"`
	Amount        float64     `json:"amount" yaml:"amount"`
	AmountDisplay string      `json:"amount_display,omitempty" yaml:"amount_display,omitempty"`
	Deadline      string      `json:"deadline" yaml:"deadline"`
	Tags          []string    `json:"tags" yaml:"tags"`
	Eligibility   Eligibility `json:"eligibility" yaml:"eligibility"`
	GeoTags       []string    `json:"geo_tags,omitempty" yaml:"geo_tags,omitempty"`
	SourceURL     string      `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	SourceType    string      `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	DiscoveredAt  string      `json:"discovered_at,omitempty" yaml:"discovered_at,omitempty"`

	// Engine-assigned fields. MatchTier and PriorityLevel are pure
	// functions of the score and deadline, never set independently.
	MatchScore       int           `json:"match_score" yaml:"match_score,omitempty"`
	MatchTier        MatchTier     `json:"match_tier,omitempty" yaml:"match_tier,omitempty"`
	PriorityLevel    PriorityLevel `json:"priority_level,omitempty" yaml:"priority_level,omitempty"`
	MatchExplanation string        `json:"match_explanation,omitempty" yaml:"match_explanation,omitempty"`
}

// UserProfile is the read-only scoring input supplied by the profile
// collaborator. No field is required; every scoring sub-function defines a
// neutral default for absent data.
type UserProfile struct {
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	AcademicStatus string   `json:"academic_status,omitempty" yaml:"academic_status,omitempty"`
	School         string   `json:"school,omitempty" yaml:"school,omitempty"`
	GPA            float64  `json:"gpa,omitempty" yaml:"gpa,omitempty"`
	Major          string   `json:"major,omitempty" yaml:"major,omitempty"`
	Interests      []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	FinancialNeed  float64  `json:"financial_need,omitempty" yaml:"financial_need,omitempty"`
	Country        string   `json:"country,omitempty" yaml:"country,omitempty"`
	State          string   `json:"state,omitempty" yaml:"state,omitempty"`
	City           string   `json:"city,omitempty" yaml:"city,omitempty"`
	TimeCommitment string   `json:"time_commitment,omitempty" yaml:"time_commitment,omitempty"`
	Motivation     []string `json:"motivation,omitempty" yaml:"motivation,omitempty"`
}
