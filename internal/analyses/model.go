package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// maxPercentMagnitude bounds the values a Percent can carry.
const maxPercentMagnitude = math.MaxInt32

// Percent is a 0-100 score. Whole-valued floats such as 85.0 are accepted.
// Values outside the range are kept and reported as RangeFlags.
type Percent int

// UnmarshalJSON accepts any JSON number with no fractional part.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("percent is null")
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("percent: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("percent %v is not a whole number", f)
	}
	if f < -maxPercentMagnitude || f > maxPercentMagnitude {
		return fmt.Errorf("percent %v is out of bounds", f)
	}
	*p = Percent(f)
	return nil
}

// InRange reports whether p lies within 0-100.
func (p Percent) InRange() bool {
	return p >= 0 && p <= 100
}

// RecommendedSkill is a skill the candidate should add, with a learning plan.
type RecommendedSkill struct {
	Skill         string   `json:"skill"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	Prerequisites []string `json:"prerequisites"`
	EstimatedTime string   `json:"estimated_time"`
	Resources     []string `json:"resources"`
}

type SkillMatch struct {
	MatchedSkills     []string           `json:"matched_skills"`
	MissingSkills     []string           `json:"missing_skills"`
	RecommendedSkills []RecommendedSkill `json:"recommended_skills"`
}

type ContentImprovements struct {
	SectionsToImprove  []string `json:"sections_to_improve"`
	WordingSuggestions []string `json:"wording_suggestions"`
	FormatSuggestions  []string `json:"format_suggestions"`
}

// CompanyInsights is only requested and kept when a company was named.
type CompanyInsights struct {
	CompanySpecificSkills   []string `json:"company_specific_skills"`
	CompanyProjects         []string `json:"company_projects"`
	NetworkingOpportunities []string `json:"networking_opportunities"`
	CompanyResources        []string `json:"company_resources"`
}

type ATSCompatibility struct {
	Score           Percent  `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// ResumeAnalysis is the parsed resume-match payload.
type ResumeAnalysis struct {
	MatchPercentage     Percent             `json:"match_percentage"`
	SkillMatch          SkillMatch          `json:"skill_match"`
	ContentImprovements ContentImprovements `json:"content_improvements"`
	CompanyInsights     *CompanyInsights    `json:"company_specific_insights,omitempty"`
	ATSCompatibility    *ATSCompatibility   `json:"ats_compatibility,omitempty"`
	Summary             string              `json:"summary"`
}

type CareerAlignment struct {
	AlignmentScore Percent  `json:"alignment_score"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
}

type DevelopmentPlan struct {
	ShortTermActions   []string `json:"short_term_actions"`
	MediumTermGoals    []string `json:"medium_term_goals"`
	LongTermMilestones []string `json:"long_term_milestones"`
}

type NetworkingStrategy struct {
	KeyConnections    []string `json:"key_connections"`
	Communities       []string `json:"communities"`
	EngagementTactics []string `json:"engagement_tactics"`
}

// SkillPlan is one technical or soft skill to develop. CurrentLevel and
// GapAnalysis are only requested when resume text was supplied.
type SkillPlan struct {
	Skill                 string   `json:"skill"`
	Priority              string   `json:"priority"`
	Resources             []string `json:"resources"`
	CurrentLevel          string   `json:"current_level,omitempty"`
	GapAnalysis           string   `json:"gap_analysis,omitempty"`
	DevelopmentApproaches []string `json:"development_approaches,omitempty"`
}

type SkillDevelopment struct {
	TechnicalSkills []SkillPlan `json:"technical_skills"`
	SoftSkills      []SkillPlan `json:"soft_skills"`
}

type ProfileOptimization struct {
	HeadlineSuggestions    []string `json:"headline_suggestions"`
	AboutSectionTips       []string `json:"about_section_tips"`
	ExperienceHighlighting []string `json:"experience_highlighting"`
	SkillEndorsements      []string `json:"skill_endorsements,omitempty"`
}

type IndustryInsights struct {
	Trends         []string `json:"trends"`
	Certifications []string `json:"certifications"`
	ThoughtLeaders []string `json:"thought_leaders"`
}

// CareerAnalysis is the parsed career-path payload.
type CareerAnalysis struct {
	CareerAlignment     CareerAlignment     `json:"career_alignment"`
	DevelopmentPlan     *DevelopmentPlan    `json:"development_plan,omitempty"`
	NetworkingStrategy  NetworkingStrategy  `json:"networking_strategy"`
	SkillDevelopment    SkillDevelopment    `json:"skill_development"`
	ProfileOptimization ProfileOptimization `json:"profile_optimization"`
	IndustryInsights    IndustryInsights    `json:"industry_insights"`
	Summary             string              `json:"summary"`
}

// RangeFlag reports a percentage outside 0-100. The value is kept as returned.
type RangeFlag struct {
	Field string `json:"field"`
	Value int    `json:"value"`
}

// Result is the outcome of one analysis. Exactly one of Resume or Career is
// set, matching Kind.
type Result struct {
	Kind   Kind            `json:"kind"`
	Resume *ResumeAnalysis `json:"resume,omitempty"`
	Career *CareerAnalysis `json:"career,omitempty"`
	Flags  []RangeFlag     `json:"flags,omitempty"`
}
