package analyses

import (
	"encoding/json"
	"testing"
)

func resumePayload(withCompany bool) map[string]any {
	doc := map[string]any{
		"match_percentage": 72,
		"ats_compatibility": map[string]any{
			"score":           80,
			"issues":          []string{"tables in header"},
			"recommendations": []string{"use a single column layout"},
		},
		"skill_match": map[string]any{
			"matched_skills": []string{"Go", "PostgreSQL"},
			"missing_skills": []string{"Kubernetes"},
			"recommended_skills": []map[string]any{{
				"skill":          "Kubernetes",
				"category":       "tool",
				"priority":       "high",
				"prerequisites":  []string{"containers"},
				"estimated_time": "6 weeks",
				"resources":      []string{"CKAD course"},
			}},
		},
		"content_improvements": map[string]any{
			"sections_to_improve": []string{"Summary"},
			"wording_suggestions": []string{"lead with impact"},
			"format_suggestions":  []string{"consistent dates"},
		},
		"summary": "solid backend match",
	}
	if withCompany {
		doc["company_specific_insights"] = map[string]any{
			"company_specific_skills":  []string{"distributed systems"},
			"company_projects":         []string{"payments sandbox"},
			"networking_opportunities": []string{"engineering meetups"},
			"company_resources":        []string{"engineering blog"},
		}
	}
	return doc
}

func careerPayload(withResume bool) map[string]any {
	skill := map[string]any{
		"skill":     "System design",
		"priority":  "high",
		"resources": []string{"Designing Data-Intensive Applications"},
	}
	if withResume {
		skill["current_level"] = "intermediate"
		skill["gap_analysis"] = "no large scale ownership yet"
	}
	return map[string]any{
		"career_alignment": map[string]any{
			"alignment_score": 64,
			"strengths":       []string{"backend depth"},
			"gaps":            []string{"people leadership"},
		},
		"development_plan": map[string]any{
			"short_term_actions":   []string{"mentor a junior"},
			"medium_term_goals":    []string{"lead a project"},
			"long_term_milestones": []string{"staff engineer"},
		},
		"networking_strategy": map[string]any{
			"key_connections":    []string{"engineering managers"},
			"communities":        []string{"local Go meetup"},
			"engagement_tactics": []string{"give a talk"},
		},
		"skill_development": map[string]any{
			"technical_skills": []any{skill},
			"soft_skills":      []any{skill},
		},
		"profile_optimization": map[string]any{
			"headline_suggestions":    []string{"Backend engineer, Go"},
			"about_section_tips":      []string{"mention scale"},
			"experience_highlighting": []string{"quantify outcomes"},
		},
		"industry_insights": map[string]any{
			"trends":          []string{"platform engineering"},
			"certifications":  []string{"CKA"},
			"thought_leaders": []string{"Kelsey Hightower"},
		},
		"summary": "on track for a staff role",
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(b)
}

func sampleResumeRequest(company string) ResumeMatchRequest {
	return ResumeMatchRequest{
		ResumeText:     "Jane Doe\nBackend engineer, 6 years of Go and PostgreSQL.",
		JobDescription: "Senior backend engineer. Go, Kubernetes, PostgreSQL.",
		CompanyName:    company,
	}
}

func sampleCareerRequest(resume string) CareerPathRequest {
	return CareerPathRequest{
		LinkedInURL: "https://www.linkedin.com/in/janedoe",
		CareerPath:  "Staff Engineer",
		Country:     "Germany",
		Industry:    "Fintech",
		ResumeText:  resume,
	}
}
