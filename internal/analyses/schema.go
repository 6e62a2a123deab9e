package analyses

import (
	"strings"
)

type fieldType int

const (
	tString fieldType = iota
	tPercent
	tStringList
	tObject
	tObjectList
)

// field is one node of a response schema. The same tree renders the JSON
// skeleton shown to the model and the JSON Schema the parser validates with.
type field struct {
	Name     string
	Type     fieldType
	Hint     string
	Optional bool
	Fields   []field
}

func str(name, hint string) field { return field{Name: name, Type: tString, Hint: hint} }
func pct(name string) field { return field{Name: name, Type: tPercent, Hint: "0-100"} }
func list(name, hint string) field { return field{Name: name, Type: tStringList, Hint: hint} }
func obj(name string, fs ...field) field { return field{Name: name, Type: tObject, Fields: fs} }
func objList(name string, fs ...field) field {
	return field{Name: name, Type: tObjectList, Fields: fs}
}

func (f field) optional() field {
	f.Optional = true
	return f
}

// schemaFor returns the root object requested for v.
func schemaFor(v Variant) field {
	if v.Kind == KindCareerPath {
		return careerSchema(v.WithResume)
	}
	return resumeSchema(v.WithCompany)
}

func resumeSchema(withCompany bool) field {
	fields := []field{
		pct("match_percentage"),
		obj("ats_compatibility",
			pct("score"),
			list("issues", "list of ATS issues"),
			list("recommendations", "list of recommendations to improve ATS compatibility"),
		).optional(),
		obj("skill_match",
			list("matched_skills", "list of matched skills"),
			list("missing_skills", "list of missing skills"),
			objList("recommended_skills",
				str("skill", "skill name"),
				str("category", "technical/soft/domain/tool"),
				str("priority", "high/medium/low"),
				list("prerequisites", "skills to learn first"),
				str("estimated_time", "estimated time to learn (weeks/months)"),
				list("resources", "specific courses, books, certifications or websites"),
			),
		),
		obj("content_improvements",
			list("sections_to_improve", "list of sections that need improvement"),
			list("wording_suggestions", "list of wording improvements, be specific about this and give examples"),
			list("format_suggestions", "list of formatting improvements, be specific about this and give examples"),
		),
	}
	if withCompany {
		fields = append(fields, obj("company_specific_insights",
			list("company_specific_skills", "skills this company particularly values"),
			list("company_projects", "project ideas that would resonate with this company"),
			list("networking_opportunities", "ways to connect with people at this company"),
			list("company_resources", "resources to learn about this company"),
		))
	}
	fields = append(fields, str("summary", "brief summary of the overall analysis"))
	return obj("", fields...)
}

func careerSchema(withResume bool) field {
	skill := func(extra ...field) []field {
		fs := []field{
			str("skill", "skill name"),
			str("priority", "high/medium/low"),
			list("resources", "list of specific learning resources"),
		}
		if withResume {
			fs = append(fs,
				str("current_level", "current level shown in the resume (none/beginner/intermediate/advanced)").optional(),
				str("gap_analysis", "what is missing between the current level and the desired path").optional(),
			)
		}
		return append(fs, extra...)
	}

	return obj("",
		obj("career_alignment",
			pct("alignment_score"),
			list("strengths", "list of strengths that align with the desired path"),
			list("gaps", "list of gaps or weaknesses for the desired path"),
		),
		obj("development_plan",
			list("short_term_actions", "list of immediate actions to take (0-6 months)"),
			list("medium_term_goals", "list of medium-term goals (6-18 months)"),
			list("long_term_milestones", "list of long-term career milestones (18+ months)"),
		).optional(),
		obj("networking_strategy",
			list("key_connections", "types of professionals to connect with"),
			list("communities", "relevant professional communities to join"),
			list("engagement_tactics", "strategies for meaningful networking"),
		),
		obj("skill_development",
			objList("technical_skills", skill()...),
			objList("soft_skills", skill(
				list("development_approaches", "list of ways to develop this soft skill").optional(),
			)...),
		),
		obj("profile_optimization",
			list("headline_suggestions", "suggestions for LinkedIn headline"),
			list("about_section_tips", "improvements for About section"),
			list("experience_highlighting", "tips on highlighting relevant experience"),
			list("skill_endorsements", "skills to seek endorsements for").optional(),
		),
		obj("industry_insights",
			list("trends", "relevant industry trends"),
			list("certifications", "valuable certifications"),
			list("thought_leaders", "people to follow"),
		),
		str("summary", "brief summary of the overall career development advice"),
	)
}

// skeleton renders the tree as the indented JSON outline embedded in prompts.
func skeleton(root field) string {
	var b strings.Builder
	writeValue(&b, root, 0)
	return b.String()
}

func writeValue(b *strings.Builder, f field, depth int) {
	switch f.Type {
	case tString:
		b.WriteString(`"` + f.Hint + `"`)
	case tPercent:
		b.WriteString(f.Hint)
	case tStringList:
		b.WriteString(`["` + f.Hint + `"]`)
	case tObject:
		writeObject(b, f.Fields, depth)
	case tObjectList:
		b.WriteString("[\n")
		indent(b, depth+1)
		writeObject(b, f.Fields, depth+1)
		b.WriteString("\n")
		indent(b, depth)
		b.WriteString("]")
	}
}

func writeObject(b *strings.Builder, fields []field, depth int) {
	b.WriteString("{\n")
	for i, f := range fields {
		indent(b, depth+1)
		b.WriteString(`"` + f.Name + `": `)
		writeValue(b, f, depth+1)
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	indent(b, depth)
	b.WriteString("}")
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("    ", depth))
}

// jsonSchema renders the tree as a draft-07 JSON Schema document.
func jsonSchema(root field) map[string]any {
	doc := schemaNode(root)
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	return doc
}

func schemaNode(f field) map[string]any {
	switch f.Type {
	case tPercent:
		return map[string]any{"type": "integer", "minimum": -maxPercentMagnitude, "maximum": maxPercentMagnitude}
	case tStringList:
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	case tObject:
		return objectNode(f.Fields)
	case tObjectList:
		return map[string]any{"type": "array", "items": objectNode(f.Fields)}
	default:
		return map[string]any{"type": "string"}
	}
}

func objectNode(fields []field) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]any, 0, len(fields))
	for _, f := range fields {
		props[f.Name] = schemaNode(f)
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	node := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		node["required"] = required
	}
	return node
}

// percentPaths lists the dotted paths of percentage fields outside lists.
func percentPaths(root field) []string {
	var out []string
	var walk func(prefix string, fs []field)
	walk = func(prefix string, fs []field) {
		for _, f := range fs {
			path := f.Name
			if prefix != "" {
				path = prefix + "." + f.Name
			}
			switch f.Type {
			case tPercent:
				out = append(out, path)
			case tObject:
				walk(path, f.Fields)
			}
		}
	}
	walk("", root.Fields)
	return out
}
