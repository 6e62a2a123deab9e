package analyses

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type resumePromptData struct {
	ResumeText        string
	JobDescription    string
	CompanyName       string
	CompanyBackground string
	Schema            string
}

type careerPromptData struct {
	LinkedInURL string
	CareerPath  string
	Country     string
	Industry    string
	ResumeText  string
	Schema      string
}

// BuildPrompt renders the prompt for req. It is pure: the same request always
// yields the same prompt.
func BuildPrompt(req Request) string {
	return BuildPromptWithContext(req, "")
}

// BuildPromptWithContext is BuildPrompt with a company background section.
// The background is ignored unless req is a resume-match request naming a company.
func BuildPromptWithContext(req Request, companyBackground string) string {
	req = Normalize(req)
	v := VariantOf(req)
	schema := skeleton(schemaFor(v))

	switch r := req.(type) {
	case ResumeMatchRequest:
		data := resumePromptData{
			ResumeText:     r.ResumeText,
			JobDescription: r.JobDescription,
			CompanyName:    r.CompanyName,
			Schema:         schema,
		}
		if v.WithCompany {
			data.CompanyBackground = strings.TrimSpace(companyBackground)
		}
		return render("resume_match.tmpl", data)
	case CareerPathRequest:
		return render("career_path.tmpl", careerPromptData{
			LinkedInURL: r.LinkedInURL,
			CareerPath:  r.CareerPath,
			Country:     r.Country,
			Industry:    r.Industry,
			ResumeText:  r.ResumeText,
			Schema:      schema,
		})
	}
	return ""
}

// BuildCompanyContextPrompt renders the lightweight background prompt sent
// before a resume-match analysis that names a company.
func BuildCompanyContextPrompt(req ResumeMatchRequest) string {
	r := Normalize(req).(ResumeMatchRequest)
	if r.CompanyName == "" {
		return ""
	}
	return render("company_context.tmpl", r)
}

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are embedded and their data types fixed.
		panic(fmt.Sprintf("render %s: %v", name, err))
	}
	return strings.TrimSpace(buf.String())
}
