package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextcv/internal/analyses"
	"nextcv/internal/extract"
	"nextcv/internal/shared/telemetry"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs bytes.Buffer
	prev := telemetry.SetOutput(&logs)
	t.Cleanup(func() { telemetry.SetOutput(prev) })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractCommand(t *testing.T) {
	path := writeFile(t, "resume.txt", "Jane\nDoe\n\n\n\nEXPERIENCE\n2020\n2022 Acme")

	out, err := runCLI(t, "extract", path)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "resume.txt", got["fileName"])
	assert.Equal(t, "text", got["format"])
	assert.Equal(t, "Jane Doe\n\nEXPERIENCE\n2020 - 2022 Acme", got["text"])
}

func TestExtractCommandTextOnly(t *testing.T) {
	path := writeFile(t, "resume.txt", "hello world")

	out, err := runCLI(t, "extract", "--text", path)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestExtractCommandUnsupported(t *testing.T) {
	path := writeFile(t, "photo.png", "png")

	_, err := runCLI(t, "extract", path)
	require.True(t, errors.Is(err, extract.ErrUnsupportedFormat))

	var stderr bytes.Buffer
	reportError(&stderr, err)
	assert.Contains(t, stderr.String(), "unsupported file format")
}

func TestPromptResumeWithoutCompany(t *testing.T) {
	out, err := runCLI(t, "prompt", "resume", "--resume-text", "Jane Doe, Go engineer", "--jd-text", "Go engineer wanted")
	require.NoError(t, err)
	assert.Contains(t, out, "RESUME:\nJane Doe, Go engineer")
	assert.NotContains(t, strings.ToLower(out), "company")
}

func TestPromptResumeWithBackground(t *testing.T) {
	jd := writeFile(t, "jd.md", "Go engineer wanted")
	out, err := runCLI(t, "prompt", "resume", "--resume-text", "Jane", "--jd", jd, "--company", "Acme", "--with-background")
	require.NoError(t, err)
	assert.Contains(t, out, `company "Acme"`)
	assert.Contains(t, out, "COMPANY:\nAcme")
	assert.Contains(t, out, "-----")
}

func TestPromptCareerMissingFlags(t *testing.T) {
	_, err := runCLI(t, "prompt", "career", "--linkedin", "https://linkedin.com/in/x")

	var mi *analyses.MissingInputError
	require.True(t, errors.As(err, &mi))
	assert.ElementsMatch(t, []string{"careerPath", "country", "industry"}, mi.Fields)
}

func TestCareerCommandAgainstFakeProvider(t *testing.T) {
	reply := `{
	  "career_alignment": {"alignment_score": 55, "strengths": ["go"], "gaps": ["k8s"]},
	  "networking_strategy": {"key_connections": ["sre leads"], "communities": ["cncf"], "engagement_tactics": ["blog"]},
	  "skill_development": {"technical_skills": [], "soft_skills": []},
	  "profile_optimization": {"headline_suggestions": ["h"], "about_section_tips": ["a"], "experience_highlighting": ["e"]},
	  "industry_insights": {"trends": ["t"], "certifications": ["c"], "thought_leaders": ["l"]},
	  "summary": "keep going"
	}`
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		content, _ := json.Marshal(reply)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%s}}]}`, content)
	}))
	defer srv.Close()

	cfgPath := writeFile(t, "nextcv.yaml", fmt.Sprintf("llm:\n  provider: openai\n  model: gpt-test\n  base_url: %s\n", srv.URL))
	out, err := runCLI(t, "career", "--config", cfgPath, "--api-key", "sk-cli",
		"--linkedin", "https://linkedin.com/in/x", "--path", "SRE", "--country", "Chile", "--industry", "Mining")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-cli", gotAuth)

	var res analyses.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, analyses.KindCareerPath, res.Kind)
	assert.Equal(t, "keep going", res.Career.Summary)
}

func TestReportErrorFallsBackToRawError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errors.New(`unknown flag: --nope`))
	assert.Equal(t, "Error: unknown flag: --nope\n", buf.String())
}
