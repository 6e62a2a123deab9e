package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"nextcv/internal/extract"
	"nextcv/internal/llm"
	"nextcv/internal/shared/metrics"
	"nextcv/internal/shared/telemetry"
)

// Completer is the part of llm.Gateway the service uses.
type Completer interface {
	Complete(ctx context.Context, prompt, credential string) (string, error)
	CompleteChain(ctx context.Context, chain llm.Chain, credential string) (string, error)
}

// Service runs the Build, Complete and Parse pipeline for one request.
type Service struct {
	LLM      Completer
	Provider string
	Parser   Parser
	// MaxAttempts bounds re-requests on retryable gateway errors. Zero means one.
	MaxAttempts int
	RetryDelay  time.Duration
	// CompanyContext enables the background hop for requests naming a company.
	CompanyContext bool
}

// NewService constructs a Service with the company background hop enabled.
func NewService(completer Completer, provider string, maxAttempts int) *Service {
	return &Service{
		LLM:            completer,
		Provider:       provider,
		Parser:         Parser{Provider: provider},
		MaxAttempts:    maxAttempts,
		RetryDelay:     retryBaseDelay,
		CompanyContext: true,
	}
}

// Analyze validates req, sends its prompt and parses the answer.
func (s *Service) Analyze(ctx context.Context, req Request, credential string) (*Result, error) {
	if req == nil {
		return nil, missing("request")
	}
	req = Normalize(req)
	if err := Validate(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(credential) == "" {
		return nil, missing("credential")
	}
	if s.LLM == nil {
		return nil, errors.New("analysis service has no completion client")
	}

	v := VariantOf(req)
	fields := map[string]any{
		"kind":         string(v.Kind),
		"with_company": v.WithCompany,
		"with_resume":  v.WithResume,
		"provider":     s.Provider,
		"request_id":   requestIDFromContext(ctx),
	}
	metrics.IncAnalysisStarted(string(v.Kind))
	start := time.Now()

	res, err := withRetry(ctx, s.MaxAttempts, s.RetryDelay, func(ctx context.Context) (*Result, error) {
		raw, err := s.complete(ctx, req, v, credential)
		if err != nil {
			return nil, err
		}
		return s.Parser.Parse(raw, v)
	})

	elapsed := time.Since(start)
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))
	fields["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		metrics.IncAnalysisFailed()
		fields["category"] = Describe(err).Category
		fields["err"] = err.Error()
		telemetry.Error("analysis.failed", fields)
		return nil, err
	}

	metrics.IncAnalysisCompleted()
	fields["flags"] = len(res.Flags)
	telemetry.Info("analysis.complete", fields)
	return res, nil
}

func (s *Service) complete(ctx context.Context, req Request, v Variant, credential string) (string, error) {
	if r, ok := req.(ResumeMatchRequest); ok && v.WithCompany && s.CompanyContext {
		return s.LLM.CompleteChain(ctx, llm.Chain{
			ContextPrompt: BuildCompanyContextPrompt(r),
			Compose: func(background string) string {
				return BuildPromptWithContext(r, background)
			},
		}, credential)
	}
	return s.LLM.Complete(ctx, BuildPrompt(req), credential)
}

// Extract extracts an uploaded document and counts the outcome.
func (s *Service) Extract(ctx context.Context, fileName string, data []byte) (extract.Document, error) {
	doc, err := extract.ExtractDocument(ctx, fileName, data)
	format := string(doc.Format)
	if format == "" {
		if f, ferr := extract.FormatFromName(fileName); ferr == nil {
			format = string(f)
		} else {
			format = "unknown"
		}
	}
	if err != nil {
		metrics.IncExtraction(format, "error")
		telemetry.Warn("extract.failed", map[string]any{
			"format":     format,
			"bytes":      len(data),
			"err":        err.Error(),
			"request_id": requestIDFromContext(ctx),
		})
		return extract.Document{}, err
	}
	outcome := "ok"
	if doc.Text == "" {
		outcome = "empty"
	}
	metrics.IncExtraction(format, outcome)
	return doc, nil
}

// AnalyzeResumeUpload extracts the resume file and runs a resume-match analysis.
func (s *Service) AnalyzeResumeUpload(ctx context.Context, fileName string, data []byte, jobDescription, companyName, credential string) (*Result, error) {
	doc, err := s.Extract(ctx, fileName, data)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, ResumeMatchRequest{
		ResumeText:     doc.Text,
		JobDescription: jobDescription,
		CompanyName:    companyName,
	}, credential)
}
