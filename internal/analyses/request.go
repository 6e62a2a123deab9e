package analyses

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind names the analysis a request asks for.
type Kind string

const (
	KindResumeMatch Kind = "resume_match"
	KindCareerPath  Kind = "career_path"
)

// Request is either a ResumeMatchRequest or a CareerPathRequest.
type Request interface {
	Kind() Kind
	isRequest()
}

// ResumeMatchRequest compares a resume with a job description.
type ResumeMatchRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
	CompanyName    string `json:"companyName,omitempty"`
}

// CareerPathRequest asks for career development advice for a profile.
type CareerPathRequest struct {
	LinkedInURL string `json:"linkedinUrl" validate:"required"`
	CareerPath  string `json:"careerPath" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Industry    string `json:"industry" validate:"required"`
	ResumeText  string `json:"resumeText,omitempty"`
}

func (ResumeMatchRequest) Kind() Kind { return KindResumeMatch }
func (ResumeMatchRequest) isRequest() {}
func (CareerPathRequest) Kind() Kind  { return KindCareerPath }
func (CareerPathRequest) isRequest()  {}

// Variant records which template and schema a request maps to.
type Variant struct {
	Kind Kind
	// WithCompany is set for resume-match requests that name a company.
	WithCompany bool
	// WithResume is set for career-path requests that carry resume text.
	WithResume bool
}

// VariantOf describes the prompt and schema variant produced for req.
func VariantOf(req Request) Variant {
	switch r := req.(type) {
	case ResumeMatchRequest:
		return Variant{Kind: KindResumeMatch, WithCompany: strings.TrimSpace(r.CompanyName) != ""}
	case *ResumeMatchRequest:
		return VariantOf(*r)
	case CareerPathRequest:
		return Variant{Kind: KindCareerPath, WithResume: strings.TrimSpace(r.ResumeText) != ""}
	case *CareerPathRequest:
		return VariantOf(*r)
	}
	return Variant{}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Normalize trims every field of req. Optional fields stay empty strings.
func Normalize(req Request) Request {
	switch r := req.(type) {
	case ResumeMatchRequest:
		r.ResumeText = strings.TrimSpace(r.ResumeText)
		r.JobDescription = strings.TrimSpace(r.JobDescription)
		r.CompanyName = strings.TrimSpace(r.CompanyName)
		return r
	case *ResumeMatchRequest:
		return Normalize(*r)
	case CareerPathRequest:
		r.LinkedInURL = strings.TrimSpace(r.LinkedInURL)
		r.CareerPath = strings.TrimSpace(r.CareerPath)
		r.Country = strings.TrimSpace(r.Country)
		r.Industry = strings.TrimSpace(r.Industry)
		r.ResumeText = strings.TrimSpace(r.ResumeText)
		return r
	case *CareerPathRequest:
		return Normalize(*r)
	}
	return req
}

// Validate checks that every required field of req is non-empty after
// trimming. Failures wrap ErrMissingInput and name the fields.
func Validate(req Request) error {
	if req == nil {
		return fmt.Errorf("%w: request", ErrMissingInput)
	}
	err := validate.Struct(Normalize(req))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &MissingInputError{Fields: fields}
}
