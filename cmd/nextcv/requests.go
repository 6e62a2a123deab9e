package main

import (
	"github.com/spf13/cobra"

	"nextcv/internal/analyses"
)

type resumeFlags struct {
	resumeFile string
	resumeText string
	jdFile     string
	jdText     string
	company    string
}

func (f *resumeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.resumeFile, "resume", "", "Path to the resume (pdf, docx or txt)")
	cmd.Flags().StringVar(&f.resumeText, "resume-text", "", "Resume text (instead of --resume)")
	cmd.Flags().StringVar(&f.jdFile, "jd", "", "Path to the job description")
	cmd.Flags().StringVar(&f.jdText, "jd-text", "", "Job description text (instead of --jd)")
	cmd.Flags().StringVar(&f.company, "company", "", "Company name (optional)")
}

func (f *resumeFlags) request(cmd *cobra.Command) (analyses.ResumeMatchRequest, error) {
	req := analyses.ResumeMatchRequest{
		ResumeText:     f.resumeText,
		JobDescription: f.jdText,
		CompanyName:    f.company,
	}
	if f.resumeFile != "" {
		text, err := readResumeFile(cmd, f.resumeFile)
		if err != nil {
			return req, err
		}
		req.ResumeText = text
	}
	if f.jdFile != "" {
		text, err := readTextFile(cmd, f.jdFile)
		if err != nil {
			return req, err
		}
		req.JobDescription = text
	}
	return req, analyses.Validate(req)
}

type careerFlags struct {
	linkedin   string
	path       string
	country    string
	industry   string
	resumeFile string
}

func (f *careerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.linkedin, "linkedin", "", "LinkedIn profile URL")
	cmd.Flags().StringVar(&f.path, "path", "", "Desired career path or specialization")
	cmd.Flags().StringVar(&f.country, "country", "", "Target country")
	cmd.Flags().StringVar(&f.industry, "industry", "", "Target industry")
	cmd.Flags().StringVar(&f.resumeFile, "resume", "", "Path to the resume (optional)")
}

func (f *careerFlags) request(cmd *cobra.Command) (analyses.CareerPathRequest, error) {
	req := analyses.CareerPathRequest{
		LinkedInURL: f.linkedin,
		CareerPath:  f.path,
		Country:     f.country,
		Industry:    f.industry,
	}
	text, err := readResumeFile(cmd, f.resumeFile)
	if err != nil {
		return req, err
	}
	req.ResumeText = text
	return req, analyses.Validate(req)
}
