package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nextcv/internal/analyses"
)

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the prompt an analysis would send, without calling a provider",
	}

	var rf resumeFlags
	var withBackground bool
	resume := &cobra.Command{
		Use:   "resume",
		Short: "Print the resume-match prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if withBackground && req.CompanyName != "" {
				fmt.Fprintln(out, analyses.BuildCompanyContextPrompt(req))
				fmt.Fprintln(out, "\n-----")
			}
			_, err = fmt.Fprintln(out, analyses.BuildPrompt(req))
			return err
		},
	}
	rf.bind(resume)
	resume.Flags().BoolVar(&withBackground, "with-background", false, "Also print the company background prompt")

	var cf careerFlags
	career := &cobra.Command{
		Use:   "career",
		Short: "Print the career-path prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := cf.request(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), analyses.BuildPrompt(req))
			return err
		},
	}
	cf.bind(career)

	cmd.AddCommand(resume, career)
	return cmd
}
