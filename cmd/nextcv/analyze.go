package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"nextcv/internal/analyses"
	"nextcv/internal/llm/provider"
)

func newResumeCmd(g *globalFlags) *cobra.Command {
	var rf resumeFlags
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Analyze a resume against a job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request(cmd)
			if err != nil {
				return err
			}
			return runAnalysis(cmd, g, req)
		},
	}
	rf.bind(cmd)
	return cmd
}

func newCareerCmd(g *globalFlags) *cobra.Command {
	var cf careerFlags
	cmd := &cobra.Command{
		Use:   "career",
		Short: "Get career development advice for a profile and desired path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := cf.request(cmd)
			if err != nil {
				return err
			}
			return runAnalysis(cmd, g, req)
		},
	}
	cf.bind(cmd)
	return cmd
}

func runAnalysis(cmd *cobra.Command, g *globalFlags, req analyses.Request) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	gateway, err := provider.NewGateway(cfg.LLM)
	if err != nil {
		return err
	}
	svc := analyses.NewService(gateway, gateway.Provider(), cfg.AnalysisMaxAttempts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if timeout := cfg.LLM.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := svc.Analyze(ctx, req, g.credential(cfg))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
