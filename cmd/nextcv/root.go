package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nextcv/internal/shared/config"
)

var verbose bool

type globalFlags struct {
	configPath string
	provider   string
	model      string
	apiKey     string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "nextcv",
		Short:         "Resume and career analysis from the command line",
		Long:          "nextcv extracts resume text, previews analysis prompts and runs resume-match or career-path analyses against the configured completion provider.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML config file (overrides NEXTCV_CONFIG)")
	pf.StringVar(&g.provider, "provider", "", "Completion provider: openai, anthropic or gemini")
	pf.StringVar(&g.model, "model", "", "Model name for the selected provider")
	pf.StringVar(&g.apiKey, "api-key", "", "Provider API key (overrides the configured key)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print error diagnostics")

	root.AddCommand(
		newExtractCmd(),
		newPromptCmd(),
		newResumeCmd(g),
		newCareerCmd(g),
	)
	return root
}

// load resolves configuration: file, then environment, then flags.
func (g *globalFlags) load() (config.Config, error) {
	var cfg config.Config
	if strings.TrimSpace(g.configPath) != "" {
		loaded, err := config.LoadFile(g.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}
	if g.provider != "" {
		cfg.LLM.Provider = config.NormalizeProvider(g.provider)
	}
	if g.model != "" {
		cfg.LLM.Model = g.model
	}
	return cfg, nil
}

func (g *globalFlags) credential(cfg config.Config) string {
	if key := strings.TrimSpace(g.apiKey); key != "" {
		return key
	}
	return cfg.LLM.APIKey()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
