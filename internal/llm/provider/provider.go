package provider

import (
	"fmt"

	"nextcv/internal/llm"
	"nextcv/internal/llm/anthropic"
	"nextcv/internal/llm/gemini"
	"nextcv/internal/llm/openai"
	"nextcv/internal/shared/config"
)

// NewGateway builds the configured provider and wraps it in a Gateway. When a
// context model is configured, the company background hop uses it.
func NewGateway(cfg config.LLMConfig) (*llm.Gateway, error) {
	primary, err := NewClient(cfg, cfg.Model)
	if err != nil {
		return nil, err
	}
	gcfg := llm.GatewayConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Primary:  primary,
	}
	if cfg.ContextModel != "" && cfg.ContextModel != cfg.Model {
		background, err := NewClient(cfg, cfg.ContextModel)
		if err != nil {
			return nil, err
		}
		gcfg.Background = background
		gcfg.BackgroundModel = cfg.ContextModel
	}
	return llm.NewGateway(gcfg), nil
}

// NewClient returns the provider client for cfg.Provider using model.
func NewClient(cfg config.LLMConfig, model string) (llm.Client, error) {
	switch cfg.Provider {
	case "", openai.ProviderName:
		return openai.NewClient(openai.Options{
			Model:       model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			BaseURL:     cfg.BaseURL,
		}), nil
	case anthropic.ProviderName:
		return anthropic.NewClient(anthropic.Options{
			Model:       model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			BaseURL:     cfg.BaseURL,
		}), nil
	case gemini.ProviderName:
		return gemini.NewClient(gemini.Options{
			Model:       model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Endpoint:    cfg.BaseURL,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.Provider)
	}
}
