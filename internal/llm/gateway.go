package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nextcv/internal/shared/metrics"
	"nextcv/internal/shared/telemetry"
	"nextcv/internal/shared/util"
)

// GatewayConfig wires a Gateway. Background serves the company background hop
// and defaults to Primary.
type GatewayConfig struct {
	Provider        string
	Model           string
	Primary         Client
	Background      Client
	BackgroundModel string
}

// Gateway sends prompts through a provider Client, turning every failure into
// a *GatewayError and recording latency and outcome.
type Gateway struct {
	provider        string
	model           string
	primary         Client
	background      Client
	backgroundModel string
}

// NewGateway constructs a Gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		provider:        cfg.Provider,
		model:           cfg.Model,
		primary:         cfg.Primary,
		background:      cfg.Background,
		backgroundModel: cfg.BackgroundModel,
	}
	if g.background == nil {
		g.background = g.primary
	}
	if g.backgroundModel == "" {
		g.backgroundModel = g.model
	}
	return g
}

// Provider returns the configured provider name.
func (g *Gateway) Provider() string {
	return g.provider
}

// Complete issues exactly one request and returns the full raw text.
func (g *Gateway) Complete(ctx context.Context, prompt, credential string) (string, error) {
	return g.complete(ctx, g.primary, g.model, "primary", prompt, credential)
}

// CompleteChain runs the company background hop and then the primary call.
// A failed background hop is logged and replaced by an empty string.
func (g *Gateway) CompleteChain(ctx context.Context, chain Chain, credential string) (string, error) {
	background := ""
	if strings.TrimSpace(chain.ContextPrompt) != "" {
		text, err := g.complete(ctx, g.background, g.backgroundModel, "background", chain.ContextPrompt, credential)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			telemetry.Warn("llm.background_skipped", map[string]any{
				"provider": g.provider,
				"err":      err.Error(),
			})
		} else {
			background = strings.TrimSpace(text)
		}
	}

	prompt := ""
	if chain.Compose != nil {
		prompt = chain.Compose(background)
	}
	return g.Complete(ctx, prompt, credential)
}

func (g *Gateway) complete(ctx context.Context, client Client, model, hop, prompt, credential string) (string, error) {
	fields := map[string]any{
		"provider":   g.provider,
		"model":      model,
		"hop":        hop,
		"prompt_sha": util.Fingerprint(prompt),
		"prompt_len": len(prompt),
	}

	if strings.TrimSpace(credential) == "" {
		err := &GatewayError{
			Kind:       KindUnreachable,
			Provider:   g.provider,
			StatusCode: http.StatusUnauthorized,
			Detail:     "no credential supplied",
		}
		g.fail(fields, err)
		return "", err
	}
	if client == nil {
		err := NewError(KindUnreachable, g.provider, "no provider client configured", nil)
		g.fail(fields, err)
		return "", err
	}

	start := time.Now()
	text, err := client.Complete(ctx, prompt, credential)
	elapsed := time.Since(start)
	metrics.ObserveLLMRequest(g.provider, elapsed)
	fields["latency_ms"] = elapsed.Milliseconds()

	if err != nil {
		gerr := TransportError(g.provider, err)
		g.fail(fields, gerr)
		return "", gerr
	}
	if strings.TrimSpace(text) == "" {
		gerr := MalformedError(g.provider, "empty completion", nil)
		g.fail(fields, gerr)
		return "", gerr
	}

	fields["response_len"] = len(text)
	telemetry.Info("llm.complete", fields)
	return text, nil
}

func (g *Gateway) fail(fields map[string]any, err *GatewayError) {
	metrics.IncLLMError(g.provider, string(err.Kind))
	fields["error_kind"] = string(err.Kind)
	if err.StatusCode != 0 {
		fields["status"] = err.StatusCode
	}
	fields["err"] = err.Error()
	telemetry.Warn("llm.complete", fields)
}
