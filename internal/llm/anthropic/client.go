package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"nextcv/internal/llm"
)

const (
	// ProviderName identifies this provider in errors, logs and metrics.
	ProviderName = "anthropic"

	defaultMaxTokens = 4096
)

// Options configures a Client.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string
}

// Client implements llm.Client using the Anthropic Messages API.
type Client struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int64
}

// NewClient constructs a Messages API client. SDK retries are disabled; the
// credential is supplied per call.
func NewClient(opts Options) *Client {
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}

	model := anthropic.Model(strings.TrimSpace(opts.Model))
	if model == "" {
		model = anthropic.ModelClaude3_7SonnetLatest
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		client:      anthropic.NewClient(reqOpts...),
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   maxTokens,
	}
}

// Complete sends prompt as a single user message and joins the text blocks of the reply.
func (c *Client) Complete(ctx context.Context, prompt, credential string) (string, error) {
	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}, option.WithAPIKey(credential))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", llm.StatusError(ProviderName, apiErr.StatusCode, apiErr.Error())
		}
		return "", llm.TransportError(ProviderName, err)
	}

	var b strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", llm.MalformedError(ProviderName, "no text content in response", nil)
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
