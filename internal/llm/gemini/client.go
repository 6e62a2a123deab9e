package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"nextcv/internal/llm"
)

const (
	// ProviderName identifies this provider in errors, logs and metrics.
	ProviderName = "gemini"

	defaultModel = "gemini-1.5-flash"
)

// Options configures a Client.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// Endpoint overrides the API endpoint.
	Endpoint string
}

type generateFunc func(ctx context.Context, credential, prompt string) (*genai.GenerateContentResponse, error)

// Client implements llm.Client using Google Gemini. A genai client is opened
// per call because the credential belongs to the caller.
type Client struct {
	model       string
	temperature float32
	maxTokens   int32
	endpoint    string
	generate    generateFunc
}

// NewClient constructs a Gemini client.
func NewClient(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	c := &Client{
		model:       model,
		temperature: float32(opts.Temperature),
		maxTokens:   int32(opts.MaxTokens),
		endpoint:    strings.TrimSpace(opts.Endpoint),
	}
	c.generate = c.generateContent
	return c
}

// Complete sends prompt as a single user turn and joins the text parts of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt, credential string) (string, error) {
	resp, err := c.generate(ctx, credential, prompt)
	if err != nil {
		return "", classify(err)
	}
	text, err := extractText(resp)
	if err != nil {
		return "", llm.MalformedError(ProviderName, err.Error(), nil)
	}
	return text, nil
}

func (c *Client) generateContent(ctx context.Context, credential, prompt string) (*genai.GenerateContentResponse, error) {
	opts := []option.ClientOption{option.WithAPIKey(credential)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if c.maxTokens > 0 {
		model.SetMaxOutputTokens(c.maxTokens)
	}
	return model.GenerateContent(ctx, genai.Text(prompt))
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("no text parts in response")
	}
	return out, nil
}

func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return llm.MalformedError(ProviderName, "response blocked", err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		gerr := llm.StatusError(ProviderName, apiErr.Code, apiErr.Message)
		gerr.Err = err
		return gerr
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "resourceexhausted") {
		gerr := llm.StatusError(ProviderName, http.StatusTooManyRequests, "resource exhausted")
		gerr.Err = err
		return gerr
	}
	return llm.TransportError(ProviderName, err)
}

var _ llm.Client = (*Client)(nil)
