package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nextcv/internal/llm"
)

const (
	// ProviderName identifies this provider in errors, logs and metrics.
	ProviderName = "openai"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4.1-mini"
)

// Options configures a Client.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string
	HTTPClient  *http.Client
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	model       string
	temperature float64
	maxTokens   int
	endpoint    string
	httpClient  *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		endpoint:    base + "/chat/completions",
		httpClient:  httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Complete sends prompt as a single user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt, credential string) (string, error) {
	temp := c.temperature
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: &temp,
		MaxTokens:   c.maxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai request encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", llm.TransportError(ProviderName, err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", llm.TransportError(ProviderName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError(ProviderName, err)
	}

	var parsed chatResponse
	decodeErr := json.Unmarshal(body, &parsed)
	if resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(body))
		if decodeErr == nil && parsed.Error != nil {
			detail = fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", llm.StatusError(ProviderName, resp.StatusCode, detail)
	}
	if decodeErr != nil {
		return "", llm.MalformedError(ProviderName, "response envelope", decodeErr)
	}
	if parsed.Error != nil {
		return "", llm.StatusError(ProviderName, resp.StatusCode, fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return "", llm.MalformedError(ProviderName, "response missing choices", nil)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", llm.MalformedError(ProviderName, "response empty content", nil)
	}
	return content, nil
}

var _ llm.Client = (*Client)(nil)
