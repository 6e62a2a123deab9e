package llm

import (
	"context"
)

// Client sends one prompt to a completion provider and returns the raw text.
// Implementations issue a single user message and never retry internally.
type Client interface {
	Complete(ctx context.Context, prompt, credential string) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt, credential string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt, credential string) (string, error) {
	return f(ctx, prompt, credential)
}

// Chain describes the two-hop company background flow. ContextPrompt is sent
// first; Compose receives its output (or "" on failure) and returns the
// primary prompt.
type Chain struct {
	ContextPrompt string
	Compose       func(background string) string
}
