package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"nextcv/internal/llm"
)

func fakeClient(resp *genai.GenerateContentResponse, err error) (*Client, *string) {
	c := NewClient(Options{Temperature: 0.2})
	var seenCred string
	c.generate = func(_ context.Context, credential, _ string) (*genai.GenerateContentResponse, error) {
		seenCred = credential
		return resp, err
	}
	return c, &seenCred
}

func TestCompleteJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"summary":`), genai.Text(`"ok"}`)}},
	}}}
	c, cred := fakeClient(resp, nil)

	text, err := c.Complete(context.Background(), "p", "g-key")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, text)
	assert.Equal(t, "g-key", *cred)
}

func TestCompleteWithoutCandidatesIsMalformed(t *testing.T) {
	c, _ := fakeClient(&genai.GenerateContentResponse{}, nil)

	_, err := c.Complete(context.Background(), "p", "k")
	assert.True(t, errors.Is(err, llm.ErrMalformedResponse))
}

func TestCompleteClassifiesAPIErrors(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{err: &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}, want: llm.ErrRateLimited},
		{err: &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}, want: llm.ErrUnreachable},
		{err: errors.New("rpc error: code = ResourceExhausted desc = slow down"), want: llm.ErrRateLimited},
		{err: errors.New("rpc error: code = Unavailable desc = connection refused"), want: llm.ErrUnreachable},
		{err: &genai.BlockedError{}, want: llm.ErrMalformedResponse},
	}
	for _, tc := range cases {
		c, _ := fakeClient(nil, tc.err)
		_, err := c.Complete(context.Background(), "p", "k")
		assert.True(t, errors.Is(err, tc.want), "%v -> %v", tc.err, err)
	}
}
