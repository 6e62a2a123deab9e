package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// StatusError maps a non-2xx provider response to a GatewayError. 429 is a
// rate limit; every other failure status is treated as unreachable.
func StatusError(provider string, status int, detail string) *GatewayError {
	kind := KindUnreachable
	if status == http.StatusTooManyRequests || looksRateLimited(detail) {
		kind = KindRateLimited
	}
	return &GatewayError{
		Kind:       kind,
		Provider:   provider,
		StatusCode: status,
		Detail:     truncate(strings.TrimSpace(detail), 300),
	}
}

// TransportError maps a failure before any response was read.
func TransportError(provider string, err error) *GatewayError {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr
	}
	if looksRateLimited(err.Error()) {
		return &GatewayError{Kind: KindRateLimited, Provider: provider, Err: err}
	}
	return &GatewayError{Kind: KindUnreachable, Provider: provider, Detail: transportCause(err), Err: err}
}

// MalformedError reports a 2xx response without usable text.
func MalformedError(provider, detail string, err error) *GatewayError {
	return &GatewayError{Kind: KindMalformedResponse, Provider: provider, Detail: detail, Err: err}
}

func transportCause(err error) string {
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns lookup failed"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "client.timeout") || strings.Contains(msg, "tls handshake timeout"):
		return "request timeout"
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection closed"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "eof"):
		return "connection dropped"
	}
	return "transport failure"
}

func looksRateLimited(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "too many requests")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
