package llm

import "fmt"

// RateLimitError reports an upstream 429, independent of the local limiter.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("gateway rate limit exceeded: %s", e.Message)
}

// QuotaError reports an upstream 402: the gateway account has run out of
// credits.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("gateway quota exhausted: %s", e.Message)
}

// UpstreamError covers every other non-2xx gateway response. Body is kept
// for server-side logging only and must never reach the caller.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway returned status %d", e.StatusCode)
}
