package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/immolinksenegal/chat-gateway/internal/config"
)

// Message is one role-tagged entry of the conversation sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

// maxErrorBody bounds how much of an upstream error body is read for logging.
const maxErrorBody = 4 << 10

// Client issues streaming chat-completion requests to an OpenAI-compatible
// gateway. The response body is handed back as-is; the caller owns the
// SSE pass-through and must close it.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	temp       float64
}

// NewClient creates a gateway client. No timeout is set on the HTTP client:
// a completion stream stays open for as long as the model generates, and
// cancellation rides the request context instead.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		httpClient: &http.Client{},
		url:        cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		temp:       cfg.Temperature,
	}
}

// StreamCompletion sends the conversation upstream with stream enabled and
// returns the raw SSE body on success. Non-2xx responses are classified:
// 429 → RateLimitError, 402 → QuotaError, anything else → UpstreamError
// carrying a bounded copy of the body for logging.
func (c *Client) StreamCompletion(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Stream:      true,
		Temperature: c.temp,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling completion gateway: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}

	errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{Message: string(errBody)}
	case http.StatusPaymentRequired:
		return nil, &QuotaError{Message: string(errBody)}
	default:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}
}
