package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/immolinksenegal/chat-gateway/internal/api"
	"github.com/immolinksenegal/chat-gateway/internal/events"
	"github.com/immolinksenegal/chat-gateway/internal/llm"
	"github.com/immolinksenegal/chat-gateway/internal/metrics"
	"github.com/immolinksenegal/chat-gateway/internal/middleware"
	"github.com/immolinksenegal/chat-gateway/internal/ratelimit"
)

// RateLimiter is the per-IP admission check.
type RateLimiter interface {
	Allow(ctx context.Context, ip string) ratelimit.Decision
}

// Completer issues streaming completion requests upstream.
type Completer interface {
	StreamCompletion(ctx context.Context, messages []llm.Message) (io.ReadCloser, error)
}

// Handler owns the chat endpoint: rate check, validation, persona
// injection, then a byte-faithful relay of the upstream SSE stream.
// Every failure is terminal for the request; nothing is retried.
type Handler struct {
	limiter   RateLimiter
	completer Completer
	publisher *events.Publisher
	validator *Validator
}

func NewHandler(limiter RateLimiter, completer Completer, publisher *events.Publisher) *Handler {
	return &Handler{
		limiter:   limiter,
		completer: completer,
		publisher: publisher,
		validator: NewValidator(),
	}
}

func (h *Handler) Completion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ip := middleware.ClientIP(r)
	requestID := middleware.GetRequestID(ctx)

	dec := h.limiter.Allow(ctx, ip)
	if !dec.Allowed {
		metrics.ChatRequestsTotal.WithLabelValues("rate_limited").Inc()
		metrics.RateLimitDenialsTotal.WithLabelValues(dec.Scope).Inc()
		h.publisher.ChatRateLimited(ctx, events.ChatRateLimited{
			IP: ip, Scope: dec.Scope, Timestamp: time.Now().UTC(),
		})
		msg := MsgRateLimitedHour
		if dec.Scope == ratelimit.ScopeBurst {
			msg = MsgRateLimitedBurst
		}
		api.HandleError(w, &api.AppError{
			Code:       http.StatusTooManyRequests,
			Message:    msg,
			RetryAfter: int(dec.RetryAfter.Seconds()),
		})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		api.HandleError(w, api.NewValidationError(MsgInvalidFormat))
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		api.HandleError(w, err)
		return
	}

	// Detection only: flagged conversations still go through.
	if hits := ScreenInjection(req.Messages); len(hits) > 0 {
		slog.Warn("prompt injection signatures matched",
			"ip", ip, "request_id", requestID, "signatures", hits)
		metrics.InjectionFlagsTotal.Add(float64(len(hits)))
		h.publisher.InjectionFlagged(ctx, events.InjectionFlagged{
			RequestID: requestID, IP: ip, Pattern: hits[0], Timestamp: time.Now().UTC(),
		})
	}

	upstream := make([]llm.Message, 0, len(req.Messages)+1)
	upstream = append(upstream, llm.Message{Role: "system", Content: systemPrompt})
	for _, m := range req.Messages {
		upstream = append(upstream, llm.Message{Role: m.Role, Content: m.Content})
	}

	stream, err := h.completer.StreamCompletion(ctx, upstream)
	if err != nil {
		h.handleUpstreamError(w, err, requestID)
		return
	}
	defer stream.Close()

	start := time.Now()
	h.relay(w, r, stream)

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	metrics.StreamDuration.Observe(time.Since(start).Seconds())
	h.publisher.ChatCompleted(ctx, events.ChatCompleted{
		RequestID:    requestID,
		IP:           ip,
		MessageCount: len(req.Messages),
		DurationMs:   time.Since(start).Milliseconds(),
		Timestamp:    time.Now().UTC(),
	})
}

// relay pipes the upstream SSE body through unmodified, flushing each read
// so data: chunks and the [DONE] sentinel reach the browser as they arrive.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, stream io.Reader) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// Caller went away; the request context cancels upstream.
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF && !errors.Is(err, context.Canceled) {
				slog.Warn("completion stream interrupted",
					"error", err, "request_id", middleware.GetRequestID(r.Context()))
			}
			return
		}
	}
}

func (h *Handler) handleUpstreamError(w http.ResponseWriter, err error, requestID string) {
	metrics.ChatRequestsTotal.WithLabelValues("upstream_error").Inc()

	var rlErr *llm.RateLimitError
	var quotaErr *llm.QuotaError
	var upErr *llm.UpstreamError

	switch {
	case errors.As(err, &rlErr):
		metrics.UpstreamErrorsTotal.WithLabelValues(strconv.Itoa(http.StatusTooManyRequests)).Inc()
		slog.Warn("gateway rate limited", "request_id", requestID)
		api.HandleError(w, api.ErrUpstreamBusy)
	case errors.As(err, &quotaErr):
		metrics.UpstreamErrorsTotal.WithLabelValues(strconv.Itoa(http.StatusPaymentRequired)).Inc()
		slog.Error("gateway quota exhausted", "request_id", requestID)
		api.HandleError(w, api.ErrUpstreamQuota)
	case errors.As(err, &upErr):
		metrics.UpstreamErrorsTotal.WithLabelValues(strconv.Itoa(upErr.StatusCode)).Inc()
		// Upstream body stays in the log, never in the response.
		slog.Error("gateway failure",
			"status", upErr.StatusCode, "body", upErr.Body, "request_id", requestID)
		api.HandleError(w, api.ErrUpstreamFailure)
	case errors.Is(err, context.Canceled):
		// Caller disconnected before the upstream answered.
	default:
		metrics.UpstreamErrorsTotal.WithLabelValues("network").Inc()
		slog.Error("calling gateway", "error", err, "request_id", requestID)
		api.HandleError(w, api.ErrUpstreamFailure)
	}
}
