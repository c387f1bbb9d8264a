package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher emits chat analytics events to NATS JetStream. A nil Publisher
// is valid and publishes nothing, so the gateway runs fine without NATS.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// ChatCompleted publishes a completed-stream event. Fire and forget:
// publish failures are logged, never surfaced to the request path.
func (p *Publisher) ChatCompleted(ctx context.Context, ev ChatCompleted) {
	p.publish(ctx, SubjectChatCompleted, ev)
}

// ChatRateLimited publishes a local rate-limit denial.
func (p *Publisher) ChatRateLimited(ctx context.Context, ev ChatRateLimited) {
	p.publish(ctx, SubjectChatRateLimited, ev)
}

// InjectionFlagged publishes a prompt-injection signature hit.
func (p *Publisher) InjectionFlagged(ctx context.Context, ev InjectionFlagged) {
	p.publish(ctx, SubjectInjectionFlagged, ev)
}

func (p *Publisher) publish(ctx context.Context, subject string, payload any) {
	if p == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshaling event", "subject", subject, "error", err)
		return
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		slog.Warn("publishing event", "subject", subject, "error", err)
	}
}
