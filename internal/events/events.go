package events

import "time"

// Stream name.
const StreamChat = "IMMOLINK_CHAT"

// Subject constants.
const (
	SubjectChatCompleted    = "immolink.chat.completed"
	SubjectChatRateLimited  = "immolink.chat.rate_limited"
	SubjectInjectionFlagged = "immolink.chat.injection_flagged"
)

// ChatCompleted is published after a completion stream finishes.
type ChatCompleted struct {
	RequestID    string    `json:"request_id"`
	IP           string    `json:"ip"`
	MessageCount int       `json:"message_count"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// ChatRateLimited is published when the local limiter denies a request.
type ChatRateLimited struct {
	IP        string    `json:"ip"`
	Scope     string    `json:"scope"`
	Timestamp time.Time `json:"timestamp"`
}

// InjectionFlagged is published when a message matches a prompt-injection
// signature. Detection is log-only; the request still goes through.
type InjectionFlagged struct {
	RequestID string    `json:"request_id"`
	IP        string    `json:"ip"`
	Pattern   string    `json:"pattern"`
	Timestamp time.Time `json:"timestamp"`
}
