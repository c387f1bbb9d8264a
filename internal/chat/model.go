package chat

// Message is one role-tagged entry of the caller-supplied conversation.
// Only end-user and assistant turns are accepted; the system persona is
// prepended server-side and never caller-controllable.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=2000"`
}

// Request is the POST body: the full conversation, resent on every call.
// There is no server-side history store.
type Request struct {
	Messages []Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

const (
	// MaxMessages bounds the conversation length per request.
	MaxMessages = 50
	// MaxContentLength bounds a single message, in bytes.
	MaxContentLength = 2000
)
