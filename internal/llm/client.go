package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a completion prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// Response is the provider's completion output.
type Response struct {
	Text string
}

// Client completes a conversation. Implementations may fail on network,
// auth or rate limits; callers treat any failure uniformly.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
