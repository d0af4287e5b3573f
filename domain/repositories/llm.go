package repositories

import "context"

// ChatStreamer abstracts any streaming chat/LLM provider.
type ChatStreamer interface {
	// StreamChat sends the conversation to the model and invokes onDelta
	// once per incremental text fragment, in arrival order. It returns the
	// full concatenated response. A non-nil error means the stream failed;
	// fragments already delivered through onDelta remain valid.
	StreamChat(ctx context.Context, messages []ChatMessage, onDelta func(chunk string)) (string, error)
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role defines the type of message sender.
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
	SystemRole    Role = "system"
)
