package llm

import (
	"context"
	"strings"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

// MockStreamer is a canned ChatStreamer for local development and tests.
// It splits a fixed response into word-sized chunks so downstream code sees
// a realistic multi-chunk stream.
type MockStreamer struct {
	Response string
}

var _ repositories.ChatStreamer = (*MockStreamer)(nil)

// NewMockStreamer creates a mock streamer with a default canned response.
func NewMockStreamer() *MockStreamer {
	return &MockStreamer{
		Response: "Here is a helpful explanation of your question. Each concept builds on the previous one, so take it step by step.",
	}
}

// StreamChat implements repositories.ChatStreamer.
func (m *MockStreamer) StreamChat(ctx context.Context, messages []repositories.ChatMessage, onDelta func(chunk string)) (string, error) {
	words := strings.SplitAfter(m.Response, " ")
	for _, w := range words {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		onDelta(w)
	}
	return m.Response, nil
}
