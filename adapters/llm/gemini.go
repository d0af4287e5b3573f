package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig holds configuration for the GeminiStreamer adapter.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiStreamer implements ChatStreamer using Google's Gemini API as an
// alternate text-stream provider.
type GeminiStreamer struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

var _ repositories.ChatStreamer = (*GeminiStreamer)(nil)

// NewGeminiStreamer creates a Gemini streaming client.
func NewGeminiStreamer(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiStreamer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google AI API key is required")
	}
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiStreamer{
		client: client,
		logger: logger,
		model:  config.Model,
	}, nil
}

// StreamChat streams the model's response, delivering one delta per
// generated candidate part.
func (g *GeminiStreamer) StreamChat(ctx context.Context, messages []repositories.ChatMessage, onDelta func(chunk string)) (string, error) {
	contents := convertToGeminiContents(messages)

	var full strings.Builder
	for response, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, nil) {
		if err != nil {
			return full.String(), fmt.Errorf("gemini stream: %w", err)
		}
		if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
			continue
		}
		for _, part := range response.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			full.WriteString(part.Text)
			onDelta(part.Text)
		}
	}

	return full.String(), nil
}

// convertToGeminiContents maps conversation roles onto Gemini's user/model
// roles. System messages become user content, matching Gemini's lack of a
// dedicated system role in multi-turn content lists.
func convertToGeminiContents(messages []repositories.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		var role genai.Role
		switch msg.Role {
		case repositories.AssistantRole:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}
