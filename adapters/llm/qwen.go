package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

const (
	defaultQwenBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"
	defaultQwenModel   = "qwen-vl-max"
	defaultQwenTimeout = 120 * time.Second

	ssePrefix  = "data: "
	doneMarker = "[DONE]"
)

// QwenConfig holds configuration for the QwenStreamer adapter.
// Required fields:
// - APIKey: Your DashScope API key
// Optional fields with defaults:
// - BaseURL: OpenAI-compatible endpoint base (default: DashScope international)
// - Model: The model to use (default: "qwen-vl-max")
// - Timeout: Whole-request deadline (default: 120s)
type QwenConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// QwenStreamer implements ChatStreamer against the DashScope
// OpenAI-compatible chat-completions endpoint with SSE streaming.
type QwenStreamer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

var _ repositories.ChatStreamer = (*QwenStreamer)(nil)

// NewQwenStreamer creates a streaming chat client.
func NewQwenStreamer(config QwenConfig, logger *zap.Logger) (*QwenStreamer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("dashscope API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultQwenBaseURL
	}
	if config.Model == "" {
		config.Model = defaultQwenModel
	}
	if config.Timeout == 0 {
		config.Timeout = defaultQwenTimeout
	}

	return &QwenStreamer{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		model:   config.Model,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  logger,
	}, nil
}

type qwenRequest struct {
	Model    string        `json:"model"`
	Messages []qwenMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type qwenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type qwenChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChat posts the conversation with stream=true and walks the SSE body
// line by line. Each "data: {json}" line yields one delta through onDelta;
// "data: [DONE]" ends the stream. Non-200 responses and mid-stream read
// errors are fatal for the request; there is no partial-content recovery.
func (q *QwenStreamer) StreamChat(ctx context.Context, messages []repositories.ChatMessage, onDelta func(chunk string)) (string, error) {
	payload := qwenRequest{
		Model:    q.model,
		Messages: make([]qwenMessage, len(messages)),
		Stream:   true,
	}
	for i, m := range messages {
		payload.Messages[i] = qwenMessage{Role: string(m.Role), Content: m.Content}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+q.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := q.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completions returned %d: %s", resp.StatusCode, string(snippet))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		data := strings.TrimSpace(line[len(ssePrefix):])
		if data == doneMarker {
			break
		}

		var chunk qwenChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Malformed lines are skipped, matching the tolerant
			// parsing of OpenAI-compatible SSE streams.
			q.logger.Debug("skipping malformed stream line", zap.String("line", data))
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		onDelta(delta)
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("reading chat stream: %w", err)
	}

	return full.String(), nil
}
