// Package tts renders completed responses as speech for voice replies.
package tts

import (
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
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM" // Rachel voice
	defaultChunkSize    = 1024
	defaultOutputFormat = "mp3_44100_128"
	defaultModelID      = "eleven_multilingual_v2"
	defaultStability    = 0.5
	defaultClarity      = 0.75
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter.
// Required fields:
// - APIKey: Your Eleven Labs API key
// Optional fields fall back to the defaults above.
type ElevenLabsConfig struct {
	APIKey       string
	APIBaseURL   string
	VoiceID      string
	ModelID      string
	OutputFormat string
	ChunkSize    int
	Stability    float64
	Clarity      float64
}

// ElevenLabsTTS implements TextToSpeech using the Eleven Labs API. Audio is
// delivered as a channel of chunks so the websocket layer can forward voice
// replies while they are still downloading.
type ElevenLabsTTS struct {
	apiKey       string
	apiBaseURL   string
	voiceID      string
	modelID      string
	outputFormat string
	chunkSize    int
	stability    float64
	clarity      float64
	client       *http.Client
	logger       *zap.Logger
}

var _ repositories.TextToSpeech = (*ElevenLabsTTS)(nil)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewElevenLabsTTS creates a new Eleven Labs TTS instance.
func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("eleven labs API key is required")
	}
	if config.Stability < 0 || config.Stability > 1 {
		return nil, fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if config.Clarity < 0 || config.Clarity > 1 {
		return nil, fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}

	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultAPIBaseURL
	}
	if config.VoiceID == "" {
		config.VoiceID = defaultVoiceID
	}
	if config.ModelID == "" {
		config.ModelID = defaultModelID
	}
	if config.OutputFormat == "" {
		config.OutputFormat = defaultOutputFormat
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = defaultChunkSize
	}
	if config.Stability == 0 {
		config.Stability = defaultStability
	}
	if config.Clarity == 0 {
		config.Clarity = defaultClarity
	}

	return &ElevenLabsTTS{
		apiKey:       config.APIKey,
		apiBaseURL:   strings.TrimRight(config.APIBaseURL, "/"),
		voiceID:      config.VoiceID,
		modelID:      config.ModelID,
		outputFormat: config.OutputFormat,
		chunkSize:    config.ChunkSize,
		stability:    config.Stability,
		clarity:      config.Clarity,
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       logger,
	}, nil
}

// ConvertTextToSpeech synthesizes the text and streams audio chunks on the
// returned channel. The channel closes when the download completes or
// fails; failures after the channel is handed out are logged, not returned.
func (e *ElevenLabsTTS) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: e.modelID,
		VoiceSettings: voiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s", e.apiBaseURL, e.voiceID, e.outputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	audioChan := make(chan []byte, 10)
	go func() {
		defer close(audioChan)

		resp, err := e.client.Do(req)
		if err != nil {
			e.logger.Error("voice synthesis request failed", zap.Error(err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			e.logger.Error("voice synthesis returned error",
				zap.Int("status", resp.StatusCode),
				zap.String("response", string(snippet)))
			return
		}

		buffer := make([]byte, e.chunkSize)
		total := 0
		for {
			n, err := resp.Body.Read(buffer)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buffer[:n])
				total += n
				select {
				case audioChan <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				e.logger.Error("reading voice synthesis stream", zap.Error(err))
				return
			}
		}
		e.logger.Debug("voice synthesis complete", zap.Int("bytes", total))
	}()

	return audioChan, nil
}
