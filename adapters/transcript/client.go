// Package transcript fetches transcription metadata from the backend.
package transcript

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

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

const (
	fetchPath          = "/api/audio/getAudioFile"
	defaultHTTPTimeout = 30 * time.Second
)

// Config holds configuration for the transcript metadata client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements TranscriptFetcher against the audio metadata endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

var _ repositories.TranscriptFetcher = (*Client)(nil)

// NewClient creates a transcript metadata client.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("transcript base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		http:    &http.Client{Timeout: config.Timeout},
		logger:  logger,
	}, nil
}

type fetchRequest struct {
	UID     string `json:"uid"`
	AudioID string `json:"audioid"`
}

type fetchResponse struct {
	Success       bool                      `json:"success"`
	Transcription string                    `json:"transcription"`
	AudioName     string                    `json:"audio_name"`
	Duration      float64                   `json:"duration"`
	AudioURL      string                    `json:"audioUrl"`
	VideoFile     string                    `json:"video_file"`
	XMLData       string                    `json:"xml_data"`
	WordsData     []entities.WordRecord     `json:"words_data"`
	Language      string                    `json:"language"`
	Translated    entities.TranslationTable `json:"translated_data"`
	Error         string                    `json:"error"`
	Message       string                    `json:"message"`
}

// Fetch loads the full transcription metadata for one audio file.
func (c *Client) Fetch(ctx context.Context, uid, audioID string) (*entities.Transcript, error) {
	body, err := json.Marshal(fetchRequest{UID: uid, AudioID: audioID})
	if err != nil {
		return nil, fmt.Errorf("encoding fetch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fetchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript %s: %w", audioID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("reading transcript response: %w", err)
	}

	var decoded fetchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding transcript response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !decoded.Success {
		message := decoded.Error
		if message == "" {
			message = decoded.Message
		}
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("transcript fetch failed for %s: %s", audioID, message)
	}

	c.logger.Debug("transcript fetched",
		zap.String("audio_id", audioID),
		zap.Int("words", len(decoded.WordsData)),
		zap.Float64("duration", decoded.Duration),
	)
	return &entities.Transcript{
		AudioID:      audioID,
		Text:         decoded.Transcription,
		Words:        decoded.WordsData,
		Language:     decoded.Language,
		Duration:     decoded.Duration,
		AudioURL:     decoded.AudioURL,
		VideoURL:     strings.TrimSpace(decoded.VideoFile),
		Translations: decoded.Translated,
		MindMapXML:   decoded.XMLData,
	}, nil
}
