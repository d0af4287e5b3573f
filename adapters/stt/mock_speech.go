package stt

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

// MockSpeechToText is a placeholder transcriber for local development. It
// fabricates evenly spaced word timings for a fixed sentence.
type MockSpeechToText struct {
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

// TranscribeAudio fabricates word records for any non-empty audio input.
func (m *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) ([]entities.WordRecord, error) {
	if len(audioData) == 0 {
		return nil, fmt.Errorf("no audio data received")
	}

	m.logger.Info("Mock transcription",
		zap.Int("bytes", len(audioData)),
		zap.String("language", config.Language))

	const sentence = "This is a mock transcription of the uploaded audio."
	tokens := strings.Fields(sentence)
	words := make([]entities.WordRecord, len(tokens))
	for i, tok := range tokens {
		start := float64(i) * 0.4
		words[i] = entities.WordRecord{
			Word:           strings.Trim(tok, "."),
			PunctuatedWord: tok,
			Start:          start,
			End:            start + 0.35,
			Confidence:     0.95,
		}
	}
	return words, nil
}
