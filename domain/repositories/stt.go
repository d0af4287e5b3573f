package repositories

import (
	"context"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// AudioConfig represents audio configuration for speech recognition.
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}

// SpeechToText abstracts speech recognition services that produce
// word-level timings.
type SpeechToText interface {
	// TranscribeAudio converts audio data to a time-ordered word list.
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) ([]entities.WordRecord, error)
}
