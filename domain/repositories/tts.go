package repositories

import "context"

// TextToSpeech converts a completed response into audio, delivered as a
// channel of chunks so the caller can stream them out as they arrive.
type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
}
