package repositories

import (
	"context"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// TranscriptFetcher loads transcription metadata from the backend.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, uid, audioID string) (*entities.Transcript, error)
}

// TranscriptCache is the offline-first fallback mirror of fetched
// transcripts. Not authoritative: a successful network fetch always
// supersedes and refreshes it.
type TranscriptCache interface {
	Get(ctx context.Context, audioID string) (*entities.Transcript, error)
	Put(ctx context.Context, transcript *entities.Transcript) error
	Delete(ctx context.Context, audioID string) error
}
