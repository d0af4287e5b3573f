package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
	"github.com/Aadiprofessional/matrixai-stream/internal/playback"
	"github.com/Aadiprofessional/matrixai-stream/internal/segment"
)

// TranscriptService loads transcripts offline-first: the network fetch is
// authoritative and refreshes the cache, but when it fails a cached copy is
// served instead. Derivations (paragraphs, cues, SRT) are computed on demand
// from the word timings.
type TranscriptService struct {
	fetcher repositories.TranscriptFetcher
	cache   repositories.TranscriptCache
	logger  *zap.Logger
}

// NewTranscriptService wires the backend fetcher against the cache. cache
// may be nil, which disables the offline fallback.
func NewTranscriptService(fetcher repositories.TranscriptFetcher, cache repositories.TranscriptCache, logger *zap.Logger) *TranscriptService {
	return &TranscriptService{fetcher: fetcher, cache: cache, logger: logger}
}

// Load fetches the transcript for an audio file. A successful fetch
// refreshes the cache; a failed fetch falls back to the cached copy and only
// errors when neither source can serve.
func (s *TranscriptService) Load(ctx context.Context, uid, audioID string) (*entities.Transcript, error) {
	transcript, fetchErr := s.fetcher.Fetch(ctx, uid, audioID)
	if fetchErr == nil {
		if err := transcript.Validate(); err != nil {
			return nil, fmt.Errorf("invalid transcript %s: %w", audioID, err)
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, transcript); err != nil {
				s.logger.Warn("transcript cache refresh failed",
					zap.String("audio_id", audioID),
					zap.Error(err),
				)
			}
		}
		return transcript, nil
	}

	if s.cache != nil {
		cached, cacheErr := s.cache.Get(ctx, audioID)
		if cacheErr == nil {
			s.logger.Info("serving transcript from cache after fetch failure",
				zap.String("audio_id", audioID),
				zap.Error(fetchErr),
			)
			return cached, nil
		}
	}
	return nil, fmt.Errorf("fetching transcript %s: %w", audioID, fetchErr)
}

// Paragraphs derives reading-view paragraphs from the transcript's words.
func (s *TranscriptService) Paragraphs(t *entities.Transcript) []entities.Paragraph {
	return segment.BuildParagraphs(t.WordTimings())
}

// Segments derives subtitle cues from the transcript's words.
func (s *TranscriptService) Segments(t *entities.Transcript, opts segment.Options) []entities.SubtitleSegment {
	return segment.BuildSubtitleSegments(t.WordTimings(), opts)
}

// ExportSRT renders the transcript as an SRT document.
func (s *TranscriptService) ExportSRT(t *entities.Transcript) string {
	return segment.ToSRT(t.Words)
}

// TranslatedParagraph returns the pre-computed translation aligned to one
// paragraph, or the empty string when no translation covers it.
func (s *TranscriptService) TranslatedParagraph(t *entities.Transcript, language string, p entities.Paragraph) string {
	return playback.TranslateParagraph(t.Translations, language, p)
}

// TranslatedSegment returns the pre-computed translation aligned to one
// subtitle cue.
func (s *TranscriptService) TranslatedSegment(t *entities.Transcript, language string, seg entities.SubtitleSegment) string {
	return playback.TranslateSegment(t.Translations, language, seg)
}

// EditWord replaces a single word in place and writes the updated transcript
// back to the cache. Timings are untouched, so derived paragraphs and cues
// keep their bounds.
func (s *TranscriptService) EditWord(ctx context.Context, t *entities.Transcript, index int, replacement string) error {
	if err := t.EditWord(index, replacement); err != nil {
		return err
	}
	return s.refreshCache(ctx, t)
}

// EditRange replaces a span of words, enforcing token-count parity, and
// writes the updated transcript back to the cache.
func (s *TranscriptService) EditRange(ctx context.Context, t *entities.Transcript, from, to int, text string) error {
	if err := t.EditRange(from, to, text); err != nil {
		return err
	}
	return s.refreshCache(ctx, t)
}

// Forget drops the cached copy of an audio file's transcript.
func (s *TranscriptService) Forget(ctx context.Context, audioID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, audioID)
}

func (s *TranscriptService) refreshCache(ctx context.Context, t *entities.Transcript) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Put(ctx, t); err != nil {
		return fmt.Errorf("persisting edited transcript %s: %w", t.AudioID, err)
	}
	return nil
}
