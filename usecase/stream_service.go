package usecase

import (
	"context"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

// EventType discriminates the frames a streaming session emits.
type EventType string

const (
	EventText       EventType = "text"
	EventImageReady EventType = "image_ready"
	EventComplete   EventType = "complete"
)

// Event is one frame of a streaming response: a text fragment, a generated
// image becoming insertable, or the terminal completion marker.
type Event struct {
	Type        EventType `json:"type"`
	Content     string    `json:"content,omitempty"`
	Position    int       `json:"position,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ImageID     string    `json:"image_id,omitempty"`
	Description string    `json:"description,omitempty"`
}

// fallbackErrorText is emitted as a synthetic text chunk when the upstream
// text stream fails. The session still completes; the user re-triggers.
const fallbackErrorText = "I'm sorry, I ran into a problem while generating this response. Please try again."

// StreamService coordinates the foreground text stream with background image
// generation. Text is never delayed for images; an image is emitted only
// after the text stream has passed its insertion position, each at most once.
type StreamService struct {
	llm    repositories.ChatStreamer
	assets *AssetService
	store  *SessionStore
	logger *zap.Logger
}

// NewStreamService wires the text streamer against the asset pipeline.
func NewStreamService(llm repositories.ChatStreamer, assets *AssetService, store *SessionStore, logger *zap.Logger) *StreamService {
	return &StreamService{llm: llm, assets: assets, store: store, logger: logger}
}

// StreamResponse runs one chat turn: it consumes the LLM stream chunk by
// chunk, advances the session's text position, and interleaves image_ready
// events for completed requirements whose position has been reached. On
// upstream failure it emits a fallback text chunk and still completes the
// session; the error is absorbed, not propagated. emit is called from at
// most one goroutine at a time. It returns the accumulated response text.
func (s *StreamService) StreamResponse(ctx context.Context, sessionID string, messages []repositories.ChatMessage, emit func(Event)) (string, error) {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	// mu serializes all emission and, in the chunk path, makes advancing the
	// text position atomic with sending the text event. The watcher below
	// flushes under the same lock, so it can never observe an advanced
	// position whose text event has not gone out yet.
	var mu sync.Mutex

	// Cleanup mid-stream must stop all emission, so every frame re-checks
	// the store. Callers hold mu.
	emitLocked := func(ev Event) {
		if _, err := s.store.Get(sessionID); err != nil {
			return
		}
		emit(ev)
	}

	send := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		emitLocked(ev)
	}

	flushReadyLocked := func(final bool) {
		for _, req := range session.TakeReady(final) {
			emitLocked(Event{
				Type:        EventImageReady,
				Position:    req.Position,
				ImageURL:    req.ImageURL,
				ImageID:     req.ImageID,
				Description: req.Description,
			})
		}
	}

	flushReady := func(final bool) {
		mu.Lock()
		defer mu.Unlock()
		flushReadyLocked(final)
	}

	// Images finishing between text chunks are delivered as soon as their
	// signal arrives rather than waiting for the next chunk.
	watcherStop := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		notify := s.assets.Notify(sessionID)
		for {
			select {
			case <-watcherStop:
				return
			case <-ctx.Done():
				return
			case _, ok := <-notify:
				if !ok {
					return
				}
				flushReady(false)
			}
		}
	}()

	fullText, streamErr := s.llm.StreamChat(ctx, messages, func(chunk string) {
		if chunk == "" {
			return
		}
		mu.Lock()
		position := session.AdvanceText(utf8.RuneCountInString(chunk))
		emitLocked(Event{Type: EventText, Content: chunk, Position: position})
		flushReadyLocked(false)
		mu.Unlock()
	})

	close(watcherStop)
	<-watcherDone

	if streamErr != nil {
		s.logger.Warn("text stream failed, emitting fallback",
			zap.String("session_id", sessionID),
			zap.Error(streamErr),
		)
		send(Event{Type: EventText, Content: fallbackErrorText})
		session.Complete()
		send(Event{Type: EventComplete})
		return fallbackErrorText, nil
	}

	// Final flush ignores positions: the text is complete, so every
	// generated image still unshown gets inserted. Requirements that never
	// settled are dropped.
	flushReady(true)
	session.Complete()
	send(Event{Type: EventComplete, Position: session.TextPosition()})

	s.logger.Info("stream completed",
		zap.String("session_id", sessionID),
		zap.Int("text_length", session.TextPosition()),
	)
	return fullText, nil
}
