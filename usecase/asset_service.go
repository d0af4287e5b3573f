package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
	"github.com/Aadiprofessional/matrixai-stream/internal/visual"
)

const (
	// perImageTimeout bounds one generation call.
	perImageTimeout = 30 * time.Second
	// batchTimeout bounds the whole session's generation work.
	batchTimeout = 60 * time.Second
)

// AssetService runs background image generation for streaming sessions. One
// goroutine per requirement, failures isolated, no retries. Completions are
// announced on a per-session signal channel so the stream coordinator can
// insert images between text chunks without polling.
type AssetService struct {
	store     *SessionStore
	analyzer  *visual.Analyzer
	generator repositories.ImageGenerator
	logger    *zap.Logger

	mu     sync.Mutex
	notify map[string]chan struct{}
}

// NewAssetService wires the analyzer, generator backend, and session store.
func NewAssetService(store *SessionStore, analyzer *visual.Analyzer, generator repositories.ImageGenerator, logger *zap.Logger) *AssetService {
	return &AssetService{
		store:     store,
		analyzer:  analyzer,
		generator: generator,
		logger:    logger,
		notify:    make(map[string]chan struct{}),
	}
}

// InitializeSession analyzes the user query, registers a session seeded with
// one pending requirement per detected image need, and returns it along with
// the analyzer's decision. The requirement set is fixed from here on.
func (s *AssetService) InitializeSession(sessionID, userQuery string) (*entities.StreamingSession, visual.Decision) {
	decision := s.analyzer.Analyze(userQuery, "")
	session := entities.NewStreamingSession(sessionID, userQuery, decision.Requirements)
	s.store.Put(session)

	s.mu.Lock()
	s.notify[sessionID] = make(chan struct{}, 1)
	s.mu.Unlock()

	s.logger.Info("streaming session initialized",
		zap.String("session_id", sessionID),
		zap.Bool("should_generate", decision.ShouldGenerate),
		zap.String("content_type", decision.ContentType),
		zap.Int("requirements", len(decision.Requirements)),
		zap.Int("total_coin_cost", decision.TotalCoinCost),
	)
	return session, decision
}

// StartGeneration launches one generation goroutine per pending requirement
// and blocks until all settle or the batch window expires. Each goroutine
// re-resolves the session through the store before touching it, so results
// arriving after CleanupSession are dropped silently.
func (s *AssetService) StartGeneration(ctx context.Context, sessionID, userID string) error {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	batchCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(batchCtx)
	for _, req := range session.Requirements() {
		if req.Status != entities.RequirementStatusPending {
			continue
		}
		req := req
		g.Go(func() error {
			s.generateOne(gctx, sessionID, userID, req)
			return nil
		})
	}
	// Every worker returns nil; failures become requirement state. Wait is
	// only the join point.
	_ = g.Wait()

	// Anything the batch window cut off is settled as an error so the
	// coordinator stops waiting on it.
	if live, err := s.store.Get(sessionID); err == nil && live.Unsettled() {
		live.ExpireUnsettled("image generation timed out")
		s.signal(sessionID)
	}
	return nil
}

// generateOne drives a single requirement through its lifecycle. Errors are
// converted to requirement state, never returned, so one failure cannot
// cancel siblings.
func (s *AssetService) generateOne(ctx context.Context, sessionID, userID string, req entities.ImageRequirement) {
	session, err := s.store.Get(sessionID)
	if err != nil {
		return
	}
	if err := session.MarkGenerating(req.ID); err != nil {
		return
	}

	imgCtx, cancel := context.WithTimeout(ctx, perImageTimeout)
	defer cancel()

	result, genErr := s.generator.Generate(imgCtx, repositories.GenerationRequest{
		UID:         userID,
		Description: req.Description,
		CoinCost:    req.CoinCost,
	})

	// The session may have been cleaned up while the call was in flight.
	session, err = s.store.Get(sessionID)
	if err != nil {
		s.logger.Debug("discarding generation result for cleaned-up session",
			zap.String("session_id", sessionID),
			zap.String("requirement_id", req.ID),
		)
		return
	}

	if genErr != nil {
		message := genErr.Error()
		if imgCtx.Err() != nil {
			message = "image generation timed out"
		}
		s.logger.Warn("image generation failed",
			zap.String("session_id", sessionID),
			zap.String("requirement_id", req.ID),
			zap.Error(genErr),
		)
		if err := session.MarkError(req.ID, message); err == nil {
			s.signal(sessionID)
		}
		return
	}

	if err := session.MarkCompleted(req.ID, sanitizeImageURL(result.ImageURL), result.ImageID); err != nil {
		return
	}
	s.logger.Info("image generation completed",
		zap.String("session_id", sessionID),
		zap.String("requirement_id", req.ID),
		zap.String("image_id", result.ImageID),
	)
	s.signal(sessionID)
}

// Notify returns the session's completion signal channel. For unknown
// sessions a closed channel is returned so waiters exit immediately.
func (s *AssetService) Notify(sessionID string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.notify[sessionID]
	if !ok {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return ch
}

// signal wakes any waiter on the session's channel. The channel is buffered
// with capacity one; a pending wakeup is as good as many.
func (s *AssetService) signal(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.notify[sessionID]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// CleanupSession removes the session and its signal channel. Generation
// calls still in flight complete in the background but their results are
// discarded when they fail to re-resolve the session.
func (s *AssetService) CleanupSession(sessionID string) {
	s.store.Delete(sessionID)

	s.mu.Lock()
	if ch, ok := s.notify[sessionID]; ok {
		delete(s.notify, sessionID)
		close(ch)
	}
	s.mu.Unlock()

	s.logger.Info("streaming session cleaned up", zap.String("session_id", sessionID))
}

// sanitizeImageURL strips trailing markdown artifacts that generation
// backends occasionally append to returned URLs.
func sanitizeImageURL(url string) string {
	for len(url) > 0 {
		switch url[len(url)-1] {
		case ')', ']', '}', '>':
			url = url[:len(url)-1]
		default:
			return url
		}
	}
	return url
}
