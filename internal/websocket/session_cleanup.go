package websocket

import (
	"time"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/usecase"
)

// SessionCleanupService handles background tasks for session management
type SessionCleanupService struct {
	store    *usecase.SessionStore
	assets   *usecase.AssetService
	maxAge   time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewSessionCleanupService creates a new session cleanup service
func NewSessionCleanupService(store *usecase.SessionStore, assets *usecase.AssetService, maxAge time.Duration, logger *zap.Logger) *SessionCleanupService {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &SessionCleanupService{
		store:    store,
		assets:   assets,
		maxAge:   maxAge,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *SessionCleanupService) Start() {
	go s.cleanupLoop()
	s.logger.Info("Session cleanup service started")
}

// Stop gracefully stops the cleanup service
func (s *SessionCleanupService) Stop() {
	close(s.stopChan)
	s.logger.Info("Session cleanup service stopped")
}

// cleanupLoop runs the cleanup process periodically
func (s *SessionCleanupService) cleanupLoop() {
	// Run cleanup every 30 minutes
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	// Run initial cleanup after 1 minute
	initialTimer := time.NewTimer(1 * time.Minute)
	defer initialTimer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-initialTimer.C:
			s.runCleanup()
			// Initial timer only runs once
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

// runCleanup drops streaming sessions abandoned longer than maxAge. Asset
// state for each dropped session is released so late image completions
// become no-ops.
func (s *SessionCleanupService) runCleanup() {
	cutoff := time.Now().Add(-s.maxAge)
	expired := s.store.Expire(cutoff)
	for _, sessionID := range expired {
		s.assets.CleanupSession(sessionID)
	}
	if len(expired) > 0 {
		s.logger.Info("Session cleanup completed", zap.Int("expired", len(expired)))
	}
}
