package entities

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// RequirementStatus represents the lifecycle state of an image requirement.
// Transitions are one-way: pending → generating → completed|error.
type RequirementStatus string

const (
	RequirementStatusPending    RequirementStatus = "pending"
	RequirementStatusGenerating RequirementStatus = "generating"
	RequirementStatusCompleted  RequirementStatus = "completed"
	RequirementStatusError      RequirementStatus = "error"
)

// terminal reports whether the status admits no further transitions.
func (s RequirementStatus) terminal() bool {
	return s == RequirementStatusCompleted || s == RequirementStatusError
}

// ImageRequirement is a unit of background-generated visual content tied to
// a description, cost, and target insertion offset in the streamed text.
type ImageRequirement struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Position    int               `json:"position"`
	CoinCost    int               `json:"coin_cost"`
	Status      RequirementStatus `json:"status"`
	ImageURL    string            `json:"image_url,omitempty"`
	ImageID     string            `json:"image_id,omitempty"`
	Error       string            `json:"error,omitempty"`

	emitted bool
}

// StreamingSession is the per-chat-turn bundle of text-stream state and the
// image requirements detected for it. The requirement set is fixed after
// construction; statuses and the text position are the only mutable parts.
// All mutation goes through the methods below, which serialize access so the
// generator goroutines and the stream coordinator can share one session.
type StreamingSession struct {
	ID        string    `json:"session_id"`
	UserQuery string    `json:"user_query"`
	CreatedAt time.Time `json:"created_at"`

	mu           sync.Mutex
	images       []*ImageRequirement
	textPosition int
	complete     bool
}

// NewStreamingSession creates a session seeded with the detected image
// requirements, all pending.
func NewStreamingSession(id, userQuery string, requirements []ImageRequirement) *StreamingSession {
	images := make([]*ImageRequirement, len(requirements))
	for i := range requirements {
		req := requirements[i]
		if req.Status == "" {
			req.Status = RequirementStatusPending
		}
		images[i] = &req
	}
	return &StreamingSession{
		ID:        id,
		UserQuery: userQuery,
		CreatedAt: time.Now(),
		images:    images,
	}
}

// ErrInvalidTransition is returned when a status update would move a
// requirement backwards in its lifecycle.
var ErrInvalidTransition = errors.New("invalid requirement status transition")

// AdvanceText records n more characters of streamed text and returns the
// new monotonic position.
func (s *StreamingSession) AdvanceText(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.textPosition += n
	}
	return s.textPosition
}

// TextPosition returns the number of characters emitted so far.
func (s *StreamingSession) TextPosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textPosition
}

// transition applies fn to the requirement with the given ID unless it has
// already reached a terminal state.
func (s *StreamingSession) transition(id string, status RequirementStatus, fn func(*ImageRequirement)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images {
		if img.ID != id {
			continue
		}
		if img.Status.terminal() {
			return ErrInvalidTransition
		}
		img.Status = status
		if fn != nil {
			fn(img)
		}
		return nil
	}
	return errors.New("requirement not found: " + id)
}

// MarkGenerating moves a requirement from pending to generating.
func (s *StreamingSession) MarkGenerating(id string) error {
	return s.transition(id, RequirementStatusGenerating, nil)
}

// MarkCompleted records the generated asset. The URL is set while the lock
// is held, so a requirement can never be observed completed without it.
func (s *StreamingSession) MarkCompleted(id, imageURL, imageID string) error {
	return s.transition(id, RequirementStatusCompleted, func(img *ImageRequirement) {
		img.ImageURL = imageURL
		img.ImageID = imageID
	})
}

// MarkError records a terminal failure for one requirement. Failures are
// isolated: siblings keep generating.
func (s *StreamingSession) MarkError(id, message string) error {
	return s.transition(id, RequirementStatusError, func(img *ImageRequirement) {
		img.Error = message
	})
}

// TakeReady returns completed requirements whose position has been reached
// by the text stream and which have not been emitted yet, ascending by
// position. Returned requirements are marked emitted so they are never
// delivered twice. With final set, the position check is skipped: the text
// is complete, so every remaining completed image is flushed.
func (s *StreamingSession) TakeReady(final bool) []ImageRequirement {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ready []ImageRequirement
	for _, img := range s.images {
		if img.Status != RequirementStatusCompleted || img.emitted {
			continue
		}
		if !final && img.Position > s.textPosition {
			continue
		}
		img.emitted = true
		ready = append(ready, *img)
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Position < ready[j].Position })
	return ready
}

// Requirements returns a snapshot copy of the requirement list.
func (s *StreamingSession) Requirements() []ImageRequirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ImageRequirement, len(s.images))
	for i, img := range s.images {
		out[i] = *img
	}
	return out
}

// Unsettled reports whether any requirement is still pending or generating.
func (s *StreamingSession) Unsettled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images {
		if !img.Status.terminal() {
			return true
		}
	}
	return false
}

// ExpireUnsettled marks every pending or generating requirement as a
// timeout error so the coordinator stops waiting on them.
func (s *StreamingSession) ExpireUnsettled(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images {
		if !img.Status.terminal() {
			img.Status = RequirementStatusError
			img.Error = message
		}
	}
}

// Complete marks the session's text stream as finished.
func (s *StreamingSession) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete = true
}

// IsComplete reports whether the text stream has finished.
func (s *StreamingSession) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// TotalCoinCost sums the cost of every requirement in the session.
func (s *StreamingSession) TotalCoinCost() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, img := range s.images {
		total += img.CoinCost
	}
	return total
}
