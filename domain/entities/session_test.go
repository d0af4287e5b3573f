package entities

import (
	"testing"
)

func newTestSession() *StreamingSession {
	return NewStreamingSession("sess-1", "show me a parabola", []ImageRequirement{
		{ID: "img-a", Description: "first", Position: 80, CoinCost: 50},
		{ID: "img-b", Description: "second", Position: 200, CoinCost: 50},
	})
}

func TestStreamingSession_StatusDefaultsToPending(t *testing.T) {
	s := newTestSession()
	for _, req := range s.Requirements() {
		if req.Status != RequirementStatusPending {
			t.Errorf("requirement %s status = %s, want pending", req.ID, req.Status)
		}
	}
}

func TestStreamingSession_AdvanceTextIsMonotonic(t *testing.T) {
	s := newTestSession()
	if got := s.AdvanceText(5); got != 5 {
		t.Errorf("AdvanceText(5) = %d, want 5", got)
	}
	if got := s.AdvanceText(-3); got != 5 {
		t.Errorf("AdvanceText(-3) = %d, want position unchanged at 5", got)
	}
	if got := s.AdvanceText(7); got != 12 {
		t.Errorf("AdvanceText(7) = %d, want 12", got)
	}
}

func TestStreamingSession_OneWayTransitions(t *testing.T) {
	s := newTestSession()

	if err := s.MarkGenerating("img-a"); err != nil {
		t.Fatalf("MarkGenerating: %v", err)
	}
	if err := s.MarkCompleted("img-a", "https://cdn/img-a.png", "id-a"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	// Completed is terminal: further transitions are rejected.
	if err := s.MarkError("img-a", "late failure"); err == nil {
		t.Error("expected error when transitioning completed requirement")
	}
	if err := s.MarkGenerating("img-a"); err == nil {
		t.Error("expected error when reverting completed requirement")
	}

	reqs := s.Requirements()
	if reqs[0].Status != RequirementStatusCompleted {
		t.Errorf("status = %s, want completed", reqs[0].Status)
	}
	if reqs[0].ImageURL != "https://cdn/img-a.png" {
		t.Errorf("image url = %q", reqs[0].ImageURL)
	}
}

func TestStreamingSession_ErrorIsIsolatedAndTerminal(t *testing.T) {
	s := newTestSession()

	if err := s.MarkError("img-a", "insufficient balance"); err != nil {
		t.Fatalf("MarkError: %v", err)
	}
	if err := s.MarkCompleted("img-a", "url", "id"); err == nil {
		t.Error("expected error when completing failed requirement")
	}

	// Sibling is untouched.
	reqs := s.Requirements()
	if reqs[1].Status != RequirementStatusPending {
		t.Errorf("sibling status = %s, want pending", reqs[1].Status)
	}
}

func TestStreamingSession_TakeReadyRespectsPosition(t *testing.T) {
	s := newTestSession()
	if err := s.MarkCompleted("img-b", "https://cdn/b.png", "id-b"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	// Text has not reached position 200 yet.
	s.AdvanceText(150)
	if ready := s.TakeReady(false); len(ready) != 0 {
		t.Fatalf("TakeReady before position reached = %d requirements, want 0", len(ready))
	}

	s.AdvanceText(60)
	ready := s.TakeReady(false)
	if len(ready) != 1 || ready[0].ID != "img-b" {
		t.Fatalf("TakeReady = %+v, want [img-b]", ready)
	}

	// Never emitted twice.
	if again := s.TakeReady(false); len(again) != 0 {
		t.Errorf("TakeReady emitted requirement twice: %+v", again)
	}
}

func TestStreamingSession_TakeReadySortsByPosition(t *testing.T) {
	s := NewStreamingSession("sess-2", "charts", []ImageRequirement{
		{ID: "late", Position: 300},
		{ID: "early", Position: 100},
	})
	s.MarkCompleted("late", "https://cdn/late.png", "")
	s.MarkCompleted("early", "https://cdn/early.png", "")
	s.AdvanceText(400)

	ready := s.TakeReady(false)
	if len(ready) != 2 {
		t.Fatalf("TakeReady = %d requirements, want 2", len(ready))
	}
	if ready[0].ID != "early" || ready[1].ID != "late" {
		t.Errorf("TakeReady order = [%s, %s], want [early, late]", ready[0].ID, ready[1].ID)
	}
}

func TestStreamingSession_FinalFlushIgnoresPosition(t *testing.T) {
	s := newTestSession()
	s.MarkCompleted("img-b", "https://cdn/b.png", "id-b")

	// Position 200 never reached, but the stream is done.
	ready := s.TakeReady(true)
	if len(ready) != 1 || ready[0].ID != "img-b" {
		t.Fatalf("final TakeReady = %+v, want [img-b]", ready)
	}
}

func TestStreamingSession_ExpireUnsettled(t *testing.T) {
	s := newTestSession()
	s.MarkGenerating("img-a")
	s.MarkCompleted("img-b", "url", "")

	s.ExpireUnsettled("generation timeout")

	reqs := s.Requirements()
	if reqs[0].Status != RequirementStatusError || reqs[0].Error != "generation timeout" {
		t.Errorf("img-a after expiry = %+v, want error status", reqs[0])
	}
	if reqs[1].Status != RequirementStatusCompleted {
		t.Errorf("completed requirement must not be expired, got %s", reqs[1].Status)
	}
	if s.Unsettled() {
		t.Error("Unsettled() = true after expiry")
	}
}
