package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
	"github.com/Aadiprofessional/matrixai-stream/internal/visual"
)

// recordingGenerator answers per-description and remembers what it was asked.
type recordingGenerator struct {
	mu       sync.Mutex
	requests []repositories.GenerationRequest
	failFor  map[string]error
	block    chan struct{}
}

func (g *recordingGenerator) Generate(ctx context.Context, req repositories.GenerationRequest) (repositories.GenerationResult, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	block := g.block
	failFor := g.failFor
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return repositories.GenerationResult{}, ctx.Err()
		}
	}
	for substr, err := range failFor {
		if strings.Contains(req.Description, substr) {
			return repositories.GenerationResult{}, err
		}
	}
	return repositories.GenerationResult{
		ImageURL:      "https://cdn.example.com/generated.png",
		ImageID:       "img-123",
		CoinsDeducted: req.CoinCost,
	}, nil
}

func (g *recordingGenerator) requestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func newAssetFixture(gen repositories.ImageGenerator) (*AssetService, *SessionStore) {
	store := NewSessionStore()
	return NewAssetService(store, visual.NewAnalyzer(), gen, zap.NewNop()), store
}

func TestInitializeSession_SeedsPendingRequirements(t *testing.T) {
	assets, store := newAssetFixture(&recordingGenerator{})

	session, decision := assets.InitializeSession("s1", "show me a parabola")
	if !decision.ShouldGenerate || len(decision.Requirements) != 3 {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	for _, req := range session.Requirements() {
		if req.Status != entities.RequirementStatusPending {
			t.Errorf("requirement %s status = %v, want pending", req.ID, req.Status)
		}
	}
	if got, err := store.Get("s1"); err != nil || got != session {
		t.Errorf("session not registered in store: %v", err)
	}
	if session.TotalCoinCost() != 3*visual.UnitCoinCost {
		t.Errorf("TotalCoinCost = %d", session.TotalCoinCost())
	}
}

func TestStartGeneration_CompletesAllRequirements(t *testing.T) {
	gen := &recordingGenerator{}
	assets, _ := newAssetFixture(gen)

	session, _ := assets.InitializeSession("s1", "show me a parabola")
	if err := assets.StartGeneration(context.Background(), "s1", "user-1"); err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}

	if gen.requestCount() != 3 {
		t.Errorf("generator called %d times, want 3", gen.requestCount())
	}
	for _, req := range session.Requirements() {
		if req.Status != entities.RequirementStatusCompleted {
			t.Errorf("requirement %s = %v, want completed", req.ID, req.Status)
		}
		if req.ImageURL == "" || req.ImageID == "" {
			t.Errorf("requirement %s completed without asset: %+v", req.ID, req)
		}
	}
}

func TestStartGeneration_FailureIsolatedPerRequirement(t *testing.T) {
	gen := &recordingGenerator{
		failFor: map[string]error{"inverted": errors.New("backend rejected prompt")},
	}
	assets, _ := newAssetFixture(gen)

	session, _ := assets.InitializeSession("s1", "show me a parabola")
	if err := assets.StartGeneration(context.Background(), "s1", "user-1"); err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}

	completed, failed := 0, 0
	for _, req := range session.Requirements() {
		switch req.Status {
		case entities.RequirementStatusCompleted:
			completed++
		case entities.RequirementStatusError:
			failed++
			if req.Error == "" {
				t.Errorf("failed requirement %s has no message", req.ID)
			}
		}
	}
	if completed != 2 || failed != 1 {
		t.Errorf("completed/failed = %d/%d, want 2/1", completed, failed)
	}
}

func TestStartGeneration_InsufficientBalanceMapsToError(t *testing.T) {
	gen := &recordingGenerator{
		failFor: map[string]error{"sine": repositories.ErrInsufficientBalance},
	}
	assets, _ := newAssetFixture(gen)

	session, _ := assets.InitializeSession("s1", "draw a sine wave")
	if err := assets.StartGeneration(context.Background(), "s1", "user-1"); err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}

	reqs := session.Requirements()
	var sine *entities.ImageRequirement
	for i := range reqs {
		if reqs[i].ID == "sine-wave" {
			sine = &reqs[i]
		}
	}
	if sine == nil {
		t.Fatal("sine-wave requirement missing")
	}
	if sine.Status != entities.RequirementStatusError {
		t.Errorf("sine-wave status = %v, want error", sine.Status)
	}
	// No retry: the generator was asked exactly once per requirement.
	if gen.requestCount() != 2 {
		t.Errorf("generator called %d times, want 2", gen.requestCount())
	}
}

func TestStartGeneration_LateResultAfterCleanupIsNoOp(t *testing.T) {
	block := make(chan struct{})
	gen := &recordingGenerator{block: block}
	assets, store := newAssetFixture(gen)

	session, _ := assets.InitializeSession("s1", "draw a sine wave")

	done := make(chan error, 1)
	go func() {
		done <- assets.StartGeneration(context.Background(), "s1", "user-1")
	}()

	// Wait until both calls are in flight, then pull the session out from
	// under them.
	for gen.requestCount() < 2 {
		time.Sleep(time.Millisecond)
	}
	assets.CleanupSession("s1")
	close(block)

	if err := <-done; err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}
	if _, err := store.Get("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session should be gone, err = %v", err)
	}
	// The original session object must not have received the late results.
	for _, req := range session.Requirements() {
		if req.Status == entities.RequirementStatusCompleted {
			t.Errorf("late completion mutated cleaned-up session: %+v", req)
		}
	}
}

func TestStartGeneration_UserIDReachesBackend(t *testing.T) {
	gen := &recordingGenerator{}
	assets, _ := newAssetFixture(gen)

	assets.InitializeSession("s1", "illustrate the water cycle")
	if err := assets.StartGeneration(context.Background(), "s1", "user-42"); err != nil {
		t.Fatal(err)
	}

	gen.mu.Lock()
	defer gen.mu.Unlock()
	if len(gen.requests) != 1 || gen.requests[0].UID != "user-42" {
		t.Errorf("requests = %+v, want one for user-42", gen.requests)
	}
	if gen.requests[0].CoinCost != visual.UnitCoinCost {
		t.Errorf("CoinCost = %d, want %d", gen.requests[0].CoinCost, visual.UnitCoinCost)
	}
}

func TestStartGeneration_UnknownSession(t *testing.T) {
	assets, _ := newAssetFixture(&recordingGenerator{})
	if err := assets.StartGeneration(context.Background(), "missing", "u"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestNotify_UnknownSessionReturnsClosedChannel(t *testing.T) {
	assets, _ := newAssetFixture(&recordingGenerator{})
	select {
	case <-assets.Notify("missing"):
	default:
		t.Error("Notify for unknown session should be closed")
	}
}

func TestSanitizeImageURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://cdn/img.png", "https://cdn/img.png"},
		{"https://cdn/img.png)", "https://cdn/img.png"},
		{"https://cdn/img.png)]}", "https://cdn/img.png"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeImageURL(tt.in); got != tt.want {
			t.Errorf("sanitizeImageURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
