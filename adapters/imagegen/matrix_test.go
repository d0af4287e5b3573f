package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, RequestsPerSecond: 1000, Burst: 1000}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}

func TestGenerate_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generatePath {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req repositories.GenerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.UID != "user-1" || req.CoinCost != 50 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"imageUrl":      "https://cdn.example.com/out.png",
			"imageId":       "img-9",
			"coinsDeducted": 50,
		})
	})

	result, err := client.Generate(context.Background(), repositories.GenerationRequest{
		UID:         "user-1",
		Description: "a bar chart",
		CoinCost:    50,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ImageURL != "https://cdn.example.com/out.png" || result.ImageID != "img-9" {
		t.Errorf("result = %+v", result)
	}
	if result.CoinsDeducted != 50 {
		t.Errorf("CoinsDeducted = %d", result.CoinsDeducted)
	}
}

func TestGenerate_BackendFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "model unavailable",
		})
	})

	_, err := client.Generate(context.Background(), repositories.GenerationRequest{UID: "u", Description: "d"})
	if err == nil || errors.Is(err, repositories.ErrInsufficientBalance) {
		t.Errorf("err = %v, want generic generation error", err)
	}
}

func TestGenerate_InsufficientBalance(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Insufficient balance to generate image",
		})
	})

	_, err := client.Generate(context.Background(), repositories.GenerationRequest{UID: "u", Description: "d"})
	if !errors.Is(err, repositories.ErrInsufficientBalance) {
		t.Errorf("err = %v, want ErrInsufficientBalance", err)
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, repositories.GenerationRequest{UID: "u"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}, zap.NewNop()); err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestIsInsufficientBalance(t *testing.T) {
	tests := []struct {
		status  int
		message string
		want    bool
	}{
		{http.StatusPaymentRequired, "", true},
		{http.StatusOK, "Insufficient balance", true},
		{http.StatusOK, "insufficient coins remaining", true},
		{http.StatusOK, "model unavailable", false},
	}
	for _, tt := range tests {
		if got := isInsufficientBalance(tt.status, tt.message); got != tt.want {
			t.Errorf("isInsufficientBalance(%d, %q) = %v, want %v", tt.status, tt.message, got, tt.want)
		}
	}
}
