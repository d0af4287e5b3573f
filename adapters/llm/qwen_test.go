package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Aadiprofessional/matrixai-stream/domain/repositories"
)

func sseServer(t *testing.T, lines []string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(status)
		for _, line := range lines {
			w.Write([]byte(line + "\n"))
		}
	}))
}

func newTestStreamer(t *testing.T, baseURL string) *QwenStreamer {
	t.Helper()
	q, err := NewQwenStreamer(QwenConfig{APIKey: "test-key", BaseURL: baseURL}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestStreamChat_DeliversDeltasInOrder(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hello "}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"streaming "}}]}`,
		`data: {"choices":[{"delta":{"content":"world."}}]}`,
		`data: [DONE]`,
	}, http.StatusOK)
	defer server.Close()

	q := newTestStreamer(t, server.URL)

	var deltas []string
	full, err := q.StreamChat(context.Background(), []repositories.ChatMessage{
		{Role: repositories.UserRole, Content: "hi"},
	}, func(chunk string) { deltas = append(deltas, chunk) })
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	if full != "Hello streaming world." {
		t.Errorf("full = %q", full)
	}
	if strings.Join(deltas, "") != full {
		t.Errorf("deltas %v do not concatenate to full text", deltas)
	}
}

func TestStreamChat_SkipsMalformedAndEmptyLines(t *testing.T) {
	server := sseServer(t, []string{
		`data: {not json`,
		`: comment line`,
		`data: {"choices":[]}`,
		`data: {"choices":[{"delta":{"content":""}}]}`,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
		`data: [DONE]`,
	}, http.StatusOK)
	defer server.Close()

	q := newTestStreamer(t, server.URL)

	var deltas []string
	full, err := q.StreamChat(context.Background(), nil, func(chunk string) { deltas = append(deltas, chunk) })
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	if full != "ok" || len(deltas) != 1 {
		t.Errorf("full = %q, deltas = %v", full, deltas)
	}
}

func TestStreamChat_StopsAtDoneMarker(t *testing.T) {
	server := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"before"}}]}`,
		`data: [DONE]`,
		`data: {"choices":[{"delta":{"content":"after"}}]}`,
	}, http.StatusOK)
	defer server.Close()

	q := newTestStreamer(t, server.URL)

	full, err := q.StreamChat(context.Background(), nil, func(string) {})
	if err != nil {
		t.Fatal(err)
	}
	if full != "before" {
		t.Errorf("full = %q, content after [DONE] must be ignored", full)
	}
}

func TestStreamChat_NonOKIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	q := newTestStreamer(t, server.URL)

	_, err := q.StreamChat(context.Background(), nil, func(string) {
		t.Error("no deltas expected on non-200")
	})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestNewQwenStreamer_RequiresAPIKey(t *testing.T) {
	if _, err := NewQwenStreamer(QwenConfig{}, zap.NewNop()); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestMockStreamer_ChunksConcatenate(t *testing.T) {
	m := NewMockStreamer()

	var b strings.Builder
	full, err := m.StreamChat(context.Background(), nil, func(chunk string) { b.WriteString(chunk) })
	if err != nil {
		t.Fatal(err)
	}
	if b.String() != full {
		t.Errorf("chunks %q != full %q", b.String(), full)
	}
}
