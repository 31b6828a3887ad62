package triage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-clinic-booking/internal/platform/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, 2*time.Second, logger.New(logger.Options{Level: logger.Error}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestScore_ParsesScoreAndCategory(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/triage" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Symptom string `json:"symptom"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Symptom != "구토" {
			t.Errorf("symptom not forwarded: %q", req.Symptom)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"score": 7, "category": "소화기"})
	}))

	score, category, err := c.Score(context.Background(), "구토")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 7 || category != "소화기" {
		t.Fatalf("unexpected result: score=%d category=%q", score, category)
	}
}

func TestAnswer_ForwardsQuestionAndReturnsAnswer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/question-answer" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Question string `json:"question"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Question != "강아지가 초콜릿을 먹었어요" {
			t.Errorf("question not forwarded: %q", req.Question)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "즉시 병원에 방문하세요"})
	}))

	answer, err := c.Answer(context.Background(), "  강아지가 초콜릿을 먹었어요  ")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "즉시 병원에 방문하세요" {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestAnswer_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "cold start", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))

	answer, err := c.Answer(context.Background(), "질문")
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if answer != "ok" || attempts != 2 {
		t.Fatalf("unexpected: answer=%q attempts=%d", answer, attempts)
	}
}

func TestAnswer_CancelledContextStopsRetry(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Answer(ctx, "질문"); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
