package bookings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

type fakeAnswerer struct {
	answer string
	err    error
	asked  string
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string) (string, error) {
	f.asked = question
	return f.answer, f.err
}

func newQuestionRouter(answerer QuestionAnswerer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterTriageRoutes(r, answerer)
	return r
}

func postQuestion(t *testing.T, h http.Handler, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/triage/question", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAskQuestion_ReturnsAnswer(t *testing.T) {
	fake := &fakeAnswerer{answer: "금식 후 경과를 지켜보세요"}
	h := newQuestionRouter(fake)

	rec := postQuestion(t, h, "guardian-1", `{"question":"강아지가 토했어요"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if fake.asked != "강아지가 토했어요" {
		t.Fatalf("question not forwarded: %q", fake.asked)
	}
	if !strings.Contains(rec.Body.String(), "금식 후 경과를 지켜보세요") {
		t.Fatalf("answer missing in body: %s", rec.Body.String())
	}
}

func TestAskQuestion_RequiresAuth(t *testing.T) {
	h := newQuestionRouter(&fakeAnswerer{answer: "ok"})

	rec := postQuestion(t, h, "", `{"question":"질문"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAskQuestion_EmptyQuestionIsBadRequest(t *testing.T) {
	h := newQuestionRouter(&fakeAnswerer{answer: "ok"})

	rec := postQuestion(t, h, "guardian-1", `{"question":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAskQuestion_BackendFailureIsBadGateway(t *testing.T) {
	h := newQuestionRouter(&fakeAnswerer{err: errors.New("cold start")})

	rec := postQuestion(t, h, "guardian-1", `{"question":"질문"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
