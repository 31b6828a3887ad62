package triage

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pet-clinic-booking/internal/platform/httpclient"
	"pet-clinic-booking/internal/platform/logger"
)

const (
	maxAttempts = 3
	baseBackoff = 2 * time.Second
)

// Client llama al servicio externo de triage (modelo de clasificación de
// síntomas). El servicio es lento de arranque en frío, de ahí el timeout
// largo y los reintentos con backoff exponencial.
type Client struct {
	http *httpclient.Client
	log  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, log: log}, nil
}

type triageRequest struct {
	Symptom string `json:"symptom"`
}

type triageResponse struct {
	Score    int    `json:"score"`
	Category string `json:"category"`
	Answer   string `json:"answer"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type questionResponse struct {
	Answer string `json:"answer"`
}

// Score implementa bookings.TriageScorer.
func (c *Client) Score(ctx context.Context, symptom string) (int, string, error) {
	req := triageRequest{Symptom: strings.TrimSpace(symptom)}

	var resp triageResponse
	if err := c.postWithRetry(ctx, "/api/triage", req, &resp); err != nil {
		return 0, "", err
	}

	category := resp.Category
	if category == "" {
		category = resp.Answer
	}
	return resp.Score, category, nil
}

// Answer implementa bookings.QuestionAnswerer: consulta libre del guardián
// contra el modelo de triage.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	req := questionRequest{Question: strings.TrimSpace(question)}

	var resp questionResponse
	if err := c.postWithRetry(ctx, "/api/question-answer", req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// postWithRetry reintenta hasta 3 veces con backoff 2s, 4s; devuelve el
// último error si ninguna pasó.
func (c *Client) postWithRetry(ctx context.Context, path string, req, resp any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := baseBackoff * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err := c.http.DoJSON(ctx, http.MethodPost, path, nil, req, resp)
		if err == nil {
			return nil
		}

		lastErr = err
		c.log.Warn("triage attempt failed", map[string]any{"path": path, "attempt": attempt, "err": err.Error()})
	}

	return lastErr
}

// Health hace el ping de warmup del servicio.
func (c *Client) Health(ctx context.Context) error {
	return c.http.GetJSON(ctx, "/health", nil, nil)
}
