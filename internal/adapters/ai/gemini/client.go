package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-clinic-booking/internal/platform/httpclient"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models"

var ErrEmptyResponse = errors.New("gemini: empty response")

// Client genera texto con la API de Gemini; lo usa el resumen de documentos.
type Client struct {
	http   *httpclient.Client
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		http:   httpclient.New(30 * time.Second),
		apiKey: apiKey,
		model:  model,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText implementa documents.Parser.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", baseURL, c.model, c.apiKey)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	var resp generateResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, url, nil, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
