// Package llm is a minimal client for OpenAI-compatible chat
// completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Chat roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the tunable parts of a completion call. The model
// identifier is owned by the client.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client produces a completion for a chat request.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// HTTPClient implements Client over an authenticated HTTPS POST.
type HTTPClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a chat client. Generation calls can run for a
// long time, so the timeout should be generous (minutes, not seconds).
func NewHTTPClient(endpoint, model, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &HTTPClient{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the chat request and returns the first choice's
// content.
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("llm: client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm: backend error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
