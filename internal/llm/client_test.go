package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCompleteSendsPayloadAndParsesContent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("auth header = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "hello back"}},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-model", "secret", 5*time.Second)
	out, err := c.Complete(context.Background(), Request{
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
		Temperature: 0.1,
		MaxTokens:   4096,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello back" {
		t.Errorf("content = %q", out)
	}
	if got["model"] != "test-model" {
		t.Errorf("model = %v", got["model"])
	}
	if got["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens = %v", got["max_tokens"])
	}
	if got["temperature"] != 0.1 {
		t.Errorf("temperature = %v", got["temperature"])
	}
}

func TestCompleteBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "m", "k", 2*time.Second)
	if _, err := c.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "m", "k", 2*time.Second)
	if _, err := c.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestCompleteMisconfigured(t *testing.T) {
	c := NewHTTPClient("", "", "", 0)
	if _, err := c.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error when endpoint/model missing")
	}
}
