package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/llm"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model", Timeout: 2 * time.Second}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{
					map[string]any{"text": "Causa provável: "},
					map[string]any{"text": "disco cheio."},
				}},
			}},
		})
	})

	resp, err := c.Generate(context.Background(), "diagnose", llm.WithTemperature(0.2))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "Causa provável: disco cheio." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Model != "test-model" {
		t.Errorf("Model = %q, want test-model", resp.Model)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "diagnose" {
		t.Errorf("request contents = %+v", gotBody.Contents)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.Temperature == nil || *gotBody.GenerationConfig.Temperature != 0.2 {
		t.Errorf("generationConfig = %+v, want temperature 0.2", gotBody.GenerationConfig)
	}
}

func TestGenerateNoAPIKey(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	if c.Configured() {
		t.Fatal("Configured() = true without key")
	}
	_, err := c.Generate(context.Background(), "x")
	if got := llm.Code(err); got != llm.ErrCodeAuthentication {
		t.Errorf("Code = %q, want %q", got, llm.ErrCodeAuthentication)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   llm.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, llm.ErrCodeAuthentication},
		{"forbidden", http.StatusForbidden, llm.ErrCodeAuthentication},
		{"model missing", http.StatusNotFound, llm.ErrCodeModelNotFound},
		{"bad request", http.StatusBadRequest, llm.ErrCodeInvalidRequest},
		{"quota", http.StatusTooManyRequests, llm.ErrCodeServerError},
		{"server", http.StatusInternalServerError, llm.ErrCodeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				writeJSON(w, tt.status, map[string]any{
					"error": map[string]any{"code": tt.status, "message": "nope"},
				})
			})
			_, err := c.Generate(context.Background(), "x")
			if got := llm.Code(err); got != tt.want {
				t.Errorf("Code = %q, want %q (err=%v)", got, tt.want, err)
			}
			if calls != 1 {
				t.Errorf("server called %d times, want exactly 1 (no retry)", calls)
			}
		})
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"candidates": []any{}})
	})
	_, err := c.Generate(context.Background(), "x")
	if got := llm.Code(err); got != llm.ErrCodeEmptyResponse {
		t.Errorf("Code = %q, want %q", got, llm.ErrCodeEmptyResponse)
	}
}

func TestGenerateContextTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Generate(ctx, "x")
	if got := llm.Code(err); got != llm.ErrCodeTimeout {
		t.Errorf("Code = %q, want %q (err=%v)", got, llm.ErrCodeTimeout, err)
	}
}

func TestMapErrorUnreachable(t *testing.T) {
	err := mapError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))
	var pe *llm.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("mapError() = %T, want *llm.ProviderError", err)
	}
	if pe.Code != llm.ErrCodeServerError || pe.Message != "gemini endpoint unreachable" {
		t.Errorf("got %q/%q", pe.Code, pe.Message)
	}
	if mapError(nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
}
