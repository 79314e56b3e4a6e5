package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"clipforge/internal/services/llm"
)

func newTestClient(baseURL string, opts ...llm.Option) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
	}, opts...)
}

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestHealthCheckSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(completionBody(`{"ok":true}`))); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check: %v", err)
	}
}

func TestHealthCheckFailsOnUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestCompleteJSONStripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := "```json\n{\"value\": 7}\n```"
		if _, err := w.Write([]byte(completionBody(content))); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	var parsed struct {
		Value int `json:"value"`
	}
	if err := llm.DecodeLLMJSON(raw, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Value != 7 {
		t.Fatalf("expected value 7, got %d", parsed.Value)
	}
}

func TestCompleteJSONReadsToolCallArguments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `{"choices":[{"message":{"content":"","tool_calls":[{"type":"function","function":{"name":"emit","arguments":"{\"clips\":[]}"}}]}}]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if raw != `{"clips":[]}` {
		t.Fatalf("unexpected payload %q", raw)
	}
}

func TestCompleteJSONReadsDeltaContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `{"choices":[{"delta":{"content":"{\"ok\":true}"}}]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if raw != `{"ok":true}` {
		t.Fatalf("unexpected payload %q", raw)
	}
}

func TestCompleteJSONReadsLegacyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `{"choices":[{"text":"{\"ok\":true}"}]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if raw != `{"ok":true}` {
		t.Fatalf("unexpected payload %q", raw)
	}
}

func TestCompleteJSONRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":{"message":"slow down"}}`, http.StatusTooManyRequests)
			return
		}
		if _, err := w.Write([]byte(completionBody(`{"ok":true}`))); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(server.URL,
		llm.WithRetryMaxAttempts(3),
		llm.WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if raw != `{"ok":true}` {
		t.Fatalf("unexpected payload %q", raw)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single 1s sleep honoring Retry-After, got %v", slept)
	}
}

func TestCompleteJSONRetriesEmptyContent(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			if _, err := w.Write([]byte(completionBody(""))); err != nil {
				t.Errorf("write response: %v", err)
			}
			return
		}
		if _, err := w.Write([]byte(completionBody(`{"ok":true}`))); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL,
		llm.WithRetryMaxAttempts(3),
		llm.WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
		llm.WithSleeper(func(time.Duration) {}),
	)
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if raw != `{"ok":true}` {
		t.Fatalf("unexpected payload %q", raw)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestCompleteJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL,
		llm.WithRetryMaxAttempts(3),
		llm.WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected single request, got %d", got)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := llm.NewClient(llm.Config{BaseURL: "http://127.0.0.1:0", Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestDecodeLLMJSONExtractsEmbeddedObject(t *testing.T) {
	var parsed struct {
		Value int `json:"value"`
	}
	payload := "Sure! Here is the result: {\"value\": 3} Hope that helps."
	if err := llm.DecodeLLMJSON(payload, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Value != 3 {
		t.Fatalf("expected 3, got %d", parsed.Value)
	}
}

func TestDecodeLLMJSONFailsWithSnippet(t *testing.T) {
	var parsed struct{}
	err := llm.DecodeLLMJSON("not json at all", &parsed)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not json at all") {
		t.Fatalf("expected payload snippet in error, got %v", err)
	}
}
