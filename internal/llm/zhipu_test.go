package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"family-meal-planner/internal/config"
)

func TestZhipuGenerateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var gotBody map[string]interface{}
		var gotAuth string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("Failed to decode request body: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"choices": [{"message": {"content": "{\"scenarios\": []}"}}],
				"usage": {"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160}
			}`))
		}))
		defer server.Close()

		client := NewZhipuClient(&config.Config{ZhipuAPIKey: "id.secret", ZhipuAPIURL: server.URL})
		resp, err := client.GenerateContent(ctx, ChatRequest{
			System:      "You are a planner.",
			User:        "Family Profile: []",
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   4096,
		})
		if err != nil {
			t.Fatalf("GenerateContent failed: %v", err)
		}

		if resp.Content != `{"scenarios": []}` {
			t.Errorf("Unexpected content: %q", resp.Content)
		}
		if resp.Usage.PromptTokens != 120 || resp.Usage.CompletionTokens != 40 {
			t.Errorf("Unexpected usage: %+v", resp.Usage)
		}
		if resp.Usage.Model != "glm-4" {
			t.Errorf("Expected model glm-4 in usage, got %q", resp.Usage.Model)
		}

		if !strings.HasPrefix(gotAuth, "Bearer ") || strings.Count(gotAuth, ".") != 2 {
			t.Errorf("Expected a three-segment bearer token, got %q", gotAuth)
		}
		if gotBody["model"] != "glm-4" {
			t.Errorf("Expected model glm-4 in body, got %v", gotBody["model"])
		}
		messages, ok := gotBody["messages"].([]interface{})
		if !ok || len(messages) != 2 {
			t.Fatalf("Expected exactly two messages, got %v", gotBody["messages"])
		}
		first := messages[0].(map[string]interface{})
		second := messages[1].(map[string]interface{})
		if first["role"] != "system" || second["role"] != "user" {
			t.Errorf("Expected system then user roles, got %v / %v", first["role"], second["role"])
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewZhipuClient(&config.Config{ZhipuAPIKey: "id.secret", ZhipuAPIURL: server.URL})
		if _, err := client.GenerateContent(ctx, ChatRequest{MaxTokens: 16}); err == nil {
			t.Fatal("Expected an error for HTTP 500")
		}
	})

	t.Run("MalformedKeySkipsNetwork", func(t *testing.T) {
		var requests int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)
		}))
		defer server.Close()

		client := NewZhipuClient(&config.Config{ZhipuAPIKey: "no-separator", ZhipuAPIURL: server.URL})
		_, err := client.GenerateContent(ctx, ChatRequest{MaxTokens: 16})
		if !errors.Is(err, ErrMalformedCredential) {
			t.Fatalf("Expected ErrMalformedCredential, got %v", err)
		}
		if atomic.LoadInt64(&requests) != 0 {
			t.Errorf("Expected no network call after signing failure, got %d requests", requests)
		}
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		client := NewZhipuClient(&config.Config{ZhipuAPIKey: "id.secret", ZhipuAPIURL: server.URL})
		if _, err := client.GenerateContent(ctx, ChatRequest{MaxTokens: 16}); err == nil {
			t.Fatal("Expected an error for a response without choices")
		}
	})
}
