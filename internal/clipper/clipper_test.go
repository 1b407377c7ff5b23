package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"family-meal-planner/internal/llm"
)

type mockTextGen struct {
	fn func(req llm.ChatRequest) (llm.ContentResponse, error)
}

func (m *mockTextGen) GenerateContent(_ context.Context, req llm.ChatRequest) (llm.ContentResponse, error) {
	return m.fn(req)
}

const recipePage = `<html><head><style>body{color:red}</style></head><body>
<nav>首页 | 菜谱</nav>
<script>trackPageView()</script>
<article><h1>红烧肉</h1><p>肥而不腻的经典做法，小火慢炖四十分钟。</p></article>
<footer>版权所有</footer>
</body></html>`

func TestClipURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(recipePage))
	}))
	defer server.Close()

	var captured llm.ChatRequest
	clip := NewClipper(&mockTextGen{fn: func(req llm.ChatRequest) (llm.ContentResponse, error) {
		captured = req
		return llm.ContentResponse{Content: "```json\n" + `{
			"title": "红烧肉", "description": "肥而不腻", "tags": ["家常", "炖菜"],
			"timeMinutes": 50, "calories": 450
		}` + "\n```"}, nil
	}})

	recipe, err := clip.ClipURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if recipe.Title != "红烧肉" || recipe.TimeMinutes != 50 {
		t.Errorf("Unexpected recipe %+v", recipe)
	}
	if recipe.ID == "" {
		t.Error("Imported dish must get a synthetic id")
	}
	if recipe.MatchReason != "您提供的在做菜式" {
		t.Errorf("Unexpected match reason %q", recipe.MatchReason)
	}

	if !strings.Contains(captured.User, "红烧肉") {
		t.Error("Expected article text forwarded to the model")
	}
	for _, noise := range []string{"trackPageView", "color:red", "版权所有"} {
		if strings.Contains(captured.User, noise) {
			t.Errorf("Markup noise %q leaked into the prompt", noise)
		}
	}
}

func TestClipURLErrors(t *testing.T) {
	t.Run("PageNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		clip := NewClipper(&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
			t.Fatal("Model must not be called when the fetch fails")
			return llm.ContentResponse{}, nil
		}})
		if _, err := clip.ClipURL(context.Background(), server.URL); err == nil {
			t.Fatal("Expected an error for a 404 page")
		}
	})

	t.Run("NoDishOnPage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body>这里没有菜谱</body></html>"))
		}))
		defer server.Close()

		clip := NewClipper(&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
			return llm.ContentResponse{Content: `{"title": ""}`}, nil
		}})
		if _, err := clip.ClipURL(context.Background(), server.URL); err == nil {
			t.Fatal("Expected an error when no dish is found")
		}
	})
}
