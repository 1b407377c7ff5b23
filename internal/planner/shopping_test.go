package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"family-meal-planner/internal/llm"
)

func shoppingCollection() Collection {
	return Collection{
		ID:    "c1",
		Title: "快手晚餐",
		Recipes: []Recipe{
			{ID: "r1", Title: "西红柿炒鸡蛋"},
			{ID: "r2", Title: "清蒸鲈鱼"},
		},
	}
}

func TestBuildShoppingList(t *testing.T) {
	var captured llm.ChatRequest
	mock := &mockTextGen{fn: func(req llm.ChatRequest) (llm.ContentResponse, error) {
		captured = req
		return llm.ContentResponse{Content: `{"items": ["鸡蛋 6个", "西红柿 3个", "鲈鱼 1条", "鸡蛋 6个"]}`}, nil
	}}
	gen := NewGenerator(mock, RetryPolicy{})

	items, meta, err := gen.BuildShoppingList(context.Background(), shoppingCollection())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 deduplicated items, got %v", items)
	}
	if meta.AgentName != "ShoppingList" {
		t.Errorf("Unexpected agent name %q", meta.AgentName)
	}
	if !strings.Contains(captured.System, "西红柿炒鸡蛋") {
		t.Error("Expected recipe titles in the prompt")
	}
}

func TestBuildShoppingListErrors(t *testing.T) {
	t.Run("EmptyCollection", func(t *testing.T) {
		gen := NewGenerator(fixedContent(`{"items": []}`), RetryPolicy{})
		_, _, err := gen.BuildShoppingList(context.Background(), Collection{Title: "空的"})
		if err == nil {
			t.Fatal("Expected an error for a collection without recipes")
		}
	})

	t.Run("TransportFailure", func(t *testing.T) {
		gen := NewGenerator(&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
			return llm.ContentResponse{}, errors.New("timeout")
		}}, RetryPolicy{})
		_, _, err := gen.BuildShoppingList(context.Background(), shoppingCollection())
		if err == nil {
			t.Fatal("Expected the transport error to surface")
		}
	})
}
