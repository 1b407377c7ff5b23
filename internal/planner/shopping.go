package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	_ "embed"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/shared"
)

//go:embed shopping_prompt.md
var shoppingPrompt string

// BuildShoppingList aggregates a consolidated shopping list for one chosen
// collection. Unlike plan generation this surfaces errors: a missing
// shopping list is an actionable failure, not something to paper over with
// generic content.
func (g *Generator) BuildShoppingList(
	ctx context.Context,
	collection Collection,
) ([]string, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: "ShoppingList"}

	if len(collection.Recipes) == 0 {
		return nil, meta, fmt.Errorf("collection %q has no recipes", collection.Title)
	}

	tmpl, err := template.New("shopping").Parse(shoppingPrompt)
	if err != nil {
		return nil, meta, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, collection); err != nil {
		return nil, meta, err
	}

	resp, err := g.complete(ctx, llm.ChatRequest{
		System:      buf.String(),
		User:        "Please generate the shopping list.",
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   1024,
	})
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, fmt.Errorf("shopping list generation failed: %w", err)
	}

	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		return nil, meta, err
	}

	var out struct {
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, meta, fmt.Errorf("failed to parse shopping list: %w", err)
	}

	return dedupeItems(out.Items), meta, nil
}

func dedupeItems(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
