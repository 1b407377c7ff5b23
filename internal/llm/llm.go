package llm

import (
	"context"

	"family-meal-planner/internal/shared"
)

// ChatRequest is a provider-neutral chat completion request: a fixed system
// instruction, the user content, and sampling parameters.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a chat request.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req ChatRequest) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
