package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/planner"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// Clipper imports a dish the household already cooks from a recipe web page.
// The imported dish's id feeds the exclusion list so future generations are
// biased away from what is already in rotation.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen: textGen,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

const clipPrompt = `You are a recipe extraction expert. Extract the dish described by the following page text.
Return the result strictly as a JSON object with this structure:
{
  "title": "String (dish name, in Chinese if the page is Chinese)",
  "description": "String (one sentence)",
  "tags": ["String"],
  "timeMinutes": Number (estimated prep+cook time),
  "calories": Number (estimated per serving)
}`

// ClipURL fetches the URL, strips markup noise, and has the model normalize
// the remains into a Recipe with a synthetic id.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*planner.Recipe, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	resp, err := c.textGen.GenerateContent(ctx, llm.ChatRequest{
		System:      clipPrompt,
		User:        fmt.Sprintf("Page text:\n%s", content),
		Temperature: 0.2,
		TopP:        0.9,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	var recipe planner.Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode extracted dish: %w", err)
	}
	if recipe.Title == "" {
		return nil, fmt.Errorf("no dish found on page %s", url)
	}

	recipe.ID = uuid.NewString()
	recipe.MatchReason = "您提供的在做菜式"
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	return &recipe, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
