package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"family-meal-planner/internal/family"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/shared"
)

// RetryPolicy bounds how often a single generation re-attempts the provider
// call. The default is one attempt with no backoff: the product prefers an
// instant fallback over latency-costly retry loops.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	return p
}

// Generator turns a household profile into a recipe-collection plan via one
// chat-completion call. Invocations are stateless and independent; overlapping
// calls are not coordinated here.
type Generator struct {
	textGen llm.TextGenerator
	retry   RetryPolicy
}

// NewGenerator creates a new Generator. A zero RetryPolicy means a single
// attempt.
func NewGenerator(textGen llm.TextGenerator, retry RetryPolicy) *Generator {
	return &Generator{
		textGen: textGen,
		retry:   retry.normalized(),
	}
}

// GeneratePlan always succeeds from the caller's perspective: any signing,
// transport, extraction, or validation failure is absorbed into the fixed
// fallback plan. The only observable signal of failure is the returned
// content itself (and AgentMeta.FellBack, for metrics).
func (g *Generator) GeneratePlan(
	ctx context.Context,
	members []family.Member,
	constraints family.Constraints,
	habits family.Habits,
	excludeIDs []string,
) (*PlanResult, shared.AgentMeta) {
	start := time.Now()
	result, usage, err := g.generate(ctx, members, constraints, habits, excludeIDs)
	meta := shared.AgentMeta{
		AgentName: "PlanGenerator",
		Usage:     usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		log.Printf("plan generation fell back: %v", err)
		meta.FellBack = true
		return FallbackPlan(), meta
	}
	return result, meta
}

func (g *Generator) generate(
	ctx context.Context,
	members []family.Member,
	constraints family.Constraints,
	habits family.Habits,
	excludeIDs []string,
) (*PlanResult, shared.TokenUsage, error) {
	req, err := buildPlanRequest(members, constraints, habits, excludeIDs)
	if err != nil {
		return nil, shared.TokenUsage{}, &PlanError{Kind: KindValidationFailed, Err: err}
	}

	resp, err := g.complete(ctx, req)
	if err != nil {
		return nil, shared.TokenUsage{}, classifyTransport(err)
	}

	raw, err := llm.ExtractJSON(resp.Content)
	if err != nil {
		return nil, resp.Usage, &PlanError{Kind: KindExtractionFailed, Err: err}
	}

	result, err := decodePlan(raw)
	if err != nil {
		return nil, resp.Usage, err
	}
	return result, resp.Usage, nil
}

// complete runs the provider call under the retry policy. Credential errors
// are deterministic and never retried.
func (g *Generator) complete(ctx context.Context, req llm.ChatRequest) (llm.ContentResponse, error) {
	var resp llm.ContentResponse
	var err error
	for attempt := 0; attempt < g.retry.Attempts; attempt++ {
		resp, err = g.textGen.GenerateContent(ctx, req)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, llm.ErrMalformedCredential) {
			return llm.ContentResponse{}, err
		}
		if attempt < g.retry.Attempts-1 && g.retry.Backoff > 0 {
			select {
			case <-time.After(g.retry.Backoff):
			case <-ctx.Done():
				return llm.ContentResponse{}, ctx.Err()
			}
		}
	}
	return llm.ContentResponse{}, err
}

func classifyTransport(err error) *PlanError {
	switch {
	case errors.Is(err, llm.ErrMalformedCredential):
		return &PlanError{Kind: KindMalformedCredential, Err: err}
	case errors.Is(err, llm.ErrSigningFailed):
		return &PlanError{Kind: KindSigningFailed, Err: err}
	default:
		return &PlanError{Kind: KindTransportFailed, Err: err}
	}
}

// rawPlan keeps scenarios as raw JSON so the required list shape can be
// checked explicitly rather than trusted implicitly.
type rawPlan struct {
	ServiceModeTitle  string          `json:"serviceModeTitle"`
	ServiceModeText   string          `json:"serviceModeText"`
	PainPoints        []PainPoint     `json:"painPoints"`
	FamilySummaryText string          `json:"familySummaryText"`
	Scenarios         json.RawMessage `json:"scenarios"`
}

func decodePlan(raw json.RawMessage) (*PlanResult, error) {
	var plan rawPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, &PlanError{Kind: KindValidationFailed, Err: err}
	}

	scenarios, err := decodeScenarios(plan.Scenarios)
	if err != nil {
		return nil, err
	}

	allRecipes := normalizeCollections(scenarios)

	result := &PlanResult{
		ServiceModeTitle:  plan.ServiceModeTitle,
		ServiceModeText:   plan.ServiceModeText,
		PainPoints:        plan.PainPoints,
		FamilySummaryText: plan.FamilySummaryText,
		Scenarios:         scenarios,
		Recipes:           allRecipes,
	}

	// Never return a partially populated result.
	if result.FamilySummaryText == "" {
		result.FamilySummaryText = "已为您生成家庭方案"
	}
	if result.ServiceModeTitle == "" {
		result.ServiceModeTitle = "家庭定制策略"
	}
	if result.ServiceModeText == "" {
		result.ServiceModeText = "为您量身定制的膳食建议"
	}
	if result.PainPoints == nil {
		result.PainPoints = []PainPoint{}
	}
	return result, nil
}

// decodeScenarios enforces the one structural requirement of the contract:
// a list-typed "scenarios" field. An empty list is valid.
func decodeScenarios(raw json.RawMessage) ([]Collection, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, &PlanError{
			Kind: KindValidationFailed,
			Err:  fmt.Errorf("response is missing a scenarios list"),
		}
	}
	var scenarios []Collection
	if err := json.Unmarshal(raw, &scenarios); err != nil {
		return nil, &PlanError{
			Kind: KindValidationFailed,
			Err:  fmt.Errorf("scenarios field is not a collection list: %w", err),
		}
	}
	if scenarios == nil {
		scenarios = []Collection{}
	}
	return scenarios, nil
}
