package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"family-meal-planner/internal/family"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/shared"
)

// GenerateSupplement requests exactly one additional collection addressing a
// free-text user request. Like GeneratePlan it never fails: on any error it
// returns a single small generic collection instead of the full fallback
// envelope, since this is an incremental operation. The caller merges the
// returned collections into existing state.
func (g *Generator) GenerateSupplement(
	ctx context.Context,
	members []family.Member,
	constraints family.Constraints,
	request string,
) ([]Collection, shared.AgentMeta) {
	start := time.Now()
	collections, usage, err := g.supplement(ctx, members, constraints, request)
	meta := shared.AgentMeta{
		AgentName: "SupplementGenerator",
		Usage:     usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		log.Printf("supplement generation fell back: %v", err)
		meta.FellBack = true
		return fallbackSupplement(), meta
	}
	return collections, meta
}

func (g *Generator) supplement(
	ctx context.Context,
	members []family.Member,
	constraints family.Constraints,
	request string,
) ([]Collection, shared.TokenUsage, error) {
	req, err := buildSupplementRequest(members, constraints, request)
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

	var envelope struct {
		Scenarios json.RawMessage `json:"scenarios"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, resp.Usage, &PlanError{Kind: KindValidationFailed, Err: err}
	}
	collections, err := decodeScenarios(envelope.Scenarios)
	if err != nil {
		return nil, resp.Usage, err
	}
	if len(collections) == 0 {
		return nil, resp.Usage, &PlanError{
			Kind: KindValidationFailed,
			Err:  fmt.Errorf("supplement response contained no collections"),
		}
	}

	normalizeCollections(collections)
	return collections, resp.Usage, nil
}
