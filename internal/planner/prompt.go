package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	_ "embed"

	"family-meal-planner/internal/family"
	"family-meal-planner/internal/llm"
)

//go:embed plan_prompt.md
var planPrompt string

//go:embed supplement_prompt.md
var supplementPrompt string

// memberPayload is the slimmed member view serialized into prompts. The full
// Member carries presentation fields the model has no use for.
type memberPayload struct {
	Role         family.Role   `json:"role"`
	Goals        []family.Goal `json:"goals"`
	Tastes       []string      `json:"tastes"`
	Restrictions []string      `json:"restrictions,omitempty"`
	CustomNeeds  string        `json:"customNeeds,omitempty"`
}

func serializeMembers(members []family.Member) (string, error) {
	payload := make([]memberPayload, 0, len(members))
	for _, m := range members {
		payload = append(payload, memberPayload{
			Role:         m.Role,
			Goals:        m.Goals,
			Tastes:       m.Tastes,
			Restrictions: m.Restrictions,
			CustomNeeds:  m.CustomNeeds,
		})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize family profile: %w", err)
	}
	return string(data), nil
}

// buildPlanRequest produces the system instruction and user content for an
// account-level generation. A nil excludeIDs means initial generation; a
// non-nil list (even empty) switches the request into "generate distinct
// from previously seen" semantics.
func buildPlanRequest(
	members []family.Member,
	constraints family.Constraints,
	habits family.Habits,
	excludeIDs []string,
) (llm.ChatRequest, error) {
	profileStr, err := serializeMembers(members)
	if err != nil {
		return llm.ChatRequest{}, err
	}

	habitsData, err := json.Marshal(habits)
	if err != nil {
		return llm.ChatRequest{}, fmt.Errorf("failed to serialize cooking habits: %w", err)
	}
	constraintsData, err := json.Marshal(constraints)
	if err != nil {
		return llm.ChatRequest{}, fmt.Errorf("failed to serialize constraints: %w", err)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Family Profile: %s, Cooking Habits: %s, Restrictions: %s",
		profileStr, habitsData, constraintsData)
	if excludeIDs != nil {
		fmt.Fprintf(&user,
			"\nThe following recipe ids were already shown; generate collections with DIFFERENT dishes: %s",
			strings.Join(excludeIDs, ", "))
	}

	return llm.ChatRequest{
		System:      planPrompt,
		User:        user.String(),
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   4096,
	}, nil
}

type supplementPromptData struct {
	Request       string
	FamilyContext string
}

// buildSupplementRequest produces the narrower one-collection request used
// for free-text follow-ups.
func buildSupplementRequest(
	members []family.Member,
	constraints family.Constraints,
	request string,
) (llm.ChatRequest, error) {
	profileStr, err := serializeMembers(members)
	if err != nil {
		return llm.ChatRequest{}, err
	}
	constraintsData, err := json.Marshal(constraints)
	if err != nil {
		return llm.ChatRequest{}, fmt.Errorf("failed to serialize constraints: %w", err)
	}

	tmpl, err := template.New("supplement").Parse(supplementPrompt)
	if err != nil {
		return llm.ChatRequest{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, supplementPromptData{
		Request:       request,
		FamilyContext: profileStr,
	}); err != nil {
		return llm.ChatRequest{}, err
	}

	return llm.ChatRequest{
		System:      buf.String(),
		User:        fmt.Sprintf("Please generate the supplementary collection. Household restrictions: %s", constraintsData),
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   2048,
	}, nil
}
