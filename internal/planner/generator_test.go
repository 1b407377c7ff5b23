package planner

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"family-meal-planner/internal/family"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/shared"
)

type mockTextGen struct {
	calls int
	fn    func(req llm.ChatRequest) (llm.ContentResponse, error)
}

func (m *mockTextGen) GenerateContent(_ context.Context, req llm.ChatRequest) (llm.ContentResponse, error) {
	m.calls++
	return m.fn(req)
}

func fixedContent(content string) *mockTextGen {
	return &mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
		return llm.ContentResponse{
			Content: content,
			Usage:   shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, Model: "glm-4"},
		}, nil
	}}
}

func testProfile() ([]family.Member, family.Constraints, family.Habits) {
	members := []family.Member{{
		ID:     "m1",
		Role:   family.RoleSelf,
		Gender: family.Female,
		Goals:  []family.Goal{family.GoalWeightMuscle},
		Tastes: []string{"清淡"},
	}}
	constraints := family.Constraints{}
	habits := family.Habits{
		TimeLimitMinutes: 30,
		SkillLevel:       family.SkillHomeCook,
		TableFormat:      family.TableShared,
	}
	return members, constraints, habits
}

const twoCollectionResponse = `{
	"serviceModeTitle": "全家减脂与清淡口味的平衡策略",
	"serviceModeText": "低卡为主，兼顾饱腹",
	"familySummaryText": "一位成员，目标减脂增肌",
	"painPoints": [{"icon": "⚖️", "title": "热量控制", "pain": "想减脂又怕饿", "solution": "高蛋白低碳水搭配"}],
	"scenarios": [
		{
			"id": "s1", "title": "全家爱吃的家常菜", "strategy": "人人都能吃的安全牌", "tags": ["家常"],
			"recipes": [
				{"id": "r1", "title": "清蒸鸡胸", "description": "高蛋白", "matchReason": "减脂首选", "tags": ["高蛋白"], "timeMinutes": 20, "calories": 180},
				{"title": "白灼西兰花", "description": "清爽", "matchReason": "低卡加餐", "tags": ["清淡"], "timeMinutes": 10, "calories": 60}
			]
		},
		{
			"id": "s2", "title": "自己的下班减脂餐", "strategy": "针对减脂增肌目标", "tags": ["低卡"],
			"recipes": [
				{"id": "r1", "title": "香煎龙利鱼", "description": "嫩滑", "matchReason": "优质蛋白", "tags": ["高蛋白"], "timeMinutes": 15, "calories": 150}
			]
		}
	]
}`

func TestGeneratePlanHappyPath(t *testing.T) {
	members, constraints, habits := testProfile()
	gen := NewGenerator(fixedContent(twoCollectionResponse), RetryPolicy{})

	plan, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)

	if meta.FellBack {
		t.Fatal("Expected a real plan, not a fallback")
	}
	if len(plan.Scenarios) != 2 {
		t.Fatalf("Expected 2 collections, got %d", len(plan.Scenarios))
	}
	if len(plan.Recipes) != 3 {
		t.Errorf("Expected 3 recipes in the flat aggregate, got %d", len(plan.Recipes))
	}
	for _, c := range plan.Scenarios {
		for _, r := range c.Recipes {
			if r.Group != c.Title {
				t.Errorf("Recipe %q has group %q, want parent title %q", r.Title, r.Group, c.Title)
			}
		}
	}
	if meta.Usage.PromptTokens != 100 {
		t.Errorf("Expected usage propagated into meta, got %+v", meta.Usage)
	}
}

func TestGeneratePlanSyntheticIDs(t *testing.T) {
	members, constraints, habits := testProfile()
	gen := NewGenerator(fixedContent(twoCollectionResponse), RetryPolicy{})

	plan, _ := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)

	seen := make(map[string]struct{})
	for _, r := range plan.Recipes {
		if r.ID == "" {
			t.Errorf("Recipe %q has an empty id", r.Title)
		}
		if _, dup := seen[r.ID]; dup {
			t.Errorf("Duplicate recipe id %q in response", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	// "白灼西兰花" came without an id, the second "r1" was a duplicate; both
	// must have been replaced with synthetic ids.
	if len(seen) != 3 {
		t.Errorf("Expected 3 unique ids, got %d", len(seen))
	}
}

func TestGeneratePlanProseWrappedJSON(t *testing.T) {
	members, constraints, habits := testProfile()
	content := "Here you go:\n```json\n" + twoCollectionResponse + "\n```"
	gen := NewGenerator(fixedContent(content), RetryPolicy{})

	plan, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)

	if meta.FellBack {
		t.Fatal("Expected fenced-block extraction to succeed")
	}
	if len(plan.Scenarios) != 2 {
		t.Errorf("Expected 2 collections, got %d", len(plan.Scenarios))
	}
}

func TestGeneratePlanEmptyScenarios(t *testing.T) {
	members, constraints, habits := testProfile()
	gen := NewGenerator(fixedContent(`{"scenarios": []}`), RetryPolicy{})

	plan, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)

	if meta.FellBack {
		t.Fatal("Empty scenarios list is structurally valid, should not fall back")
	}
	if len(plan.Scenarios) != 0 {
		t.Errorf("Expected empty scenarios, got %d", len(plan.Scenarios))
	}
	if len(plan.Recipes) != 0 {
		t.Errorf("Expected empty flat aggregate, got %d", len(plan.Recipes))
	}
	// Defaults still populate even when the provider omits everything else.
	if plan.FamilySummaryText == "" || plan.ServiceModeTitle == "" || plan.ServiceModeText == "" {
		t.Errorf("Expected defaults for missing summary fields, got %+v", plan)
	}
	if plan.PainPoints == nil {
		t.Error("Expected a non-nil pain point list")
	}
}

func TestGeneratePlanTransportFailureFallsBack(t *testing.T) {
	members, constraints, habits := testProfile()
	gen := NewGenerator(&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
		return llm.ContentResponse{}, fmt.Errorf("zhipu api error: status=500 body=internal")
	}}, RetryPolicy{})

	plan, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)

	if !meta.FellBack {
		t.Fatal("Expected fallback on transport failure")
	}
	if !reflect.DeepEqual(plan, FallbackPlan()) {
		t.Error("Expected the fixed fallback envelope")
	}
	if len(plan.Scenarios) != 1 {
		t.Fatalf("Expected a single fallback collection, got %d", len(plan.Scenarios))
	}
	if len(plan.PainPoints) != 1 || plan.PainPoints[0].Icon != "📡" {
		t.Errorf("Expected the connectivity pain point, got %+v", plan.PainPoints)
	}
}

func TestGeneratePlanMissingScenariosFallsBack(t *testing.T) {
	members, constraints, habits := testProfile()
	for name, content := range map[string]string{
		"Absent":    `{"familySummaryText": "ok"}`,
		"Null":      `{"scenarios": null}`,
		"WrongType": `{"scenarios": "not-a-list"}`,
	} {
		t.Run(name, func(t *testing.T) {
			gen := NewGenerator(fixedContent(content), RetryPolicy{})
			_, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)
			if !meta.FellBack {
				t.Error("Expected fallback for a malformed scenarios field")
			}
		})
	}
}

func TestGenerateErrorKinds(t *testing.T) {
	members, constraints, habits := testProfile()

	cases := []struct {
		name string
		gen  *mockTextGen
		kind ErrorKind
	}{
		{
			"MalformedCredential",
			&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
				return llm.ContentResponse{}, fmt.Errorf("minting failed: %w", llm.ErrMalformedCredential)
			}},
			KindMalformedCredential,
		},
		{
			"SigningFailed",
			&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
				return llm.ContentResponse{}, fmt.Errorf("minting failed: %w", llm.ErrSigningFailed)
			}},
			KindSigningFailed,
		},
		{
			"TransportFailed",
			&mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
				return llm.ContentResponse{}, errors.New("connection refused")
			}},
			KindTransportFailed,
		},
		{
			"ExtractionFailed",
			fixedContent("I am sorry, I cannot produce JSON today."),
			KindExtractionFailed,
		},
		{
			"ValidationFailed",
			fixedContent(`{"scenarios": 42}`),
			KindValidationFailed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := NewGenerator(tc.gen, RetryPolicy{})
			_, _, err := gen.generate(context.Background(), members, constraints, habits, nil)
			var planErr *PlanError
			if !errors.As(err, &planErr) {
				t.Fatalf("Expected *PlanError, got %v", err)
			}
			if planErr.Kind != tc.kind {
				t.Errorf("Expected kind %s, got %s", tc.kind, planErr.Kind)
			}
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	members, constraints, habits := testProfile()

	t.Run("DefaultIsSingleAttempt", func(t *testing.T) {
		mock := &mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
			return llm.ContentResponse{}, errors.New("boom")
		}}
		gen := NewGenerator(mock, RetryPolicy{})
		_, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)
		if !meta.FellBack {
			t.Fatal("Expected fallback")
		}
		if mock.calls != 1 {
			t.Errorf("Expected exactly 1 attempt by default, got %d", mock.calls)
		}
	})

	t.Run("SecondAttemptSucceeds", func(t *testing.T) {
		mock := &mockTextGen{}
		mock.fn = func(llm.ChatRequest) (llm.ContentResponse, error) {
			if mock.calls == 1 {
				return llm.ContentResponse{}, errors.New("flaky")
			}
			return llm.ContentResponse{Content: twoCollectionResponse}, nil
		}
		gen := NewGenerator(mock, RetryPolicy{Attempts: 2})
		plan, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)
		if meta.FellBack {
			t.Fatal("Expected the retry to succeed")
		}
		if mock.calls != 2 {
			t.Errorf("Expected 2 attempts, got %d", mock.calls)
		}
		if len(plan.Scenarios) != 2 {
			t.Errorf("Expected the retried plan, got %d collections", len(plan.Scenarios))
		}
	})

	t.Run("CredentialErrorsNeverRetried", func(t *testing.T) {
		mock := &mockTextGen{fn: func(llm.ChatRequest) (llm.ContentResponse, error) {
			return llm.ContentResponse{}, llm.ErrMalformedCredential
		}}
		gen := NewGenerator(mock, RetryPolicy{Attempts: 3})
		_, meta := gen.GeneratePlan(context.Background(), members, constraints, habits, nil)
		if !meta.FellBack {
			t.Fatal("Expected fallback")
		}
		if mock.calls != 1 {
			t.Errorf("Expected a single attempt for a deterministic error, got %d", mock.calls)
		}
	})
}

func TestPromptCarriesProfile(t *testing.T) {
	members, constraints, habits := testProfile()
	var captured llm.ChatRequest
	mock := &mockTextGen{fn: func(req llm.ChatRequest) (llm.ContentResponse, error) {
		captured = req
		return llm.ContentResponse{Content: twoCollectionResponse}, nil
	}}
	gen := NewGenerator(mock, RetryPolicy{})

	t.Run("InitialGeneration", func(t *testing.T) {
		gen.GeneratePlan(context.Background(), members, constraints, habits, nil)
		if !strings.Contains(captured.User, string(family.GoalWeightMuscle)) {
			t.Error("Expected member goals in the user content")
		}
		if !strings.Contains(captured.User, "清淡") {
			t.Error("Expected member tastes in the user content")
		}
		if strings.Contains(captured.User, "already shown") {
			t.Error("Initial generation must not carry exclusion wording")
		}
		if captured.Temperature != 0.7 || captured.TopP != 0.9 || captured.MaxTokens != 4096 {
			t.Errorf("Unexpected sampling parameters: %+v", captured)
		}
		if !strings.Contains(captured.System, "资深家庭膳食规划师") {
			t.Error("Expected the fixed system instruction")
		}
	})

	t.Run("ExclusionToggle", func(t *testing.T) {
		gen.GeneratePlan(context.Background(), members, constraints, habits, []string{"r1", "r2"})
		if !strings.Contains(captured.User, "r1, r2") {
			t.Error("Expected excluded ids listed in the user content")
		}
		if !strings.Contains(captured.User, "DIFFERENT") {
			t.Error("Expected distinct-from-seen wording")
		}
	})

	t.Run("EmptyExclusionStillToggles", func(t *testing.T) {
		gen.GeneratePlan(context.Background(), members, constraints, habits, []string{})
		if !strings.Contains(captured.User, "DIFFERENT") {
			t.Error("An explicitly empty exclusion list requests a correction pass")
		}
	})
}
