package planner

import "testing"

func TestNormalizeCollections(t *testing.T) {
	collections := []Collection{
		{
			Title: "快手晚餐",
			Recipes: []Recipe{
				{ID: "a", Title: "菜一"},
				{ID: "", Title: "菜二"},
			},
		},
		{
			ID:    "",
			Title: "周末加餐",
			Recipes: []Recipe{
				{ID: "a", Title: "菜三"}, // collides with the first collection
			},
		},
	}

	flat := normalizeCollections(collections)

	if len(flat) != 3 {
		t.Fatalf("Expected 3 flattened recipes, got %d", len(flat))
	}
	if collections[1].ID == "" {
		t.Error("Empty collection id must be replaced with a synthetic one")
	}

	seen := make(map[string]struct{})
	for _, r := range flat {
		if r.ID == "" {
			t.Errorf("Recipe %q kept an empty id", r.Title)
		}
		if _, dup := seen[r.ID]; dup {
			t.Errorf("Duplicate id %q survived normalization", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	if collections[0].Recipes[0].ID != "a" {
		t.Error("The first occurrence of an id must be kept as-is")
	}
	if flat[0].Group != "快手晚餐" || flat[2].Group != "周末加餐" {
		t.Error("Group must be stamped with the parent collection title")
	}
}

func TestExpandToWeeklyPlan(t *testing.T) {
	seeds := []Recipe{
		{ID: "r1", Title: "清蒸鲈鱼", TimeMinutes: 15, Calories: 120, Tags: []string{"蒸菜"}},
		{ID: "r2", Title: "神秘菜"},
	}

	expanded := ExpandToWeeklyPlan(seeds)

	if len(expanded) != 2 {
		t.Fatalf("Expected 2 expansions, got %d", len(expanded))
	}
	if expanded[0].ID != "r1_exp" || expanded[0].Title != "延伸: 清蒸鲈鱼" {
		t.Errorf("Unexpected expansion %+v", expanded[0])
	}
	if expanded[0].TimeMinutes != 15 {
		t.Error("Existing fields must be preserved")
	}
	if expanded[1].TimeMinutes != 30 || expanded[1].Calories != 300 {
		t.Errorf("Zero fields must get defaults, got %+v", expanded[1])
	}
	if expanded[1].Tags == nil {
		t.Error("Tags must never be nil after expansion")
	}
}

func TestWeeklyCollection(t *testing.T) {
	seeds := []Recipe{
		{ID: "r1", Title: "清蒸鲈鱼", TimeMinutes: 15, Calories: 120},
	}

	c := WeeklyCollection(seeds)

	if c.ID == "" || c.Title != "一周延伸菜单" {
		t.Errorf("Unexpected collection %+v", c)
	}
	if len(c.Recipes) != 1 {
		t.Fatalf("Expected 1 expanded recipe, got %d", len(c.Recipes))
	}
	if c.Recipes[0].ID != "r1_exp" {
		t.Errorf("Unexpected expanded id %q", c.Recipes[0].ID)
	}
	if c.Recipes[0].Group != c.Title {
		t.Errorf("Recipe group %q must match the collection title", c.Recipes[0].Group)
	}
}

func TestDedupeItems(t *testing.T) {
	in := []string{"鸡蛋 6个", "西红柿 3个", "鸡蛋 6个", "", "葱 1把"}
	out := dedupeItems(in)

	want := []string{"鸡蛋 6个", "西红柿 3个", "葱 1把"}
	if len(out) != len(want) {
		t.Fatalf("Expected %d items, got %d: %v", len(want), len(out), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("Item %d: got %q, want %q", i, out[i], want[i])
		}
	}
}
