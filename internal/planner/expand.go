package planner

import "github.com/google/uuid"

// ExpandToWeeklyPlan derives a weekly rotation from the recipes a user kept.
// This is a local transformation: each seed dish becomes a variation entry
// with defaulted fields, no provider call involved.
func ExpandToWeeklyPlan(seedRecipes []Recipe) []Recipe {
	expanded := make([]Recipe, 0, len(seedRecipes))
	for _, r := range seedRecipes {
		e := r
		e.ID = r.ID + "_exp"
		e.Title = "延伸: " + r.Title
		e.MatchReason = "基于您的口味延伸推荐"
		if e.Tags == nil {
			e.Tags = []string{}
		}
		if e.TimeMinutes == 0 {
			e.TimeMinutes = 30
		}
		if e.Calories == 0 {
			e.Calories = 300
		}
		expanded = append(expanded, e)
	}
	return expanded
}

// WeeklyCollection wraps the expansion of a plan's recipes into a collection
// ready to merge into stored plan state.
func WeeklyCollection(seedRecipes []Recipe) Collection {
	c := Collection{
		ID:       uuid.NewString(),
		Title:    "一周延伸菜单",
		Strategy: "基于本周方案的口味延伸，凑齐一周轮换。",
		Tags:     []string{"延伸"},
		Recipes:  ExpandToWeeklyPlan(seedRecipes),
	}
	for i := range c.Recipes {
		c.Recipes[i].Group = c.Title
	}
	return c
}
