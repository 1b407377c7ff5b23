package telegram

import (
	"fmt"
	"strings"

	"family-meal-planner/internal/planner"
)

// formatPlanMarkdown renders a plan as one overview message plus one message
// per collection, ready to send with Markdown parse mode.
func formatPlanMarkdown(plan *planner.PlanResult) []string {
	var overview strings.Builder
	overview.WriteString(fmt.Sprintf("🍽 *%s*\n%s\n\n", plan.ServiceModeTitle, plan.ServiceModeText))
	overview.WriteString(fmt.Sprintf("_%s_\n", plan.FamilySummaryText))

	if len(plan.PainPoints) > 0 {
		overview.WriteString("\n")
		for _, p := range plan.PainPoints {
			overview.WriteString(fmt.Sprintf("%s *%s*\n%s → %s\n", p.Icon, p.Title, p.Pain, p.Solution))
		}
	}

	messages := []string{overview.String()}
	for _, c := range plan.Scenarios {
		messages = append(messages, formatCollectionMarkdown(c))
	}
	return messages
}

func formatCollectionMarkdown(c planner.Collection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📒 *%s*\n_%s_\n", c.Title, c.Strategy))
	if len(c.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("标签: %s\n", strings.Join(c.Tags, " / ")))
	}
	sb.WriteString("\n")

	for _, r := range c.Recipes {
		sb.WriteString(fmt.Sprintf("• *%s* (%d分钟, %d千卡)\n", r.Title, r.TimeMinutes, r.Calories))
		if r.MatchReason != "" {
			sb.WriteString(fmt.Sprintf("  _%s_\n", r.MatchReason))
		}
	}
	return sb.String()
}

// formatShoppingListMarkdown renders a consolidated shopping list.
func formatShoppingListMarkdown(title string, items []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *%s 的采购清单*\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s\n", item))
	}
	return sb.String()
}
