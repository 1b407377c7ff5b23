package planner

import "github.com/google/uuid"

// fallbackRecipes are generic, non-personalized dishes served whenever the
// provider cannot be reached.
var fallbackRecipes = []Recipe{
	{ID: "f1", Title: "西红柿炒鸡蛋", Description: "国民家常菜，酸甜开胃", MatchReason: "经典保底，老少皆宜", Tags: []string{"家常", "快手", "酸甜"}, TimeMinutes: 10, Calories: 150},
	{ID: "f2", Title: "清蒸鲈鱼", Description: "鲜嫩多汁，富含优质蛋白", MatchReason: "营养健康，不仅刺少还很鲜美", Tags: []string{"海鲜", "蒸菜", "高蛋白"}, TimeMinutes: 15, Calories: 120},
	{ID: "f3", Title: "菌菇豆腐汤", Description: "清淡鲜美，暖胃舒适", MatchReason: "肠胃友好，晚餐首选", Tags: []string{"汤", "清淡", "低脂"}, TimeMinutes: 20, Calories: 80},
	{ID: "f4", Title: "小炒黄牛肉", Description: "香辣下饭，补充能量", MatchReason: "满足吃辣需求", Tags: []string{"香辣", "高蛋白"}, TimeMinutes: 15, Calories: 200},
}

// FallbackPlan returns the fixed plan used when any generation step fails.
// It is indistinguishable in shape from a degraded-but-valid server response:
// callers never special-case "the AI failed", only "here is a plan".
func FallbackPlan() *PlanResult {
	collection := Collection{
		ID:       "fallback-1",
		Title:    "全家共享的营养快手菜",
		Strategy: "网络连接不稳定，为您推荐基础均衡菜式。",
		Trigger:  "日常晚餐",
		Tags:     []string{"家常", "营养"},
		Recipes:  cloneRecipes(fallbackRecipes),
	}
	for i := range collection.Recipes {
		collection.Recipes[i].Group = collection.Title
	}

	return &PlanResult{
		ServiceModeTitle:  "基础家庭膳食方案",
		ServiceModeText:   "请检查网络连接。",
		FamilySummaryText: "暂时无法连接智能服务，已加载基础数据。",
		PainPoints: []PainPoint{
			{Icon: "📡", Title: "连接中断", Pain: "无法获取云端分析", Solution: "已为您切换至离线基础菜谱"},
		},
		Scenarios: []Collection{collection},
		Recipes:   cloneRecipes(collection.Recipes),
	}
}

// fallbackSupplement is the smaller fallback used by supplementary requests:
// one generic collection, fresh recipe ids so it can coexist with previously
// returned fallback data in caller state.
func fallbackSupplement() []Collection {
	recipes := cloneRecipes(fallbackRecipes)
	collection := Collection{
		ID:       "fallback-supp-" + uuid.NewString(),
		Title:    "补充推荐菜谱",
		Strategy: "网络不稳定，为您推荐通用健康菜。",
		Tags:     []string{"补充"},
	}
	for i := range recipes {
		recipes[i].ID = uuid.NewString()
		recipes[i].Group = collection.Title
	}
	collection.Recipes = recipes
	return []Collection{collection}
}

func cloneRecipes(src []Recipe) []Recipe {
	out := make([]Recipe, len(src))
	copy(out, src)
	for i := range out {
		out[i].Tags = append([]string(nil), src[i].Tags...)
	}
	return out
}
