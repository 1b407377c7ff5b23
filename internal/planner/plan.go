package planner

// Recipe is a single dish suggestion inside a collection.
type Recipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	MatchReason string   `json:"matchReason"`
	Tags        []string `json:"tags"`
	TimeMinutes int      `json:"timeMinutes"`
	Calories    int      `json:"calories"`
	// Group is a back-reference to the owning collection's title, stamped
	// during post-processing so flat recipe lists can be regrouped.
	Group string `json:"group,omitempty"`
}

// Collection is a named, themed bundle of recipes addressing one household
// need (the provider calls these "scenarios").
type Collection struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Strategy string   `json:"strategy"`
	Trigger  string   `json:"trigger,omitempty"`
	Tags     []string `json:"tags"`
	Recipes  []Recipe `json:"recipes"`
}

// PainPoint is a structured description of one household dietary conflict
// and its proposed handling.
type PainPoint struct {
	Icon     string `json:"icon"`
	Title    string `json:"title"`
	Pain     string `json:"pain"`
	Solution string `json:"solution"`
}

// PlanResult is the fully populated plan returned to callers. Every field is
// always set: missing provider fields are defaulted, and any failure yields
// the fixed fallback envelope instead of an error.
type PlanResult struct {
	ServiceModeTitle  string       `json:"serviceModeTitle"`
	ServiceModeText   string       `json:"serviceModeText"`
	PainPoints        []PainPoint  `json:"painPoints"`
	FamilySummaryText string       `json:"familySummaryText"`
	Scenarios         []Collection `json:"scenarios"`
	// Recipes is the flat aggregate of every recipe across all collections,
	// for callers that want an unordered view.
	Recipes []Recipe `json:"recipes"`
}
