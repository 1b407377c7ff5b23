package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"family-meal-planner/internal/clipper"
	"family-meal-planner/internal/config"
	"family-meal-planner/internal/family"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"
)

// Profile is the on-disk household profile consumed by the CLI.
type Profile struct {
	Members     []family.Member    `json:"members"`
	Constraints family.Constraints `json:"constraints"`
	Habits      family.Habits      `json:"habits"`
}

// LoadProfile reads a household profile from a JSON file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}

// App holds the application's dependencies.
type App struct {
	generator    *planner.Generator
	dishClipper  *clipper.Clipper
	metricsStore *metrics.Store
	planRepo     *planner.PlanRepository
	shoppingRepo *planner.ShoppingRepository
	cfg          *config.Config
}

// NewApp creates and initializes a new App instance.
func NewApp(
	generator *planner.Generator,
	dishClipper *clipper.Clipper,
	metricsStore *metrics.Store,
	planRepo *planner.PlanRepository,
	shoppingRepo *planner.ShoppingRepository,
	cfg *config.Config,
) *App {
	return &App{
		generator:    generator,
		dishClipper:  dishClipper,
		metricsStore: metricsStore,
		planRepo:     planRepo,
		shoppingRepo: shoppingRepo,
		cfg:          cfg,
	}
}

// GeneratePlan generates and prints a plan for the given profile. A non-nil
// excludeIDs (even empty, via the correction flag) requests dishes distinct
// from previously seen ones.
func (a *App) GeneratePlan(ctx context.Context, userID string, profile *Profile, excludeIDs []string) error {
	fmt.Println("Generating family recipe plan...")

	plan, meta := a.generator.GeneratePlan(ctx, profile.Members, profile.Constraints, profile.Habits, excludeIDs)
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics: %v", err)
	}

	planID, err := a.planRepo.Save(ctx, userID, plan)
	if err != nil {
		log.Printf("Warning: failed to persist plan: %v", err)
	} else {
		log.Printf("Plan stored with id %d", planID)
	}

	printPlan(plan)
	return nil
}

// Supplement requests one extra collection for a free-text need and merges
// it into the user's latest stored plan.
func (a *App) Supplement(ctx context.Context, userID string, profile *Profile, request string) error {
	fmt.Printf("Generating supplementary collection for: %q...\n", request)

	collections, meta := a.generator.GenerateSupplement(ctx, profile.Members, profile.Constraints, request)
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics: %v", err)
	}

	if stored, err := a.planRepo.Latest(ctx, userID); err == nil && stored != nil {
		if err := a.planRepo.AppendCollections(ctx, stored.ID, collections); err != nil {
			log.Printf("Warning: failed to merge supplement into plan %d: %v", stored.ID, err)
		}
	}

	for _, c := range collections {
		printCollection(c)
	}
	return nil
}

// ImportDish clips a dish from a recipe page and prints its identifier for
// use in exclusion lists.
func (a *App) ImportDish(ctx context.Context, url string) error {
	fmt.Printf("Importing dish from %s...\n", url)

	recipe, err := a.dishClipper.ClipURL(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to import dish: %w", err)
	}

	fmt.Printf("Imported: %s (%s)\n", recipe.Title, recipe.Description)
	fmt.Printf("Exclusion id: %s\n", recipe.ID)
	return nil
}

// ExpandWeekly derives a weekly rotation from the user's latest plan, merges
// it into the stored plan, and prints it. Purely local: no provider call.
func (a *App) ExpandWeekly(ctx context.Context, userID string) error {
	stored, err := a.planRepo.Latest(ctx, userID)
	if err != nil {
		return err
	}
	if stored == nil || len(stored.Plan.Recipes) == 0 {
		return fmt.Errorf("no stored plan for user %s; generate one first", userID)
	}

	collection := planner.WeeklyCollection(stored.Plan.Recipes)
	if err := a.planRepo.AppendCollections(ctx, stored.ID, []planner.Collection{collection}); err != nil {
		log.Printf("Warning: failed to merge weekly expansion into plan %d: %v", stored.ID, err)
	}

	printCollection(collection)
	return nil
}

// ShoppingList builds and persists a shopping list for the first collection
// of the user's latest plan.
func (a *App) ShoppingList(ctx context.Context, userID string) error {
	stored, err := a.planRepo.Latest(ctx, userID)
	if err != nil {
		return err
	}
	if stored == nil || len(stored.Plan.Scenarios) == 0 {
		return fmt.Errorf("no stored plan for user %s; generate one first", userID)
	}

	collection := stored.Plan.Scenarios[0]
	items, meta, err := a.generator.BuildShoppingList(ctx, collection)
	if recErr := a.metricsStore.RecordMeta(meta); recErr != nil {
		log.Printf("Warning: failed to record metrics: %v", recErr)
	}
	if err != nil {
		return err
	}

	if _, err := a.shoppingRepo.Save(ctx, &planner.ShoppingList{
		UserID: userID,
		PlanID: stored.ID,
		Items:  items,
	}); err != nil {
		log.Printf("Warning: failed to persist shopping list: %v", err)
	}

	fmt.Printf("Shopping list for %q:\n", collection.Title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
	return nil
}

// ShowMetrics prints recent usage.
func (a *App) ShowMetrics(days int) error {
	usage, err := a.metricsStore.GetDailyUsage(days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Println("No usage recorded yet.")
		return nil
	}
	for _, d := range usage {
		fmt.Printf("%s: %d prompt + %d completion tokens, %d executions, %d fallbacks\n",
			d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution, d.TotalFallbacks)
	}
	return nil
}

func printPlan(plan *planner.PlanResult) {
	fmt.Printf("\n=== %s ===\n%s\n\n", plan.ServiceModeTitle, plan.ServiceModeText)
	fmt.Printf("%s\n\n", plan.FamilySummaryText)

	for _, p := range plan.PainPoints {
		fmt.Printf("%s %s: %s -> %s\n", p.Icon, p.Title, p.Pain, p.Solution)
	}
	fmt.Println()

	for _, c := range plan.Scenarios {
		printCollection(c)
	}
}

func printCollection(c planner.Collection) {
	fmt.Printf("--- %s ---\n%s\n", c.Title, c.Strategy)
	for _, r := range c.Recipes {
		fmt.Printf("  * %s (%d min, %d kcal) - %s\n", r.Title, r.TimeMinutes, r.Calories, r.MatchReason)
	}
	fmt.Println()
}
