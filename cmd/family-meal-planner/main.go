package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"family-meal-planner/internal/app"
	"family-meal-planner/internal/clipper"
	"family-meal-planner/internal/config"
	"family-meal-planner/internal/database"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	profilePath := flag.String("profile", "", "Path to a household profile JSON file")
	userID := flag.String("user", "cli", "User id for stored plans")
	excludeFlag := flag.String("exclude", "", "Comma-separated recipe ids to steer away from")
	correct := flag.Bool("correct", false, "Request a full correction pass distinct from previous plans")
	supplement := flag.String("more", "", "Free-text request for one supplementary collection")
	dishURL := flag.String("dish", "", "Recipe page URL to import as an already-cooked dish")
	shoplist := flag.Bool("shoplist", false, "Build a shopping list for the latest plan")
	week := flag.Bool("week", false, "Expand the latest plan into a weekly rotation")
	showMetrics := flag.Bool("metrics", false, "Print recent usage metrics")
	retries := flag.Int("retries", 1, "Provider attempts per generation (1 = no retry)")
	flag.Parse()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	textGen := newTextGenerator(ctx, cfg)
	generator := planner.NewGenerator(textGen, planner.RetryPolicy{Attempts: *retries})
	dishClipper := clipper.NewClipper(textGen)
	metricsStore := metrics.NewStore(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	shoppingRepo := planner.NewShoppingRepository(db.SQL)

	application := app.NewApp(generator, dishClipper, metricsStore, planRepo, shoppingRepo, cfg)

	switch {
	case *showMetrics:
		err = application.ShowMetrics(7)
	case *dishURL != "":
		err = application.ImportDish(ctx, *dishURL)
	case *shoplist:
		err = application.ShoppingList(ctx, *userID)
	case *week:
		err = application.ExpandWeekly(ctx, *userID)
	case *supplement != "":
		var profile *app.Profile
		profile, err = app.LoadProfile(*profilePath)
		if err == nil {
			err = application.Supplement(ctx, *userID, profile, *supplement)
		}
	case *profilePath != "":
		var profile *app.Profile
		profile, err = app.LoadProfile(*profilePath)
		if err == nil {
			err = application.GeneratePlan(ctx, *userID, profile, excludeIDs(*excludeFlag, *correct))
		}
	default:
		fmt.Println("Usage: family-meal-planner -profile profile.json [-exclude id1,id2] [-correct]")
		fmt.Println("       family-meal-planner -profile profile.json -more \"给爷爷来点少盐的\"")
		fmt.Println("       family-meal-planner -dish https://example.com/recipe")
		fmt.Println("       family-meal-planner -shoplist | -week | -metrics")
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// excludeIDs returns nil for initial generation; a non-nil (possibly empty)
// list switches the request into distinct-from-seen semantics.
func excludeIDs(flagValue string, correct bool) []string {
	var ids []string
	for _, part := range strings.Split(flagValue, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	if ids == nil && correct {
		return []string{}
	}
	return ids
}

// newTextGenerator prefers Zhipu and falls back to Gemini when configured.
func newTextGenerator(ctx context.Context, cfg *config.Config) llm.TextGenerator {
	if cfg.GeminiAPIKey != "" && os.Getenv("LLM_PROVIDER") == "gemini" {
		gen, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		return gen
	}
	return llm.NewZhipuClient(cfg)
}
