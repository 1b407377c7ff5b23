package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"family-meal-planner/internal/clipper"
	"family-meal-planner/internal/config"
	"family-meal-planner/internal/database"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/telegram"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL must be set for the bot")
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" && os.Getenv("LLM_PROVIDER") == "gemini" {
		textGen, err = llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
	} else {
		textGen = llm.NewZhipuClient(cfg)
	}

	generator := planner.NewGenerator(textGen, planner.RetryPolicy{})
	dishClipper := clipper.NewClipper(textGen)
	metricsStore := metrics.NewStore(db.SQL)
	sessions := telegram.NewSessionRepository(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL)
	shoppingRepo := planner.NewShoppingRepository(db.SQL)

	if err := sessions.CleanupExpired(ctx); err != nil {
		log.Printf("Warning: failed to clean up expired sessions: %v", err)
	}

	bot, err := telegram.NewBot(cfg, generator, dishClipper, metricsStore, sessions, planRepo, shoppingRepo)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}
	bot.RegisterHandlers()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Listening on :%s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
