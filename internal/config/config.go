package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultZhipuAPIURL = "https://open.bigmodel.cn/api/paas/v4/chat/completions"

// Config holds the configuration for the application.
type Config struct {
	// Zhipu (primary text generator)
	ZhipuAPIKey string
	ZhipuAPIURL string

	// Gemini (optional alternative text generator)
	GeminiAPIKey string

	// Storage
	DatabasePath string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	zhipuKey := os.Getenv("ZHIPU_API_KEY")
	if zhipuKey == "" {
		return nil, fmt.Errorf("ZHIPU_API_KEY environment variable not set")
	}

	zhipuURL := os.Getenv("ZHIPU_API_URL")
	if zhipuURL == "" {
		zhipuURL = defaultZhipuAPIURL
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/planner.db"
	}

	// Telegram config (optional for CLI, required for the bot)
	var allowedIDs []int64
	for _, part := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		adminID = id
	}

	return &Config{
		ZhipuAPIKey:            zhipuKey,
		ZhipuAPIURL:            zhipuURL,
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		DatabasePath:           dbPath,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
	}, nil
}
