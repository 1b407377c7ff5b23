package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"family-meal-planner/internal/clipper"
	"family-meal-planner/internal/config"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const sessionTTL = 2 * time.Hour

// Bot wraps the Telegram API around the plan generator: it runs the profile
// wizard, triggers generation, and serves supplements, dish imports, and
// shopping lists.
type Bot struct {
	api          *tgbotapi.BotAPI
	generator    *planner.Generator
	dishClipper  *clipper.Clipper
	metricsStore *metrics.Store
	sessions     *SessionRepository
	planRepo     *planner.PlanRepository
	shoppingRepo *planner.ShoppingRepository
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	generator *planner.Generator,
	dishClipper *clipper.Clipper,
	metricsStore *metrics.Store,
	sessions *SessionRepository,
	planRepo *planner.PlanRepository,
	shoppingRepo *planner.ShoppingRepository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		generator:    generator,
		dishClipper:  dishClipper,
		metricsStore: metricsStore,
		sessions:     sessions,
		planRepo:     planRepo,
		shoppingRepo: shoppingRepo,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		b.startWizard(ctx, userID, msg.Chat.ID)
	case text == "/cancel":
		b.cancelSession(ctx, userID, msg.Chat.ID)
	case text == "/metrics":
		b.handleMetricsRequest(msg)
	case strings.HasPrefix(text, "/more"):
		b.handleSupplement(ctx, userID, msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/more")))
	case strings.HasPrefix(text, "/dish"):
		b.handleDishImport(ctx, userID, msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/dish")))
	case text == "/shoplist":
		b.handleShoppingList(ctx, userID, msg.Chat.ID)
	case text == "/week":
		b.handleWeeklyExpand(ctx, userID, msg.Chat.ID)
	default:
		b.handleWizardTurn(ctx, userID, msg.Chat.ID, text)
	}
}

func (b *Bot) startWizard(ctx context.Context, userID string, chatID int64) {
	if s, _ := b.sessions.GetActive(ctx, userID, time.Now()); s != nil {
		_ = b.sessions.Delete(ctx, s.ID)
	}

	if _, err := b.sessions.Create(ctx, userID, StateRole, &WizardData{}, sessionTTL); err != nil {
		log.Printf("Failed to create session for %s: %v", userID, err)
		b.send(chatID, "⚠️ 初始化失败，请稍后再试。")
		return
	}
	b.send(chatID, "👨‍👩‍👧 我们先建立全家的饮食档案。\n第一位成员的角色？"+joinRoles())
}

func (b *Bot) cancelSession(ctx context.Context, userID string, chatID int64) {
	if s, _ := b.sessions.GetActive(ctx, userID, time.Now()); s != nil {
		_ = b.sessions.Delete(ctx, s.ID)
	}
	b.send(chatID, "已重置。发送 /start 重新开始。")
}

func (b *Bot) handleWizardTurn(ctx context.Context, userID string, chatID int64, text string) {
	session, err := b.sessions.GetActive(ctx, userID, time.Now())
	if err != nil || session == nil {
		b.send(chatID, "发送 /start 开始定制全家菜谱方案。")
		return
	}

	data, err := session.Data()
	if err != nil {
		log.Printf("Corrupt session %d: %v", session.ID, err)
		_ = b.sessions.Delete(ctx, session.ID)
		b.send(chatID, "⚠️ 会话数据异常，请 /start 重新开始。")
		return
	}

	// A generation is already running for this user; don't start another.
	if session.State == StateGenerating {
		b.send(chatID, "⏳ 方案正在生成中，请稍候……")
		return
	}

	if session.State == StateReady && text == "生成" {
		b.runGeneration(ctx, session, data, chatID)
		return
	}

	nextState, reply := Advance(session.State, data, text)
	if err := b.sessions.Update(ctx, session.ID, nextState, data); err != nil {
		log.Printf("Failed to update session %d: %v", session.ID, err)
	}
	b.send(chatID, reply)
}

func (b *Bot) runGeneration(ctx context.Context, session *Session, data *WizardData, chatID int64) {
	if err := b.sessions.Update(ctx, session.ID, StateGenerating, data); err != nil {
		log.Printf("Failed to mark session %d busy: %v", session.ID, err)
	}
	b.send(chatID, "🧑‍🍳 正在为全家定制菜谱方案……")

	plan, meta := b.generator.GeneratePlan(ctx, data.Members, data.Constraints, data.Habits, data.ExcludeIDs)
	if err := b.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Failed to record metrics: %v", err)
	}

	planID, err := b.planRepo.Save(ctx, session.UserID, plan)
	if err != nil {
		log.Printf("Failed to save plan for %s: %v", session.UserID, err)
	}
	data.PlanID = planID

	if err := b.sessions.Update(ctx, session.ID, StateReady, data); err != nil {
		log.Printf("Failed to reset session %d: %v", session.ID, err)
	}

	for _, m := range formatPlanMarkdown(plan) {
		b.send(chatID, m)
	}
	b.send(chatID, "想补充一类菜？发送 /more 加一句需求，例如 /more 给爷爷来点少盐的。")
}

func (b *Bot) handleSupplement(ctx context.Context, userID string, chatID int64, request string) {
	if request == "" {
		b.send(chatID, "用法：/more <需求>，例如 /more 想吃点麻辣的")
		return
	}

	session, _ := b.sessions.GetActive(ctx, userID, time.Now())
	if session == nil {
		b.send(chatID, "请先 /start 建立档案并生成方案。")
		return
	}
	if session.State == StateGenerating {
		b.send(chatID, "⏳ 方案正在生成中，请稍候……")
		return
	}
	data, err := session.Data()
	if err != nil || len(data.Members) == 0 {
		b.send(chatID, "请先 /start 建立档案并生成方案。")
		return
	}

	b.send(chatID, "🧑‍🍳 正在生成补充合集……")
	collections, meta := b.generator.GenerateSupplement(ctx, data.Members, data.Constraints, request)
	if err := b.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Failed to record metrics: %v", err)
	}

	if data.PlanID != 0 {
		if err := b.planRepo.AppendCollections(ctx, data.PlanID, collections); err != nil {
			log.Printf("Failed to append collections to plan %d: %v", data.PlanID, err)
		}
	}

	for _, c := range collections {
		b.send(chatID, formatCollectionMarkdown(c))
	}
}

func (b *Bot) handleDishImport(ctx context.Context, userID string, chatID int64, url string) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		b.send(chatID, "用法：/dish <菜谱网页链接>")
		return
	}

	b.send(chatID, "✂️ 正在识别这道菜……")
	recipe, err := b.dishClipper.ClipURL(ctx, url)
	if err != nil {
		log.Printf("Error clipping dish: %v", err)
		b.send(chatID, "❌ 没能识别出这道菜，换个链接试试。")
		return
	}

	if session, _ := b.sessions.GetActive(ctx, userID, time.Now()); session != nil {
		if data, err := session.Data(); err == nil {
			data.ExcludeIDs = append(data.ExcludeIDs, recipe.ID)
			_ = b.sessions.Update(ctx, session.ID, session.State, data)
		}
	}

	b.send(chatID, fmt.Sprintf("✅ 已记录在做菜式：*%s*\n_%s_\n之后生成的方案会避开类似菜。", recipe.Title, recipe.Description))
}

func (b *Bot) handleWeeklyExpand(ctx context.Context, userID string, chatID int64) {
	stored, err := b.planRepo.Latest(ctx, userID)
	if err != nil || stored == nil || len(stored.Plan.Recipes) == 0 {
		b.send(chatID, "还没有方案。先 /start 生成一份吧。")
		return
	}

	collection := planner.WeeklyCollection(stored.Plan.Recipes)
	if err := b.planRepo.AppendCollections(ctx, stored.ID, []planner.Collection{collection}); err != nil {
		log.Printf("Failed to append weekly expansion to plan %d: %v", stored.ID, err)
	}

	b.send(chatID, formatCollectionMarkdown(collection))
}

func (b *Bot) handleShoppingList(ctx context.Context, userID string, chatID int64) {
	stored, err := b.planRepo.Latest(ctx, userID)
	if err != nil || stored == nil || len(stored.Plan.Scenarios) == 0 {
		b.send(chatID, "还没有方案。先 /start 生成一份吧。")
		return
	}

	// First collection is the common-denominator family menu.
	collection := stored.Plan.Scenarios[0]
	b.send(chatID, "🛒 正在汇总采购清单……")

	items, meta, err := b.generator.BuildShoppingList(ctx, collection)
	if recErr := b.metricsStore.RecordMeta(meta); recErr != nil {
		log.Printf("Failed to record metrics: %v", recErr)
	}
	if err != nil {
		log.Printf("Shopping list failed: %v", err)
		b.send(chatID, "❌ 清单生成失败，请稍后再试。")
		return
	}

	if _, err := b.shoppingRepo.Save(ctx, &planner.ShoppingList{
		UserID: userID,
		PlanID: stored.ID,
		Items:  items,
	}); err != nil {
		log.Printf("Failed to save shopping list: %v", err)
	}

	b.send(chatID, formatShoppingListMarkdown(collection.Title, items))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs, %d fallbacks)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.TotalFallbacks))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.send(msg.Chat.ID, sb.String())
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
