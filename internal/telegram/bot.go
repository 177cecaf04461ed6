package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"coach-planner/internal/app"
	"coach-planner/internal/config"
	"coach-planner/internal/macros"
	"coach-planner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "🥗 *Meal plan bot*\n\n" +
	"/plan <client> [3|4|5] [low|medium|high] - generate a week\n" +
	"/latest <client> - show the newest stored week\n" +
	"/metrics - usage and health (admin)"

// Bot wraps the Telegram API and the planning app.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	return &Bot{api: bot, app: a, cfg: cfg}, nil
}

// WebhookHandler returns the handler Telegram posts updates to.
func (b *Bot) WebhookHandler() http.Handler {
	return http.HandlerFunc(b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	return userID == b.cfg.AdminTelegramID || slices.Contains(b.cfg.TelegramAllowedUserIDs, userID)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var text string
	switch msg.Command() {
	case "plan":
		text = b.handlePlan(ctx, msg.CommandArguments())
	case "latest":
		text = b.handleLatest(ctx, msg.CommandArguments())
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			text = "⛔ *Access Denied*: Admin only."
			break
		}
		text = b.handleMetrics(ctx)
	default:
		text = helpText
	}

	b.send(msg.Chat.ID, text)
}

func (b *Bot) send(chatID int64, text string) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("Failed to send reply to chat %d: %v", chatID, err)
	}
}

func (b *Bot) handlePlan(ctx context.Context, args string) string {
	clientID, prefs, err := parsePlanArgs(args)
	if err != nil {
		return "❌ " + err.Error() + "\n\nUsage: /plan <client> [3|4|5] [low|medium|high]"
	}

	res, err := b.app.GenerateWeekPlan(ctx, app.GenerateRequest{
		ClientID:    clientID,
		Preferences: prefs,
		Archive:     true,
		WithNote:    true,
	})
	if err != nil {
		log.Printf("Error generating plan for %s: %v", clientID, err)
		return errorText(err)
	}

	text := formatWeekPlanMarkdown(res.Plan)
	if res.Note != "" {
		text += "\n_" + escapeMarkdown(res.Note) + "_"
	}
	return text
}

func (b *Bot) handleLatest(ctx context.Context, args string) string {
	clientID := strings.TrimSpace(args)
	if clientID == "" {
		return "Usage: /latest <client>"
	}

	stored, err := b.app.LatestPlan(ctx, clientID)
	if err != nil {
		return errorText(err)
	}
	if stored == nil {
		return fmt.Sprintf("No plans stored for *%s* yet.", escapeMarkdown(clientID))
	}

	plan, err := stored.Decode()
	if err != nil {
		log.Printf("Error decoding plan %s: %v", stored.ID, err)
		return "❌ Stored plan could not be read."
	}
	return formatWeekPlanMarkdown(plan)
}

func (b *Bot) handleMetrics(ctx context.Context) string {
	report, err := b.app.Metrics(ctx, 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		return "❌ Error fetching metrics."
	}
	return formatMetricsMarkdown(report)
}

// parsePlanArgs reads "<client> [meals] [variety]". Optional tokens may come in any order.
func parsePlanArgs(args string) (string, planner.Preferences, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", planner.Preferences{}, errors.New("missing client id")
	}

	var prefs planner.Preferences
	for _, f := range fields[1:] {
		if n, err := strconv.Atoi(f); err == nil {
			m, err := macros.ParseMealsPerDay(n)
			if err != nil {
				return "", prefs, err
			}
			prefs.MealsPerDay = m
			continue
		}
		level, err := planner.ParseVarietyLevel(f)
		if err != nil {
			return "", prefs, err
		}
		prefs.VarietyLevel = level
	}
	return fields[0], prefs, nil
}

func errorText(err error) string {
	switch {
	case errors.Is(err, planner.ErrClientNotFound):
		return "❌ Unknown client."
	case errors.Is(err, planner.ErrNoMealsAvailable):
		return "❌ This client has no meals yet. Add meals to their catalog first."
	case errors.Is(err, macros.ErrUnsupportedMealsPerDay), errors.Is(err, planner.ErrUnknownVarietyLevel):
		return "❌ " + escapeMarkdown(err.Error())
	default:
		return "❌ *Error generating plan.* Please try again later."
	}
}

func formatWeekPlanMarkdown(plan *planner.WeekPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Weekly Meal Plan* (%.0f kcal / %.0f g protein)\n\n", plan.Targets.Calories, plan.Targets.Protein)

	for _, day := range plan.WeekStructure {
		fmt.Fprintf(&sb, "*%s*\n", strings.ToUpper(day.Day[:1])+day.Day[1:])
		for _, m := range day.Meals {
			fmt.Fprintf(&sb, "• %s: %s x%.2f (%d kcal, %dg P)\n", slotLabel(m.Slot), escapeMarkdown(m.MealName), m.ScaleFactor, m.Calories, m.Protein)
		}
		fmt.Fprintf(&sb, "Σ %d kcal, %dg P (%d%% / %d%%)\n\n", day.Totals.Kcal, day.Totals.Protein, day.Accuracy.Calories, day.Accuracy.Protein)
	}

	cal, prot := plan.AverageAccuracy()
	fmt.Fprintf(&sb, "🎯 *Average accuracy:* %.0f%% kcal, %.0f%% protein\n", cal, prot)
	fmt.Fprintf(&sb, "🍽 %d different meals this week", plan.DistinctMeals())
	return sb.String()
}

func formatMetricsMarkdown(r *app.MetricsReport) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Plans Generated*\n")
	if len(r.Generations) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, g := range r.Generations {
		fmt.Fprintf(&sb, "• *%s*: %d plans, %.0f%% kcal, %.0f%% protein\n", g.Date, g.Plans, g.AvgCalorieAccuracy, g.AvgProteinAccuracy)
	}

	sb.WriteString("\n🤖 *Recent LLM Activity*\n")
	if len(r.Usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range r.Usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", r.Health.AllocMB, r.Health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", r.Health.Goroutines)
	fmt.Fprintf(&sb, "• Database: %s\n", r.Health.DBSize)
	fmt.Fprintf(&sb, "• Archive: %s\n", r.Health.ArchiveSize)
	return sb.String()
}

func slotLabel(s macros.Slot) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

// escapeMarkdown escapes the characters legacy Markdown mode treats as markup.
func escapeMarkdown(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}
