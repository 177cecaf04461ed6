package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"coach-planner/internal/macros"
	"coach-planner/internal/planner"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath    string
	PlanArchivePath string
	PlanArchiveKeep int

	DefaultMealsPerDay  macros.MealsPerDay
	DefaultVarietyLevel planner.VarietyLevel

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	GhostURL      string
	GhostAdminKey string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	APIJWTSecret       string
	WeeklyPlanSchedule string
	Port               string
}

// Load reads an optional .env file (or the given files) into the environment, then builds
// the Config. Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", "data/planner.db"),
		PlanArchivePath:    getEnv("PLAN_ARCHIVE_PATH", "data/plans"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          os.Getenv("GROQ_MODEL"),
		GhostURL:           strings.TrimRight(os.Getenv("GHOST_API_URL"), "/"),
		GhostAdminKey:      os.Getenv("GHOST_ADMIN_API_KEY"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		APIJWTSecret:       os.Getenv("API_JWT_SECRET"),
		WeeklyPlanSchedule: getEnv("WEEKLY_PLAN_SCHEDULE", "0 0 18 * * 0"),
		Port:               getEnv("PORT", "8080"),
	}

	keep, err := getInt("PLAN_ARCHIVE_KEEP", 4)
	if err != nil {
		return nil, err
	}
	if keep < 1 {
		return nil, fmt.Errorf("PLAN_ARCHIVE_KEEP must be at least 1, got %d", keep)
	}
	cfg.PlanArchiveKeep = keep

	meals, err := getInt("DEFAULT_MEALS_PER_DAY", int(macros.DefaultMealsPerDay))
	if err != nil {
		return nil, err
	}
	if cfg.DefaultMealsPerDay, err = macros.ParseMealsPerDay(meals); err != nil {
		return nil, fmt.Errorf("DEFAULT_MEALS_PER_DAY: %w", err)
	}

	level := getEnv("DEFAULT_VARIETY_LEVEL", string(planner.DefaultVarietyLevel))
	if cfg.DefaultVarietyLevel, err = planner.ParseVarietyLevel(level); err != nil {
		return nil, fmt.Errorf("DEFAULT_VARIETY_LEVEL: %w", err)
	}

	if (cfg.GhostURL == "") != (cfg.GhostAdminKey == "") {
		return nil, fmt.Errorf("GHOST_API_URL and GHOST_ADMIN_API_KEY must be set together")
	}

	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS contains an invalid id %q", part)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID must be an integer, got %q", raw)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// GhostEnabled reports whether publishing to Ghost is configured.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}

// NotesEnabled reports whether an LLM is configured for coach notes.
func (c *Config) NotesEnabled() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// TelegramEnabled reports whether the bot should run.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// RequireAPISecret fails when the HTTP API has no signing secret.
func (c *Config) RequireAPISecret() error {
	if c.APIJWTSecret == "" {
		return fmt.Errorf("API_JWT_SECRET environment variable not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}
