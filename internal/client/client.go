package client

import (
	"time"

	"coach-planner/internal/macros"
)

// Client is a coached person with optional default nutrition targets.
type Client struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TelegramID int64  `json:"telegram_id,omitempty"`

	// Targets are the client's own fields; zero values mean "not set".
	Targets macros.Targets `json:"targets"`

	MealsPerDay  int    `json:"meals_per_day,omitempty"`
	VarietyLevel string `json:"variety_level,omitempty"`
	AutoPlan     bool   `json:"auto_plan,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MealPlan is a coach-assigned set of daily targets. Only one per client is active.
type MealPlan struct {
	ID        int64          `json:"id"`
	ClientID  string         `json:"client_id"`
	Targets   macros.Targets `json:"targets"`
	CreatedAt time.Time      `json:"created_at"`
}
