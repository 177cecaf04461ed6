package planner

import (
	"errors"
	"fmt"
	"strings"

	"coach-planner/internal/macros"
)

// ErrUnknownVarietyLevel is returned when a variety level is not low, medium or high.
var ErrUnknownVarietyLevel = errors.New("unknown variety level")

// VarietyLevel controls how soon a meal may repeat and how much the scoring is jittered.
type VarietyLevel string

const (
	VarietyLow    VarietyLevel = "low"
	VarietyMedium VarietyLevel = "medium"
	VarietyHigh   VarietyLevel = "high"
)

// DefaultVarietyLevel is used when a caller does not pick a level.
const DefaultVarietyLevel = VarietyMedium

// varietyPolicy holds the knobs derived from a VarietyLevel.
type varietyPolicy struct {
	minDaysBetween int
	jitter         float64
}

var policies = map[VarietyLevel]varietyPolicy{
	VarietyLow:    {minDaysBetween: 1, jitter: 50},
	VarietyMedium: {minDaysBetween: 2, jitter: 100},
	VarietyHigh:   {minDaysBetween: 3, jitter: 200},
}

// ParseVarietyLevel validates a raw level, case-insensitively.
func ParseVarietyLevel(s string) (VarietyLevel, error) {
	v := VarietyLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := policies[v]; !ok {
		return "", fmt.Errorf("%w: %q (expected low, medium or high)", ErrUnknownVarietyLevel, s)
	}
	return v, nil
}

// MinDaysBetween is the minimum day gap before a meal may be reused.
func (v VarietyLevel) MinDaysBetween() int {
	return policies[v].minDaysBetween
}

func (v VarietyLevel) policy() varietyPolicy {
	return policies[v]
}

// Preferences are the caller's choices for one generation run.
type Preferences struct {
	MealsPerDay  macros.MealsPerDay `json:"mealsPerDay"`
	VarietyLevel VarietyLevel       `json:"varietyLevel"`
}

// Normalize fills defaults and validates both fields.
func (p Preferences) Normalize() (Preferences, error) {
	if p.MealsPerDay == 0 {
		p.MealsPerDay = macros.DefaultMealsPerDay
	}
	if _, err := macros.ParseMealsPerDay(int(p.MealsPerDay)); err != nil {
		return Preferences{}, err
	}

	if p.VarietyLevel == "" {
		p.VarietyLevel = DefaultVarietyLevel
	}
	level, err := ParseVarietyLevel(string(p.VarietyLevel))
	if err != nil {
		return Preferences{}, err
	}
	p.VarietyLevel = level

	return p, nil
}
