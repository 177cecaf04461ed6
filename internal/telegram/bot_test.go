package telegram

import (
	"errors"
	"strings"
	"testing"

	"coach-planner/internal/app"
	"coach-planner/internal/macros"
	"coach-planner/internal/metrics"
	"coach-planner/internal/planner"
)

func testPlan() *planner.WeekPlan {
	plan := &planner.WeekPlan{
		ClientID: "ana",
		Targets:  macros.Targets{Calories: 2000, Protein: 150},
	}
	for i, name := range planner.DayNames {
		plan.WeekStructure[i] = planner.DayPlan{
			Day: name,
			Meals: []planner.MealAssignment{
				{Slot: macros.Breakfast, MealID: "m-oats", MealName: "Oats_bowl", ScaleFactor: 1.5, Calories: 600, Protein: 45},
				{Slot: macros.MorningSnack, MealID: "m-apple", MealName: "Apple", ScaleFactor: 2, Calories: 200, Protein: 15},
			},
			Totals:   planner.Totals{Kcal: 800, Protein: 60},
			Accuracy: planner.Accuracy{Calories: 40, Protein: 40},
		}
	}
	return plan
}

func TestFormatWeekPlanMarkdown(t *testing.T) {
	out := formatWeekPlanMarkdown(testPlan())

	if !strings.Contains(out, "📅 *Weekly Meal Plan* (2000 kcal / 150 g protein)") {
		t.Error("Missing plan header")
	}
	if !strings.Contains(out, "*Monday*") || !strings.Contains(out, "*Sunday*") {
		t.Error("Missing day headers")
	}
	if !strings.Contains(out, "• Breakfast: Oats\\_bowl x1.50 (600 kcal, 45g P)") {
		t.Error("Missing escaped breakfast line")
	}
	if !strings.Contains(out, "• Morning snack: Apple x2.00") {
		t.Error("Missing snack line")
	}
	if !strings.Contains(out, "Σ 800 kcal, 60g P (40% / 40%)") {
		t.Error("Missing day totals")
	}
	if !strings.Contains(out, "🎯 *Average accuracy:* 40% kcal, 40% protein") {
		t.Error("Missing average accuracy")
	}
	if !strings.Contains(out, "🍽 2 different meals this week") {
		t.Error("Missing variety line")
	}
}

func TestParsePlanArgs(t *testing.T) {
	t.Run("ClientOnly", func(t *testing.T) {
		id, prefs, err := parsePlanArgs(" ana ")
		if err != nil || id != "ana" || prefs != (planner.Preferences{}) {
			t.Errorf("Unexpected result %q %+v %v", id, prefs, err)
		}
	})

	t.Run("AnyOrder", func(t *testing.T) {
		id, prefs, err := parsePlanArgs("ana HIGH 5")
		if err != nil {
			t.Fatalf("Unexpected error %v", err)
		}
		if id != "ana" || prefs.MealsPerDay != macros.FiveMeals || prefs.VarietyLevel != planner.VarietyHigh {
			t.Errorf("Unexpected result %q %+v", id, prefs)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if _, _, err := parsePlanArgs(""); err == nil {
			t.Error("Expected an error for missing client")
		}
		if _, _, err := parsePlanArgs("ana 6"); !errors.Is(err, macros.ErrUnsupportedMealsPerDay) {
			t.Errorf("Expected ErrUnsupportedMealsPerDay, got %v", err)
		}
		if _, _, err := parsePlanArgs("ana extreme"); !errors.Is(err, planner.ErrUnknownVarietyLevel) {
			t.Errorf("Expected ErrUnknownVarietyLevel, got %v", err)
		}
	})
}

func TestErrorText(t *testing.T) {
	if got := errorText(planner.ErrNoMealsAvailable); !strings.Contains(got, "no meals") {
		t.Errorf("Unexpected text %q", got)
	}
	if got := errorText(errors.New("disk on fire")); strings.Contains(got, "disk") {
		t.Errorf("Internal error leaked: %q", got)
	}
}

func TestFormatMetricsMarkdown(t *testing.T) {
	out := formatMetricsMarkdown(&app.MetricsReport{
		Usage:       []metrics.DailyUsage{{Date: "2026-03-10", TotalPrompt: 100, TotalCompletion: 20, TotalExecution: 2}},
		Generations: []metrics.DailyGenerations{{Date: "2026-03-10", Plans: 3, AvgCalorieAccuracy: 99, AvgProteinAccuracy: 101}},
		Health:      metrics.SysHealth{AllocMB: 5, SysMB: 20, Goroutines: 8, DBSize: "1.2 MB", ArchiveSize: "40 kB"},
	})

	for _, want := range []string{
		"• *2026-03-10*: 3 plans, 99% kcal, 101% protein",
		"• *2026-03-10*: 120 tokens (2 execs)",
		"• Database: 1.2 MB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q", want)
		}
	}
}
