package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"coach-planner/internal/client"
	"coach-planner/internal/macros"
	"coach-planner/internal/meal"
)

type mockSource struct {
	client   *client.Client
	meals    []meal.CustomMeal
	mealPlan *client.MealPlan
	err      error
}

func (m *mockSource) GetClient(ctx context.Context, clientID string) (*client.Client, error) {
	return m.client, m.err
}

func (m *mockSource) GetClientCustomMeals(ctx context.Context, clientID string) ([]meal.CustomMeal, error) {
	return m.meals, nil
}

func (m *mockSource) GetClientMealPlan(ctx context.Context, clientID string) (*client.MealPlan, error) {
	return m.mealPlan, nil
}

var fixedNow = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestGenerator(src DataSource, seed uint64) *Generator {
	return NewGenerator(src, WithSeed(seed), WithClock(func() time.Time { return fixedNow }))
}

func catalog(n int) []meal.CustomMeal {
	meals := make([]meal.CustomMeal, n)
	for i := range meals {
		cal := 300 + float64(i)*50
		meals[i] = meal.CustomMeal{
			ID:       fmt.Sprintf("meal-%02d", i),
			ClientID: "c1",
			Name:     fmt.Sprintf("Meal %d", i),
			Calories: cal,
			Protein:  cal * 0.075,
			Carbs:    cal * 0.1,
			Fat:      cal * 0.03,
		}
	}
	return meals
}

func testClient() *client.Client {
	return &client.Client{
		ID:      "c1",
		Name:    "Ana",
		Targets: macros.Targets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 70},
	}
}

func TestGenerateWeekPlan_TotalsMatchSlots(t *testing.T) {
	src := &mockSource{client: testClient(), meals: catalog(8)}
	for _, m := range []macros.MealsPerDay{macros.ThreeMeals, macros.FourMeals, macros.FiveMeals} {
		plan, err := newTestGenerator(src, 7).GenerateWeekPlan(context.Background(), "c1", Preferences{MealsPerDay: m})
		if err != nil {
			t.Fatalf("GenerateWeekPlan failed: %v", err)
		}

		for _, day := range plan.WeekStructure {
			if len(day.Meals) != int(m) {
				t.Fatalf("%s: expected %d meals, got %d", day.Day, m, len(day.Meals))
			}
			var kcal, prot int
			for _, a := range day.Meals {
				kcal += a.Calories
				prot += a.Protein
			}
			if day.Totals.Kcal != kcal || day.Totals.Protein != prot {
				t.Errorf("%s: totals %+v do not match slot sums kcal=%d protein=%d", day.Day, day.Totals, kcal, prot)
			}
		}
	}
}

func TestGenerateWeekPlan_ScaleFactor(t *testing.T) {
	meals := catalog(6)
	byID := make(map[string]meal.CustomMeal)
	for _, m := range meals {
		byID[m.ID] = m
	}

	src := &mockSource{client: testClient(), meals: meals}
	plan, err := newTestGenerator(src, 11).GenerateWeekPlan(context.Background(), "c1", Preferences{})
	if err != nil {
		t.Fatalf("GenerateWeekPlan failed: %v", err)
	}

	for _, day := range plan.WeekStructure {
		for _, a := range day.Meals {
			if a.ScaleFactor <= 0 {
				t.Errorf("%s/%s: scale factor %v is not positive", day.Day, a.Slot, a.ScaleFactor)
			}
			want := int(math.Round(byID[a.MealID].Calories * a.ScaleFactor))
			if a.Calories != want {
				t.Errorf("%s/%s: calories %d, want %d", day.Day, a.Slot, a.Calories, want)
			}
		}
	}
}

func TestGenerateWeekPlan_SingleMealFillsWeek(t *testing.T) {
	src := &mockSource{client: testClient(), meals: catalog(1)}
	plan, err := newTestGenerator(src, 3).GenerateWeekPlan(context.Background(), "c1", Preferences{
		MealsPerDay:  macros.FourMeals,
		VarietyLevel: VarietyHigh,
	})
	if err != nil {
		t.Fatalf("GenerateWeekPlan failed: %v", err)
	}

	for _, day := range plan.WeekStructure {
		if len(day.Meals) != 4 {
			t.Fatalf("%s: expected 4 meals, got %d", day.Day, len(day.Meals))
		}
		for _, a := range day.Meals {
			if a.MealID != "meal-00" {
				t.Errorf("%s/%s: expected meal-00, got %s", day.Day, a.Slot, a.MealID)
			}
		}
	}
	if plan.MealsUsed != 1 {
		t.Errorf("Expected mealsUsed 1, got %d", plan.MealsUsed)
	}
}

func TestGenerateWeekPlan_NoMeals(t *testing.T) {
	t.Run("EmptyCatalog", func(t *testing.T) {
		src := &mockSource{client: testClient()}
		plan, err := newTestGenerator(src, 1).GenerateWeekPlan(context.Background(), "c1", Preferences{})
		if !errors.Is(err, ErrNoMealsAvailable) {
			t.Fatalf("Expected ErrNoMealsAvailable, got %v", err)
		}
		if plan != nil {
			t.Errorf("Expected no plan, got %+v", plan)
		}
	})

	t.Run("OnlyZeroCalorieMeals", func(t *testing.T) {
		src := &mockSource{client: testClient(), meals: []meal.CustomMeal{
			{ID: "water", Name: "Water", Calories: 0},
			{ID: "bad", Name: "Bad data", Calories: -10},
		}}
		_, err := newTestGenerator(src, 1).GenerateWeekPlan(context.Background(), "c1", Preferences{})
		if !errors.Is(err, ErrNoMealsAvailable) {
			t.Fatalf("Expected ErrNoMealsAvailable, got %v", err)
		}
	})

	t.Run("ZeroCalorieMealsSkipped", func(t *testing.T) {
		meals := append(catalog(3), meal.CustomMeal{ID: "water", Name: "Water"})
		src := &mockSource{client: testClient(), meals: meals}
		plan, err := newTestGenerator(src, 1).GenerateWeekPlan(context.Background(), "c1", Preferences{})
		if err != nil {
			t.Fatalf("GenerateWeekPlan failed: %v", err)
		}
		if plan.MealsUsed != 3 {
			t.Errorf("Expected mealsUsed 3, got %d", plan.MealsUsed)
		}
		for _, day := range plan.WeekStructure {
			for _, a := range day.Meals {
				if a.MealID == "water" {
					t.Errorf("%s/%s: zero-calorie meal was planned", day.Day, a.Slot)
				}
			}
		}
	})
}

func assertAccuracyNear100(t *testing.T, plan *WeekPlan) {
	t.Helper()
	for _, day := range plan.WeekStructure {
		if d := day.Accuracy.Calories - 100; d < -2 || d > 2 {
			t.Errorf("%s: calorie accuracy %d not within 100±2", day.Day, day.Accuracy.Calories)
		}
		if d := day.Accuracy.Protein - 100; d < -2 || d > 2 {
			t.Errorf("%s: protein accuracy %d not within 100±2", day.Day, day.Accuracy.Protein)
		}
	}
}

func TestGenerateWeekPlan_Accuracy(t *testing.T) {
	t.Run("MixedCatalog", func(t *testing.T) {
		meals := []meal.CustomMeal{
			{ID: "a", Name: "Oats", Calories: 400, Protein: 30, Carbs: 50, Fat: 10},
			{ID: "b", Name: "Chicken rice", Calories: 600, Protein: 45, Carbs: 70, Fat: 15},
			{ID: "c", Name: "Salmon", Calories: 800, Protein: 60, Carbs: 60, Fat: 30},
			{ID: "d", Name: "Wrap", Calories: 500, Protein: 37.5, Carbs: 55, Fat: 14},
		}
		src := &mockSource{client: testClient(), meals: meals}

		plan, err := newTestGenerator(src, 5).GenerateWeekPlan(context.Background(), "c1", Preferences{
			MealsPerDay: macros.ThreeMeals,
		})
		if err != nil {
			t.Fatalf("GenerateWeekPlan failed: %v", err)
		}
		assertAccuracyNear100(t, plan)
	})

	t.Run("SingleMealMatchingTargets", func(t *testing.T) {
		src := &mockSource{client: testClient(), meals: []meal.CustomMeal{
			{ID: "only", Name: "Big bowl", Calories: 2000, Protein: 150},
		}}

		for _, level := range []VarietyLevel{VarietyLow, VarietyMedium, VarietyHigh} {
			plan, err := newTestGenerator(src, 3).GenerateWeekPlan(context.Background(), "c1", Preferences{
				MealsPerDay:  macros.ThreeMeals,
				VarietyLevel: level,
			})
			if err != nil {
				t.Fatalf("%s: GenerateWeekPlan failed: %v", level, err)
			}
			assertAccuracyNear100(t, plan)
			if plan.DistinctMeals() != 1 {
				t.Errorf("%s: expected 1 distinct meal, got %d", level, plan.DistinctMeals())
			}
		}
	})
}

func TestGenerateWeekPlan_VarietyGap(t *testing.T) {
	src := &mockSource{client: testClient(), meals: catalog(12)}

	t.Run("High", func(t *testing.T) {
		for seed := uint64(1); seed <= 20; seed++ {
			plan, err := newTestGenerator(src, seed).GenerateWeekPlan(context.Background(), "c1", Preferences{
				MealsPerDay:  macros.FourMeals,
				VarietyLevel: VarietyHigh,
			})
			if err != nil {
				t.Fatalf("GenerateWeekPlan failed: %v", err)
			}

			lastUsed := make(map[string]int)
			for day, dp := range plan.WeekStructure {
				for _, a := range dp.Meals {
					if last, ok := lastUsed[a.MealID]; ok && day-last < 3 {
						t.Fatalf("seed %d: meal %s reused after %d days", seed, a.MealID, day-last)
					}
					lastUsed[a.MealID] = day
				}
			}
		}
	})

	t.Run("LowNoSameDayRepeat", func(t *testing.T) {
		plan, err := newTestGenerator(src, 9).GenerateWeekPlan(context.Background(), "c1", Preferences{
			MealsPerDay:  macros.FiveMeals,
			VarietyLevel: VarietyLow,
		})
		if err != nil {
			t.Fatalf("GenerateWeekPlan failed: %v", err)
		}
		for _, dp := range plan.WeekStructure {
			seen := make(map[string]bool)
			for _, a := range dp.Meals {
				if seen[a.MealID] {
					t.Errorf("%s: meal %s repeated on the same day", dp.Day, a.MealID)
				}
				seen[a.MealID] = true
			}
		}
	})
}

func TestGenerateWeekPlan_SeedIsDeterministic(t *testing.T) {
	src := &mockSource{client: testClient(), meals: catalog(10)}

	first, err := newTestGenerator(src, 42).GenerateWeekPlan(context.Background(), "c1", Preferences{})
	if err != nil {
		t.Fatalf("GenerateWeekPlan failed: %v", err)
	}
	second, err := newTestGenerator(src, 42).GenerateWeekPlan(context.Background(), "c1", Preferences{})
	if err != nil {
		t.Fatalf("GenerateWeekPlan failed: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Expected identical plans for the same seed")
	}
}

func TestGenerateWeekPlan_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   *mockSource
		prefs Preferences
		want  error
	}{
		{"UnsupportedMeals", &mockSource{client: testClient(), meals: catalog(3)}, Preferences{MealsPerDay: 6}, macros.ErrUnsupportedMealsPerDay},
		{"UnknownVariety", &mockSource{client: testClient(), meals: catalog(3)}, Preferences{VarietyLevel: "extreme"}, ErrUnknownVarietyLevel},
		{"ClientNotFound", &mockSource{meals: catalog(3)}, Preferences{}, ErrClientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGenerator(tt.src, 1).GenerateWeekPlan(context.Background(), "c1", tt.prefs)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("SourceError", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := newTestGenerator(&mockSource{err: boom}, 1).GenerateWeekPlan(context.Background(), "c1", Preferences{})
		if !errors.Is(err, boom) {
			t.Errorf("Expected wrapped source error, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := &mockSource{client: testClient(), meals: catalog(3)}
		plan, err := newTestGenerator(src, 1).GenerateWeekPlan(ctx, "c1", Preferences{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if plan != nil {
			t.Errorf("Expected no partial plan")
		}
	})
}

func TestResolveTargets(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		got := ResolveTargets(nil, nil)
		if got != DefaultTargets {
			t.Errorf("Expected %+v, got %+v", DefaultTargets, got)
		}
	})

	t.Run("PerField", func(t *testing.T) {
		c := &client.Client{Targets: macros.Targets{Calories: 1800, Protein: 120}}
		mp := &client.MealPlan{Targets: macros.Targets{Protein: 140}}
		want := macros.Targets{Calories: 1800, Protein: 140, Carbs: 220, Fat: 73}
		if got := ResolveTargets(c, mp); got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("MealPlanWins", func(t *testing.T) {
		c := testClient()
		mp := &client.MealPlan{Targets: macros.Targets{Calories: 2500, Protein: 180, Carbs: 250, Fat: 80}}
		if got := ResolveTargets(c, mp); got != mp.Targets {
			t.Errorf("Expected %+v, got %+v", mp.Targets, got)
		}
	})
}

func TestWeekPlan_JSONShape(t *testing.T) {
	src := &mockSource{client: testClient(), meals: catalog(6)}
	plan, err := newTestGenerator(src, 2).GenerateWeekPlan(context.Background(), "c1", Preferences{})
	if err != nil {
		t.Fatalf("GenerateWeekPlan failed: %v", err)
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"weekStructure", "targets", "generatedAt", "mealsUsed", "preferences"} {
		if _, ok := top[key]; !ok {
			t.Errorf("Missing top-level key %q", key)
		}
	}

	var week map[string]map[string]json.RawMessage
	if err := json.Unmarshal(top["weekStructure"], &week); err != nil {
		t.Fatalf("Unmarshal weekStructure failed: %v", err)
	}
	for _, name := range DayNames {
		day, ok := week[name]
		if !ok {
			t.Fatalf("Missing day %q", name)
		}
		for _, key := range []string{"breakfast", "lunch", "dinner", "snacks", "totals", "accuracy"} {
			if _, ok := day[key]; !ok {
				t.Errorf("%s: missing key %q", name, key)
			}
		}
	}

	var decoded WeekPlan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.WeekStructure[6].Day != "sunday" {
		t.Errorf("Expected sunday last, got %q", decoded.WeekStructure[6].Day)
	}
	slots := []macros.Slot{macros.Breakfast, macros.Lunch, macros.Dinner, macros.Snacks}
	for i, a := range decoded.WeekStructure[0].Meals {
		if a.Slot != slots[i] {
			t.Errorf("slot %d: expected %s, got %s", i, slots[i], a.Slot)
		}
	}
	if decoded.WeekStructure[0].Totals != plan.WeekStructure[0].Totals {
		t.Errorf("Totals changed after decoding")
	}
}
