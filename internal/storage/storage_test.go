package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"coach-planner/internal/macros"
	"coach-planner/internal/planner"
)

func testPlan(at time.Time) *planner.WeekPlan {
	plan := &planner.WeekPlan{
		ClientID:    "client-1",
		Targets:     macros.Targets{Calories: 2000, Protein: 150},
		GeneratedAt: at,
		MealsUsed:   3,
		Preferences: planner.Preferences{MealsPerDay: macros.ThreeMeals, VarietyLevel: planner.VarietyLow},
	}
	for i, name := range planner.DayNames {
		plan.WeekStructure[i] = planner.DayPlan{
			Day:    name,
			Meals:  []planner.MealAssignment{{Slot: macros.Lunch, MealID: "m1", MealName: "Bowl", ScaleFactor: 1, Calories: 700, Protein: 50}},
			Totals: planner.Totals{Kcal: 700, Protein: 50},
		}
	}
	return plan
}

func TestPlanArchive(t *testing.T) {
	tempDir := t.TempDir()
	archive, err := NewPlanArchive(tempDir)
	if err != nil {
		t.Fatalf("Failed to create PlanArchive: %v", err)
	}

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	version := Version(base)

	t.Run("CheckExists-False", func(t *testing.T) {
		if archive.Exists("client-1", version) {
			t.Errorf("Expected version %s to not exist", version)
		}
	})

	t.Run("Save", func(t *testing.T) {
		got, err := archive.Save(testPlan(base))
		if err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		if got != "2026-03-01T18-00-00.000000000Z" {
			t.Errorf("Unexpected version %q", got)
		}
		filePath := filepath.Join(tempDir, "client-1", got+".json")
		if _, err := os.Stat(filePath); err != nil {
			t.Errorf("Expected file '%s' to be created: %v", filePath, err)
		}
	})

	t.Run("Load", func(t *testing.T) {
		plan, err := archive.Load("client-1", version)
		if err != nil {
			t.Fatalf("Failed to load plan: %v", err)
		}
		if plan.WeekStructure[3].Day != "thursday" || plan.WeekStructure[3].Totals.Kcal != 700 {
			t.Errorf("Unexpected loaded day %+v", plan.WeekStructure[3])
		}
		if plan.Preferences.VarietyLevel != planner.VarietyLow {
			t.Errorf("Expected low variety, got %s", plan.Preferences.VarietyLevel)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			if _, err := archive.Save(testPlan(base.AddDate(0, 0, 7*i))); err != nil {
				t.Fatalf("Failed to save plan: %v", err)
			}
		}

		removed, err := archive.Prune("client-1", 2)
		if err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if removed != 3 {
			t.Errorf("Expected 3 removed, got %d", removed)
		}

		versions, _ := archive.Versions("client-1")
		if len(versions) != 2 || versions[0] != Version(base.AddDate(0, 0, 28)) {
			t.Errorf("Unexpected remaining versions %v", versions)
		}
		if archive.Exists("client-1", version) {
			t.Errorf("Expected oldest version to be pruned")
		}
	})

	t.Run("SameSecondKeepsBoth", func(t *testing.T) {
		at := time.Date(2026, 3, 2, 18, 0, 0, 100, time.UTC)
		first := testPlan(at)
		first.ClientID = "client-2"
		first.MealsUsed = 2
		second := testPlan(at.Add(500 * time.Millisecond))
		second.ClientID = "client-2"

		v1, err := archive.Save(first)
		if err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		v2, err := archive.Save(second)
		if err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		if v1 == v2 {
			t.Fatalf("Expected distinct versions, got %s twice", v1)
		}

		versions, _ := archive.Versions("client-2")
		if len(versions) != 2 || versions[0] != v2 {
			t.Errorf("Expected [%s %s], got %v", v2, v1, versions)
		}
		loaded, err := archive.Load("client-2", v1)
		if err != nil || loaded.MealsUsed != 2 {
			t.Errorf("First plan was overwritten: %+v, %v", loaded, err)
		}
	})

	t.Run("IdenticalTimestampGetsSuffix", func(t *testing.T) {
		at := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
		plan := testPlan(at)
		plan.ClientID = "client-3"

		v1, _ := archive.Save(plan)
		v2, err := archive.Save(plan)
		if err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		if v2 != v1+"-001" {
			t.Errorf("Expected suffixed version, got %s", v2)
		}
		versions, _ := archive.Versions("client-3")
		if len(versions) != 2 || versions[0] != v2 {
			t.Errorf("Expected the suffixed version to sort newest, got %v", versions)
		}
	})

	t.Run("DistinctClientsDistinctDirs", func(t *testing.T) {
		for _, id := range []string{"a/b", "a_b"} {
			plan := testPlan(base)
			plan.ClientID = id
			if _, err := archive.Save(plan); err != nil {
				t.Fatalf("Failed to save plan for %s: %v", id, err)
			}
		}
		if _, err := archive.Prune("a_b", 0); err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if versions, _ := archive.Versions("a/b"); len(versions) != 1 {
			t.Errorf("Pruning a_b touched a/b: %v", versions)
		}
	})

	t.Run("SanitizesClientID", func(t *testing.T) {
		plan := testPlan(base)
		plan.ClientID = "../escape"
		if _, err := archive.Save(plan); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
		if _, err := os.Stat(filepath.Join(filepath.Dir(tempDir), "escape")); err == nil {
			t.Errorf("Client ID escaped the archive directory")
		}
		for _, id := range []string{"..", ".", ""} {
			if dir := archive.clientDir(id); filepath.Dir(dir) != filepath.Clean(tempDir) {
				t.Errorf("Client ID %q maps outside the archive: %s", id, dir)
			}
		}
	})
}
