package planner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"coach-planner/internal/client"
	"coach-planner/internal/database"
	"coach-planner/internal/meal"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	clients := client.NewRepository(db.SQL)
	if err := clients.Save(ctx, *testClient()); err != nil {
		t.Fatalf("Failed to save client: %v", err)
	}
	meals := meal.NewRepository(db.SQL)
	for _, m := range catalog(5) {
		if _, err := meals.Save(ctx, m); err != nil {
			t.Fatalf("Failed to save meal: %v", err)
		}
	}

	gen := newTestGenerator(NewRepositorySource(clients, meals), 4)
	repo := NewPlanRepository(db.SQL)

	t.Run("Empty", func(t *testing.T) {
		latest, err := repo.LatestByClientID(ctx, "c1")
		if err != nil {
			t.Fatalf("LatestByClientID failed: %v", err)
		}
		if latest != nil {
			t.Errorf("Expected no plan, got %+v", latest)
		}
	})

	var lastID string
	for i := range 3 {
		plan, err := gen.GenerateWeekPlan(ctx, "c1", Preferences{})
		if err != nil {
			t.Fatalf("GenerateWeekPlan failed: %v", err)
		}
		plan.GeneratedAt = fixedNow.Add(time.Duration(i) * time.Hour)
		lastID, err = repo.Save(ctx, plan)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	t.Run("ListRecent", func(t *testing.T) {
		plans, err := repo.ListRecentByClientID(ctx, "c1", 2)
		if err != nil {
			t.Fatalf("ListRecentByClientID failed: %v", err)
		}
		if len(plans) != 2 {
			t.Fatalf("Expected 2 plans, got %d", len(plans))
		}
		if plans[0].ID != lastID {
			t.Errorf("Expected newest plan first")
		}
		if plans[0].MealsPerDay != 4 || plans[0].VarietyLevel != "medium" {
			t.Errorf("Unexpected preferences on stored plan: %+v", plans[0])
		}
	})

	t.Run("LatestDecodes", func(t *testing.T) {
		latest, err := repo.LatestByClientID(ctx, "c1")
		if err != nil {
			t.Fatalf("LatestByClientID failed: %v", err)
		}
		if latest == nil || latest.ID != lastID {
			t.Fatalf("Expected latest plan %s, got %+v", lastID, latest)
		}
		wp, err := latest.Decode()
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if wp.MealsUsed != 5 || len(wp.WeekStructure[0].Meals) != 4 {
			t.Errorf("Unexpected decoded plan: mealsUsed=%d meals=%d", wp.MealsUsed, len(wp.WeekStructure[0].Meals))
		}
	})
}
