package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"coach-planner/internal/client"
	"coach-planner/internal/macros"
	"coach-planner/internal/meal"
	"coach-planner/internal/planner"
)

// CatalogFile is the JSON layout accepted by ImportCatalog.
type CatalogFile struct {
	Clients []CatalogClient `json:"clients"`
}

// CatalogClient is one client with an optional meal plan and its meals.
type CatalogClient struct {
	client.Client
	MealPlan *macros.Targets   `json:"meal_plan,omitempty"`
	Meals    []meal.CustomMeal `json:"meals"`
}

// ImportSummary counts what an import wrote.
type ImportSummary struct {
	Clients   int
	MealPlans int
	Meals     int
	Skipped   int
	Removed   int
}

// ImportCatalog seeds clients, meal plans and meals from r. Meals without a name are skipped.
// A client that lists meals gets exactly that catalog: stored meals whose id is not listed
// are removed. Omitting "meals" leaves the stored catalog alone.
func (a *App) ImportCatalog(ctx context.Context, r io.Reader) (ImportSummary, error) {
	var file CatalogFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return ImportSummary{}, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var sum ImportSummary
	for _, cc := range file.Clients {
		if cc.ID == "" {
			return sum, fmt.Errorf("catalog client %q has no id", cc.Name)
		}
		if cc.MealsPerDay != 0 {
			if _, err := macros.ParseMealsPerDay(cc.MealsPerDay); err != nil {
				return sum, fmt.Errorf("client %s: %w", cc.ID, err)
			}
		}
		if cc.VarietyLevel != "" {
			level, err := planner.ParseVarietyLevel(cc.VarietyLevel)
			if err != nil {
				return sum, fmt.Errorf("client %s: %w", cc.ID, err)
			}
			cc.VarietyLevel = string(level)
		}

		if err := a.clients.Save(ctx, cc.Client); err != nil {
			return sum, err
		}
		sum.Clients++

		if cc.MealPlan != nil {
			if _, err := a.clients.SaveMealPlan(ctx, cc.ID, *cc.MealPlan); err != nil {
				return sum, err
			}
			sum.MealPlans++
		}

		if cc.Meals == nil {
			continue
		}
		removed, err := a.removeUnlistedMeals(ctx, cc.ID, cc.Meals)
		if err != nil {
			return sum, err
		}
		sum.Removed += removed

		for _, m := range cc.Meals {
			if m.Name == "" {
				sum.Skipped++
				continue
			}
			if !m.Plannable() {
				log.Printf("Warning: meal %q for client %s has no calories and will not be planned", m.Name, cc.ID)
			}
			m.ClientID = cc.ID
			if _, err := a.meals.Save(ctx, m); err != nil {
				return sum, err
			}
			sum.Meals++
		}

		n, err := a.meals.Count(ctx, cc.ID)
		if err != nil {
			return sum, err
		}
		log.Printf("Client %s catalog now has %d meals (%d removed).", cc.ID, n, removed)
	}
	return sum, nil
}

// removeUnlistedMeals deletes the client's stored meals whose id is not in listed.
func (a *App) removeUnlistedMeals(ctx context.Context, clientID string, listed []meal.CustomMeal) (int, error) {
	keep := make(map[string]struct{}, len(listed))
	for _, m := range listed {
		if m.ID != "" {
			keep[m.ID] = struct{}{}
		}
	}

	stored, err := a.meals.ListByClientID(ctx, clientID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range stored {
		if _, ok := keep[m.ID]; ok {
			continue
		}
		if err := a.meals.Delete(ctx, m.ID); err != nil {
			return removed, fmt.Errorf("failed to remove meal %s: %w", m.ID, err)
		}
		removed++
	}
	return removed, nil
}
