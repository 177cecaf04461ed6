package planner

import (
	"context"

	"coach-planner/internal/client"
	"coach-planner/internal/meal"
)

// repositorySource reads generator inputs from the sqlite repositories.
type repositorySource struct {
	clients *client.Repository
	meals   *meal.Repository
}

// NewRepositorySource adapts the client and meal repositories to a DataSource.
func NewRepositorySource(clients *client.Repository, meals *meal.Repository) DataSource {
	return &repositorySource{clients: clients, meals: meals}
}

func (s *repositorySource) GetClient(ctx context.Context, clientID string) (*client.Client, error) {
	return s.clients.Get(ctx, clientID)
}

func (s *repositorySource) GetClientCustomMeals(ctx context.Context, clientID string) ([]meal.CustomMeal, error) {
	return s.meals.ListByClientID(ctx, clientID)
}

func (s *repositorySource) GetClientMealPlan(ctx context.Context, clientID string) (*client.MealPlan, error) {
	return s.clients.GetActiveMealPlan(ctx, clientID)
}
