package meal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coach-planner/internal/meal/mealdb"

	"github.com/google/uuid"
)

// Repository is a database-backed repository for client meal catalogs.
type Repository struct {
	queries *mealdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: mealdb.New(d),
		db:      d,
	}
}

// Save inserts or updates a meal and returns its ID, assigning a new one when empty.
func (r *Repository) Save(ctx context.Context, m CustomMeal) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	err := r.queries.UpsertCustomMeal(ctx, mealdb.UpsertCustomMealParams{
		ID:        m.ID,
		ClientID:  m.ClientID,
		Name:      m.Name,
		Calories:  m.Calories,
		Protein:   m.Protein,
		Carbs:     m.Carbs,
		Fat:       m.Fat,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save meal %q: %w", m.Name, err)
	}
	return m.ID, nil
}

// ListByClientID returns the client's catalog in insertion order.
func (r *Repository) ListByClientID(ctx context.Context, clientID string) ([]CustomMeal, error) {
	rows, err := r.queries.ListCustomMealsByClientID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals for client %s: %w", clientID, err)
	}

	meals := make([]CustomMeal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, CustomMeal{
			ID:        row.ID,
			ClientID:  row.ClientID,
			Name:      row.Name,
			Calories:  row.Calories,
			Protein:   row.Protein,
			Carbs:     row.Carbs,
			Fat:       row.Fat,
			CreatedAt: row.CreatedAt,
		})
	}
	return meals, nil
}

// Count returns the size of the client's catalog.
func (r *Repository) Count(ctx context.Context, clientID string) (int, error) {
	count, err := r.queries.CountCustomMealsByClientID(ctx, clientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count meals for client %s: %w", clientID, err)
	}
	return int(count), nil
}

// Delete removes a meal from its catalog.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.queries.DeleteCustomMeal(ctx, id)
}
