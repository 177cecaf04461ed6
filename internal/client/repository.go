package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coach-planner/internal/client/clientdb"
	"coach-planner/internal/macros"
)

// Repository is a database-backed repository for clients and their meal plans.
type Repository struct {
	queries *clientdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: clientdb.New(d),
		db:      d,
	}
}

// Save inserts or updates a client.
func (r *Repository) Save(ctx context.Context, c Client) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var autoPlan int64
	if c.AutoPlan {
		autoPlan = 1
	}

	mealsPerDay := c.MealsPerDay
	if mealsPerDay == 0 {
		mealsPerDay = int(macros.DefaultMealsPerDay)
	}
	varietyLevel := c.VarietyLevel
	if varietyLevel == "" {
		varietyLevel = "medium"
	}

	err := r.queries.UpsertClient(ctx, clientdb.UpsertClientParams{
		ID:             c.ID,
		Name:           c.Name,
		TelegramID:     c.TelegramID,
		TargetCalories: c.Targets.Calories,
		TargetProtein:  c.Targets.Protein,
		TargetCarbs:    c.Targets.Carbs,
		TargetFat:      c.Targets.Fat,
		MealsPerDay:    int64(mealsPerDay),
		VarietyLevel:   varietyLevel,
		AutoPlan:       autoPlan,
		CreatedAt:      createdAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save client %s: %w", c.ID, err)
	}
	return nil
}

// Get retrieves a client by ID. It returns nil, nil when the client does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Client, error) {
	row, err := r.queries.GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get client %s: %w", id, err)
	}
	c := fromRow(row)
	return &c, nil
}

// ListAutoPlan returns every client flagged for automatic weekly plans.
func (r *Repository) ListAutoPlan(ctx context.Context) ([]Client, error) {
	rows, err := r.queries.ListAutoPlanClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-plan clients: %w", err)
	}

	clients := make([]Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, fromRow(row))
	}
	return clients, nil
}

// SaveMealPlan makes targets the client's active meal plan, deactivating older ones.
func (r *Repository) SaveMealPlan(ctx context.Context, clientID string, targets macros.Targets) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeactivateMealPlans(ctx, clientID); err != nil {
		return 0, fmt.Errorf("failed to deactivate meal plans for client %s: %w", clientID, err)
	}

	id, err := q.InsertMealPlan(ctx, clientdb.InsertMealPlanParams{
		ClientID:       clientID,
		TargetCalories: targets.Calories,
		TargetProtein:  targets.Protein,
		TargetCarbs:    targets.Carbs,
		TargetFat:      targets.Fat,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert meal plan for client %s: %w", clientID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit meal plan: %w", err)
	}
	return id, nil
}

// GetActiveMealPlan returns the client's active meal plan, or nil, nil when none is set.
func (r *Repository) GetActiveMealPlan(ctx context.Context, clientID string) (*MealPlan, error) {
	row, err := r.queries.GetActiveMealPlan(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active meal plan for client %s: %w", clientID, err)
	}

	return &MealPlan{
		ID:       row.ID,
		ClientID: row.ClientID,
		Targets: macros.Targets{
			Calories: row.TargetCalories,
			Protein:  row.TargetProtein,
			Carbs:    row.TargetCarbs,
			Fat:      row.TargetFat,
		},
		CreatedAt: row.CreatedAt,
	}, nil
}

func fromRow(row clientdb.Client) Client {
	return Client{
		ID:         row.ID,
		Name:       row.Name,
		TelegramID: row.TelegramID,
		Targets: macros.Targets{
			Calories: row.TargetCalories,
			Protein:  row.TargetProtein,
			Carbs:    row.TargetCarbs,
			Fat:      row.TargetFat,
		},
		MealsPerDay:  int(row.MealsPerDay),
		VarietyLevel: row.VarietyLevel,
		AutoPlan:     row.AutoPlan == 1,
		CreatedAt:    row.CreatedAt,
	}
}
