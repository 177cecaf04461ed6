package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coach-planner/internal/planner/plandb"

	"github.com/google/uuid"
)

// StoredPlan is a persisted week plan.
type StoredPlan struct {
	ID           string
	ClientID     string
	MealsPerDay  int
	VarietyLevel string
	PlanData     []byte // Raw JSON of the week plan
	GeneratedAt  time.Time
}

// Decode unmarshals the stored JSON back into a WeekPlan.
func (p StoredPlan) Decode() (*WeekPlan, error) {
	var wp WeekPlan
	if err := json.Unmarshal(p.PlanData, &wp); err != nil {
		return nil, fmt.Errorf("failed to decode week plan %s: %w", p.ID, err)
	}
	return &wp, nil
}

// PlanRepository is a database-backed repository for generated week plans.
type PlanRepository struct {
	queries *plandb.Queries
	db      *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{
		queries: plandb.New(d),
		db:      d,
	}
}

// Save stores a week plan as JSON and returns its new ID.
func (r *PlanRepository) Save(ctx context.Context, plan *WeekPlan) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal week plan: %w", err)
	}

	id := uuid.NewString()
	err = r.queries.InsertWeekPlan(ctx, plandb.InsertWeekPlanParams{
		ID:           id,
		ClientID:     plan.ClientID,
		MealsPerDay:  int64(plan.Preferences.MealsPerDay),
		VarietyLevel: string(plan.Preferences.VarietyLevel),
		PlanData:     data,
		GeneratedAt:  plan.GeneratedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save week plan for client %s: %w", plan.ClientID, err)
	}
	return id, nil
}

// ListRecentByClientID retrieves the N most recent week plans for a client.
func (r *PlanRepository) ListRecentByClientID(ctx context.Context, clientID string, limit int) ([]StoredPlan, error) {
	rows, err := r.queries.ListRecentWeekPlansByClientID(ctx, plandb.ListRecentWeekPlansByClientIDParams{
		ClientID: clientID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent week plans for client %s: %w", clientID, err)
	}

	plans := make([]StoredPlan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, fromRow(row))
	}
	return plans, nil
}

// LatestByClientID returns the newest stored plan, or nil if the client has none.
func (r *PlanRepository) LatestByClientID(ctx context.Context, clientID string) (*StoredPlan, error) {
	row, err := r.queries.GetLatestWeekPlanByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest week plan for client %s: %w", clientID, err)
	}
	p := fromRow(row)
	return &p, nil
}

func fromRow(row plandb.WeekPlan) StoredPlan {
	return StoredPlan{
		ID:           row.ID,
		ClientID:     row.ClientID,
		MealsPerDay:  int(row.MealsPerDay),
		VarietyLevel: row.VarietyLevel,
		PlanData:     row.PlanData,
		GeneratedAt:  row.GeneratedAt,
	}
}
