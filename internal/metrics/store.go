package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coach-planner/internal/metrics/metricsdb"
	"coach-planner/internal/shared"
)

// ExecutionMetric records metadata for a single LLM call.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// GenerationMetric records the outcome of one week plan generation.
type GenerationMetric struct {
	ClientID        string
	MealsPerDay     int
	VarietyLevel    string
	MealsUsed       int
	CalorieAccuracy float64
	ProteinAccuracy float64
	LatencyMS       int64
	Timestamp       time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	queries *metricsdb.Queries
	db      *sql.DB
	now     func() time.Time
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		db:      db,
		now:     time.Now,
	}
}

func (s *Store) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		ts = s.now()
	}
	return ts.UTC()
}

// Record saves an LLM execution metric.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	return s.queries.InsertExecutionMetric(ctx, metricsdb.InsertExecutionMetricParams{
		AgentName:        m.AgentName,
		Model:            m.Model,
		PromptTokens:     int64(m.PromptTokens),
		CompletionTokens: int64(m.CompletionTokens),
		LatencyMs:        m.LatencyMS,
		Timestamp:        s.stamp(m.Timestamp),
	})
}

// RecordMeta records metrics directly from shared.AgentMeta. Calls that used no tokens are skipped.
func (s *Store) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(ctx, MapUsage(meta.AgentName, meta.Usage, meta.Latency))
}

// RecordGeneration saves the outcome of a week plan generation.
func (s *Store) RecordGeneration(ctx context.Context, m GenerationMetric) error {
	err := s.queries.InsertGenerationMetric(ctx, metricsdb.InsertGenerationMetricParams{
		ClientID:        m.ClientID,
		MealsPerDay:     int64(m.MealsPerDay),
		VarietyLevel:    m.VarietyLevel,
		MealsUsed:       int64(m.MealsUsed),
		CalorieAccuracy: m.CalorieAccuracy,
		ProteinAccuracy: m.ProteinAccuracy,
		LatencyMs:       m.LatencyMS,
		Timestamp:       s.stamp(m.Timestamp),
	})
	if err != nil {
		return fmt.Errorf("failed to record generation for client %s: %w", m.ClientID, err)
	}
	return nil
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage retrieves LLM usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	rows, err := s.queries.GetDailyUsage(ctx, s.since(days))
	if err != nil {
		return nil, err
	}

	results := make([]DailyUsage, 0, len(rows))
	for _, r := range rows {
		u := DailyUsage{
			Date:           r.Day,
			TotalExecution: int(r.Count),
		}
		if r.PromptTokens.Valid {
			u.TotalPrompt = int(r.PromptTokens.Float64)
		}
		if r.CompletionTokens.Valid {
			u.TotalCompletion = int(r.CompletionTokens.Float64)
		}
		results = append(results, u)
	}
	return results, nil
}

// DailyGenerations summarizes the plans generated on a single day.
type DailyGenerations struct {
	Date               string
	Plans              int
	AvgCalorieAccuracy float64
	AvgProteinAccuracy float64
	AvgLatencyMS       float64
}

// GetDailyGenerations retrieves generation summaries for the last N days, newest first.
func (s *Store) GetDailyGenerations(ctx context.Context, days int) ([]DailyGenerations, error) {
	rows, err := s.queries.GetDailyGenerations(ctx, s.since(days))
	if err != nil {
		return nil, err
	}

	results := make([]DailyGenerations, 0, len(rows))
	for _, r := range rows {
		results = append(results, DailyGenerations{
			Date:               r.Day,
			Plans:              int(r.Count),
			AvgCalorieAccuracy: r.AvgCalorieAccuracy.Float64,
			AvgProteinAccuracy: r.AvgProteinAccuracy.Float64,
			AvgLatencyMS:       r.AvgLatencyMs.Float64,
		})
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and returns how many went.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.since(olderThanDays)

	execs, err := s.queries.CleanupExecutionMetrics(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean execution metrics: %w", err)
	}
	gens, err := s.queries.CleanupGenerationMetrics(ctx, threshold)
	if err != nil {
		return execs, fmt.Errorf("failed to clean generation metrics: %w", err)
	}
	return execs + gens, nil
}

func (s *Store) since(days int) time.Time {
	return s.now().AddDate(0, 0, -days).UTC()
}

// MapUsage converts shared.TokenUsage to an ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
	}
}
