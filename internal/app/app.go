package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"coach-planner/internal/client"
	"coach-planner/internal/config"
	"coach-planner/internal/ghost"
	"coach-planner/internal/macros"
	"coach-planner/internal/meal"
	"coach-planner/internal/metrics"
	"coach-planner/internal/planner"
	"coach-planner/internal/storage"

	"github.com/cenkalti/backoff/v5"
)

// ErrPublishDisabled is returned when publishing is requested without a Ghost client.
var ErrPublishDisabled = errors.New("publishing is not configured")

// Options carries the optional collaborators of an App.
type Options struct {
	Archive          *storage.PlanArchive
	NoteWriter       *planner.NoteWriter
	Publisher        ghost.Publisher
	GeneratorOptions []planner.Option

	// PublishBackOff builds the retry policy for each publish. Defaults to exponential.
	PublishBackOff func() backoff.BackOff
	PublishTries   uint
}

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	clients      *client.Repository
	meals        *meal.Repository
	plans        *planner.PlanRepository
	generator    *planner.Generator
	metricsStore *metrics.Store
	archive      *storage.PlanArchive
	noteWriter   *planner.NoteWriter
	publisher    ghost.Publisher

	publishBackOff func() backoff.BackOff
	publishTries   uint
}

// NewApp creates and initializes a new App instance.
func NewApp(cfg *config.Config, db *sql.DB, metricsStore *metrics.Store, opts Options) *App {
	clients := client.NewRepository(db)
	meals := meal.NewRepository(db)

	a := &App{
		cfg:            cfg,
		clients:        clients,
		meals:          meals,
		plans:          planner.NewPlanRepository(db),
		generator:      planner.NewGenerator(planner.NewRepositorySource(clients, meals), opts.GeneratorOptions...),
		metricsStore:   metricsStore,
		archive:        opts.Archive,
		noteWriter:     opts.NoteWriter,
		publisher:      opts.Publisher,
		publishBackOff: opts.PublishBackOff,
		publishTries:   opts.PublishTries,
	}
	if a.publishBackOff == nil {
		a.publishBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	if a.publishTries == 0 {
		a.publishTries = 4
	}
	return a
}

// GenerateRequest describes one plan generation. Zero preference fields fall back to the
// client's stored preferences, then to the configured defaults.
type GenerateRequest struct {
	ClientID    string
	Preferences planner.Preferences
	Archive     bool
	WithNote    bool
	Publish     bool
}

// GenerateResult is what a generation produced and where it went.
type GenerateResult struct {
	PlanID         string
	Plan           *planner.WeekPlan
	ArchiveVersion string
	Note           string
	Post           *ghost.Post
}

// GenerateWeekPlan generates, stores and optionally archives, annotates and publishes a plan.
// Only generation and storage failures are returned; the optional steps log and continue.
func (a *App) GenerateWeekPlan(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	c, err := a.clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", planner.ErrClientNotFound, req.ClientID)
	}

	prefs := a.ResolvePreferences(c, req.Preferences)
	start := time.Now()
	plan, err := a.generator.GenerateWeekPlan(ctx, req.ClientID, prefs)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	calAcc, protAcc := plan.AverageAccuracy()
	if err := a.metricsStore.RecordGeneration(ctx, metrics.GenerationMetric{
		ClientID:        plan.ClientID,
		MealsPerDay:     int(plan.Preferences.MealsPerDay),
		VarietyLevel:    string(plan.Preferences.VarietyLevel),
		MealsUsed:       plan.MealsUsed,
		CalorieAccuracy: calAcc,
		ProteinAccuracy: protAcc,
		LatencyMS:       latency.Milliseconds(),
	}); err != nil {
		log.Printf("Warning: failed to record generation metrics: %v", err)
	}

	planID, err := a.plans.Save(ctx, plan)
	if err != nil {
		return nil, err
	}
	log.Printf("Generated week plan %s for client %s (%d of %d meals used, %.0f%% kcal, %.0f%% protein)",
		planID, plan.ClientID, plan.DistinctMeals(), plan.MealsUsed, calAcc, protAcc)

	result := &GenerateResult{PlanID: planID, Plan: plan}

	if req.Archive && a.archive != nil {
		version, err := a.archive.Save(plan)
		if err != nil {
			log.Printf("Warning: failed to archive plan %s: %v", planID, err)
		} else {
			result.ArchiveVersion = version
			if _, err := a.archive.Prune(plan.ClientID, max(a.cfg.PlanArchiveKeep, 1)); err != nil {
				log.Printf("Warning: failed to prune archive for client %s: %v", plan.ClientID, err)
			}
		}
	}

	if req.WithNote && a.noteWriter != nil {
		note, err := a.noteWriter.Write(ctx, c.Name, plan)
		if recErr := a.metricsStore.RecordMeta(ctx, note.Meta); recErr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", note.Meta.AgentName, recErr)
		}
		if err != nil {
			log.Printf("Warning: coach note skipped for client %s: %v", c.ID, err)
		} else {
			result.Note = note.Text
		}
	}

	if req.Publish {
		post, err := a.PublishWeekPlan(ctx, c.Name, plan, result.Note)
		if err != nil {
			log.Printf("Warning: failed to publish plan %s: %v", planID, err)
		} else {
			result.Post = post
		}
	}

	return result, nil
}

// ResolvePreferences fills zero fields of override from the client, then from config.
func (a *App) ResolvePreferences(c *client.Client, override planner.Preferences) planner.Preferences {
	prefs := override
	if prefs.MealsPerDay == 0 && c != nil {
		prefs.MealsPerDay = macros.MealsPerDay(c.MealsPerDay)
	}
	if prefs.MealsPerDay == 0 {
		prefs.MealsPerDay = a.cfg.DefaultMealsPerDay
	}
	if prefs.VarietyLevel == "" && c != nil {
		prefs.VarietyLevel = planner.VarietyLevel(c.VarietyLevel)
	}
	if prefs.VarietyLevel == "" {
		prefs.VarietyLevel = a.cfg.DefaultVarietyLevel
	}
	return prefs
}

// GetClient returns a client, or ErrClientNotFound.
func (a *App) GetClient(ctx context.Context, clientID string) (*client.Client, error) {
	c, err := a.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", planner.ErrClientNotFound, clientID)
	}
	return c, nil
}

// LatestPlan returns the client's newest stored plan, or nil when there is none.
func (a *App) LatestPlan(ctx context.Context, clientID string) (*planner.StoredPlan, error) {
	if _, err := a.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return a.plans.LatestByClientID(ctx, clientID)
}

// RecentPlans lists up to limit stored plans for a client, newest first.
func (a *App) RecentPlans(ctx context.Context, clientID string, limit int) ([]planner.StoredPlan, error) {
	if _, err := a.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return a.plans.ListRecentByClientID(ctx, clientID, limit)
}

// MetricsReport is the usage and health summary shown to admins.
type MetricsReport struct {
	Usage       []metrics.DailyUsage
	Generations []metrics.DailyGenerations
	Health      metrics.SysHealth
}

// Metrics collects the last days of usage and generation metrics plus system health.
func (a *App) Metrics(ctx context.Context, days int) (*MetricsReport, error) {
	usage, err := a.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage metrics: %w", err)
	}
	gens, err := a.metricsStore.GetDailyGenerations(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load generation metrics: %w", err)
	}
	return &MetricsReport{
		Usage:       usage,
		Generations: gens,
		Health:      metrics.GetSysHealth(a.cfg.DatabasePath, a.cfg.PlanArchivePath),
	}, nil
}

// CleanupMetrics removes metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, days)
}
