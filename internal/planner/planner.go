package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"coach-planner/internal/client"
	"coach-planner/internal/macros"
	"coach-planner/internal/meal"
)

var (
	// ErrNoMealsAvailable means the client has no plannable catalog meals. Retrying
	// without changing the catalog cannot succeed.
	ErrNoMealsAvailable = errors.New("no meals available")

	// ErrClientNotFound means the data source has no client with the given ID.
	ErrClientNotFound = errors.New("client not found")
)

// DefaultTargets apply per field when neither the meal plan nor the client sets a value.
var DefaultTargets = macros.Targets{
	Calories: 2200,
	Protein:  165,
	Carbs:    220,
	Fat:      73,
}

// DataSource is the read side the generator needs. Implementations do the I/O;
// the generator itself performs none.
type DataSource interface {
	GetClient(ctx context.Context, clientID string) (*client.Client, error)
	GetClientCustomMeals(ctx context.Context, clientID string) ([]meal.CustomMeal, error)
	GetClientMealPlan(ctx context.Context, clientID string) (*client.MealPlan, error)
}

// Generator builds weekly meal plans.
type Generator struct {
	source  DataSource
	newRand func() *rand.Rand
	now     func() time.Time
	bounds  scaleBounds
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandSource sets the factory that gives each run its own random source.
func WithRandSource(f func() *rand.Rand) Option {
	return func(g *Generator) {
		g.newRand = f
	}
}

// WithSeed makes every run draw from the same seeded sequence.
func WithSeed(seed uint64) Option {
	return WithRandSource(func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	})
}

// WithClock overrides the generatedAt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithScaleBounds overrides the allowed scale factor range.
func WithScaleBounds(lo, hi float64) Option {
	return func(g *Generator) {
		if lo > 0 && hi >= lo {
			g.bounds = scaleBounds{min: lo, max: hi}
		}
	}
}

// NewGenerator creates a Generator reading from source.
func NewGenerator(source DataSource, opts ...Option) *Generator {
	g := &Generator{
		source: source,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		now:    time.Now,
		bounds: scaleBounds{min: DefaultMinScale, max: DefaultMaxScale},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateWeekPlan fills a 7-day grid for the client. It fails before the day loop when the
// preferences are invalid, the client is unknown or the catalog has no plannable meals.
func (g *Generator) GenerateWeekPlan(ctx context.Context, clientID string, prefs Preferences) (*WeekPlan, error) {
	prefs, err := prefs.Normalize()
	if err != nil {
		return nil, err
	}

	c, err := g.source.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client %s: %w", clientID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	catalog, err := g.source.GetClientCustomMeals(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals for client %s: %w", clientID, err)
	}

	mealPlan, err := g.source.GetClientMealPlan(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan for client %s: %w", clientID, err)
	}

	meals := plannableMeals(clientID, catalog)
	if len(meals) == 0 {
		return nil, fmt.Errorf("client %s has no custom meals to plan with, add meals first: %w", clientID, ErrNoMealsAvailable)
	}

	targets := ResolveTargets(c, mealPlan)
	dist, err := macros.Distribute(prefs.MealsPerDay, targets)
	if err != nil {
		return nil, err
	}

	run := &weekRun{
		dist:    dist,
		catalog: meals,
		targets: targets,
		policy:  prefs.VarietyLevel.policy(),
		bounds:  g.bounds,
		rng:     g.newRand(),
	}

	var week WeekStructure
	ledger := RecencyLedger{}
	for day := range DaysPerWeek {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		week[day], ledger = run.planDay(day, ledger)
	}

	return &WeekPlan{
		ClientID:      clientID,
		WeekStructure: week,
		Targets:       targets,
		GeneratedAt:   g.now().UTC(),
		MealsUsed:     len(meals),
		Preferences:   prefs,
	}, nil
}

// weekRun is the read-only state of a single generation run.
type weekRun struct {
	dist    macros.Distribution
	catalog []meal.CustomMeal
	targets macros.Targets
	policy  varietyPolicy
	bounds  scaleBounds
	rng     *rand.Rand
}

// planDay fills every slot of one day and returns the ledger for the next day.
func (r *weekRun) planDay(day int, ledger RecencyLedger) (DayPlan, RecencyLedger) {
	assignments := make([]MealAssignment, 0, len(r.dist))
	for _, target := range r.dist {
		candidates := eligible(r.catalog, ledger, day, r.policy.minDaysBetween)
		chosen := pick(candidates, target, r.policy.jitter, r.rng)
		assignments = append(assignments, scale(chosen, target, r.bounds))
		ledger = ledger.Record(chosen.ID, day)
	}

	totals, accuracy := summarize(assignments, r.targets)
	return DayPlan{
		Day:      DayNames[day],
		Meals:    assignments,
		Totals:   totals,
		Accuracy: accuracy,
	}, ledger
}

// ResolveTargets picks each target from the active meal plan, then the client,
// then DefaultTargets.
func ResolveTargets(c *client.Client, mealPlan *client.MealPlan) macros.Targets {
	var fromPlan, fromClient macros.Targets
	if mealPlan != nil {
		fromPlan = mealPlan.Targets
	}
	if c != nil {
		fromClient = c.Targets
	}

	return macros.Targets{
		Calories: firstPositive(fromPlan.Calories, fromClient.Calories, DefaultTargets.Calories),
		Protein:  firstPositive(fromPlan.Protein, fromClient.Protein, DefaultTargets.Protein),
		Carbs:    firstPositive(fromPlan.Carbs, fromClient.Carbs, DefaultTargets.Carbs),
		Fat:      firstPositive(fromPlan.Fat, fromClient.Fat, DefaultTargets.Fat),
	}
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func plannableMeals(clientID string, catalog []meal.CustomMeal) []meal.CustomMeal {
	out := make([]meal.CustomMeal, 0, len(catalog))
	for _, m := range catalog {
		if !m.Plannable() {
			log.Printf("Warning: skipping meal %q for client %s: calories must be positive, got %.1f", m.Name, clientID, m.Calories)
			continue
		}
		out = append(out, m)
	}
	return out
}
