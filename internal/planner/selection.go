package planner

import (
	"cmp"
	"log"
	"math"
	"math/rand/v2"
	"slices"

	"coach-planner/internal/macros"
	"coach-planner/internal/meal"
)

// topCandidates is how many of the best-scoring meals the final pick is drawn from.
const topCandidates = 3

// proteinWeight makes protein fit count twice as much as calorie fit.
const proteinWeight = 2

// Scale bounds applied to every assignment unless overridden with WithScaleBounds.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 10.0
)

// RecencyLedger maps a meal ID to the last day index it was assigned on.
// It lives for one run and is threaded through the day fold.
type RecencyLedger map[string]int

// Record notes that mealID was used on day and returns the ledger.
func (l RecencyLedger) Record(mealID string, day int) RecencyLedger {
	l[mealID] = day
	return l
}

// UsedWithin reports whether mealID was used fewer than gap days before day.
func (l RecencyLedger) UsedWithin(mealID string, day, gap int) bool {
	last, ok := l[mealID]
	return ok && day-last < gap
}

type scoredMeal struct {
	meal  meal.CustomMeal
	score float64
}

// eligible drops meals used inside the variety window. An empty result falls back to the
// whole catalog.
func eligible(catalog []meal.CustomMeal, ledger RecencyLedger, day, gap int) []meal.CustomMeal {
	out := make([]meal.CustomMeal, 0, len(catalog))
	for _, m := range catalog {
		if !ledger.UsedWithin(m.ID, day, gap) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return catalog
	}
	return out
}

// fitScore is the deterministic part of a candidate's score. Lower is better.
func fitScore(m meal.CustomMeal, target macros.SlotTarget) float64 {
	return math.Abs(m.Calories-target.Calories) + proteinWeight*math.Abs(m.Protein-target.Protein)
}

// pick scores candidates with jitter, sorts them ascending and draws uniformly from the top 3.
func pick(candidates []meal.CustomMeal, target macros.SlotTarget, jitter float64, rng *rand.Rand) meal.CustomMeal {
	scored := make([]scoredMeal, len(candidates))
	for i, m := range candidates {
		scored[i] = scoredMeal{
			meal:  m,
			score: fitScore(m, target) + rng.Float64()*jitter,
		}
	}

	slices.SortStableFunc(scored, func(a, b scoredMeal) int {
		return cmp.Compare(a.score, b.score)
	})

	top := min(topCandidates, len(scored))
	return scored[rng.IntN(top)].meal
}

// scaleBounds limits the multiplier applied to a reference serving.
type scaleBounds struct {
	min, max float64
}

// scale fits m to the slot's calorie target. The factor is clamped to the bounds.
func scale(m meal.CustomMeal, target macros.SlotTarget, bounds scaleBounds) MealAssignment {
	factor := target.Calories / m.Calories
	clamped := false
	switch {
	case factor < bounds.min:
		factor, clamped = bounds.min, true
	case factor > bounds.max:
		factor, clamped = bounds.max, true
	}
	if clamped {
		log.Printf("Warning: scale for meal %q in %s clamped to %.2f (target %.0f kcal, serving %.0f kcal)",
			m.Name, target.Slot, factor, target.Calories, m.Calories)
	}

	return MealAssignment{
		Slot:        target.Slot,
		MealID:      m.ID,
		MealName:    m.Name,
		ScaleFactor: factor,
		Calories:    roundMacro(m.Calories * factor),
		Protein:     roundMacro(m.Protein * factor),
		Carbs:       roundMacro(m.Carbs * factor),
		Fat:         roundMacro(m.Fat * factor),
		Clamped:     clamped,
	}
}

func roundMacro(v float64) int {
	return int(math.Round(v))
}
