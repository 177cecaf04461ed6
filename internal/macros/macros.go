package macros

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedMealsPerDay is returned for any meals-per-day count other than 3, 4 or 5.
var ErrUnsupportedMealsPerDay = errors.New("unsupported meals per day")

// MealsPerDay is the number of slots in a planned day.
type MealsPerDay int

const (
	ThreeMeals MealsPerDay = 3
	FourMeals  MealsPerDay = 4
	FiveMeals  MealsPerDay = 5
)

// DefaultMealsPerDay is used when a caller does not pick a count.
const DefaultMealsPerDay = FourMeals

// Slot names a meal position within a day.
type Slot string

const (
	Breakfast      Slot = "breakfast"
	MorningSnack   Slot = "morning_snack"
	Lunch          Slot = "lunch"
	AfternoonSnack Slot = "afternoon_snack"
	Dinner         Slot = "dinner"
	Snacks         Slot = "snacks"
)

// slotOrder is the position of every slot within a day.
var slotOrder = []Slot{Breakfast, MorningSnack, Lunch, AfternoonSnack, Dinner, Snacks}

// OrderedSlots returns every known slot in day order.
func OrderedSlots() []Slot {
	out := make([]Slot, len(slotOrder))
	copy(out, slotOrder)
	return out
}

// Targets are a client's daily nutrition targets.
type Targets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Share is the percentage of the daily calories and protein given to one slot.
type Share struct {
	Slot     Slot
	Calories float64
	Protein  float64
}

// SlotTarget is the calorie and protein goal for a single slot of a day.
type SlotTarget struct {
	Slot     Slot    `json:"slot"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

// Distribution is the ordered list of slot targets for one day.
type Distribution []SlotTarget

var splits = map[MealsPerDay][]Share{
	ThreeMeals: {
		{Slot: Breakfast, Calories: 30, Protein: 30},
		{Slot: Lunch, Calories: 35, Protein: 35},
		{Slot: Dinner, Calories: 35, Protein: 35},
	},
	FourMeals: {
		{Slot: Breakfast, Calories: 25, Protein: 25},
		{Slot: Lunch, Calories: 30, Protein: 30},
		{Slot: Dinner, Calories: 35, Protein: 35},
		{Slot: Snacks, Calories: 10, Protein: 10},
	},
	FiveMeals: {
		{Slot: Breakfast, Calories: 20, Protein: 20},
		{Slot: MorningSnack, Calories: 10, Protein: 10},
		{Slot: Lunch, Calories: 30, Protein: 30},
		{Slot: AfternoonSnack, Calories: 10, Protein: 10},
		{Slot: Dinner, Calories: 30, Protein: 30},
	},
}

// ParseMealsPerDay validates a raw count.
func ParseMealsPerDay(n int) (MealsPerDay, error) {
	m := MealsPerDay(n)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d (expected 3, 4 or 5)", ErrUnsupportedMealsPerDay, n)
	}
	return m, nil
}

// Valid reports whether m is one of the supported counts.
func (m MealsPerDay) Valid() bool {
	_, ok := splits[m]
	return ok
}

// Shares returns the fixed percentage split for m.
func Shares(m MealsPerDay) ([]Share, error) {
	s, ok := splits[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMealsPerDay, int(m))
	}
	out := make([]Share, len(s))
	copy(out, s)
	return out, nil
}

// Distribute splits the daily calorie and protein targets across the slots of m.
// Carbs and fat are not split; they follow from meal scaling.
func Distribute(m MealsPerDay, targets Targets) (Distribution, error) {
	shares, err := Shares(m)
	if err != nil {
		return nil, err
	}

	dist := make(Distribution, 0, len(shares))
	for _, s := range shares {
		dist = append(dist, SlotTarget{
			Slot:     s.Slot,
			Calories: math.Round(targets.Calories * s.Calories / 100),
			Protein:  math.Round(targets.Protein * s.Protein / 100),
		})
	}
	return dist, nil
}
