package planner

import (
	"encoding/json"
	"math"
	"time"

	"coach-planner/internal/macros"
)

// DaysPerWeek is the number of days in a generated plan.
const DaysPerWeek = 7

// DayNames are the lowercase keys of the week structure, Monday first.
var DayNames = [DaysPerWeek]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// MealAssignment is one filled slot: a catalog meal scaled to the slot target.
type MealAssignment struct {
	Slot        macros.Slot `json:"slot"`
	MealID      string      `json:"meal_id"`
	MealName    string      `json:"name"`
	ScaleFactor float64     `json:"scale_factor"`
	Calories    int         `json:"calories"`
	Protein     int         `json:"protein"`
	Carbs       int         `json:"carbs"`
	Fat         int         `json:"fat"`

	// Clamped is set when the raw scale factor fell outside the allowed bounds.
	Clamped bool `json:"clamped,omitempty"`
}

// Totals are the summed macros of a day.
type Totals struct {
	Kcal    int `json:"kcal"`
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// Accuracy is achieved/target as a whole percentage. It may exceed 100.
type Accuracy struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
}

// DayPlan is one day of the week in slot order.
type DayPlan struct {
	Day      string
	Meals    []MealAssignment
	Totals   Totals
	Accuracy Accuracy
}

// MarshalJSON writes one key per slot plus "totals" and "accuracy".
func (d DayPlan) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Meals)+2)
	for _, m := range d.Meals {
		out[string(m.Slot)] = m
	}
	out["totals"] = d.Totals
	out["accuracy"] = d.Accuracy
	return json.Marshal(out)
}

// UnmarshalJSON reads the shape written by MarshalJSON, restoring day order of the slots.
func (d *DayPlan) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["totals"]; ok {
		if err := json.Unmarshal(v, &d.Totals); err != nil {
			return err
		}
	}
	if v, ok := raw["accuracy"]; ok {
		if err := json.Unmarshal(v, &d.Accuracy); err != nil {
			return err
		}
	}

	d.Meals = d.Meals[:0]
	for _, slot := range macros.OrderedSlots() {
		v, ok := raw[string(slot)]
		if !ok {
			continue
		}
		var m MealAssignment
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		d.Meals = append(d.Meals, m)
	}
	return nil
}

// WeekStructure holds the seven days, Monday first.
type WeekStructure [DaysPerWeek]DayPlan

// MarshalJSON writes the days keyed by lowercase day name.
func (w WeekStructure) MarshalJSON() ([]byte, error) {
	out := make(map[string]DayPlan, DaysPerWeek)
	for i, d := range w {
		out[DayNames[i]] = d
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads days keyed by lowercase day name.
func (w *WeekStructure) UnmarshalJSON(data []byte) error {
	var raw map[string]DayPlan
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, name := range DayNames {
		d := raw[name]
		d.Day = name
		w[i] = d
	}
	return nil
}

// WeekPlan is the result of one generation run. The caller owns persistence.
type WeekPlan struct {
	ClientID      string         `json:"clientId"`
	WeekStructure WeekStructure  `json:"weekStructure"`
	Targets       macros.Targets `json:"targets"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	MealsUsed     int            `json:"mealsUsed"`
	Preferences   Preferences    `json:"preferences"`
}

// AverageAccuracy returns the mean calorie and protein accuracy across the week.
func (w *WeekPlan) AverageAccuracy() (calories, protein float64) {
	for _, d := range w.WeekStructure {
		calories += float64(d.Accuracy.Calories)
		protein += float64(d.Accuracy.Protein)
	}
	return calories / DaysPerWeek, protein / DaysPerWeek
}

// DistinctMeals returns how many different catalog meals the week uses.
func (w *WeekPlan) DistinctMeals() int {
	seen := make(map[string]struct{})
	for _, d := range w.WeekStructure {
		for _, m := range d.Meals {
			seen[m.MealID] = struct{}{}
		}
	}
	return len(seen)
}

func summarize(meals []MealAssignment, targets macros.Targets) (Totals, Accuracy) {
	var t Totals
	for _, m := range meals {
		t.Kcal += m.Calories
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fat += m.Fat
	}
	return t, Accuracy{
		Calories: percentOf(float64(t.Kcal), targets.Calories),
		Protein:  percentOf(float64(t.Protein), targets.Protein),
	}
}

func percentOf(actual, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(actual / target * 100))
}
