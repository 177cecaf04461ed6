package meal

import "time"

// CustomMeal is one entry of a client's meal catalog. Macros describe one reference serving
// and scale linearly.
type CustomMeal struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	CreatedAt time.Time `json:"created_at"`
}

// Plannable reports whether the meal can be scaled to a calorie target.
func (m CustomMeal) Plannable() bool {
	return m.Calories > 0
}
