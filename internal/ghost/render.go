package ghost

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"coach-planner/internal/planner"
)

var weekTmpl = template.Must(template.New("week").Funcs(template.FuncMap{
	"title": slotTitle,
}).Parse(`{{if .Note}}<p class="coach-note">{{.Note}}</p>
{{end}}<p class="targets">Daily targets: {{printf "%.0f" .Plan.Targets.Calories}} kcal, {{printf "%.0f" .Plan.Targets.Protein}} g protein</p>
{{range .Plan.WeekStructure}}<section class="day" data-day="{{.Day}}">
<h2>{{title .Day}}</h2>
<table>
<thead><tr><th>Meal</th><th>Dish</th><th>Portion</th><th>kcal</th><th>Protein</th><th>Carbs</th><th>Fat</th></tr></thead>
<tbody>
{{range .Meals}}<tr class="meal" data-slot="{{.Slot}}"><td>{{title (print .Slot)}}</td><td>{{.MealName}}</td><td>{{printf "%.2fx" .ScaleFactor}}</td><td>{{.Calories}}</td><td>{{.Protein}} g</td><td>{{.Carbs}} g</td><td>{{.Fat}} g</td></tr>
{{end}}</tbody>
<tfoot><tr class="totals"><td colspan="3">Total ({{.Accuracy.Calories}}% kcal, {{.Accuracy.Protein}}% protein)</td><td>{{.Totals.Kcal}}</td><td>{{.Totals.Protein}} g</td><td>{{.Totals.Carbs}} g</td><td>{{.Totals.Fat}} g</td></tr></tfoot>
</table>
</section>
{{end}}`))

// RenderWeekPlan turns a week plan into post HTML. note may be empty.
func RenderWeekPlan(plan *planner.WeekPlan, note string) (string, error) {
	var buf bytes.Buffer
	err := weekTmpl.Execute(&buf, struct {
		Plan *planner.WeekPlan
		Note string
	}{Plan: plan, Note: note})
	if err != nil {
		return "", fmt.Errorf("failed to render week plan: %w", err)
	}
	return buf.String(), nil
}

// PostTitle names the post for a client's week.
func PostTitle(clientName string, plan *planner.WeekPlan) string {
	return fmt.Sprintf("Meal plan for %s, week of %s", clientName, plan.GeneratedAt.Format("2 Jan 2006"))
}

// slotTitle turns "afternoon_snack" into "Afternoon snack".
func slotTitle(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
