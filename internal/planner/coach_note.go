package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"coach-planner/internal/llm"
	"coach-planner/internal/macros"
	"coach-planner/internal/shared"
)

//go:embed coach_note_prompt.md
var coachNotePrompt string

var coachNoteTmpl = template.Must(template.New("coach_note").Parse(coachNotePrompt))

// CoachNoteAgent is the agent name recorded in execution metrics.
const CoachNoteAgent = "CoachNote"

type coachNotePromptData struct {
	ClientName   string
	Targets      macros.Targets
	MealsPerDay  int
	VarietyLevel VarietyLevel
	Days         []DayPlan
	AvgCalories  int
	AvgProtein   int
}

// CoachNote is a short message to the client summarizing a week plan.
type CoachNote struct {
	Text string
	Meta shared.AgentMeta
}

// NoteWriter asks an LLM to summarize a generated week for the client.
type NoteWriter struct {
	textGen llm.TextGenerator
}

// NewNoteWriter creates a NoteWriter.
func NewNoteWriter(textGen llm.TextGenerator) *NoteWriter {
	return &NoteWriter{textGen: textGen}
}

// Write produces the note. Token usage is returned in Meta even when the model fails.
func (w *NoteWriter) Write(ctx context.Context, clientName string, plan *WeekPlan) (CoachNote, error) {
	start := time.Now()
	prompt, err := buildCoachNotePrompt(clientName, plan)
	if err != nil {
		return CoachNote{}, err
	}

	resp, err := w.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{
		AgentName: CoachNoteAgent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return CoachNote{Meta: meta}, fmt.Errorf("failed to write coach note: %w", err)
	}

	return CoachNote{
		Text: strings.TrimSpace(resp.Content),
		Meta: meta,
	}, nil
}

func buildCoachNotePrompt(clientName string, plan *WeekPlan) (string, error) {
	avgCal, avgProt := plan.AverageAccuracy()
	data := coachNotePromptData{
		ClientName:   clientName,
		Targets:      plan.Targets,
		MealsPerDay:  int(plan.Preferences.MealsPerDay),
		VarietyLevel: plan.Preferences.VarietyLevel,
		Days:         plan.WeekStructure[:],
		AvgCalories:  int(math.Round(avgCal)),
		AvgProtein:   int(math.Round(avgProt)),
	}

	var buf bytes.Buffer
	if err := coachNoteTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render coach note prompt: %w", err)
	}
	return buf.String(), nil
}
