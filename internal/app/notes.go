package app

import (
	"context"
	"fmt"
	"log"

	"coach-planner/internal/config"
	"coach-planner/internal/llm"
	"coach-planner/internal/planner"
)

// NewNoteWriter builds the coach note writer from the configured LLM. Gemini wins when both
// keys are set. It returns nil and a no-op closer when no LLM is configured.
func NewNoteWriter(ctx context.Context, cfg *config.Config) (*planner.NoteWriter, func() error, error) {
	noop := func() error { return nil }

	switch {
	case cfg.GeminiAPIKey != "":
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		log.Printf("Coach notes use Gemini (%s).", modelOr(cfg.GeminiModel, llm.DefaultGeminiModel))
		return planner.NewNoteWriter(gemini), gemini.Close, nil
	case cfg.GroqAPIKey != "":
		log.Printf("Coach notes use Groq (%s).", modelOr(cfg.GroqModel, llm.DefaultGroqModel))
		return planner.NewNoteWriter(llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)), noop, nil
	default:
		return nil, noop, nil
	}
}

func modelOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
