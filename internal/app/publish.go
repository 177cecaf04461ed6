package app

import (
	"context"
	"log"

	"coach-planner/internal/ghost"
	"coach-planner/internal/planner"

	"github.com/cenkalti/backoff/v5"
)

// PublishWeekPlan renders the plan and creates a Ghost draft. Temporary failures are retried.
func (a *App) PublishWeekPlan(ctx context.Context, clientName string, plan *planner.WeekPlan, note string) (*ghost.Post, error) {
	if a.publisher == nil {
		return nil, ErrPublishDisabled
	}

	html, err := ghost.RenderWeekPlan(plan, note)
	if err != nil {
		return nil, err
	}
	title := ghost.PostTitle(clientName, plan)

	attempt := 0
	return backoff.Retry(ctx, func() (*ghost.Post, error) {
		attempt++
		post, err := a.publisher.CreatePost(ctx, title, html, false)
		if err == nil {
			return post, nil
		}
		if !ghost.IsTemporary(err) {
			return nil, backoff.Permanent(err)
		}
		log.Printf("Publish attempt %d for client %s failed: %v", attempt, plan.ClientID, err)
		return nil, err
	}, backoff.WithBackOff(a.publishBackOff()), backoff.WithMaxTries(a.publishTries))
}
