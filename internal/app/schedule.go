package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron"
	"golang.org/x/sync/errgroup"
)

// defaultBatchLimit bounds concurrent generations in a batch.
const defaultBatchLimit = 4

// BatchResult is the outcome for one client of a batch run.
type BatchResult struct {
	ClientID string
	Result   *GenerateResult
	Err      error
}

// GenerateForClients runs GenerateWeekPlan for every client with at most limit in flight.
// A failing client does not stop the others; only cancellation aborts the batch.
func (a *App) GenerateForClients(ctx context.Context, clientIDs []string, template GenerateRequest, limit int) ([]BatchResult, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	results := make([]BatchResult, len(clientIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, id := range clientIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req := template
			req.ClientID = id
			res, err := a.GenerateWeekPlan(gctx, req)
			results[i] = BatchResult{ClientID: id, Result: res, Err: err}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// RunWeekly generates plans for every client flagged for automatic planning.
func (a *App) RunWeekly(ctx context.Context) ([]BatchResult, error) {
	clients, err := a.clients.ListAutoPlan(ctx)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		log.Println("Weekly run: no clients flagged for automatic plans.")
		return nil, nil
	}

	ids := make([]string, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}

	results, err := a.GenerateForClients(ctx, ids, GenerateRequest{
		Archive:  true,
		WithNote: a.noteWriter != nil,
		Publish:  a.publisher != nil,
	}, defaultBatchLimit)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("Weekly run: client %s failed: %v", r.ClientID, r.Err)
		}
	}
	log.Printf("Weekly run finished: %d clients, %d failed.", len(results), failed)
	return results, err
}

// Scheduler runs the weekly job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	cancel  context.CancelFunc
	running sync.Mutex
}

// StartWeeklySchedule registers RunWeekly on a cron expression (with a seconds field) and starts it.
// Overlapping runs are skipped.
func (a *App) StartWeeklySchedule(ctx context.Context, expr string) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{cron: cron.New(), cancel: cancel}

	err := s.cron.AddFunc(expr, func() {
		if !s.running.TryLock() {
			log.Println("Weekly run still in progress, skipping this tick.")
			return
		}
		defer s.running.Unlock()

		runCtx, done := context.WithTimeout(ctx, 30*time.Minute)
		defer done()
		if _, err := a.RunWeekly(runCtx); err != nil {
			log.Printf("Weekly run failed: %v", err)
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	s.cron.Start()
	log.Printf("Weekly plan schedule started (%s).", expr)
	return s, nil
}

// Stop halts the schedule and cancels a run in progress.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.cancel()
}
