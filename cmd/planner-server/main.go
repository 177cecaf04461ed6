package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coach-planner/internal/app"
	"coach-planner/internal/config"
	"coach-planner/internal/database"
	"coach-planner/internal/ghost"
	"coach-planner/internal/httpapi"
	"coach-planner/internal/metrics"
	"coach-planner/internal/storage"
	"coach-planner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireAPISecret(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	archive, err := storage.NewPlanArchive(cfg.PlanArchivePath)
	if err != nil {
		log.Fatalf("Failed to initialize plan archive: %v", err)
	}

	// 3. Optional integrations
	opts := app.Options{Archive: archive}
	noteWriter, closeNotes, err := app.NewNoteWriter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize coach notes: %v", err)
	}
	defer closeNotes()
	if noteWriter == nil {
		log.Println("No LLM key set, coach notes disabled.")
	}
	opts.NoteWriter = noteWriter
	if cfg.GhostEnabled() {
		opts.Publisher = ghost.NewClient(cfg.GhostURL, cfg.GhostAdminKey)
	} else {
		log.Println("Ghost not configured, publishing disabled.")
	}

	application := app.NewApp(cfg, db.SQL, metricsStore, opts)

	// 4. HTTP API and Telegram webhook
	server := httpapi.NewServer(application, []byte(cfg.APIJWTSecret))
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg, application)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		server.Mount("/webhook", bot.WebhookHandler())
	}

	// 5. Weekly schedule
	scheduler, err := application.StartWeeklySchedule(ctx, cfg.WeeklyPlanSchedule)
	if err != nil {
		log.Fatalf("Failed to start weekly schedule: %v", err)
	}
	defer scheduler.Stop()

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Planner server listening on port %s (schema v%d)", cfg.Port, db.SchemaVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
