package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"coach-planner/internal/app"
	"coach-planner/internal/config"
	"coach-planner/internal/database"
	"coach-planner/internal/ghost"
	"coach-planner/internal/httpapi"
	"coach-planner/internal/macros"
	"coach-planner/internal/metrics"
	"coach-planner/internal/planner"
	"coach-planner/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// token needs no database.
	if os.Args[1] == "token" {
		issueToken(cfg, os.Args[2:])
		return
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	switch os.Args[1] {
	case "import":
		importCmd := flag.NewFlagSet("import", flag.ExitOnError)
		importCmd.Parse(os.Args[2:])
		if importCmd.NArg() != 1 {
			log.Fatal("Usage: meal-planner import <catalog.json>")
		}

		f, err := os.Open(importCmd.Arg(0))
		if err != nil {
			log.Fatalf("Failed to open catalog: %v", err)
		}
		defer f.Close()

		application := app.NewApp(cfg, db.SQL, metricsStore, app.Options{})
		summary, err := application.ImportCatalog(ctx, f)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d clients, %d meal plans and %d meals (%d skipped, %d replaced).\n",
			summary.Clients, summary.MealPlans, summary.Meals, summary.Skipped, summary.Removed)

	case "generate":
		genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		meals := genCmd.Int("meals", 0, "Meals per day (3, 4 or 5); defaults to the client's setting")
		variety := genCmd.String("variety", "", "Variety level (low, medium, high)")
		seed := genCmd.Uint64("seed", 0, "Seed for a reproducible plan (0 picks a random one)")
		archive := genCmd.Bool("archive", false, "Write the plan to the file archive")
		note := genCmd.Bool("note", false, "Ask the configured LLM for a coach note")
		publish := genCmd.Bool("publish", false, "Publish the plan to Ghost as a draft")
		genCmd.Parse(os.Args[2:])
		if genCmd.NArg() != 1 {
			log.Fatal("Usage: meal-planner generate [flags] <client-id>")
		}

		prefs := planner.Preferences{MealsPerDay: macros.MealsPerDay(*meals)}
		if *variety != "" {
			level, err := planner.ParseVarietyLevel(*variety)
			if err != nil {
				log.Fatalf("Invalid variety: %v", err)
			}
			prefs.VarietyLevel = level
		}

		opts := app.Options{}
		if *seed != 0 {
			opts.GeneratorOptions = append(opts.GeneratorOptions, planner.WithSeed(*seed))
		}
		if *archive {
			a, err := storage.NewPlanArchive(cfg.PlanArchivePath)
			if err != nil {
				log.Fatalf("Failed to initialize plan archive: %v", err)
			}
			opts.Archive = a
		}
		if *note {
			if !cfg.NotesEnabled() {
				log.Fatal("GEMINI_API_KEY or GROQ_API_KEY must be set for coach notes")
			}
			noteWriter, closeNotes, err := app.NewNoteWriter(ctx, cfg)
			if err != nil {
				log.Fatalf("Failed to initialize coach notes: %v", err)
			}
			defer closeNotes()
			opts.NoteWriter = noteWriter
		}
		if *publish {
			if !cfg.GhostEnabled() {
				log.Fatal("GHOST_API_URL and GHOST_ADMIN_API_KEY must be set to publish")
			}
			opts.Publisher = ghost.NewClient(cfg.GhostURL, cfg.GhostAdminKey)
		}

		application := app.NewApp(cfg, db.SQL, metricsStore, opts)
		res, err := application.GenerateWeekPlan(ctx, app.GenerateRequest{
			ClientID:    genCmd.Arg(0),
			Preferences: prefs,
			Archive:     *archive,
			WithNote:    *note,
			Publish:     *publish,
		})
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		out, err := json.MarshalIndent(res.Plan, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode plan: %v", err)
		}
		fmt.Println(string(out))
		calAcc, protAcc := res.Plan.AverageAccuracy()
		fmt.Fprintf(os.Stderr, "Stored plan %s (average accuracy: calories %.0f%%, protein %.0f%%).\n", res.PlanID, calAcc, protAcc)
		if res.ArchiveVersion != "" {
			fmt.Fprintf(os.Stderr, "Archived as version %s.\n", res.ArchiveVersion)
		}
		if res.Note != "" {
			fmt.Fprintf(os.Stderr, "Coach note: %s\n", res.Note)
		}
		if res.Post != nil {
			fmt.Fprintf(os.Stderr, "Published draft: %s\n", res.Post.URL)
		}

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func issueToken(cfg *config.Config, args []string) {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	ttl := tokenCmd.Duration("ttl", 30*24*time.Hour, "Token lifetime")
	tokenCmd.Parse(args)
	if tokenCmd.NArg() != 1 {
		log.Fatal("Usage: meal-planner token [-ttl 720h] <subject>")
	}
	if err := cfg.RequireAPISecret(); err != nil {
		log.Fatal(err)
	}

	token, err := httpapi.IssueToken([]byte(cfg.APIJWTSecret), tokenCmd.Arg(0), *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import <file>      Import clients, meal plans and meal catalogs from JSON")
	fmt.Println("  generate <client>  Generate a 7-day plan (-meals, -variety, -seed, -archive, -note, -publish)")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("  token <subject>    Issue a bearer token for the HTTP API")
}
