// Package main provides the deckcheck command, which analyzes the
// consistency of a commander deck against a card capability model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ramonehamilton/commander-consistency/internal/config"
	"github.com/ramonehamilton/commander-consistency/internal/storage"
	"github.com/ramonehamilton/commander-consistency/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.commander-consistency/config.toml)")
	modelPath  = flag.String("model", "", "Card capability model (JSON)")
	deckPath   = flag.String("deck", "", "Deck composition (JSON)")
	dbPath     = flag.String("db", "", "Store reports in this SQLite database")
	seed       = flag.Uint64("seed", 0, "Simulation seed (0 draws a random seed)")
	iterations = flag.Int("iterations", 0, "Iterations for both simulators")
	workers    = flag.Int("workers", 0, "Simulation workers (0 uses every CPU)")
	policy     = flag.String("policy", "", "Mulligan policy: london or vancouver")
	watch      = flag.Bool("watch", false, "Re-run the analysis when the deck or model changes")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	history    = flag.Bool("history", false, "Print stored reports for the deck instead of analyzing it")
	format     = flag.String("format", "csv", "History format: csv or json")
	outPath    = flag.String("out", "", "Write history to this file instead of stdout")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("deckcheck %s\n", version.GetVersion())
		return
	}
	if *deckPath == "" || (*modelPath == "" && !*history) {
		fmt.Fprintln(os.Stderr, "usage: deckcheck -model cards.json -deck deck.json [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, set, flagValues{
		DBPath:     *dbPath,
		Seed:       *seed,
		Iterations: *iterations,
		Workers:    *workers,
		Policy:     *policy,
		Debug:      *debug,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var db *storage.DB
	if cfg.Storage.Path != "" {
		dbConfig := storage.DefaultConfig(cfg.Storage.Path)
		dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
		db, err = storage.Open(dbConfig)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
		logger.Info("Persisting reports", "database", cfg.Storage.Path)
	}

	if *history {
		if db == nil {
			log.Fatalf("-history needs a database (-db or storage.path)")
		}
		if err := printHistory(context.Background(), db, *deckPath, *format, *outPath); err != nil {
			log.Fatalf("Failed to export history: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		cfg:       cfg,
		modelPath: *modelPath,
		deckPath:  *deckPath,
		db:        db,
		out:       os.Stdout,
		logger:    logger,
	}

	if err := r.run(ctx); err != nil {
		if !*watch {
			log.Fatalf("Analysis failed: %v", err)
		}
		logger.Error("Analysis failed", "error", err)
	}
	if !*watch {
		return
	}

	if err := r.watch(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Watch failed: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

// flagValues holds the command-line overrides for the config file.
type flagValues struct {
	DBPath     string
	Seed       uint64
	Iterations int
	Workers    int
	Policy     string
	Debug      bool
}

// applyFlags copies the explicitly set flags onto cfg.
func applyFlags(cfg *config.Config, set map[string]bool, v flagValues) {
	if set["db"] {
		cfg.Storage.Path = v.DBPath
	}
	if set["seed"] {
		cfg.Simulation.Seed = v.Seed
	}
	if set["iterations"] {
		cfg.Simulation.MulliganIterations = v.Iterations
		cfg.Simulation.EarlyTurnIterations = v.Iterations
	}
	if set["workers"] {
		cfg.Simulation.Workers = v.Workers
	}
	if set["policy"] {
		cfg.Simulation.MulliganPolicy = v.Policy
	}
	if set["debug"] {
		cfg.App.DebugMode = v.Debug
	}
}
