package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/commander-consistency/internal/config"
	"github.com/ramonehamilton/commander-consistency/internal/export"
	"github.com/ramonehamilton/commander-consistency/internal/metrics"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
	"github.com/ramonehamilton/commander-consistency/internal/storage"
)

// Editors often write a file in several steps; wait this long for quiet.
const watchDebounce = 250 * time.Millisecond

type runner struct {
	cfg       *config.Config
	modelPath string
	deckPath  string
	db        *storage.DB
	out       io.Writer
	logger    *slog.Logger

	metrics *metrics.RunMetrics
}

// run loads the model and deck, analyzes the deck and prints the report.
func (r *runner) run(ctx context.Context) error {
	model, err := capability.LoadModelFile(r.modelPath)
	if err != nil {
		return err
	}
	comp, err := deck.LoadFile(r.deckPath)
	if err != nil {
		return err
	}

	opts, err := r.cfg.SimulationOptions()
	if err != nil {
		return err
	}
	if r.metrics == nil {
		r.metrics = metrics.NewRunMetrics(0)
	}
	analyzer, err := consistency.NewAnalyzer(model, consistency.AnalyzerConfig{
		Options: opts,
		Logger:  r.logger,
		Metrics: r.metrics,
	})
	if err != nil {
		return err
	}

	report, err := analyzer.Analyze(ctx, comp)
	if err != nil {
		return err
	}

	if r.db != nil {
		record, err := r.db.SaveReport(ctx, report)
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		r.logger.Info("Report saved", "id", record.ID, "deck_hash", record.DeckHash)
	}
	r.logStats()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := fmt.Fprintln(r.out, string(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// logStats writes the cumulative run figures at debug level.
func (r *runner) logStats() {
	st := r.metrics.Stats()
	total := st.Stages[metrics.StageTotal]
	r.logger.Debug("Run metrics",
		"runs_completed", st.RunsCompleted,
		"runs_failed", st.RunsFailed,
		"iterations", st.IterationsSimulated,
		"missing_cards", st.MissingCards,
		"success_rate", st.SuccessRate,
		"total_p50_ms", total.P50,
		"total_p95_ms", total.P95,
		"uptime", st.Uptime,
	)
}

// watch re-runs the analysis whenever the deck or model file changes. The
// parent directories are watched so that rename-on-save editors are seen.
func (r *runner) watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	targets := make(map[string]bool)
	for _, path := range []string{r.deckPath, r.modelPath} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		targets[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	r.logger.Info("Watching for changes", "deck", r.deckPath, "model", r.modelPath)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event, targets) {
				continue
			}
			r.logger.Debug("File changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("File watcher error", "error", err)
		case <-timer.C:
			if err := r.run(ctx); err != nil {
				r.logger.Error("Analysis failed", "error", err)
			}
		}
	}
}

func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return targets[abs]
}

// printHistory exports the stored reports for the deck at deckPath, newest
// first, to outPath or stdout.
func printHistory(ctx context.Context, db *storage.DB, deckPath, format, outPath string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	comp, err := deck.LoadFile(deckPath)
	if err != nil {
		return err
	}
	records, err := db.Reports().ListByDeckHash(ctx, comp.CardHash(), 0)
	if err != nil {
		return err
	}
	rows := export.HistoryRows(records)
	if outPath != "" {
		return export.WriteHistoryFile(outPath, f, rows, true)
	}
	return export.WriteHistory(os.Stdout, f, rows)
}
