package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/commander-consistency/internal/config"
	"github.com/ramonehamilton/commander-consistency/internal/export"
	"github.com/ramonehamilton/commander-consistency/internal/metrics"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
	"github.com/ramonehamilton/commander-consistency/internal/storage"
)

const testModel = `[
  {"name": "Forest", "types": ["basic", "land"], "mana_abilities": [{"produces": ["G"], "repeatable": true, "source": "land"}]},
  {"name": "Llanowar Elves", "types": ["creature"], "mana_value": 1, "mana_cost": "{G}", "color_identity": ["G"],
   "mana_abilities": [{"produces": ["G"], "repeatable": true, "source": "nonland"}]},
  {"name": "Grizzly Bears", "types": ["creature"], "mana_value": 2, "mana_cost": "{1}{G}", "color_identity": ["G"]}
]`

const testDeck = `{
  "commander": {"name": "Marwyn", "color_identity": ["G"], "mana_value": 3},
  "cards": [
    {"name": "Forest", "count": 38},
    {"name": "Llanowar Elves", "count": 10},
    {"name": "Grizzly Bears", "count": 51}
  ]
}`

func writeInputs(t *testing.T) (modelPath, deckPath string) {
	t.Helper()
	dir := t.TempDir()
	modelPath = filepath.Join(dir, "cards.json")
	deckPath = filepath.Join(dir, "deck.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(testModel), 0o644))
	require.NoError(t, os.WriteFile(deckPath, []byte(testDeck), 0o644))
	return modelPath, deckPath
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Simulation.MulliganIterations = 500
	cfg.Simulation.EarlyTurnIterations = 500
	cfg.Simulation.Seed = 42
	cfg.Simulation.Workers = 2
	return cfg
}

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	applyFlags(cfg, map[string]bool{"seed": true, "iterations": true, "policy": true, "debug": true}, flagValues{
		DBPath:     "ignored.db",
		Seed:       7,
		Iterations: 2000,
		Workers:    9,
		Policy:     "vancouver",
		Debug:      true,
	})

	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, 2000, cfg.Simulation.MulliganIterations)
	assert.Equal(t, 2000, cfg.Simulation.EarlyTurnIterations)
	assert.Equal(t, "vancouver", cfg.Simulation.MulliganPolicy)
	assert.True(t, cfg.App.DebugMode)

	// Unset flags leave the config alone.
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, 0, cfg.Simulation.Workers)
}

func TestRunnerPrintsReport(t *testing.T) {
	modelPath, deckPath := writeInputs(t)
	var out bytes.Buffer
	r := &runner{
		cfg:       testConfig(),
		modelPath: modelPath,
		deckPath:  deckPath,
		out:       &out,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	require.NoError(t, r.run(context.Background()))

	var report consistency.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "Marwyn", report.Commander.Name)
	assert.Equal(t, uint64(42), report.Seed)
	assert.Equal(t, 38, report.Counts.Lands)
	assert.Equal(t, 500, report.Mulligan.Iterations)
	assert.Empty(t, report.MissingCards)
	assert.Equal(t, uint64(1), r.metrics.RunsCompleted.Load())
}

func TestRunnerLogsRunMetrics(t *testing.T) {
	modelPath, deckPath := writeInputs(t)
	var logs bytes.Buffer
	r := &runner{
		cfg:       testConfig(),
		modelPath: modelPath,
		deckPath:  deckPath,
		out:       io.Discard,
		logger:    slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	require.NoError(t, r.run(context.Background()))
	require.NoError(t, r.run(context.Background()))

	assert.Contains(t, logs.String(), "Run metrics")
	assert.Contains(t, logs.String(), "runs_completed=2")
	assert.Equal(t, uint64(2), r.metrics.Stats().RunsCompleted)
	assert.Equal(t, 2, r.metrics.Stats().Stages[metrics.StageTotal].Count)
}

func TestRunnerSavesReport(t *testing.T) {
	modelPath, deckPath := writeInputs(t)
	db, err := storage.Open(storage.DefaultConfig(filepath.Join(t.TempDir(), "reports.db")))
	require.NoError(t, err)
	defer db.Close()

	r := &runner{
		cfg:       testConfig(),
		modelPath: modelPath,
		deckPath:  deckPath,
		db:        db,
		out:       io.Discard,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, r.run(context.Background()))
	require.NoError(t, r.run(context.Background()))

	comp, err := deck.LoadFile(deckPath)
	require.NoError(t, err)
	records, err := db.Reports().ListByDeckHash(context.Background(), comp.CardHash(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	out := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, printHistory(context.Background(), db, deckPath, "json", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []export.HistoryRow
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Marwyn", rows[0].Commander)
	assert.Equal(t, "london", rows[0].MulliganPolicy)

	assert.Error(t, printHistory(context.Background(), db, deckPath, "xml", out))
}

func TestRunnerMissingFiles(t *testing.T) {
	modelPath, _ := writeInputs(t)
	r := &runner{
		cfg:       testConfig(),
		modelPath: modelPath,
		deckPath:  filepath.Join(t.TempDir(), "missing.json"),
		out:       io.Discard,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	assert.Error(t, r.run(context.Background()))

	r.modelPath = filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, r.run(context.Background()))
}

func TestIsRelevant(t *testing.T) {
	dir := t.TempDir()
	deckPath := filepath.Join(dir, "deck.json")
	targets := map[string]bool{deckPath: true}

	assert.True(t, isRelevant(fsnotify.Event{Name: deckPath, Op: fsnotify.Write}, targets))
	assert.True(t, isRelevant(fsnotify.Event{Name: deckPath, Op: fsnotify.Create}, targets))
	assert.False(t, isRelevant(fsnotify.Event{Name: deckPath, Op: fsnotify.Chmod}, targets))
	assert.False(t, isRelevant(fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write}, targets))
}
