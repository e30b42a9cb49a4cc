// Package consistency runs the full deck consistency pipeline: simulations,
// scoring, diagnostics and the analytic profile.
package consistency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/commander-consistency/internal/metrics"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/optimize"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/profile"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/score"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/simulate"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
)

// Options are the per-run simulation and diagnostic settings.
type Options struct {
	Mulligan   simulate.MulliganOptions
	EarlyTurn  simulate.EarlyTurnOptions
	Thresholds optimize.Thresholds
}

// DefaultOptions returns 10,000 iterations per simulator with the standard
// rules and thresholds.
func DefaultOptions() Options {
	return Options{
		Mulligan:   simulate.DefaultMulliganOptions(),
		EarlyTurn:  simulate.DefaultEarlyTurnOptions(),
		Thresholds: optimize.DefaultThresholds(),
	}
}

// AnalyzerConfig configures an Analyzer.
type AnalyzerConfig struct {
	Options Options
	Logger  *slog.Logger
	Metrics *metrics.RunMetrics
}

// Analyzer evaluates decks against a fixed capability model.
type Analyzer struct {
	model     *capability.Model
	opts      Options
	optimizer *optimize.Optimizer
	logger    *slog.Logger
	metrics   *metrics.RunMetrics
}

// NewAnalyzer returns an analyzer over model. A zero Options uses DefaultOptions.
func NewAnalyzer(model *capability.Model, config AnalyzerConfig) (*Analyzer, error) {
	if model == nil {
		return nil, fmt.Errorf("capability model is required")
	}
	if config.Options == (Options{}) {
		config.Options = DefaultOptions()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewRunMetrics(0)
	}
	return &Analyzer{
		model:     model,
		opts:      config.Options,
		optimizer: optimize.New(optimize.DefaultRules(config.Options.Thresholds)...),
		logger:    config.Logger,
		metrics:   config.Metrics,
	}, nil
}

// Metrics returns the analyzer's run metrics.
func (a *Analyzer) Metrics() *metrics.RunMetrics {
	return a.metrics
}

// MissingCard is a deck entry absent from the capability model. It is
// analyzed as a blank card.
type MissingCard struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Report is the complete result of analyzing one deck.
type Report struct {
	DeckHash    string         `json:"deck_hash"`
	Commander   deck.Commander `json:"commander"`
	Seed        uint64         `json:"seed"`
	GeneratedAt time.Time      `json:"generated_at"`

	Counts       deck.Counts     `json:"counts"`
	Ramp         []string        `json:"ramp"`
	BurstDraw    []string        `json:"burst_draw"`
	DrawEngines  []string        `json:"draw_engines"`
	ManaSources  map[string]int  `json:"mana_sources"`
	Saturation   deck.Saturation `json:"saturation"`
	IdealSources map[string]int  `json:"ideal_sources"`
	MissingCards []MissingCard   `json:"missing_cards"`

	Mulligan   *simulate.MulliganResult  `json:"mulligan"`
	EarlyTurn  *simulate.EarlyTurnResult `json:"early_turn"`
	Score      score.Breakdown           `json:"score"`
	Diagnosis  optimize.Report           `json:"diagnosis"`
	Profile    *profile.Profile          `json:"profile"`
	Comparison profile.Comparison        `json:"comparison"`
}

// Analyze runs the full pipeline on comp. Both simulators share one seed,
// drawn at random when the options leave it unset.
func (a *Analyzer) Analyze(ctx context.Context, comp *deck.Composition) (*Report, error) {
	done := a.metrics.Time(metrics.StageTotal)
	report, err := a.analyze(ctx, comp)
	if err != nil {
		a.metrics.RunsFailed.Add(1)
		return nil, err
	}
	a.metrics.RunsCompleted.Add(1)

	a.logger.Info("Deck analyzed",
		"commander", comp.Commander.Name,
		"score", report.Score.Total,
		"tier", report.Score.Tier,
		"primary_issue", report.Diagnosis.PrimaryIssue,
		"duration", done())
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, comp *deck.Composition) (*Report, error) {
	seed := a.opts.Mulligan.Seed
	if seed == 0 {
		var err error
		if seed, err = simulate.NewSeed(); err != nil {
			return nil, err
		}
	}
	mullOpts := a.opts.Mulligan
	mullOpts.Seed = seed
	earlyOpts := a.opts.EarlyTurn
	earlyOpts.Seed = seed

	counts := deck.Count(comp, a.model)
	report := &Report{
		DeckHash:     comp.CardHash(),
		Commander:    comp.Commander,
		Seed:         seed,
		GeneratedAt:  time.Now().UTC(),
		Counts:       counts,
		Ramp:         deck.ListRamp(comp, a.model),
		BurstDraw:    deck.ListBurstDraw(comp, a.model),
		DrawEngines:  deck.ListDrawEngines(comp, a.model),
		ManaSources:  deck.ManaSourcesByColor(comp, a.model),
		Saturation:   deck.ColorSaturation(comp, a.model),
		MissingCards: a.missingCards(comp),
	}
	report.IdealSources = deck.IdealColorSources(report.Saturation, deck.TotalSources(report.ManaSources))

	a.logger.Info("Starting deck analysis",
		"commander", comp.Commander.Name,
		"colors", comp.Commander.ColorIdentity.String(),
		"cards", counts.Total,
		"lands", counts.Lands,
		"mulligan_iterations", mullOpts.Iterations,
		"early_turn_iterations", earlyOpts.Iterations,
		"seed", seed)

	lib := simulate.NewLibrary(comp, a.model)

	stop := a.metrics.Time(metrics.StageMulligan)
	mull, err := simulate.RunMulligans(ctx, lib, mullOpts)
	if err != nil {
		return nil, fmt.Errorf("mulligan simulation: %w", err)
	}
	a.logger.Debug("Mulligan simulation finished", "duration", stop(), "average_mulligans", mull.AverageMulligans)
	a.metrics.IterationsSimulated.Add(uint64(mull.Iterations))

	stop = a.metrics.Time(metrics.StageEarlyTurn)
	early, err := simulate.RunEarlyTurns(ctx, lib, earlyOpts)
	if err != nil {
		return nil, fmt.Errorf("early-turn simulation: %w", err)
	}
	a.logger.Debug("Early-turn simulation finished", "duration", stop(), "unkeepable_starts", early.UnkeepableStarts)
	a.metrics.IterationsSimulated.Add(uint64(early.Iterations))

	report.Mulligan = mull
	report.EarlyTurn = early

	in := score.InputFrom(mull, early)
	report.Score = score.Compute(in)
	report.Diagnosis = a.optimizer.Diagnose(optimize.ContextFrom(in, counts))

	stop = a.metrics.Time(metrics.StageProfile)
	report.Profile = profile.Build(comp, a.model)
	report.Comparison = profile.Compare(report.Profile, early)
	a.logger.Debug("Profile built", "duration", stop())

	return report, nil
}

// missingCards lists deck entries the model does not know, logging each once.
func (a *Analyzer) missingCards(comp *deck.Composition) []MissingCard {
	missing := []MissingCard{}
	seen := make(map[string]bool)
	for _, e := range comp.Cards {
		if seen[e.Name] || a.model.Has(e.Name) {
			continue
		}
		seen[e.Name] = true

		m := MissingCard{Name: e.Name}
		if s, ok := a.model.Suggest(e.Name); ok {
			m.Suggestion = s
		}
		missing = append(missing, m)
		a.metrics.MissingCards.Add(1)
		a.logger.Warn("Card missing from capability model, treating as blank",
			"card", e.Name, "suggestion", m.Suggestion)
	}
	return missing
}
