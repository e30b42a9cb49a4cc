// Package metrics records timings and counters for analysis runs.
package metrics

import (
	"sync/atomic"
	"time"
)

// Stage names a timed step of an analysis run.
type Stage string

const (
	StageMulligan  Stage = "mulligan"
	StageEarlyTurn Stage = "early_turn"
	StageProfile   Stage = "profile"
	StageTotal     Stage = "total"
)

// RunMetrics collects per-stage latencies and run counters. It is safe for
// concurrent use.
type RunMetrics struct {
	stages map[Stage]*Histogram

	RunsCompleted       atomic.Uint64
	RunsFailed          atomic.Uint64
	IterationsSimulated atomic.Uint64
	MissingCards        atomic.Uint64

	startTime time.Time
}

// NewRunMetrics returns a collector keeping the last samples durations per stage.
func NewRunMetrics(samples int) *RunMetrics {
	m := &RunMetrics{
		stages:    make(map[Stage]*Histogram),
		startTime: time.Now(),
	}
	for _, s := range []Stage{StageMulligan, StageEarlyTurn, StageProfile, StageTotal} {
		m.stages[s] = NewHistogram(samples)
	}
	return m
}

// Observe records the duration of a stage. Unknown stages are ignored.
func (m *RunMetrics) Observe(stage Stage, d time.Duration) {
	if h, ok := m.stages[stage]; ok {
		h.Record(d)
	}
}

// Time starts a timer for stage and returns a func that records it.
func (m *RunMetrics) Time(stage Stage) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		m.Observe(stage, d)
		return d
	}
}

// RunStats is a snapshot of RunMetrics.
type RunStats struct {
	Stages              map[Stage]LatencyStats `json:"stages"`
	RunsCompleted       uint64                 `json:"runs_completed"`
	RunsFailed          uint64                 `json:"runs_failed"`
	IterationsSimulated uint64                 `json:"iterations_simulated"`
	MissingCards        uint64                 `json:"missing_cards"`
	SuccessRate         float64                `json:"success_rate"` // percentage
	Uptime              string                 `json:"uptime"`
}

// Stats returns a snapshot of the current figures.
func (m *RunMetrics) Stats() *RunStats {
	completed := m.RunsCompleted.Load()
	failed := m.RunsFailed.Load()

	stats := &RunStats{
		Stages:              make(map[Stage]LatencyStats, len(m.stages)),
		RunsCompleted:       completed,
		RunsFailed:          failed,
		IterationsSimulated: m.IterationsSimulated.Load(),
		MissingCards:        m.MissingCards.Load(),
		Uptime:              time.Since(m.startTime).Round(time.Second).String(),
	}
	if completed+failed > 0 {
		stats.SuccessRate = float64(completed) / float64(completed+failed) * 100
	}
	for stage, h := range m.stages {
		stats.Stages[stage] = h.Stats()
	}
	return stats
}
