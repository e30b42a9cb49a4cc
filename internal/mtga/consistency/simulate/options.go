// Package simulate runs Monte Carlo samples of commander opening hands and
// early turns.
//
// Every iteration draws from its own generator seeded from (Seed, iteration
// index), so aggregates are bit-identical for a given seed no matter how many
// workers share the run.
package simulate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/hand"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
)

// ErrInvalidConfiguration is returned for options a simulation cannot run with.
var ErrInvalidConfiguration = errors.New("simulate: invalid configuration")

// DefaultIterations is the default iteration count for both simulators.
const DefaultIterations = 10_000

const defaultBatchSize = 512

// Policy is the hand-size rule applied after a mulligan.
type Policy string

const (
	// London always draws a full hand and only counts mulligans taken.
	London Policy = "london"
	// Vancouver draws one card fewer per mulligan taken.
	Vancouver Policy = "vancouver"
)

// ParsePolicy converts a policy name, case-insensitively. Empty means London.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", London:
		return London, nil
	case Vancouver:
		return Vancouver, nil
	}
	return "", fmt.Errorf("%w: unknown mulligan policy %q", ErrInvalidConfiguration, s)
}

// RunOptions are the knobs shared by every simulator.
type RunOptions struct {
	Iterations int
	// Seed zero draws a fresh seed; the seed used is reported in the result.
	Seed uint64
	// Workers zero uses runtime.NumCPU().
	Workers int
	// BatchSize is how many iterations a worker takes between cancellation checks.
	BatchSize int
}

func (o RunOptions) validate() error {
	if o.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfiguration, o.Iterations)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfiguration)
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("%w: batch size cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}

// MulliganOptions configures RunMulligans.
type MulliganOptions struct {
	RunOptions
	Rules        hand.Rules
	Policy       Policy
	MaxMulligans int
	HandSize     int
}

// DefaultMulliganOptions returns 10,000 London-policy iterations with
// DefaultRules and a forced keep after three mulligans.
func DefaultMulliganOptions() MulliganOptions {
	return MulliganOptions{
		RunOptions:   RunOptions{Iterations: DefaultIterations, BatchSize: defaultBatchSize},
		Rules:        hand.DefaultRules(),
		Policy:       London,
		MaxMulligans: 3,
		HandSize:     deck.OpeningHandSize,
	}
}

func (o MulliganOptions) validate(librarySize int) error {
	if err := o.RunOptions.validate(); err != nil {
		return err
	}
	if o.HandSize < 1 {
		return fmt.Errorf("%w: hand size must be positive", ErrInvalidConfiguration)
	}
	if o.MaxMulligans < 0 {
		return fmt.Errorf("%w: max mulligans cannot be negative", ErrInvalidConfiguration)
	}
	if _, err := ParsePolicy(string(o.Policy)); err != nil {
		return err
	}
	if o.Policy == Vancouver && o.MaxMulligans >= o.HandSize {
		return fmt.Errorf("%w: %d mulligans would empty a %d-card hand", ErrInvalidConfiguration, o.MaxMulligans, o.HandSize)
	}
	if librarySize < o.HandSize {
		return fmt.Errorf("%w: library of %d cards cannot fill a %d-card hand", ErrInvalidConfiguration, librarySize, o.HandSize)
	}
	return nil
}

// EarlyTurnOptions configures RunEarlyTurns.
type EarlyTurnOptions struct {
	RunOptions
	Rules    hand.Rules
	HandSize int
	Turns    int
	// MaxReshuffles caps the search for a keepable opening hand. When no
	// keepable hand turns up the last one is played and counted as unkeepable.
	MaxReshuffles int
}

// DefaultEarlyTurnOptions returns 10,000 iterations through turn 3.
func DefaultEarlyTurnOptions() EarlyTurnOptions {
	return EarlyTurnOptions{
		RunOptions:    RunOptions{Iterations: DefaultIterations, BatchSize: defaultBatchSize},
		Rules:         hand.DefaultRules(),
		HandSize:      deck.OpeningHandSize,
		Turns:         3,
		MaxReshuffles: 100,
	}
}

func (o EarlyTurnOptions) validate(librarySize int) error {
	if err := o.RunOptions.validate(); err != nil {
		return err
	}
	if o.HandSize < 1 {
		return fmt.Errorf("%w: hand size must be positive", ErrInvalidConfiguration)
	}
	if o.Turns < 1 {
		return fmt.Errorf("%w: turns must be positive", ErrInvalidConfiguration)
	}
	if o.MaxReshuffles < 1 {
		return fmt.Errorf("%w: max reshuffles must be positive", ErrInvalidConfiguration)
	}
	if librarySize < o.HandSize {
		return fmt.Errorf("%w: library of %d cards cannot fill a %d-card hand", ErrInvalidConfiguration, librarySize, o.HandSize)
	}
	return nil
}
