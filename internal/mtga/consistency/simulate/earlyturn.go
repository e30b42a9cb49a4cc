package simulate

import (
	"context"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/hand"
)

// TurnStats are the per-turn percentages of an early-turn simulation.
type TurnStats struct {
	Turn int `json:"turn"`
	// LandDrop is the share of games with at least Turn lands in play.
	LandDrop float64 `json:"land_drop"`
	// Playable is the share of games with ramp or an affordable spell in hand.
	Playable float64 `json:"playable"`
	// ColorScrew is the share of games missing a commander color. It is only
	// tracked from turn 2 on.
	ColorScrew        float64 `json:"color_screw"`
	ColorScrewTracked bool    `json:"color_screw_tracked"`
}

// EarlyTurnResult aggregates an early-turn simulation. Percentages are in [0, 100].
type EarlyTurnResult struct {
	Iterations int         `json:"iterations"`
	Seed       uint64      `json:"seed"`
	Turns      []TurnStats `json:"turns"`
	// UnkeepableStarts is the share of games where no keepable opening hand
	// was found within MaxReshuffles.
	UnkeepableStarts float64 `json:"unkeepable_starts"`
}

// Turn returns the stats for a 1-based turn, or the zero value when the
// turn was not simulated.
func (r *EarlyTurnResult) Turn(turn int) TurnStats {
	if turn < 1 || turn > len(r.Turns) {
		return TurnStats{Turn: turn}
	}
	return r.Turns[turn-1]
}

type earlyTurnTally struct {
	landDrop   []int64
	playable   []int64
	colorScrew []int64
	unkeepable int64
	hand       []int
	buf        []hand.Card
}

// RunEarlyTurns simulates a keepable opening hand followed by draws and land
// drops through opts.Turns.
func RunEarlyTurns(ctx context.Context, lib *Library, opts EarlyTurnOptions) (*EarlyTurnResult, error) {
	if err := opts.validate(lib.Size()); err != nil {
		return nil, err
	}
	seed, err := resolveSeed(opts.Seed)
	if err != nil {
		return nil, err
	}

	commander := lib.Commander()
	newTally := func() *earlyTurnTally {
		return &earlyTurnTally{
			landDrop:   make([]int64, opts.Turns),
			playable:   make([]int64, opts.Turns),
			colorScrew: make([]int64, opts.Turns),
			hand:       make([]int, 0, opts.HandSize+opts.Turns),
			buf:        make([]hand.Card, 0, opts.HandSize),
		}
	}
	step := func(s *shuffler, t *earlyTurnTally) {
		order := s.shuffle()
		for attempt := 1; ; attempt++ {
			t.buf = lib.cardsAt(order[:opts.HandSize], t.buf)
			if keep, _ := hand.Keepable(t.buf, commander, opts.Rules); keep {
				break
			}
			if attempt >= opts.MaxReshuffles {
				t.unkeepable++
				break
			}
			order = s.shuffle()
		}

		t.hand = append(t.hand[:0], order[:opts.HandSize]...)
		next := opts.HandSize
		lands := 0
		var colors capability.ColorSet

		for turn := 1; turn <= opts.Turns; turn++ {
			i := turn - 1
			if next < len(order) {
				t.hand = append(t.hand, order[next])
				next++
			}

			for j, pos := range t.hand {
				if c := lib.cards[pos]; c.Land {
					lands++
					colors |= c.Colors
					t.hand = append(t.hand[:j], t.hand[j+1:]...)
					break
				}
			}

			if lands >= turn {
				t.landDrop[i]++
			}
			if hasPlay(lib, t.hand, lands) {
				t.playable[i]++
			}
			if turn >= 2 && !colors.Has(commander) {
				t.colorScrew[i]++
			}
		}
	}

	tallies, err := run(ctx, opts.RunOptions, seed, lib.Size(), newTally, step)
	if err != nil {
		return nil, err
	}

	total := newTally()
	for _, t := range tallies {
		for i := range opts.Turns {
			total.landDrop[i] += t.landDrop[i]
			total.playable[i] += t.playable[i]
			total.colorScrew[i] += t.colorScrew[i]
		}
		total.unkeepable += t.unkeepable
	}

	n := opts.Iterations
	result := &EarlyTurnResult{
		Iterations:       n,
		Seed:             seed,
		Turns:            make([]TurnStats, opts.Turns),
		UnkeepableStarts: percent(total.unkeepable, n),
	}
	for i := range opts.Turns {
		result.Turns[i] = TurnStats{
			Turn:              i + 1,
			LandDrop:          percent(total.landDrop[i], n),
			Playable:          percent(total.playable[i], n),
			ColorScrew:        percent(total.colorScrew[i], n),
			ColorScrewTracked: i+1 >= 2,
		}
	}
	return result, nil
}

// hasPlay reports whether the hand holds repeatable nonland mana or a spell
// castable with the lands in play.
func hasPlay(lib *Library, positions []int, lands int) bool {
	for _, pos := range positions {
		c := lib.cards[pos]
		if c.Ramp || (c.HasManaValue && c.ManaValue <= float64(lands)) {
			return true
		}
	}
	return false
}
