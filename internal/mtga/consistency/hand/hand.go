// Package hand decides whether an opening hand is a keep and grades its quality.
package hand

import (
	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
)

// Tier is the refined quality grade of a hand.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierKeepable  Tier = "keepable"
	TierBad       Tier = "bad"
)

// Reason names the rule that decided a keep/mulligan.
type Reason string

const (
	ReasonKeep          Reason = "keep"
	ReasonTooFewLands   Reason = "too_few_lands"
	ReasonFlood         Reason = "flood"
	ReasonOneLandNoRamp Reason = "one_land_no_ramp"
	ReasonMissingColors Reason = "missing_colors"
)

// Rules configures the keep/mulligan decision. Rules are checked in the
// order of the fields below.
type Rules struct {
	// MinLands rejects hands with fewer lands.
	MinLands int
	// FloodAt rejects hands with at least this many lands. Zero disables it.
	FloodAt int
	// OneLanderNeedsRamp rejects one-land hands without a ramp piece.
	OneLanderNeedsRamp bool
	// RequireCommanderColors rejects hands that cannot produce every
	// commander color.
	RequireCommanderColors bool
}

// DefaultRules mulligans 0-landers, 6+ landers, one-landers without ramp and
// hands missing a commander color.
func DefaultRules() Rules {
	return Rules{
		MinLands:               1,
		FloodAt:                6,
		OneLanderNeedsRamp:     true,
		RequireCommanderColors: true,
	}
}

// LandOnlyRules keeps any hand with at least two lands and ignores ramp,
// flood and colors.
func LandOnlyRules() Rules {
	return Rules{MinLands: 2}
}

// Card is the per-card view the evaluator and simulators work on.
type Card struct {
	Land bool
	Ramp bool

	// Colors are the produced colors after rainbow clamping.
	Colors capability.ColorSet

	ManaValue    float64
	HasManaValue bool
}

// FromCapability projects a capability record for a deck with the given
// commander identity. Lands never carry a mana value.
func FromCapability(c *capability.Card, commander capability.ColorSet) Card {
	out := Card{
		Land:   c.IsLand(),
		Ramp:   c.IsRamp(),
		Colors: c.ProducedColors(commander),
	}
	if c.ManaValue != nil && !out.Land {
		out.ManaValue = *c.ManaValue
		out.HasManaValue = true
	}
	return out
}

// Evaluation is the result of classifying a hand.
type Evaluation struct {
	LandCount       int                 `json:"land_count"`
	AvailableColors capability.ColorSet `json:"available_colors"`
	HasRamp         bool                `json:"has_ramp"`
	Tier            Tier                `json:"tier"`
	Keep            bool                `json:"keep"`
	Reason          Reason              `json:"reason"`
}

// Evaluate classifies a hand under the given rules.
func Evaluate(cards []Card, commander capability.ColorSet, rules Rules) Evaluation {
	var ev Evaluation
	for _, c := range cards {
		if c.Land {
			ev.LandCount++
		}
		if c.Ramp {
			ev.HasRamp = true
		}
		ev.AvailableColors |= c.Colors
	}

	colorsOK := ev.AvailableColors.Has(commander)
	ev.Reason = decide(ev.LandCount, ev.HasRamp, colorsOK, rules)
	ev.Keep = ev.Reason == ReasonKeep
	ev.Tier = QualityTier(ev.LandCount, ev.HasRamp, colorsOK)
	return ev
}

// Keepable reports the binary keep decision and the deciding rule.
func Keepable(cards []Card, commander capability.ColorSet, rules Rules) (bool, Reason) {
	ev := Evaluate(cards, commander, rules)
	return ev.Keep, ev.Reason
}

// Classify evaluates a hand of card names under DefaultRules. Names missing
// from the model are treated as blank cards.
func Classify(names []string, model *capability.Model, commander capability.ColorSet) Evaluation {
	cards := make([]Card, len(names))
	for i, name := range names {
		cards[i] = FromCapability(model.Lookup(name), commander)
	}
	return Evaluate(cards, commander, DefaultRules())
}

func decide(lands int, hasRamp, colorsOK bool, rules Rules) Reason {
	switch {
	case lands < rules.MinLands:
		return ReasonTooFewLands
	case rules.FloodAt > 0 && lands >= rules.FloodAt:
		return ReasonFlood
	case rules.OneLanderNeedsRamp && lands == 1 && !hasRamp:
		return ReasonOneLandNoRamp
	case rules.RequireCommanderColors && !colorsOK:
		return ReasonMissingColors
	}
	return ReasonKeep
}

// QualityTier grades a hand independently of the keep decision: fewer than
// two lands is bad, two or more lands with ramp and every commander color is
// excellent, anything else is keepable.
func QualityTier(lands int, hasRamp, colorsOK bool) Tier {
	switch {
	case lands < 2:
		return TierBad
	case hasRamp && colorsOK:
		return TierExcellent
	}
	return TierKeepable
}
