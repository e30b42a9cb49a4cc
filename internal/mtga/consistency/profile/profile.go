// Package profile builds a simulation-free description of a deck from exact
// hypergeometric odds. It corroborates the simulators rather than replacing them.
package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/hypergeom"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
)

// Profile is the full analytic description of a deck. Probabilities are in [0, 1].
type Profile struct {
	Identity         Identity         `json:"identity"`
	ColorDemand      ColorDemand      `json:"color_demand"`
	ManaSupply       ManaSupply       `json:"mana_supply"`
	Castability      []Castability    `json:"castability"`
	Consistency      Consistency      `json:"consistency"`
	LandOdds         []Odds           `json:"land_odds"`
	RampOdds         []Odds           `json:"ramp_odds"`
	CommanderOnCurve CommanderOnCurve `json:"commander_on_curve"`
	Summary          string           `json:"summary"`
}

// Identity holds the basic shape of the deck.
type Identity struct {
	DeckSize     int                 `json:"deck_size"`
	LandCount    int                 `json:"land_count"`
	SpellCount   int                 `json:"spell_count"`
	RampCount    int                 `json:"ramp_count"`
	Colors       capability.ColorSet `json:"colors"`
	AvgManaValue float64             `json:"avg_mana_value"`
}

// ColorDemand counts colored pips across nonland mana costs.
type ColorDemand struct {
	Pips      map[string]int `json:"pips"`
	TotalPips int            `json:"total_pips"`
}

// ManaSupply counts producing lands per color. A land making several colors
// adds 1/numColors to each color's effective sources.
type ManaSupply struct {
	ProducingLands   map[string]int     `json:"producing_lands"`
	EffectiveSources map[string]float64 `json:"effective_sources"`
}

// Castability is the chance of seeing a source of Color by the turn the most
// expensive spell needing it comes online.
type Castability struct {
	Color       string  `json:"color"`
	Card        string  `json:"card"`
	ManaValue   float64 `json:"mana_value"`
	Sources     int     `json:"sources"`
	Probability float64 `json:"probability"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

// Consistency holds the land-count risk figures.
type Consistency struct {
	ExpectedLandsTurn4 float64 `json:"expected_lands_turn_4"`
	// ScrewRisk is the chance of fewer than 2 lands in the first 8 cards.
	ScrewRisk float64 `json:"screw_risk"`
	// StallRisk is the chance of fewer than 3 lands in the first 10 cards.
	StallRisk float64 `json:"stall_risk"`
	// FloodRisk is the chance of 6 or more lands in the opening 7.
	FloodRisk float64 `json:"flood_risk"`
	// Unavailable is set when the deck is too small for the risk draws.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Odds is one row of a hypergeometric table: at least Successes hits in Draws
// cards. Unavailable is set when the deck cannot support the draw.
type Odds struct {
	Label       string  `json:"label"`
	Successes   int     `json:"successes"`
	Draws       int     `json:"draws"`
	Probability float64 `json:"probability"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

// CommanderOnCurve is the chance of having ManaValue lands when the commander
// would first be cast on curve. Probability is 0 when the commander has no cost.
type CommanderOnCurve struct {
	ManaValue   *float64 `json:"mana_value"`
	Draws       int      `json:"draws"`
	Probability float64  `json:"probability"`
}

// Build computes the profile of comp.
func Build(comp *deck.Composition, model *capability.Model) *Profile {
	counts := deck.Count(comp, model)
	p := &Profile{
		Identity:    identity(comp, model, counts),
		ColorDemand: colorDemand(comp, model),
		ManaSupply:  manaSupply(comp, model),
		Castability: castability(comp, model),
		Consistency: consistency(counts),
		LandOdds:    LandOdds(counts.Total, counts.Lands),
		RampOdds:    RampOdds(counts.Total, counts.Ramp),
	}
	p.CommanderOnCurve = OnCurve(counts.Total, counts.Lands, comp.Commander.ManaValue)
	p.Summary = summary(p.Identity)
	return p
}

func identity(comp *deck.Composition, model *capability.Model, counts deck.Counts) Identity {
	var total float64
	var n int
	for _, e := range comp.Cards {
		card := model.Lookup(e.Name)
		if card.IsLand() || card.ManaValue == nil {
			continue
		}
		total += *card.ManaValue * float64(e.Count)
		n += e.Count
	}
	avg := 0.0
	if n > 0 {
		avg = math.Round(total/float64(n)*100) / 100
	}
	return Identity{
		DeckSize:     counts.Total,
		LandCount:    counts.Lands,
		SpellCount:   counts.Spells,
		RampCount:    counts.Ramp,
		Colors:       comp.Commander.ColorIdentity,
		AvgManaValue: avg,
	}
}

func colorDemand(comp *deck.Composition, model *capability.Model) ColorDemand {
	sat := deck.ColorSaturation(comp, model)
	return ColorDemand{Pips: sat.Pips, TotalPips: sat.TotalPips}
}

func manaSupply(comp *deck.Composition, model *capability.Model) ManaSupply {
	commander := comp.Commander.ColorIdentity
	supply := ManaSupply{
		ProducingLands:   make(map[string]int),
		EffectiveSources: make(map[string]float64),
	}
	for _, e := range comp.Cards {
		card := model.Lookup(e.Name)
		if !card.IsLand() {
			continue
		}
		produced := card.ProducedColors(commander)
		if produced == 0 {
			continue
		}
		share := float64(e.Count) / float64(produced.Len())
		produced.Each(func(symbol string, _ capability.ColorSet) {
			supply.ProducingLands[symbol] += e.Count
			supply.EffectiveSources[symbol] += share
		})
	}
	for symbol, v := range supply.EffectiveSources {
		supply.EffectiveSources[symbol] = math.Round(v*100) / 100
	}
	return supply
}

func castability(comp *deck.Composition, model *capability.Model) []Castability {
	commander := comp.Commander.ColorIdentity
	sources := deck.ManaSourcesByColor(comp, model)
	size := comp.Size()

	out := []Castability{}
	commander.Each(func(symbol string, _ capability.ColorSet) {
		var hardest *capability.Card
		for _, e := range comp.Cards {
			card := model.Lookup(e.Name)
			if card.IsLand() || card.ManaValue == nil || card.Pips()[symbol] == 0 {
				continue
			}
			if hardest == nil || *card.ManaValue > *hardest.ManaValue {
				hardest = card
			}
		}
		if hardest == nil {
			return
		}

		mv := *hardest.ManaValue
		c := Castability{Color: symbol, Card: hardest.Name, ManaValue: mv, Sources: sources[symbol]}
		draws := min(int(math.Ceil(mv))+1, size)
		prob, err := hypergeom.AtLeastOne(size, c.Sources, draws)
		if err != nil {
			c.Unavailable = true
		}
		c.Probability = prob
		out = append(out, c)
	})
	return out
}

func consistency(counts deck.Counts) Consistency {
	c := Consistency{}
	if counts.Total > 0 {
		c.ExpectedLandsTurn4 = math.Round(float64(counts.Lands)/float64(counts.Total)*10*100) / 100
	}
	screw := atLeast(2, counts.Total, counts.Lands, 8)
	stall := atLeast(3, counts.Total, counts.Lands, 10)
	flood := atLeast(6, counts.Total, counts.Lands, deck.OpeningHandSize)
	if screw.Unavailable || stall.Unavailable || flood.Unavailable {
		c.Unavailable = true
		return c
	}
	c.ScrewRisk = 1 - screw.Probability
	c.StallRisk = 1 - stall.Probability
	c.FloodRisk = flood.Probability
	return c
}

// LandOdds returns the chance of hitting 2, 3, 4 and 5 lands by turns 1, 3, 4
// and 5 on the draw count of a player on the play.
func LandOdds(size, lands int) []Odds {
	return []Odds{
		withLabel("2+ lands in opening hand", atLeast(2, size, lands, 7)),
		withLabel("3+ lands by turn 3", atLeast(3, size, lands, 9)),
		withLabel("4+ lands by turn 4", atLeast(4, size, lands, 10)),
		withLabel("5+ lands by turn 5", atLeast(5, size, lands, 11)),
	}
}

// RampOdds returns the chance of holding a ramp piece by the opening hand,
// turn 2 and turn 3.
func RampOdds(size, ramp int) []Odds {
	return []Odds{
		withLabel("ramp in opening hand", atLeast(1, size, ramp, 7)),
		withLabel("ramp by turn 2", atLeast(1, size, ramp, 8)),
		withLabel("ramp by turn 3", atLeast(1, size, ramp, 9)),
	}
}

// OnCurve returns the chance of at least MV lands among the opening 7 plus
// MV-1 draws. A nil mana value yields a zero probability.
func OnCurve(size, lands int, manaValue *float64) CommanderOnCurve {
	out := CommanderOnCurve{ManaValue: manaValue}
	if manaValue == nil {
		return out
	}
	need := max(int(math.Ceil(*manaValue)), 0)
	if need == 0 {
		out.Draws = deck.OpeningHandSize
		out.Probability = 1
		return out
	}
	out.Draws = deck.OpeningHandSize + need - 1
	out.Probability = atLeast(need, size, lands, out.Draws).Probability
	return out
}

// atLeast wraps hypergeom.AtLeast, reporting domain errors as an unavailable
// zero rather than failing.
func atLeast(kMin, size, successes, draws int) Odds {
	o := Odds{Successes: kMin, Draws: draws}
	p, err := hypergeom.AtLeast(kMin, size, successes, draws)
	if err != nil {
		o.Unavailable = true
		return o
	}
	o.Probability = p
	return o
}

func withLabel(label string, o Odds) Odds {
	o.Label = label
	return o
}

func summary(id Identity) string {
	colors := strings.Join(id.Colors.Symbols(), " • ")
	if colors == "" {
		colors = "Colorless"
	} else {
		colors += "-colored"
	}
	return fmt.Sprintf("%s deck with %d lands and average mana value %.2f.", colors, id.LandCount, id.AvgManaValue)
}
