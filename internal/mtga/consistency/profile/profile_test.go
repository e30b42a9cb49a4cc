package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/simulate"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
)

func mv(v float64) *float64 { return &v }

func land(name string, produces capability.ColorSet, types ...string) capability.Card {
	return capability.Card{
		Name:          name,
		Types:         append([]string{"land"}, types...),
		ManaAbilities: []capability.ManaAbility{{Produces: produces, Repeatable: true, Source: capability.SourceLand}},
	}
}

var testModel = capability.NewModel(
	land("Forest", capability.Green, "basic"),
	land("Island", capability.Blue, "basic"),
	land("Yavimaya Coast", capability.Green|capability.Blue),
	capability.Card{
		Name:          "Llanowar Elves",
		Types:         []string{"creature"},
		ManaAbilities: []capability.ManaAbility{{Produces: capability.Green, Repeatable: true, Source: capability.SourceNonland}},
		ManaValue:     mv(1),
		ManaCost:      "{G}",
	},
	capability.Card{Name: "Mulldrifter", Types: []string{"creature"}, ManaValue: mv(5), ManaCost: "{4}{U}"},
	capability.Card{Name: "Craterhoof Behemoth", Types: []string{"creature"}, ManaValue: mv(8), ManaCost: "{5}{G}{G}{G}"},
)

func simicDeck(forests int) *deck.Composition {
	return &deck.Composition{
		Commander: deck.Commander{
			Name:          "Tatyova",
			ColorIdentity: capability.Green | capability.Blue,
			ManaValue:     mv(4),
		},
		Cards: []deck.Entry{
			{Name: "Forest", Count: forests},
			{Name: "Island", Count: 6},
			{Name: "Yavimaya Coast", Count: 2},
			{Name: "Llanowar Elves", Count: 10},
			{Name: "Mulldrifter", Count: 20},
			{Name: "Craterhoof Behemoth", Count: 61 - forests},
		},
	}
}

func TestBuild(t *testing.T) {
	p := Build(simicDeck(30), testModel)

	assert.Equal(t, Identity{
		DeckSize:     99,
		LandCount:    38,
		SpellCount:   61,
		RampCount:    10,
		Colors:       capability.Green | capability.Blue,
		AvgManaValue: 5.87,
	}, p.Identity)

	assert.Equal(t, map[string]int{"G": 103, "U": 20}, p.ColorDemand.Pips)
	assert.Equal(t, 123, p.ColorDemand.TotalPips)

	assert.Equal(t, map[string]int{"G": 32, "U": 8}, p.ManaSupply.ProducingLands)
	assert.Equal(t, map[string]float64{"G": 31, "U": 7}, p.ManaSupply.EffectiveSources)

	assert.Equal(t, "G • U-colored deck with 38 lands and average mana value 5.87.", p.Summary)
}

func TestCastability(t *testing.T) {
	p := Build(simicDeck(30), testModel)
	require.Len(t, p.Castability, 2)

	blue, green := p.Castability[0], p.Castability[1]
	assert.Equal(t, "U", blue.Color)
	assert.Equal(t, "Mulldrifter", blue.Card)
	assert.Equal(t, 8, blue.Sources)
	assert.InDelta(t, 0.405135, blue.Probability, 1e-6)

	assert.Equal(t, "G", green.Color)
	assert.Equal(t, "Craterhoof Behemoth", green.Card)
	assert.Equal(t, 42, green.Sources, "green lands plus ramp")
	assert.InDelta(t, 0.994803, green.Probability, 1e-6)
}

func TestConsistencyFigures(t *testing.T) {
	p := Build(simicDeck(30), testModel)

	assert.InDelta(t, 3.84, p.Consistency.ExpectedLandsTurn4, 1e-9)
	assert.InDelta(t, 0.114036, p.Consistency.ScrewRisk, 1e-6)
	assert.InDelta(t, 0.180970, p.Consistency.StallRisk, 1e-6)
	assert.InDelta(t, 0.012160, p.Consistency.FloodRisk, 1e-6)
	assert.False(t, p.Consistency.Unavailable)

	require.Len(t, p.LandOdds, 4)
	assert.InDelta(t, 0.828963, p.LandOdds[0].Probability, 1e-6)
	assert.InDelta(t, 0.748160, p.LandOdds[1].Probability, 1e-6)

	require.Len(t, p.RampOdds, 3)
	assert.InDelta(t, 0.537163, p.RampOdds[0].Probability, 1e-6)
	assert.Less(t, p.RampOdds[0].Probability, p.RampOdds[1].Probability)
	assert.Less(t, p.RampOdds[1].Probability, p.RampOdds[2].Probability)

	assert.Equal(t, 10, p.CommanderOnCurve.Draws)
	assert.InDelta(t, 0.582795, p.CommanderOnCurve.Probability, 1e-6)
}

func TestOnCurveWithoutManaValue(t *testing.T) {
	got := OnCurve(99, 38, nil)
	assert.Zero(t, got.Probability)
	assert.Nil(t, got.ManaValue)

	free := OnCurve(99, 38, mv(0))
	assert.Equal(t, 1.0, free.Probability)
}

func TestTinyDeckIsUnavailableNotAnError(t *testing.T) {
	comp := &deck.Composition{Cards: []deck.Entry{{Name: "Forest", Count: 5}}}
	p := Build(comp, testModel)

	assert.True(t, p.Consistency.Unavailable)
	assert.Zero(t, p.Consistency.ScrewRisk)
	for _, o := range p.LandOdds {
		assert.True(t, o.Unavailable, o.Label)
		assert.Zero(t, o.Probability)
	}
	assert.Equal(t, "Colorless deck with 5 lands and average mana value 0.00.", p.Summary)
}

func TestEmptyDeck(t *testing.T) {
	p := Build(&deck.Composition{}, testModel)
	assert.Zero(t, p.Identity.DeckSize)
	assert.Zero(t, p.Consistency.ExpectedLandsTurn4)
	assert.Empty(t, p.Castability)
}

func TestAnalyticAgreesWithSimulationDirectionally(t *testing.T) {
	var prevScrew, prevStall = 2.0, 2.0
	var prevSim = -1.0

	for _, forests := range []int{22, 26, 30, 34} {
		comp := simicDeck(forests)
		p := Build(comp, testModel)

		opts := simulate.DefaultEarlyTurnOptions()
		opts.Iterations = 4000
		opts.Seed = 17
		early, err := simulate.RunEarlyTurns(context.Background(), simulate.NewLibrary(comp, testModel), opts)
		require.NoError(t, err)

		assert.Less(t, p.Consistency.ScrewRisk, prevScrew, "screw risk should fall as lands rise")
		assert.Less(t, p.Consistency.StallRisk, prevStall, "stall risk should fall as lands rise")
		assert.Greater(t, early.Turn(3).LandDrop, prevSim, "simulated turn 3 land drops should rise with lands")
		prevScrew, prevStall, prevSim = p.Consistency.ScrewRisk, p.Consistency.StallRisk, early.Turn(3).LandDrop

		cmp := Compare(p, early)
		require.Len(t, cmp.Checks, 2)
		for _, c := range cmp.Checks {
			// Keepable-hand conditioning only ever helps the simulated figure.
			assert.GreaterOrEqual(t, c.Simulated, c.Analytic-2, "turn %d with %d forests", c.Turn, forests)
			assert.InDelta(t, c.Simulated-c.Analytic, c.Delta, 1e-9)
		}
	}
}

func TestCompareUnavailable(t *testing.T) {
	p := &Profile{Consistency: Consistency{Unavailable: true}}
	cmp := Compare(p, &simulate.EarlyTurnResult{})
	assert.True(t, cmp.Unavailable)
	assert.Empty(t, cmp.Checks)
}
