package profile

import (
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/simulate"
)

// LandDropCheck sets an analytic land-drop figure beside the simulated one for
// the same turn, both in percent. The simulator conditions on a keepable
// opening hand, so Simulated normally sits above Analytic.
type LandDropCheck struct {
	Turn      int     `json:"turn"`
	Analytic  float64 `json:"analytic"`
	Simulated float64 `json:"simulated"`
	Delta     float64 `json:"delta"`
}

// Comparison pairs the profile's risk figures with early-turn simulation output.
type Comparison struct {
	Checks      []LandDropCheck `json:"checks"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// Compare lines up the turn 2 and turn 3 land-drop odds from p with the
// simulated ones in early.
func Compare(p *Profile, early *simulate.EarlyTurnResult) Comparison {
	if p.Consistency.Unavailable {
		return Comparison{Checks: []LandDropCheck{}, Unavailable: true}
	}
	analytic := map[int]float64{
		2: 100 * (1 - p.Consistency.ScrewRisk),
		3: 100 * (1 - p.Consistency.StallRisk),
	}

	cmp := Comparison{Checks: make([]LandDropCheck, 0, len(analytic))}
	for _, turn := range []int{2, 3} {
		sim := early.Turn(turn).LandDrop
		cmp.Checks = append(cmp.Checks, LandDropCheck{
			Turn:      turn,
			Analytic:  analytic[turn],
			Simulated: sim,
			Delta:     sim - analytic[turn],
		})
	}
	return cmp
}
