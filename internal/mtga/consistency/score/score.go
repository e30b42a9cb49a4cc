// Package score turns simulator output into a 0-100 consistency score.
package score

import (
	"math"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/simulate"
)

// Tier is the label attached to a total score.
type Tier string

const (
	TierExcellent    Tier = "Excellent"
	TierGood         Tier = "Good"
	TierPlayable     Tier = "Playable"
	TierInconsistent Tier = "Inconsistent"
)

// Each sub-score is worth at most this many points.
const subScoreMax = 25.0

// Input holds the simulator figures the score depends on. Percentages are in
// [0, 100]; values outside that range are clamped.
type Input struct {
	AverageMulligans float64 `json:"average_mulligans"`
	Turn1Play        float64 `json:"turn1_play"`
	Turn2Play        float64 `json:"turn2_play"`
	Turn3Play        float64 `json:"turn3_play"`
	Turn2Land        float64 `json:"turn2_land"`
	Turn3Land        float64 `json:"turn3_land"`
	ColorScrewTurn3  float64 `json:"color_screw_turn3"`
}

// InputFrom collects the scorer inputs from simulation results.
func InputFrom(m *simulate.MulliganResult, e *simulate.EarlyTurnResult) Input {
	return Input{
		AverageMulligans: m.AverageMulligans,
		Turn1Play:        e.Turn(1).Playable,
		Turn2Play:        e.Turn(2).Playable,
		Turn3Play:        e.Turn(3).Playable,
		Turn2Land:        e.Turn(2).LandDrop,
		Turn3Land:        e.Turn(3).LandDrop,
		ColorScrewTurn3:  e.Turn(3).ColorScrew,
	}
}

// Breakdown is a computed score. Sub-scores and Total are rounded to one
// decimal; Total is rounded from the unrounded sum.
type Breakdown struct {
	Mulligan float64 `json:"mulligan"`
	Land     float64 `json:"land"`
	Play     float64 `json:"play"`
	Color    float64 `json:"color"`
	Total    float64 `json:"total"`
	Tier     Tier    `json:"tier"`
}

// Compute scores in. It is a pure function of its input.
func Compute(in Input) Breakdown {
	mull := subScoreMax * math.Max(0, 1-math.Max(0, in.AverageMulligans)/1.5)
	land := subScoreMax * (0.6*frac(in.Turn2Land) + 0.4*frac(in.Turn3Land))
	play := subScoreMax * (0.2*frac(in.Turn1Play) + 0.3*frac(in.Turn2Play) + 0.5*frac(in.Turn3Play))
	color := subScoreMax * (1 - frac(in.ColorScrewTurn3))

	total := round1(mull + land + play + color)
	return Breakdown{
		Mulligan: round1(mull),
		Land:     round1(land),
		Play:     round1(play),
		Color:    round1(color),
		Total:    total,
		Tier:     TierFor(total),
	}
}

// TierFor maps a total score to its tier. Thresholds are inclusive lower bounds.
func TierFor(total float64) Tier {
	switch {
	case total >= 85:
		return TierExcellent
	case total >= 70:
		return TierGood
	case total >= 55:
		return TierPlayable
	}
	return TierInconsistent
}

// frac converts a percentage to a probability in [0, 1].
func frac(pct float64) float64 {
	return math.Min(1, math.Max(0, pct/100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
