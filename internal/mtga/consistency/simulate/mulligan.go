package simulate

import (
	"context"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/hand"
)

// QualityBreakdown is the share of final hands in each quality tier, in percent.
type QualityBreakdown struct {
	Excellent float64 `json:"excellent"`
	Keepable  float64 `json:"keepable"`
	Bad       float64 `json:"bad"`
}

// MulliganResult aggregates a mulligan simulation. Percentages are in [0, 100].
type MulliganResult struct {
	Iterations int    `json:"iterations"`
	Seed       uint64 `json:"seed"`
	Policy     Policy `json:"policy"`

	// KeptAt[i] is the share of games kept after i mulligans. The last
	// bucket holds games that reached the forced keep.
	KeptAt           []float64        `json:"kept_at"`
	AverageMulligans float64          `json:"average_mulligans"`
	KeepRate         float64          `json:"keep_rate"`
	ForcedKeeps      float64          `json:"forced_keeps"`
	Quality          QualityBreakdown `json:"quality"`
}

// Kept returns the share of games kept after exactly n mulligans, with n at
// or above the last bucket folded into it.
func (r *MulliganResult) Kept(n int) float64 {
	if len(r.KeptAt) == 0 || n < 0 {
		return 0
	}
	return r.KeptAt[min(n, len(r.KeptAt)-1)]
}

type mulliganTally struct {
	kept      []int64
	mulligans int64
	forced    int64
	excellent int64
	keepable  int64
	bad       int64
	buf       []hand.Card
}

// RunMulligans simulates opening hands with mulligans until a keep or the
// forced keep at MaxMulligans.
func RunMulligans(ctx context.Context, lib *Library, opts MulliganOptions) (*MulliganResult, error) {
	if err := opts.validate(lib.Size()); err != nil {
		return nil, err
	}
	policy, _ := ParsePolicy(string(opts.Policy))
	seed, err := resolveSeed(opts.Seed)
	if err != nil {
		return nil, err
	}

	commander := lib.Commander()
	newTally := func() *mulliganTally {
		return &mulliganTally{
			kept: make([]int64, opts.MaxMulligans+1),
			buf:  make([]hand.Card, 0, opts.HandSize),
		}
	}
	step := func(s *shuffler, t *mulliganTally) {
		mulligans := 0
		for {
			size := opts.HandSize
			if policy == Vancouver {
				size -= mulligans
			}
			t.buf = lib.cardsAt(s.shuffle()[:size], t.buf)
			ev := hand.Evaluate(t.buf, commander, opts.Rules)

			if ev.Keep || mulligans >= opts.MaxMulligans {
				t.kept[mulligans]++
				t.mulligans += int64(mulligans)
				if !ev.Keep {
					t.forced++
				}
				switch ev.Tier {
				case hand.TierExcellent:
					t.excellent++
				case hand.TierKeepable:
					t.keepable++
				default:
					t.bad++
				}
				return
			}
			mulligans++
		}
	}

	tallies, err := run(ctx, opts.RunOptions, seed, lib.Size(), newTally, step)
	if err != nil {
		return nil, err
	}

	total := newTally()
	for _, t := range tallies {
		for i, n := range t.kept {
			total.kept[i] += n
		}
		total.mulligans += t.mulligans
		total.forced += t.forced
		total.excellent += t.excellent
		total.keepable += t.keepable
		total.bad += t.bad
	}

	n := opts.Iterations
	result := &MulliganResult{
		Iterations:       n,
		Seed:             seed,
		Policy:           policy,
		KeptAt:           make([]float64, len(total.kept)),
		AverageMulligans: float64(total.mulligans) / float64(n),
		ForcedKeeps:      percent(total.forced, n),
		KeepRate:         percent(int64(n)-total.forced, n),
		Quality: QualityBreakdown{
			Excellent: percent(total.excellent, n),
			Keepable:  percent(total.keepable, n),
			Bad:       percent(total.bad, n),
		},
	}
	for i, k := range total.kept {
		result.KeptAt[i] = percent(k, n)
	}
	return result, nil
}
