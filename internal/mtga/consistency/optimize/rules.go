package optimize

// Rule is a single deterministic diagnostic check.
type Rule interface {
	// ID returns a unique identifier for this rule.
	ID() string

	// Match reports whether the rule fires for the given context.
	Match(ctx Context) bool

	// Finding returns the advice for a matched rule. It is only called when
	// Match returned true.
	Finding(ctx Context) Finding
}

// Finding is the advice produced by one rule. Issue may be empty for rules
// that only recommend a change.
type Finding struct {
	RuleID        string `json:"rule_id"`
	Issue         string `json:"issue,omitempty"`
	Improvement   string `json:"improvement"`
	SuggestedCuts string `json:"suggested_cuts"`
}

// Thresholds are the trigger points of the default rule set. Percentages are
// in [0, 100].
type Thresholds struct {
	MaxAverageMulligans float64
	MinTurn2Land        float64
	MinTurn3Land        float64
	MinTurn1Play        float64
	MinTurn2Play        float64
	MaxColorScrewTurn3  float64
	MinRamp             int
	MinDrawSources      int
}

// DefaultThresholds returns the standard trigger points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxAverageMulligans: 0.9,
		MinTurn2Land:        85,
		MinTurn3Land:        80,
		MinTurn1Play:        60,
		MinTurn2Play:        85,
		MaxColorScrewTurn3:  10,
		MinRamp:             8,
		MinDrawSources:      6,
	}
}

// Issue and advice strings produced by the default rules.
const (
	IssueHighMulligans  = "High average mulligans"
	IssueMissedLands    = "Missed early land drops"
	IssueLowPlayability = "Low early playability"
	IssueColorScrew     = "Color screw risk"
)

// thresholdRule is a Rule built from a predicate and fixed advice.
type thresholdRule struct {
	id      string
	match   func(Context) bool
	finding Finding
}

func (r thresholdRule) ID() string              { return r.id }
func (r thresholdRule) Match(ctx Context) bool  { return r.match(ctx) }
func (r thresholdRule) Finding(Context) Finding { return r.finding }

func newRule(id string, match func(Context) bool, issue, improvement, cuts string) Rule {
	return thresholdRule{
		id:    id,
		match: match,
		finding: Finding{
			RuleID:        id,
			Issue:         issue,
			Improvement:   improvement,
			SuggestedCuts: cuts,
		},
	}
}

// DefaultRules returns the standard rule set in evaluation order. The first
// matching rule with an issue becomes the primary issue.
func DefaultRules(th Thresholds) []Rule {
	return []Rule{
		newRule("mulligans",
			func(c Context) bool { return c.Score.AverageMulligans > th.MaxAverageMulligans },
			IssueHighMulligans, "Improve mana consistency", "High-mana-value or color-intensive spells"),
		newRule("land-drops",
			func(c Context) bool {
				return c.Score.Turn2Land < th.MinTurn2Land || c.Score.Turn3Land < th.MinTurn3Land
			},
			IssueMissedLands, "Add lands or cheap ramp", "Expensive non-impact spells"),
		newRule("playability",
			func(c Context) bool {
				return c.Score.Turn1Play < th.MinTurn1Play || c.Score.Turn2Play < th.MinTurn2Play
			},
			IssueLowPlayability, "Increase early ramp/draw", "Slow setup cards"),
		newRule("color-screw",
			func(c Context) bool { return c.Score.ColorScrewTurn3 > th.MaxColorScrewTurn3 },
			IssueColorScrew, "Improve color fixing", "Double-pip secondary-color spells"),
		newRule("ramp-count",
			func(c Context) bool { return c.Ramp < th.MinRamp },
			"", "Add more repeatable ramp", "Midrange value spells"),
		newRule("draw-count",
			func(c Context) bool { return c.DrawSources < th.MinDrawSources },
			"", "Add more draw sources", "Low-impact utility cards"),
	}
}
