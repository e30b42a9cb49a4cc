// Package optimize diagnoses consistency problems from simulator output and
// deck category counts.
package optimize

import (
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/score"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
)

// NoMajorIssues is the primary issue reported when no rule with an issue fires.
const NoMajorIssues = "No major issues detected"

// Context is everything the rules inspect.
type Context struct {
	Score       score.Input
	Ramp        int
	DrawSources int
}

// ContextFrom builds a rule context from scorer input and deck counts.
func ContextFrom(in score.Input, counts deck.Counts) Context {
	return Context{
		Score:       in,
		Ramp:        counts.Ramp,
		DrawSources: counts.DrawSources(),
	}
}

// Report is the outcome of a diagnosis. The lists keep first-seen order and
// hold no duplicates.
type Report struct {
	PrimaryIssue  string    `json:"primary_issue"`
	Issues        []string  `json:"issues"`
	Improvements  []string  `json:"improvements"`
	SuggestedCuts []string  `json:"suggested_cuts"`
	Findings      []Finding `json:"findings"`
}

// Optimizer evaluates an ordered rule set.
type Optimizer struct {
	rules []Rule
}

// New returns an optimizer over rules. With no rules it uses the default set.
func New(rules ...Rule) *Optimizer {
	if len(rules) == 0 {
		rules = DefaultRules(DefaultThresholds())
	}
	return &Optimizer{rules: rules}
}

// Diagnose runs every rule against ctx in order.
func (o *Optimizer) Diagnose(ctx Context) Report {
	report := Report{
		Issues:        []string{},
		Improvements:  []string{},
		SuggestedCuts: []string{},
		Findings:      []Finding{},
	}
	for _, rule := range o.rules {
		if !rule.Match(ctx) {
			continue
		}
		f := rule.Finding(ctx)
		report.Findings = append(report.Findings, f)
		report.Issues = appendUnique(report.Issues, f.Issue)
		report.Improvements = appendUnique(report.Improvements, f.Improvement)
		report.SuggestedCuts = appendUnique(report.SuggestedCuts, f.SuggestedCuts)
	}

	report.PrimaryIssue = NoMajorIssues
	if len(report.Issues) > 0 {
		report.PrimaryIssue = report.Issues[0]
	}
	return report
}

// Diagnose runs the default rule set.
func Diagnose(ctx Context) Report {
	return New().Diagnose(ctx)
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
