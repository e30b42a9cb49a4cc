// Package capability holds the normalized description of what each card in a
// deck does: its types, mana abilities, draw abilities and mana value.
package capability

import (
	"regexp"
	"strings"
)

// SourceKind tells whether a mana ability lives on a land or a nonland permanent.
type SourceKind string

const (
	SourceLand    SourceKind = "land"
	SourceNonland SourceKind = "nonland"
)

// ManaAbility describes one mana-producing ability.
type ManaAbility struct {
	Produces     ColorSet   `json:"produces"`
	Repeatable   bool       `json:"repeatable"`
	EntersTapped bool       `json:"enters_tapped"`
	Source       SourceKind `json:"source"`
}

// DrawAbility describes one card-draw ability. Amount is nil when the number
// of cards drawn is variable or unknown.
type DrawAbility struct {
	Amount      *int `json:"amount"`
	Repeatable  bool `json:"repeatable"`
	Conditional bool `json:"conditional"`
}

// Card is the capability record for a single card name.
type Card struct {
	Name          string        `json:"name"`
	Types         []string      `json:"types"`
	ManaAbilities []ManaAbility `json:"mana_abilities"`
	DrawAbilities []DrawAbility `json:"draw_abilities"`

	// ManaValue is nil for cards without a defined cost.
	ManaValue     *float64 `json:"mana_value"`
	ManaCost      string   `json:"mana_cost,omitempty"`
	ColorIdentity ColorSet `json:"color_identity"`
}

// Empty returns the safe default record used for names missing from a Model:
// no abilities, not a land, no mana value.
func Empty(name string) *Card {
	return &Card{Name: name}
}

// HasType reports whether the type line contains the given token.
func (c *Card) HasType(token string) bool {
	token = strings.ToLower(token)
	for _, t := range c.Types {
		if t == token {
			return true
		}
	}
	return false
}

// IsLand reports whether the card is a land.
func (c *Card) IsLand() bool {
	return c.HasType("land")
}

// IsRamp reports whether the card is repeatable nonland mana.
func (c *Card) IsRamp() bool {
	if c.IsLand() {
		return false
	}
	for _, a := range c.ManaAbilities {
		if a.Repeatable && a.Source != SourceLand {
			return true
		}
	}
	return false
}

// IsDrawEngine reports whether the card has a repeatable draw ability.
func (c *Card) IsDrawEngine() bool {
	for _, d := range c.DrawAbilities {
		if d.Repeatable {
			return true
		}
	}
	return false
}

// IsBurstDraw reports whether the card draws once and is not an engine.
func (c *Card) IsBurstDraw() bool {
	return len(c.DrawAbilities) > 0 && !c.IsDrawEngine()
}

// ProducesMana reports whether the card has any mana ability.
func (c *Card) ProducesMana() bool {
	return len(c.ManaAbilities) > 0
}

// ProducedColors returns the union of all colors the card can produce, with
// rainbow abilities clamped to the commander's identity.
func (c *Card) ProducedColors(commander ColorSet) ColorSet {
	var out ColorSet
	for _, a := range c.ManaAbilities {
		out |= ClampToCommanderColors(a.Produces, commander)
	}
	return out
}

var pipPattern = regexp.MustCompile(`\{([^}]*)\}`)

// Pips counts colored mana symbols in the mana cost. Hybrid symbols count
// toward each of their colors.
func (c *Card) Pips() map[string]int {
	pips := make(map[string]int)
	for _, m := range pipPattern.FindAllStringSubmatch(c.ManaCost, -1) {
		for _, r := range strings.ToUpper(m[1]) {
			switch s := string(r); s {
			case SymbolWhite, SymbolBlue, SymbolBlack, SymbolRed, SymbolGreen:
				pips[s]++
			}
		}
	}
	return pips
}
