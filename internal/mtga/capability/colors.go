package capability

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color symbols in WUBRG order, plus colorless.
const (
	SymbolWhite     = "W"
	SymbolBlue      = "U"
	SymbolBlack     = "B"
	SymbolRed       = "R"
	SymbolGreen     = "G"
	SymbolColorless = "C"
)

// ColorSet is a set of mana colors stored as a bitmask.
type ColorSet uint8

// Individual colors.
const (
	White ColorSet = 1 << iota
	Blue
	Black
	Red
	Green
	Colorless
)

// WUBRG is the set of all five colors. An ability producing a superset of
// WUBRG is a rainbow source.
const WUBRG = White | Blue | Black | Red | Green

var symbolOrder = []struct {
	symbol string
	color  ColorSet
}{
	{SymbolWhite, White},
	{SymbolBlue, Blue},
	{SymbolBlack, Black},
	{SymbolRed, Red},
	{SymbolGreen, Green},
	{SymbolColorless, Colorless},
}

// ParseColor converts a single color symbol ("W", "u", ...) to a ColorSet.
func ParseColor(symbol string) (ColorSet, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, entry := range symbolOrder {
		if entry.symbol == s {
			return entry.color, nil
		}
	}
	return 0, fmt.Errorf("unknown color symbol %q", symbol)
}

// ParseColors converts color symbols to a ColorSet. Each element may hold a
// single symbol or a run of symbols ("WU").
func ParseColors(symbols ...string) (ColorSet, error) {
	var set ColorSet
	for _, s := range symbols {
		for _, r := range strings.TrimSpace(s) {
			c, err := ParseColor(string(r))
			if err != nil {
				return 0, err
			}
			set |= c
		}
	}
	return set, nil
}

// MustParseColors is ParseColors for literals known to be valid.
func MustParseColors(symbols ...string) ColorSet {
	set, err := ParseColors(symbols...)
	if err != nil {
		panic(err)
	}
	return set
}

// Has reports whether every color in other is in s.
func (s ColorSet) Has(other ColorSet) bool {
	return s&other == other
}

// Union returns s ∪ other.
func (s ColorSet) Union(other ColorSet) ColorSet {
	return s | other
}

// Intersect returns s ∩ other.
func (s ColorSet) Intersect(other ColorSet) ColorSet {
	return s & other
}

// IsRainbow reports whether s produces all five colors.
func (s ColorSet) IsRainbow() bool {
	return s.Has(WUBRG)
}

// Len returns the number of colors in s, colorless included.
func (s ColorSet) Len() int {
	n := 0
	for _, entry := range symbolOrder {
		if s&entry.color != 0 {
			n++
		}
	}
	return n
}

// Symbols returns the color symbols in WUBRG(C) order.
func (s ColorSet) Symbols() []string {
	out := make([]string, 0, s.Len())
	for _, entry := range symbolOrder {
		if s&entry.color != 0 {
			out = append(out, entry.symbol)
		}
	}
	return out
}

// Each calls fn for every color in s in WUBRG(C) order.
func (s ColorSet) Each(fn func(symbol string, color ColorSet)) {
	for _, entry := range symbolOrder {
		if s&entry.color != 0 {
			fn(entry.symbol, entry.color)
		}
	}
}

// String renders s as concatenated symbols, e.g. "WUB". The empty set is "".
func (s ColorSet) String() string {
	return strings.Join(s.Symbols(), "")
}

// MarshalJSON encodes the set as an array of symbols.
func (s ColorSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Symbols())
}

// UnmarshalJSON decodes an array of symbols.
func (s *ColorSet) UnmarshalJSON(data []byte) error {
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return fmt.Errorf("decode colors: %w", err)
	}
	set, err := ParseColors(symbols...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// ClampToCommanderColors restricts a rainbow source to the commander's color
// identity. Sources that do not produce all five colors are returned as-is.
func ClampToCommanderColors(produced, commander ColorSet) ColorSet {
	if produced.IsRainbow() {
		return commander
	}
	return produced
}
