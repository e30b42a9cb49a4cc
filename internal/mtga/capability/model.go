package capability

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrInvalidModel is returned when a capability model cannot be loaded.
var ErrInvalidModel = errors.New("invalid capability model")

// Model maps card names to capability records. A Model is read-only once
// built and safe for concurrent use.
type Model struct {
	cards  map[string]*Card
	folded map[string]*Card
}

// NewModel builds a Model from records. Later records with the same name
// replace earlier ones.
func NewModel(cards ...Card) *Model {
	m := &Model{
		cards:  make(map[string]*Card, len(cards)),
		folded: make(map[string]*Card, len(cards)),
	}
	for i := range cards {
		c := cards[i]
		c.Types = normalizeTypes(c.Types)
		m.cards[c.Name] = &c
		m.folded[strings.ToLower(c.Name)] = &c
	}
	return m
}

func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || t == "—" || t == "-" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the record for name. Names are matched exactly first, then
// case-insensitively. Unknown names yield Empty(name), never nil.
func (m *Model) Lookup(name string) *Card {
	if c, ok := m.find(name); ok {
		return c
	}
	return Empty(name)
}

// Has reports whether the model has a record for name.
func (m *Model) Has(name string) bool {
	_, ok := m.find(name)
	return ok
}

func (m *Model) find(name string) (*Card, bool) {
	if m == nil {
		return nil, false
	}
	if c, ok := m.cards[name]; ok {
		return c, true
	}
	c, ok := m.folded[strings.ToLower(name)]
	return c, ok
}

// Len returns the number of records.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.cards)
}

// Names returns all card names in sorted order.
func (m *Model) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.cards))
	for name := range m.cards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the closest known name to a missing one, for typo hints.
// The distance limit scales with name length.
func (m *Model) Suggest(name string) (string, bool) {
	query := strings.ToLower(name)
	limit := len(query)/4 + 1

	best := ""
	bestDist := limit + 1
	for _, candidate := range m.Names() {
		dist := levenshtein.ComputeDistance(query, strings.ToLower(candidate))
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// LoadModel decodes a JSON array of capability records.
func LoadModel(r io.Reader) (*Model, error) {
	var cards []Card
	if err := json.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}

	seen := make(map[string]bool, len(cards))
	for i, c := range cards {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%w: record %d has no name", ErrInvalidModel, i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate record for %q", ErrInvalidModel, c.Name)
		}
		seen[c.Name] = true
		if c.ManaValue != nil && *c.ManaValue < 0 {
			return nil, fmt.Errorf("%w: negative mana value for %q", ErrInvalidModel, c.Name)
		}
	}
	return NewModel(cards...), nil
}

// LoadModelFile reads a capability model from a JSON file.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capability model: %w", err)
	}
	defer f.Close()

	m, err := LoadModel(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}
