// Package deck describes a commander deck's composition and derives the
// category counts the consistency engine consumes.
package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
)

const (
	// CommanderLibrarySize is the number of cards in a commander library,
	// excluding the commander itself.
	CommanderLibrarySize = 99

	// OpeningHandSize is the number of cards in an opening hand.
	OpeningHandSize = 7
)

// Entry is a card name with its number of copies.
type Entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Commander holds the facts about the commander the engine needs.
type Commander struct {
	Name          string              `json:"name"`
	ColorIdentity capability.ColorSet `json:"color_identity"`

	// ManaValue is nil when the commander has no defined cost.
	ManaValue *float64 `json:"mana_value"`
}

// Composition is a deck's card multiset plus commander facts. The engine
// never mutates it and does not validate format rules.
type Composition struct {
	Commander Commander `json:"commander"`
	Cards     []Entry   `json:"cards"`

	// LibrarySize defaults to CommanderLibrarySize when zero.
	LibrarySize int `json:"library_size,omitempty"`
}

// Library returns the configured library size.
func (c *Composition) Library() int {
	if c.LibrarySize > 0 {
		return c.LibrarySize
	}
	return CommanderLibrarySize
}

// Size returns the total number of physical cards listed.
func (c *Composition) Size() int {
	total := 0
	for _, e := range c.Cards {
		if e.Count > 0 {
			total += e.Count
		}
	}
	return total
}

// Flatten returns one name token per physical copy. The returned slice is
// freshly allocated on every call.
func (c *Composition) Flatten() []string {
	out := make([]string, 0, c.Size())
	for _, e := range c.Cards {
		for i := 0; i < e.Count; i++ {
			out = append(out, e.Name)
		}
	}
	return out
}

// CardHash returns a deterministic hash of the card multiset and commander.
// Listing order does not affect the hash.
func (c *Composition) CardHash() string {
	counts := make(map[string]int, len(c.Cards))
	for _, e := range c.Cards {
		counts[e.Name] += e.Count
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "commander=%s|%s\n", c.Commander.Name, c.Commander.ColorIdentity)
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%d\n", name, counts[name])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// LoadFile reads a composition from a JSON file.
func LoadFile(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}
	var comp Composition
	if err := json.Unmarshal(data, &comp); err != nil {
		return nil, fmt.Errorf("parse deck file %s: %w", path, err)
	}
	for _, e := range comp.Cards {
		if e.Count < 1 {
			return nil, fmt.Errorf("parse deck file %s: %q has count %d", path, e.Name, e.Count)
		}
	}
	return &comp, nil
}
