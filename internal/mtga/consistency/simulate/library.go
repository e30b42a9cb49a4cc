package simulate

import (
	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/hand"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
)

// Library is the immutable sampling population for a deck: one projected
// card per physical copy. Simulations only ever permute positions into it.
type Library struct {
	names     []string
	cards     []hand.Card
	commander capability.ColorSet
}

// NewLibrary flattens comp and resolves each copy against model. Missing
// names become blank cards.
func NewLibrary(comp *deck.Composition, model *capability.Model) *Library {
	names := comp.Flatten()
	commander := comp.Commander.ColorIdentity

	resolved := make(map[string]hand.Card, len(comp.Cards))
	cards := make([]hand.Card, len(names))
	for i, name := range names {
		c, ok := resolved[name]
		if !ok {
			c = hand.FromCapability(model.Lookup(name), commander)
			resolved[name] = c
		}
		cards[i] = c
	}
	return &Library{names: names, cards: cards, commander: commander}
}

// Size returns the number of cards in the library.
func (l *Library) Size() int {
	return len(l.cards)
}

// Commander returns the commander color identity.
func (l *Library) Commander() capability.ColorSet {
	return l.commander
}

// Name returns the card name at a library position.
func (l *Library) Name(pos int) string {
	return l.names[pos]
}

// cardsAt resolves positions into buf, reusing its storage.
func (l *Library) cardsAt(positions []int, buf []hand.Card) []hand.Card {
	buf = buf[:0]
	for _, p := range positions {
		buf = append(buf, l.cards[p])
	}
	return buf
}
