// Package cards is the hand collaborator of the day resolution: a seeded
// deck whose held cards act as scoring effects.
package cards

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-farm/internal/random"
	"github.com/vovakirdan/tui-farm/internal/scoring"
)

// ErrDeckEmpty is returned when neither the draw pile nor the discard pile
// holds a card.
var ErrDeckEmpty = errors.New("cards: deck is empty")

// Card is a card definition.
type Card struct {
	ID     string             `yaml:"id" json:"id"`
	Name   string             `yaml:"name" json:"name"`
	Copies int                `yaml:"copies" json:"copies"`
	Effect scoring.EffectSpec `yaml:"effect" json:"effect"`
}

// State is the persisted deck.
type State struct {
	Seed       int64    `json:"seed"`
	DrawPile   []string `json:"draw_pile"`
	Hand       []string `json:"hand"`
	Discard    []string `json:"discard,omitempty"`
	Reshuffles int      `json:"reshuffles,omitempty"`
}

// Drawer is what the day resolution needs from the hand.
type Drawer interface {
	HandSize() int
	Draw(n int) ([]Card, error)
}

// Deck is a seeded deck over a card catalog.
type Deck struct {
	cards map[string]Card
	state State
}

// NewState builds and shuffles a fresh deck: every card appears Copies
// times (at least once).
func NewState(catalog []Card, seed int64) State {
	var pile []string
	for _, c := range catalog {
		for i := 0; i < max(c.Copies, 1); i++ {
			pile = append(pile, c.ID)
		}
	}
	random.Shuffle(random.New(seed), pile)
	return State{Seed: seed, DrawPile: pile}
}

// NewDeck restores a deck from its state. Unknown card IDs are an error.
func NewDeck(catalog []Card, st State) (*Deck, error) {
	d := &Deck{cards: make(map[string]Card, len(catalog)), state: cloneState(st)}
	for _, c := range catalog {
		d.cards[c.ID] = c
	}
	for _, pile := range [][]string{st.DrawPile, st.Hand, st.Discard} {
		for _, id := range pile {
			if _, ok := d.cards[id]; !ok {
				return nil, fmt.Errorf("cards: unknown card %q in deck state", id)
			}
		}
	}
	return d, nil
}

// HandSize returns the number of held cards.
func (d *Deck) HandSize() int {
	return len(d.state.Hand)
}

// Hand returns the held cards in draw order.
func (d *Deck) Hand() []Card {
	out := make([]Card, len(d.state.Hand))
	for i, id := range d.state.Hand {
		out[i] = d.cards[id]
	}
	return out
}

// Draw moves up to n cards from the draw pile into the hand. An exhausted
// draw pile is refilled from the discard pile with a seeded reshuffle.
// Returns ErrDeckEmpty only if no card could be drawn at all.
func (d *Deck) Draw(n int) ([]Card, error) {
	var drawn []Card
	for len(drawn) < n {
		if len(d.state.DrawPile) == 0 && !d.reshuffle() {
			break
		}
		id := d.state.DrawPile[0]
		d.state.DrawPile = d.state.DrawPile[1:]
		d.state.Hand = append(d.state.Hand, id)
		drawn = append(drawn, d.cards[id])
	}
	if n > 0 && len(drawn) == 0 {
		return nil, ErrDeckEmpty
	}
	return drawn, nil
}

// Discard moves a held card to the discard pile.
func (d *Deck) Discard(id string) error {
	for i, h := range d.state.Hand {
		if h == id {
			d.state.Hand = append(d.state.Hand[:i], d.state.Hand[i+1:]...)
			d.state.Discard = append(d.state.Discard, id)
			return nil
		}
	}
	return fmt.Errorf("cards: %q is not in hand", id)
}

// Effects returns the scoring effects of the held cards.
func (d *Deck) Effects() []scoring.EffectSpec {
	out := make([]scoring.EffectSpec, 0, len(d.state.Hand))
	for _, c := range d.Hand() {
		e := c.Effect
		if e.Source == "" {
			e.Source = c.ID
		}
		out = append(out, e)
	}
	return out
}

// State returns a copy of the deck state.
func (d *Deck) State() State {
	return cloneState(d.state)
}

func (d *Deck) reshuffle() bool {
	if len(d.state.Discard) == 0 {
		return false
	}
	d.state.Reshuffles++
	pile := d.state.Discard
	d.state.Discard = nil
	random.Shuffle(random.New(d.state.Seed+int64(d.state.Reshuffles)), pile)
	d.state.DrawPile = pile
	return true
}

func cloneState(st State) State {
	st.DrawPile = append([]string(nil), st.DrawPile...)
	st.Hand = append([]string(nil), st.Hand...)
	st.Discard = append([]string(nil), st.Discard...)
	return st
}

// DefaultCatalog returns the built-in cards.
func DefaultCatalog() []Card {
	return []Card{
		{ID: "fertilizer", Name: "Fertilizer", Copies: 3,
			Effect: scoring.EffectSpec{Kind: scoring.KindPersistentModifier, Value: 25}},
		{ID: "scarecrow", Name: "Scarecrow", Copies: 2,
			Effect: scoring.EffectSpec{Kind: scoring.KindPatternBonus, PatternID: "row", Value: 5}},
		{ID: "harvest_moon", Name: "Harvest Moon", Copies: 1,
			Effect: scoring.EffectSpec{Kind: scoring.KindPercentBonus, Value: 10}},
		{ID: "market_day", Name: "Market Day", Copies: 2,
			Effect: scoring.EffectSpec{Kind: scoring.KindScoreToMoney, Value: 0.2}},
	}
}
