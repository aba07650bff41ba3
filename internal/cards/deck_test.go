package cards

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testCatalog() []Card {
	return []Card{
		{ID: "a", Copies: 2},
		{ID: "b", Copies: 1},
		{ID: "c"}, // zero copies still means one
	}
}

func TestNewStateDeterministic(t *testing.T) {
	s1 := NewState(testCatalog(), 42)
	s2 := NewState(testCatalog(), 42)
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("same seed produced different decks:\n%s", diff)
	}
	if len(s1.DrawPile) != 4 {
		t.Errorf("expected 4 cards, got %d", len(s1.DrawPile))
	}
}

func TestDrawAndReshuffle(t *testing.T) {
	d, err := NewDeck(testCatalog(), NewState(testCatalog(), 7))
	if err != nil {
		t.Fatal(err)
	}

	drawn, err := d.Draw(3)
	if err != nil || len(drawn) != 3 {
		t.Fatalf("Draw(3) = %d cards, %v", len(drawn), err)
	}
	if d.HandSize() != 3 {
		t.Errorf("HandSize() = %d, expected 3", d.HandSize())
	}

	hand := d.State().Hand
	for _, id := range hand {
		if err := d.Discard(id); err != nil {
			t.Fatalf("Discard(%s) failed: %v", id, err)
		}
	}

	// One card left in the pile, then the discard is reshuffled in.
	drawn, err = d.Draw(4)
	if err != nil || len(drawn) != 4 {
		t.Fatalf("Draw(4) = %d cards, %v", len(drawn), err)
	}
	if d.State().Reshuffles != 1 {
		t.Errorf("expected one reshuffle, got %d", d.State().Reshuffles)
	}

	if _, err := d.Draw(1); !errors.Is(err, ErrDeckEmpty) {
		t.Errorf("expected ErrDeckEmpty, got %v", err)
	}
}

func TestDiscardNotInHand(t *testing.T) {
	d, _ := NewDeck(testCatalog(), State{})
	if err := d.Discard("a"); err == nil {
		t.Error("expected error discarding a card not in hand")
	}
}

func TestNewDeckUnknownCard(t *testing.T) {
	if _, err := NewDeck(testCatalog(), State{Hand: []string{"zzz"}}); err == nil {
		t.Error("expected error for unknown card")
	}
}

func TestEffectsCarrySource(t *testing.T) {
	d, err := NewDeck(DefaultCatalog(), State{Hand: []string{"fertilizer", "scarecrow"}})
	if err != nil {
		t.Fatal(err)
	}
	effects := d.Effects()
	if len(effects) != 2 || effects[0].Source != "fertilizer" || effects[1].PatternID != "row" {
		t.Errorf("unexpected effects %+v", effects)
	}
}

func TestStateIsCopied(t *testing.T) {
	st := State{DrawPile: []string{"a", "b"}}
	d, _ := NewDeck(testCatalog(), st)
	if _, err := d.Draw(1); err != nil {
		t.Fatal(err)
	}
	if len(st.DrawPile) != 2 {
		t.Error("deck must not mutate the caller's state")
	}
}
