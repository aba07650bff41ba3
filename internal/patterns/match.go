// Package patterns detects scoring shapes on the farm grid. Shapes are data
// (cell offsets loaded from the rules file); each one is turned into a
// Matcher by the Registry and the Detector runs them all in priority order.
package patterns

import (
	"sort"
	"strconv"
	"strings"
)

// Tier ranks a pattern's rarity.
type Tier string

const (
	TierCommon   Tier = "common"
	TierUncommon Tier = "uncommon"
	TierRare     Tier = "rare"
	TierEpic     Tier = "epic"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierCommon, TierUncommon, TierRare, TierEpic:
		return true
	}
	return false
}

// Match is one detected occurrence of a shape.
type Match struct {
	PatternID  string `json:"pattern_id"`
	Slots      []int  `json:"slots"` // sorted ascending, unique
	BaseScore  int    `json:"base_score"`
	Tier       Tier   `json:"tier"`
	DaysActive int    `json:"days_active"`
	Anchor     int    `json:"anchor"`
}

// Key is the identity of a match across days: the pattern ID plus its slot
// set. Two matches with the same key are the same pattern instance.
func (m Match) Key() string {
	var b strings.Builder
	b.WriteString(m.PatternID)
	b.WriteByte(':')
	for i, s := range m.Slots {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s))
	}
	return b.String()
}

// Contains reports whether the match covers slot.
func (m Match) Contains(slot int) bool {
	i := sort.SearchInts(m.Slots, slot)
	return i < len(m.Slots) && m.Slots[i] == slot
}

// Clone returns a deep copy of the match.
func (m Match) Clone() Match {
	m.Slots = append([]int(nil), m.Slots...)
	return m
}
