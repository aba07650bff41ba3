package patterns

import (
	"sort"

	"github.com/vovakirdan/tui-farm/internal/farm"
)

// Grid is the read-only view of the board a matcher needs.
// *farm.Grid satisfies it.
type Grid interface {
	Width() int
	Height() int
	Len() int
	Slot(index int) farm.Slot
}

// Matcher finds one shape family anchored at a slot.
type Matcher interface {
	// Shape returns the definition the matcher was built from.
	Shape() Shape

	// CanDetectAt is a cheap pre-check: the anchor is unlocked and alive and
	// the whole shape fits inside the grid.
	CanDetectAt(g Grid, anchor int) bool

	// DetectAt performs the full check and returns the match.
	DetectAt(g Grid, anchor int) (Match, bool)
}

// ShapeMatcher matches a Shape by its cell offsets.
type ShapeMatcher struct {
	shape   Shape
	offsets []offset
	// bounds of the offsets relative to the anchor
	minX, maxX, maxY int
}

type offset struct{ dx, dy int }

// NewShapeMatcher builds a matcher for a validated shape.
func NewShapeMatcher(s Shape) (*ShapeMatcher, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m := &ShapeMatcher{shape: s}
	for _, c := range s.Offsets() {
		m.offsets = append(m.offsets, offset{c.X, c.Y})
		if c.X < m.minX {
			m.minX = c.X
		}
		if c.X > m.maxX {
			m.maxX = c.X
		}
		if c.Y > m.maxY {
			m.maxY = c.Y
		}
	}
	return m, nil
}

// Shape returns the shape definition.
func (m *ShapeMatcher) Shape() Shape {
	return m.shape
}

// CanDetectAt reports whether a match anchored at anchor is possible at all.
func (m *ShapeMatcher) CanDetectAt(g Grid, anchor int) bool {
	w, h := g.Width(), g.Height()
	if anchor < 0 || anchor >= g.Len() || w <= 0 {
		return false
	}
	x, y := anchor%w, anchor/w
	if x+m.minX < 0 || x+m.maxX >= w || y+m.maxY >= h {
		return false
	}
	return g.Slot(anchor).Alive()
}

// DetectAt checks every cell of the shape.
func (m *ShapeMatcher) DetectAt(g Grid, anchor int) (Match, bool) {
	if !m.CanDetectAt(g, anchor) {
		return Match{}, false
	}
	w := g.Width()
	x, y := anchor%w, anchor/w
	first := g.Slot(anchor)

	slots := make([]int, 0, len(m.offsets))
	for _, o := range m.offsets {
		idx := (y+o.dy)*w + x + o.dx
		s := g.Slot(idx)
		if !s.Alive() {
			return Match{}, false
		}
		if m.shape.SameCrop && s.Crop != first.Crop {
			return Match{}, false
		}
		if m.shape.MatureOnly && !s.Mature {
			return Match{}, false
		}
		slots = append(slots, idx)
	}
	sort.Ints(slots)

	return Match{
		PatternID: m.shape.ID,
		Slots:     slots,
		BaseScore: m.shape.BaseScore,
		Tier:      m.shape.Tier,
		Anchor:    anchor,
	}, true
}
