package patterns

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-farm/internal/core"
)

// Overlap decides whether a shape family may share slots with other matches.
type Overlap string

const (
	// OverlapExclusive matches claim their slots; a later exclusive match
	// touching a claimed slot is dropped.
	OverlapExclusive Overlap = "exclusive"
	// OverlapShared matches never claim and are never blocked.
	OverlapShared Overlap = "shared"
)

// Shape is the configurable definition of a pattern.
type Shape struct {
	ID         string       `yaml:"id" json:"id"`
	Name       string       `yaml:"name" json:"name"`
	Cells      []core.Coord `yaml:"cells" json:"cells"`
	BaseScore  int          `yaml:"base_score" json:"base_score"`
	Tier       Tier         `yaml:"tier" json:"tier"`
	Overlap    Overlap      `yaml:"overlap" json:"overlap"`
	SameCrop   bool         `yaml:"same_crop" json:"same_crop"`
	MatureOnly bool         `yaml:"mature_only" json:"mature_only"`
}

var errEmptyShape = errors.New("patterns: shape has fewer than two cells")

// Validate checks a shape definition.
func (s Shape) Validate() error {
	if s.ID == "" {
		return errors.New("patterns: shape without id")
	}
	if len(s.Cells) < 2 {
		return fmt.Errorf("%w: %s", errEmptyShape, s.ID)
	}
	seen := make(map[core.Coord]bool, len(s.Cells))
	for _, c := range s.Cells {
		if seen[c] {
			return fmt.Errorf("patterns: shape %s: duplicate cell %s", s.ID, c)
		}
		seen[c] = true
	}
	if s.BaseScore < 0 {
		return fmt.Errorf("patterns: shape %s: negative base score %d", s.ID, s.BaseScore)
	}
	if !s.Tier.Valid() {
		return fmt.Errorf("patterns: shape %s: unknown tier %q", s.ID, s.Tier)
	}
	switch s.Overlap {
	case "", OverlapExclusive, OverlapShared:
	default:
		return fmt.Errorf("patterns: shape %s: unknown overlap %q", s.ID, s.Overlap)
	}
	return nil
}

// Exclusive reports whether matches of this shape claim their slots.
// An unset overlap policy is exclusive.
func (s Shape) Exclusive() bool {
	return s.Overlap != OverlapShared
}

// Offsets returns the cells relative to the shape's anchor, the first cell
// in row-major order. The anchor offset is always (0,0) and comes first.
func (s Shape) Offsets() []core.Coord {
	cells := append([]core.Coord(nil), s.Cells...)
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	if len(cells) == 0 {
		return nil
	}
	origin := cells[0]
	for i := range cells {
		cells[i] = core.C(cells[i].X-origin.X, cells[i].Y-origin.Y)
	}
	return cells
}

// Area is the size of the shape's bounding box.
func (s Shape) Area() int {
	return core.BoundingRect(s.Cells).Area()
}

// DefaultShapes returns the built-in pattern set.
func DefaultShapes() []Shape {
	line := func(dx, dy int) []core.Coord {
		return []core.Coord{core.C(0, 0), core.C(dx, dy), core.C(2*dx, 2*dy)}
	}
	return []Shape{
		{
			ID: "ring", Name: "Ring",
			Cells: []core.Coord{
				core.C(0, 0), core.C(1, 0), core.C(2, 0),
				core.C(0, 1), core.C(2, 1),
				core.C(0, 2), core.C(1, 2), core.C(2, 2),
			},
			BaseScore: 120, Tier: TierEpic, Overlap: OverlapExclusive, SameCrop: true,
		},
		{
			ID: "cross", Name: "Cross",
			Cells: []core.Coord{
				core.C(1, 0), core.C(0, 1), core.C(1, 1), core.C(2, 1), core.C(1, 2),
			},
			BaseScore: 80, Tier: TierRare, Overlap: OverlapExclusive, SameCrop: true,
		},
		{
			ID: "square", Name: "Square",
			Cells:     []core.Coord{core.C(0, 0), core.C(1, 0), core.C(0, 1), core.C(1, 1)},
			BaseScore: 45, Tier: TierUncommon, Overlap: OverlapExclusive, SameCrop: true,
		},
		{
			ID: "diagonal", Name: "Diagonal", Cells: line(1, 1),
			BaseScore: 25, Tier: TierCommon, Overlap: OverlapShared, SameCrop: true,
		},
		{
			ID: "anti_diagonal", Name: "Anti-diagonal",
			Cells:     []core.Coord{core.C(2, 0), core.C(1, 1), core.C(0, 2)},
			BaseScore: 25, Tier: TierCommon, Overlap: OverlapShared, SameCrop: true,
		},
		{
			ID: "row", Name: "Row", Cells: line(1, 0),
			BaseScore: 20, Tier: TierCommon, Overlap: OverlapShared, SameCrop: true,
		},
		{
			ID: "column", Name: "Column", Cells: line(0, 1),
			BaseScore: 20, Tier: TierCommon, Overlap: OverlapShared, SameCrop: true,
		},
	}
}
