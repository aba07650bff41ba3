package farm

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-farm/internal/core"
)

// Errors returned by grid interactions.
var (
	ErrOutOfBounds = errors.New("farm: slot out of bounds")
	ErrLocked      = errors.New("farm: slot is locked")
	ErrOccupied    = errors.New("farm: slot is occupied")
	ErrEmpty       = errors.New("farm: slot is empty")
	ErrWithered    = errors.New("farm: crop is withered")
	ErrNotMature   = errors.New("farm: crop is not mature")
	ErrUnknownCrop = errors.New("farm: unknown crop")
)

// Grid is the board of a run. Slots are stored in row-major order:
// index = y*W + x.
type Grid struct {
	w       int
	h       int
	slots   []Slot
	catalog *Catalog
}

// NewGrid creates a grid with all slots locked and empty.
func NewGrid(w, h int, catalog *Catalog) *Grid {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Grid{
		w:       w,
		h:       h,
		slots:   make([]Slot, w*h),
		catalog: catalog,
	}
}

// Width returns the grid width.
func (g *Grid) Width() int { return g.w }

// Height returns the grid height.
func (g *Grid) Height() int { return g.h }

// Len returns the number of slots.
func (g *Grid) Len() int { return len(g.slots) }

// Catalog returns the crop catalog the grid validates against.
func (g *Grid) Catalog() *Catalog { return g.catalog }

// InBounds returns true if the coordinate is within the grid boundaries.
func (g *Grid) InBounds(c core.Coord) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

// Valid returns true if index addresses a slot.
func (g *Grid) Valid(index int) bool {
	return index >= 0 && index < len(g.slots)
}

// Index converts a coordinate to a slot index, or -1 when out of bounds.
func (g *Grid) Index(c core.Coord) int {
	if !g.InBounds(c) {
		return -1
	}
	return c.Index(g.w)
}

// Coord converts a slot index to its coordinate.
func (g *Grid) Coord(index int) core.Coord {
	return core.CoordOf(index, g.w)
}

// Slot returns a copy of the slot at index. Invalid indices yield a zero Slot.
func (g *Grid) Slot(index int) Slot {
	if !g.Valid(index) {
		return Slot{}
	}
	return g.slots[index]
}

// SlotAt returns the slot at the coordinate.
func (g *Grid) SlotAt(c core.Coord) (Slot, bool) {
	if !g.InBounds(c) {
		return Slot{}, false
	}
	return g.slots[c.Index(g.w)], true
}

// IsUnlocked reports whether the slot at index is unlocked.
func (g *Grid) IsUnlocked(index int) bool {
	return g.Valid(index) && g.slots[index].Unlocked
}

// UnlockedCount returns the number of unlocked slots.
func (g *Grid) UnlockedCount() int {
	count := 0
	for _, s := range g.slots {
		if s.Unlocked {
			count++
		}
	}
	return count
}

// mutable returns the slot for mutation after bounds and lock checks.
func (g *Grid) mutable(index int) (*Slot, error) {
	if !g.Valid(index) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	s := &g.slots[index]
	if !s.Unlocked {
		return nil, fmt.Errorf("%w: %d", ErrLocked, index)
	}
	return s, nil
}

// Plant puts a crop into an unlocked, empty slot.
func (g *Grid) Plant(index int, crop CropID) error {
	s, err := g.mutable(index)
	if err != nil {
		return err
	}
	if !s.Empty() {
		return fmt.Errorf("%w: %d holds %s", ErrOccupied, index, s.Crop)
	}
	if _, ok := g.catalog.Get(crop); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCrop, crop)
	}
	*s = Slot{Crop: crop, Unlocked: true}
	return nil
}

// Water marks a planted, living slot as watered for the coming night.
func (g *Grid) Water(index int) error {
	s, err := g.mutable(index)
	if err != nil {
		return err
	}
	if s.Empty() {
		return fmt.Errorf("%w: %d", ErrEmpty, index)
	}
	if s.Withered {
		return fmt.Errorf("%w: %d", ErrWithered, index)
	}
	s.Watered = true
	return nil
}

// WaterAll waters every living crop and returns how many were watered.
func (g *Grid) WaterAll() int {
	n := 0
	for i := range g.slots {
		if g.slots[i].Alive() && !g.slots[i].Watered {
			g.slots[i].Watered = true
			n++
		}
	}
	return n
}

// Grow advances every living crop by one night.
// Watered crops gain a growth day; dry crops accumulate dry days and wither
// once they reach their crop's limit. Watering is consumed either way.
func (g *Grid) Grow() []Change {
	var changes []Change
	for i := range g.slots {
		s := &g.slots[i]
		if !s.Alive() {
			continue
		}
		crop, ok := g.catalog.Get(s.Crop)
		if !ok {
			continue
		}

		kind := ChangeGrew
		if s.Watered {
			s.DryDays = 0
			if !s.Mature {
				s.Growth++
				if s.Growth >= crop.GrowthDays {
					s.Mature = true
					kind = ChangeMatured
				}
			}
		} else {
			s.DryDays++
			kind = ChangeDried
			if crop.WitherAfterDryDays > 0 && s.DryDays >= crop.WitherAfterDryDays {
				s.Withered = true
				s.Mature = false
				kind = ChangeWithered
			}
		}
		s.Watered = false
		changes = append(changes, Change{Index: i, Kind: kind, Slot: *s})
	}
	return changes
}

// Harvest removes a mature crop and returns its ID.
func (g *Grid) Harvest(index int) (CropID, error) {
	s, err := g.mutable(index)
	if err != nil {
		return "", err
	}
	if s.Empty() {
		return "", fmt.Errorf("%w: %d", ErrEmpty, index)
	}
	if s.Withered {
		return "", fmt.Errorf("%w: %d", ErrWithered, index)
	}
	if !s.Mature {
		return "", fmt.Errorf("%w: %d", ErrNotMature, index)
	}
	crop := s.Crop
	*s = Slot{Unlocked: true}
	return crop, nil
}

// Wither kills the crop in a slot.
func (g *Grid) Wither(index int) error {
	s, err := g.mutable(index)
	if err != nil {
		return err
	}
	if s.Empty() {
		return fmt.Errorf("%w: %d", ErrEmpty, index)
	}
	s.Withered = true
	s.Mature = false
	s.Watered = false
	return nil
}

// Clear removes whatever the slot holds, including withered crops.
func (g *Grid) Clear(index int) error {
	if _, err := g.mutable(index); err != nil {
		return err
	}
	g.slots[index] = Slot{Unlocked: true}
	return nil
}

// Unlock makes a slot available for planting. Unlocking twice is a no-op.
func (g *Grid) Unlock(index int) error {
	if !g.Valid(index) {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	g.slots[index].Unlocked = true
	return nil
}

// ApplyUnlock locks every slot and then unlocks exactly the given coordinates,
// preserving crops on slots that stay unlocked. Out-of-bounds coordinates are
// ignored. Returns the number of unlocked slots.
func (g *Grid) ApplyUnlock(coords []core.Coord) int {
	keep := make(map[int]bool, len(coords))
	for _, c := range coords {
		if idx := g.Index(c); idx >= 0 {
			keep[idx] = true
		}
	}
	for i := range g.slots {
		if keep[i] {
			g.slots[i].Unlocked = true
		} else {
			g.slots[i] = Slot{}
		}
	}
	return len(keep)
}

// Snapshot returns a copy of every slot.
func (g *Grid) Snapshot() []Slot {
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// Restore replaces the slots with a previous snapshot.
func (g *Grid) Restore(slots []Slot) error {
	if len(slots) != len(g.slots) {
		return fmt.Errorf("farm: restore: snapshot has %d slots, grid has %d", len(slots), len(g.slots))
	}
	copy(g.slots, slots)
	return nil
}

// Reset locks and empties every slot.
func (g *Grid) Reset() {
	for i := range g.slots {
		g.slots[i] = Slot{}
	}
}
