package core

// RuntimeConfig contains the structural parameters of a run.
// The grid dimensions and unlock target are part of the unlock contract:
// a persisted layout generated under different values must be regenerated.
type RuntimeConfig struct {
	GridW       int   // Grid width in slots
	GridH       int   // Grid height in slots
	UnlockCount int   // Number of slots unlocked at run start
	Seed        int64 // Run seed; 0 means derive one at run creation
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		GridW:       5,
		GridH:       5,
		UnlockCount: 9,
		Seed:        0,
	}
}

// Slots returns the total number of grid slots.
func (c RuntimeConfig) Slots() int {
	if c.GridW <= 0 || c.GridH <= 0 {
		return 0
	}
	return c.GridW * c.GridH
}

// Bounds returns the grid rectangle anchored at the origin.
func (c RuntimeConfig) Bounds() Rect {
	return NewRect(0, 0, c.GridW, c.GridH)
}
