package unlock

import "github.com/vovakirdan/tui-farm/internal/core"

// AlgorithmVersion identifies the generator. Bump it whenever a strategy, the
// strategy order or the random provider changes output for a given seed.
const AlgorithmVersion = 1

// State is the persisted unlock contract of a run. It is replaced as a whole
// on regeneration and never partially updated.
type State struct {
	Version     int          `json:"version"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	TargetCount int          `json:"target_count"`
	Seed        int64        `json:"seed"`
	Shape       string       `json:"shape"`
	Coords      []core.Coord `json:"coords"`
}

// Generated reports whether the state holds a generated layout.
func (s State) Generated() bool {
	return s.Version > 0
}

// Compatible reports whether the layout was generated for the live
// configuration and the current algorithm.
func (s State) Compatible(w, h, count int) bool {
	return s.Version == AlgorithmVersion &&
		s.Width == w &&
		s.Height == h &&
		s.TargetCount == count
}

// Indices returns the row-major slot indices of the layout.
func (s State) Indices() []int {
	out := make([]int, len(s.Coords))
	for i, c := range s.Coords {
		out[i] = c.Index(s.Width)
	}
	return out
}
