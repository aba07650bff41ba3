package patterns

import (
	"io"

	"github.com/charmbracelet/log"
)

// Detector runs every matcher over the grid and applies the overlap policy.
type Detector struct {
	matchers []Matcher
	logger   *log.Logger
}

// NewDetector creates a detector over the given matchers. The matchers are
// re-sorted into priority order. A nil logger discards output.
func NewDetector(matchers []Matcher, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ms := append([]Matcher(nil), matchers...)
	SortByPriority(ms)
	return &Detector{matchers: ms, logger: logger}
}

// NewDetectorFromRegistry creates a detector over every registered shape.
func NewDetectorFromRegistry(r *Registry, logger *log.Logger) *Detector {
	return NewDetector(r.Matchers(), logger)
}

// Matchers returns the matchers in scan order.
func (d *Detector) Matchers() []Matcher {
	return append([]Matcher(nil), d.matchers...)
}

// DetectAll scans the grid: matchers in priority order, anchors in ascending
// slot index. Exclusive matches claim their slots and an exclusive match
// touching an already claimed slot is dropped. Shared matches are always
// kept and claim nothing. The result is deterministic for a given grid.
func (d *Detector) DetectAll(g Grid) []Match {
	claimed := make([]bool, g.Len())
	var out []Match

	for _, m := range d.matchers {
		shape := m.Shape()
		exclusive := shape.Exclusive()
		found := 0

		for anchor := 0; anchor < g.Len(); anchor++ {
			if !m.CanDetectAt(g, anchor) {
				continue
			}
			match, ok := m.DetectAt(g, anchor)
			if !ok {
				continue
			}
			if exclusive {
				if anyClaimed(claimed, match.Slots) {
					continue
				}
				for _, s := range match.Slots {
					claimed[s] = true
				}
			}
			out = append(out, match)
			found++
		}

		if found > 0 {
			d.logger.Debug("shape detected", "shape", shape.ID, "count", found)
		}
	}
	return out
}

func anyClaimed(claimed []bool, slots []int) bool {
	for _, s := range slots {
		if claimed[s] {
			return true
		}
	}
	return false
}
