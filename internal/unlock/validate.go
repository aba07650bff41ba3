package unlock

import (
	"fmt"

	"github.com/vovakirdan/tui-farm/internal/core"
)

// ValidationError contains details about a rejected layout.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks a generated layout against the grid:
//   - exactly count coordinates
//   - every coordinate in bounds
//   - no duplicates
//   - orthogonally connected
func Validate(coords []core.Coord, w, h, count int) error {
	if len(coords) != count {
		return ValidationError{
			Code:    "COUNT_MISMATCH",
			Message: fmt.Sprintf("generated %d coordinates, expected %d", len(coords), count),
		}
	}

	bounds := core.NewRect(0, 0, w, h)
	seen := make(map[core.Coord]bool, len(coords))
	for _, c := range coords {
		if !bounds.ContainsCoord(c) {
			return ValidationError{
				Code:    "OUT_OF_BOUNDS",
				Message: fmt.Sprintf("coordinate %s outside %dx%d grid", c, w, h),
			}
		}
		if seen[c] {
			return ValidationError{
				Code:    "DUPLICATE",
				Message: fmt.Sprintf("coordinate %s appears twice", c),
			}
		}
		seen[c] = true
	}

	if reached := floodCount(coords, seen); reached != len(coords) {
		return ValidationError{
			Code:    "DISCONNECTED",
			Message: fmt.Sprintf("only %d of %d coordinates are connected", reached, len(coords)),
		}
	}
	return nil
}

// floodCount returns how many members are reachable from the first one.
func floodCount(coords []core.Coord, members map[core.Coord]bool) int {
	if len(coords) == 0 {
		return 0
	}
	visited := map[core.Coord]bool{coords[0]: true}
	stack := []core.Coord{coords[0]}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range c.Neighbors4() {
			if members[n] && !visited[n] {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return len(visited)
}
