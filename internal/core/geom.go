// Package core provides fundamental types and utilities shared by the farm
// engine. It contains no external dependencies (especially no Bubble Tea) to
// keep resolution logic pure and testable.
package core

// Rect represents an axis-aligned box of grid cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsCoord reports whether the coordinate lies inside the rectangle.
func (r Rect) ContainsCoord(c Coord) bool {
	return r.Contains(c.X, c.Y)
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Area returns the number of cells covered by the rectangle.
func (r Rect) Area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// BoundingRect returns the smallest rectangle containing every coordinate.
// An empty input yields the zero Rect.
func BoundingRect(coords []Coord) Rect {
	if len(coords) == 0 {
		return Rect{}
	}
	minX, minY := coords[0].X, coords[0].Y
	maxX, maxY := minX, minY
	for _, c := range coords[1:] {
		minX = Min(minX, c.X)
		minY = Min(minY, c.Y)
		maxX = Max(maxX, c.X)
		maxY = Max(maxY, c.Y)
	}
	return NewRect(minX, minY, maxX-minX+1, maxY-minY+1)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
