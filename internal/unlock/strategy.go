package unlock

import (
	"sort"

	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/random"
)

// Strategy generates the coordinates of one shape family.
// Implementations must draw randomness only from the supplied provider.
type Strategy interface {
	Name() string
	Generate(w, h, count int, rng *random.Provider) []core.Coord
}

// Shape family names.
const (
	ShapeBlock   = "block"
	ShapeCross   = "cross"
	ShapeStrip   = "strip"
	ShapeCluster = "cluster"
	ShapeDiamond = "diamond"
)

// Strategies returns every built-in strategy in registration order.
// The order is part of the algorithm: weights are walked in this order.
func Strategies() []Strategy {
	return []Strategy{
		Block{},
		Cross{},
		Strip{},
		Cluster{},
		Diamond{},
	}
}

// StrategyByName looks up a built-in strategy.
func StrategyByName(name string) (Strategy, bool) {
	for _, s := range Strategies() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Block unlocks the slots closest to the grid centre, ties broken by slot
// index. It consumes no randomness and is always valid, which makes it the
// documented fallback shape.
type Block struct{}

// Name returns the shape family name.
func (Block) Name() string { return ShapeBlock }

// Generate returns the count slots nearest the centre.
func (Block) Generate(w, h, count int, _ *random.Provider) []core.Coord {
	coords := allCoords(w, h)
	// Doubled offsets keep the centre of even-sized grids integral.
	dist := func(c core.Coord) int {
		dx := 2*c.X - (w - 1)
		dy := 2*c.Y - (h - 1)
		return dx*dx + dy*dy
	}
	sort.SliceStable(coords, func(i, j int) bool {
		return dist(coords[i]) < dist(coords[j])
	})
	return coords[:core.Min(count, len(coords))]
}

// Cross grows four arms from a random centre, one cell per arm in turn.
// Arms that leave the grid stop; the shape may come up short on small grids.
type Cross struct{}

// Name returns the shape family name.
func (Cross) Name() string { return ShapeCross }

// Generate builds a plus shape around a random centre.
func (Cross) Generate(w, h, count int, rng *random.Provider) []core.Coord {
	if count <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	center := core.C(interior(rng, w), interior(rng, h))
	out := []core.Coord{center}
	dirs := [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	for reach := 1; len(out) < count; reach++ {
		added := false
		for _, d := range dirs {
			if len(out) == count {
				break
			}
			c := center.Add(d[0]*reach, d[1]*reach)
			if c.X < 0 || c.X >= w || c.Y < 0 || c.Y >= h {
				continue
			}
			out = append(out, c)
			added = true
		}
		if !added {
			break
		}
	}
	return out
}

// Strip fills whole rows (or columns) starting from a random band.
type Strip struct{}

// Name returns the shape family name.
func (Strip) Name() string { return ShapeStrip }

// Generate fills a horizontal or vertical band.
func (Strip) Generate(w, h, count int, rng *random.Provider) []core.Coord {
	if count <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	vertical := rng.Bool()
	major, minor := h, w
	if vertical {
		major, minor = w, h
	}
	lines := (count + minor - 1) / minor
	start := rng.Range(0, major-lines+1)
	offset := rng.Range(0, minor-core.Min(count, minor)+1)

	out := make([]core.Coord, 0, count)
	for line := start; line < start+lines && len(out) < count; line++ {
		for i := 0; i < minor && len(out) < count; i++ {
			pos := (offset + i) % minor
			if vertical {
				out = append(out, core.C(line, pos))
			} else {
				out = append(out, core.C(pos, line))
			}
		}
	}
	return out
}

// Cluster grows an organic blob from a random seed cell by repeatedly
// absorbing a random frontier cell.
type Cluster struct{}

// Name returns the shape family name.
func (Cluster) Name() string { return ShapeCluster }

// Generate grows a connected random cluster.
func (Cluster) Generate(w, h, count int, rng *random.Provider) []core.Coord {
	if count <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	start := core.C(rng.Intn(w), rng.Intn(h))
	taken := map[core.Coord]bool{start: true}
	inFrontier := map[core.Coord]bool{}
	out := []core.Coord{start}
	var frontier []core.Coord

	push := func(c core.Coord) {
		for _, n := range c.Neighbors4() {
			if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h || taken[n] || inFrontier[n] {
				continue
			}
			inFrontier[n] = true
			frontier = append(frontier, n)
		}
	}
	push(start)

	for len(out) < count && len(frontier) > 0 {
		i := rng.Intn(len(frontier))
		next := frontier[i]
		frontier = append(frontier[:i], frontier[i+1:]...)
		delete(inFrontier, next)
		taken[next] = true
		out = append(out, next)
		push(next)
	}
	return out
}

// Diamond unlocks cells by Manhattan distance from a random centre, with
// ties broken by a seeded shuffle.
type Diamond struct{}

// Name returns the shape family name.
func (Diamond) Name() string { return ShapeDiamond }

// Generate builds a diamond around a random centre.
func (Diamond) Generate(w, h, count int, rng *random.Provider) []core.Coord {
	if count <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	center := core.C(interior(rng, w), interior(rng, h))
	coords := allCoords(w, h)
	random.Shuffle(rng, coords)
	sort.SliceStable(coords, func(i, j int) bool {
		return coords[i].Manhattan(center) < coords[j].Manhattan(center)
	})
	return coords[:core.Min(count, len(coords))]
}

// interior picks a random position away from the edges when the axis allows it.
func interior(rng *random.Provider, n int) int {
	if n >= 3 {
		return rng.Range(1, n-1)
	}
	return rng.Intn(n)
}

// allCoords lists every coordinate in row-major order.
func allCoords(w, h int) []core.Coord {
	if w <= 0 || h <= 0 {
		return nil
	}
	coords := make([]core.Coord, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			coords = append(coords, core.C(x, y))
		}
	}
	return coords
}
