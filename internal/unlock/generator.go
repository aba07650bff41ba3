// Package unlock chooses which grid slots start unlocked. A shape family is
// picked by weighted roulette from a seeded provider and the family's
// strategy lays out the coordinates, so the whole layout is reproducible from
// the seed alone.
package unlock

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/random"
)

// Candidate is a strategy with its selection weight.
type Candidate struct {
	Strategy Strategy
	Weight   int
}

// Generator produces unlock layouts.
type Generator struct {
	candidates []Candidate
	fallback   Strategy
	logger     *log.Logger
}

// NewGenerator creates a generator. Candidates are walked in the given order
// during weighted selection. A nil logger discards output.
func NewGenerator(candidates []Candidate, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{
		candidates: candidates,
		fallback:   Block{},
		logger:     logger,
	}
}

// NewWeightedGenerator builds candidates from a name -> weight table, walking
// the built-in strategies in registration order. Unknown names are an error.
func NewWeightedGenerator(weights map[string]int, logger *log.Logger) (*Generator, error) {
	for name := range weights {
		if _, ok := StrategyByName(name); !ok {
			return nil, fmt.Errorf("unlock: unknown shape %q", name)
		}
	}
	candidates := make([]Candidate, 0, len(weights))
	for _, s := range Strategies() {
		if w, ok := weights[s.Name()]; ok {
			candidates = append(candidates, Candidate{Strategy: s, Weight: w})
		}
	}
	return NewGenerator(candidates, logger), nil
}

// DefaultWeights returns the built-in shape weights.
func DefaultWeights() map[string]int {
	return map[string]int{
		ShapeBlock:   20,
		ShapeCross:   15,
		ShapeStrip:   15,
		ShapeCluster: 30,
		ShapeDiamond: 20,
	}
}

// Generate lays out count unlocked slots on a w x h grid from seed.
// A count above the slot total is clamped. If the chosen strategy produces an
// invalid layout, the block fallback is used instead.
func (g *Generator) Generate(w, h, count int, seed int64) State {
	if clamped := clampCount(w, h, count); clamped != count {
		g.logger.Warn("unlock count outside grid size, clamping", "count", count, "clamped", clamped)
		count = clamped
	}

	rng := random.New(seed)
	strategy := g.pick(rng)

	coords := strategy.Generate(w, h, count, rng)
	if err := Validate(coords, w, h, count); err != nil {
		g.logger.Warn("unlock layout rejected, using fallback",
			"shape", strategy.Name(), "fallback", g.fallback.Name(), "seed", seed, "error", err)
		strategy = g.fallback
		coords = strategy.Generate(w, h, count, rng)
	}

	return State{
		Version:     AlgorithmVersion,
		Width:       w,
		Height:      h,
		TargetCount: count,
		Seed:        seed,
		Shape:       strategy.Name(),
		Coords:      coords,
	}
}

// pick selects a strategy by roulette-wheel over the candidate weights.
func (g *Generator) pick(rng *random.Provider) Strategy {
	weights := make([]int, len(g.candidates))
	for i, c := range g.candidates {
		weights[i] = c.Weight
	}
	idx := rng.WeightedIndex(weights)
	if idx < 0 {
		return g.fallback
	}
	return g.candidates[idx].Strategy
}

// Ensure returns a layout valid for the live configuration. A compatible
// state is returned unchanged. Otherwise the layout is regenerated from the
// persisted seed so the run keeps its identity; seed is only used when no
// layout was ever generated. regenerated reports whether a new layout was made.
func (g *Generator) Ensure(st State, w, h, count int, seed int64) (out State, regenerated bool) {
	count = clampCount(w, h, count)
	if st.Generated() && st.Compatible(w, h, count) {
		return st, false
	}
	if st.Generated() {
		g.logger.Info("unlock layout incompatible, regenerating from persisted seed",
			"version", st.Version, "want_version", AlgorithmVersion,
			"size", fmt.Sprintf("%dx%d", st.Width, st.Height), "want_size", fmt.Sprintf("%dx%d", w, h),
			"count", st.TargetCount, "want_count", count)
		seed = st.Seed
	}
	return g.Generate(w, h, count, seed), true
}

// clampCount limits count to [0, w*h].
func clampCount(w, h, count int) int {
	total := core.RuntimeConfig{GridW: w, GridH: h}.Slots()
	return core.Clamp(count, 0, total)
}
