package unlock

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/random"
)

func defaultGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewWeightedGenerator(DefaultWeights(), nil)
	if err != nil {
		t.Fatalf("NewWeightedGenerator failed: %v", err)
	}
	return g
}

func TestGenerateScenario5x5Seed42(t *testing.T) {
	g := defaultGenerator(t)

	first := g.Generate(5, 5, 5, 42)
	if len(first.Coords) != 5 {
		t.Fatalf("expected 5 coordinates, got %d", len(first.Coords))
	}
	if err := Validate(first.Coords, 5, 5, 5); err != nil {
		t.Fatalf("layout invalid: %v", err)
	}
	if _, ok := StrategyByName(first.Shape); !ok {
		t.Errorf("unknown shape family %q", first.Shape)
	}

	second := g.Generate(5, 5, 5, 42)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("seed 42 not reproducible (-first +second):\n%s", diff)
	}

	other := g.Generate(5, 5, 5, 43)
	if err := Validate(other.Coords, 5, 5, 5); err != nil {
		t.Errorf("seed 43 layout invalid: %v", err)
	}
}

func TestGenerateDeterministicAcrossSeeds(t *testing.T) {
	sizes := []struct{ w, h, count int }{
		{5, 5, 5}, {5, 5, 9}, {8, 6, 12}, {3, 3, 9}, {10, 2, 7}, {1, 1, 1}, {4, 4, 0},
	}
	for _, sz := range sizes {
		for seed := int64(0); seed < 150; seed++ {
			a := defaultGenerator(t).Generate(sz.w, sz.h, sz.count, seed)
			b := defaultGenerator(t).Generate(sz.w, sz.h, sz.count, seed)
			if !cmp.Equal(a, b) {
				t.Fatalf("%dx%d/%d seed %d: generator not deterministic", sz.w, sz.h, sz.count, seed)
			}
			if err := Validate(a.Coords, sz.w, sz.h, sz.count); err != nil {
				t.Fatalf("%dx%d/%d seed %d shape %s: %v", sz.w, sz.h, sz.count, seed, a.Shape, err)
			}
		}
	}
}

func TestEveryStrategyEventuallySelected(t *testing.T) {
	g := defaultGenerator(t)
	seen := map[string]bool{}
	for seed := int64(0); seed < 500; seed++ {
		seen[g.Generate(7, 7, 10, seed).Shape] = true
	}
	for _, s := range Strategies() {
		if !seen[s.Name()] {
			t.Errorf("shape %q never selected in 500 seeds", s.Name())
		}
	}
}

func TestGenerateClampsCount(t *testing.T) {
	st := defaultGenerator(t).Generate(2, 2, 10, 1)
	if st.TargetCount != 4 || len(st.Coords) != 4 {
		t.Errorf("expected clamped count 4, got target %d with %d coords", st.TargetCount, len(st.Coords))
	}
}

// brokenStrategy always returns an out-of-bounds layout.
type brokenStrategy struct{}

func (brokenStrategy) Name() string { return "broken" }
func (brokenStrategy) Generate(w, h, count int, _ *random.Provider) []core.Coord {
	out := make([]core.Coord, count)
	for i := range out {
		out[i] = core.C(w+i, h)
	}
	return out
}

func TestGenerateFallsBackToBlock(t *testing.T) {
	g := NewGenerator([]Candidate{{Strategy: brokenStrategy{}, Weight: 1}}, nil)
	st := g.Generate(5, 5, 5, 42)

	if st.Shape != ShapeBlock {
		t.Fatalf("expected fallback shape %q, got %q", ShapeBlock, st.Shape)
	}
	want := []core.Coord{core.C(2, 2), core.C(2, 1), core.C(1, 2), core.C(3, 2), core.C(2, 3)}
	if diff := cmp.Diff(want, st.Coords); diff != "" {
		t.Errorf("fallback layout mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateZeroWeightsUseFallback(t *testing.T) {
	g := NewGenerator([]Candidate{{Strategy: Cross{}, Weight: 0}}, nil)
	if st := g.Generate(5, 5, 3, 7); st.Shape != ShapeBlock {
		t.Errorf("expected %q with all-zero weights, got %q", ShapeBlock, st.Shape)
	}
}

func TestCrossTooLargeFallsBack(t *testing.T) {
	// A plus shape on a 3x3 grid has at most 5 cells.
	g := NewGenerator([]Candidate{{Strategy: Cross{}, Weight: 1}}, nil)
	st := g.Generate(3, 3, 7, 11)
	if st.Shape != ShapeBlock {
		t.Errorf("expected fallback for oversized cross, got %q", st.Shape)
	}
	if err := Validate(st.Coords, 3, 3, 7); err != nil {
		t.Errorf("fallback layout invalid: %v", err)
	}
}

func TestNewWeightedGeneratorUnknownShape(t *testing.T) {
	if _, err := NewWeightedGenerator(map[string]int{"spiral": 3}, nil); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestEnsure(t *testing.T) {
	g := defaultGenerator(t)
	original := g.Generate(5, 5, 5, 42)

	t.Run("compatible state is reused", func(t *testing.T) {
		got, regenerated := g.Ensure(original, 5, 5, 5, 999)
		if regenerated {
			t.Error("compatible layout should not be regenerated")
		}
		if !cmp.Equal(got, original) {
			t.Error("compatible layout should be returned unchanged")
		}
	})

	t.Run("dimension change regenerates from persisted seed", func(t *testing.T) {
		got, regenerated := g.Ensure(original, 6, 6, 5, 999)
		if !regenerated {
			t.Fatal("dimension change must regenerate")
		}
		if got.Seed != 42 {
			t.Errorf("expected persisted seed 42, got %d", got.Seed)
		}
		if !cmp.Equal(got, g.Generate(6, 6, 5, 42)) {
			t.Error("regenerated layout should equal a fresh generation with the persisted seed")
		}
	})

	t.Run("version change regenerates", func(t *testing.T) {
		stale := original
		stale.Version = AlgorithmVersion + 1
		got, regenerated := g.Ensure(stale, 5, 5, 5, 999)
		if !regenerated || got.Version != AlgorithmVersion {
			t.Errorf("stale version should regenerate, got version %d regenerated=%v", got.Version, regenerated)
		}
		if !cmp.Equal(got, original) {
			t.Error("same seed and dimensions should reproduce the original layout")
		}
	})

	t.Run("empty state uses provided seed", func(t *testing.T) {
		got, regenerated := g.Ensure(State{}, 5, 5, 5, 7)
		if !regenerated || got.Seed != 7 {
			t.Errorf("expected generation with seed 7, got seed %d regenerated=%v", got.Seed, regenerated)
		}
	})

	t.Run("clamped count stays compatible", func(t *testing.T) {
		small := g.Generate(2, 2, 10, 3)
		if _, regenerated := g.Ensure(small, 2, 2, 10, 3); regenerated {
			t.Error("clamped layout should be compatible with the same configuration")
		}
	})
}

func TestValidateCodes(t *testing.T) {
	tests := []struct {
		name   string
		coords []core.Coord
		count  int
		code   string
	}{
		{"count", []core.Coord{core.C(0, 0)}, 2, "COUNT_MISMATCH"},
		{"bounds", []core.Coord{core.C(0, 0), core.C(3, 0)}, 2, "OUT_OF_BOUNDS"},
		{"duplicate", []core.Coord{core.C(0, 0), core.C(0, 0)}, 2, "DUPLICATE"},
		{"disconnected", []core.Coord{core.C(0, 0), core.C(2, 2)}, 2, "DISCONNECTED"},
		{"diagonal only", []core.Coord{core.C(0, 0), core.C(1, 1)}, 2, "DISCONNECTED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.coords, 3, 3, tc.count)
			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Code != tc.code {
				t.Errorf("code = %s, expected %s", verr.Code, tc.code)
			}
		})
	}
	if err := Validate(nil, 3, 3, 0); err != nil {
		t.Errorf("empty layout with count 0 should be valid: %v", err)
	}
}

func TestStateIndices(t *testing.T) {
	st := State{Width: 4, Coords: []core.Coord{core.C(1, 0), core.C(0, 2)}}
	if diff := cmp.Diff([]int{1, 8}, st.Indices()); diff != "" {
		t.Errorf("Indices mismatch:\n%s", diff)
	}
}
