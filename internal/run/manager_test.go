package run

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/scoring"
	"github.com/vovakirdan/tui-farm/internal/unlock"
)

func testManager(t *testing.T, store Store, w, h, count int) *Manager {
	t.Helper()
	return NewManager(ManagerConfig{
		Store:   store,
		Rules:   DefaultRules(),
		Runtime: core.RuntimeConfig{GridW: w, GridH: h, UnlockCount: count},
		Catalog: farm.NewCatalog([]farm.Crop{{ID: "wheat", GrowthDays: 2, PassiveScore: 2}}),
		Cards:   cards.DefaultCatalog(),
	})
}

func TestNewRunReproducible(t *testing.T) {
	ctx := context.Background()
	a, err := testManager(t, NewMemoryStore(), 5, 5, 5).NewRun(ctx, 42)
	require.NoError(t, err)
	b, err := testManager(t, NewMemoryStore(), 5, 5, 5).NewRun(ctx, 42)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Seeds, b.Seeds)
	assert.Equal(t, a.Unlock, b.Unlock)
	assert.Equal(t, a.Deck, b.Deck)
	assert.Equal(t, int64(42), a.Seeds.Run)

	require.Len(t, a.Unlock.Coords, 5)
	g := a.Grid(5, 5, nil)
	assert.Equal(t, 5, g.UnlockedCount())
	for _, c := range a.Unlock.Coords {
		assert.True(t, g.IsUnlocked(g.Index(c)), "coord %s should be unlocked", c)
	}

	assert.Equal(t, 1, a.Day)
	assert.Equal(t, 1, a.Week)
	assert.Equal(t, DefaultRules().StartingMoney, a.Money)
	assert.Len(t, a.Deck.Hand, DefaultRules().StartingHand)
}

func TestResumeLatestAndByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := testManager(t, store, 5, 5, 5)

	first, err := m.NewRun(ctx, 1)
	require.NoError(t, err)
	second, err := m.NewRun(ctx, 2)
	require.NoError(t, err)

	latest, err := m.Resume(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	byID, err := m.Resume(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Unlock, byID.Unlock)

	_, err = m.Resume(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = testManager(t, NewMemoryStore(), 5, 5, 5).Resume(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeHealsChangedDimensions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	original, err := testManager(t, store, 5, 5, 5).NewRun(ctx, 42)
	require.NoError(t, err)
	original.History.Active = map[string]int{"row:0,1,2": 2}
	original.History.Broken = []string{"row:5,6,7"}
	require.NoError(t, store.Save(ctx, original))

	bigger := testManager(t, store, 6, 6, 5)
	healed, err := bigger.Resume(ctx, original.ID)
	require.NoError(t, err)

	gen, err := unlock.NewWeightedGenerator(unlock.DefaultWeights(), nil)
	require.NoError(t, err)
	want := gen.Generate(6, 6, 5, original.Seeds.Unlock)
	if diff := cmp.Diff(want, healed.Unlock); diff != "" {
		t.Errorf("healed layout should come from the persisted seed (-want +got):\n%s", diff)
	}
	assert.Len(t, healed.Slots, 36)
	assert.Equal(t, 5, healed.Grid(6, 6, nil).UnlockedCount())
	assert.Empty(t, healed.History.Active, "match keys from the old grid must not survive a resize")
	assert.Empty(t, healed.History.Broken)

	stored, err := store.Load(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Unlock.Width, "healed run must be saved")
}

func TestHealKeepsCropsOnSameGrid(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	d, err := testManager(t, store, 5, 5, 5).NewRun(ctx, 7)
	require.NoError(t, err)

	g := d.Grid(5, 5, farm.NewCatalog([]farm.Crop{{ID: "wheat"}}))
	planted := g.Index(d.Unlock.Coords[0])
	require.NoError(t, g.Plant(planted, "wheat"))
	d.Slots = g.Snapshot()
	d.History.Broken = []string{"row:0,1,2"}
	d.Unlock.Version = unlock.AlgorithmVersion + 1

	healed, changed := testManager(t, store, 5, 5, 5).Heal(d)
	require.True(t, changed)
	assert.Equal(t, unlock.AlgorithmVersion, healed.Unlock.Version)
	assert.Equal(t, farm.CropID("wheat"), healed.Slots[planted].Crop, "same seed and size keep the layout and its crops")
	assert.Equal(t, []string{"row:0,1,2"}, healed.History.Broken, "same size keeps the pattern history")
	assert.Equal(t, unlock.AlgorithmVersion+1, d.Unlock.Version, "Heal must not modify its input")

	same, changed := testManager(t, store, 5, 5, 5).Heal(healed)
	assert.False(t, changed)
	assert.Same(t, healed, same)
}

func TestDataJSONRoundTrip(t *testing.T) {
	d, err := testManager(t, NewMemoryStore(), 4, 4, 6).NewRun(context.Background(), 9)
	require.NoError(t, err)
	d.History.Active = map[string]int{"row:0,1,2": 3}
	d.History.Broken = []string{"square:0,1,4,5"}
	d.Effects = []scoring.EffectSpec{{Kind: scoring.KindPercentBonus, Value: 5, Source: "shop"}}
	d.GoalsMet = 2

	b, err := json.Marshal(d)
	require.NoError(t, err)
	var back Data
	require.NoError(t, json.Unmarshal(b, &back))

	if diff := cmp.Diff(d, &back, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip lost data (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d, err := testManager(t, NewMemoryStore(), 3, 3, 4).NewRun(context.Background(), 3)
	require.NoError(t, err)
	c := d.Clone()
	c.Slots[0].Crop = "wheat"
	c.Unlock.Coords[0] = core.C(99, 99)
	c.Deck.Hand = append(c.Deck.Hand, "extra")

	assert.NotEqual(t, farm.CropID("wheat"), d.Slots[0].Crop)
	assert.NotEqual(t, core.C(99, 99), d.Unlock.Coords[0])
	assert.NotContains(t, d.Deck.Hand, "extra")
}

func TestRulesGoals(t *testing.T) {
	r := DefaultRules()
	require.NoError(t, r.Validate())
	assert.Equal(t, 188, r.NextGoal(150))

	r.StartingHand = r.HandLimit + 1
	assert.Error(t, r.Validate())
}

func TestDayOfWeek(t *testing.T) {
	d := &Data{DaysPerWeek: 7}
	for day, want := range map[int]int{1: 1, 7: 7, 8: 1, 15: 1, 14: 7} {
		d.Day = day
		assert.Equal(t, want, d.DayOfWeek(), "day %d", day)
	}
}

func TestMemoryStoreDays(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	d := &Data{ID: "r"}
	for day := 1; day <= 3; day++ {
		require.NoError(t, s.Commit(ctx, d, DayRecord{RunID: "r", Day: day}))
	}
	recs, err := s.Days(ctx, "r", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 3, recs[0].Day)
	assert.Equal(t, 2, recs[1].Day)
}
