package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
)

func row(slots ...int) patterns.Match {
	return patterns.Match{PatternID: "row", Slots: slots, BaseScore: 20, Tier: patterns.TierCommon, Anchor: slots[0]}
}

func TestDecayLevels(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		days  int
		level DecayLevel
		mult  float64
	}{
		{0, DecayNone, 1.0},
		{1, DecayNone, 1.0},
		{2, DecayPartial, 0.75},
		{3, DecayPartial, 0.75},
		{4, DecayCritical, 0.4},
		{30, DecayCritical, 0.4},
	}
	for _, tc := range tests {
		level, mult := r.Decay(tc.days)
		if level != tc.level || mult != tc.mult {
			t.Errorf("Decay(%d) = %v/%v, expected %v/%v", tc.days, level, mult, tc.level, tc.mult)
		}
	}
}

func TestPatternScoreDecaysOverDays(t *testing.T) {
	calc := NewCalculator(DefaultRules(), nil)
	var h History
	m := row(0, 1, 2)

	var finals []int
	for day := 0; day < 5; day++ {
		tracked := h.Track([]patterns.Match{m}, 8)
		require.Len(t, tracked, 1)
		assert.Equal(t, day, tracked[0].Match.DaysActive, "days active on day %d", day)
		finals = append(finals, calc.PatternScore(tracked[0].Match, tracked[0].Recreated).Final)
	}

	assert.Equal(t, 20, finals[0], "first detection scores full base")
	assert.Equal(t, []int{20, 20, 15, 15, 8}, finals)
	assert.Less(t, finals[4], 20)
}

func TestRecreationBonus(t *testing.T) {
	calc := NewCalculator(DefaultRules(), nil)
	var h History
	m := row(0, 1, 2)

	h.Track([]patterns.Match{m}, 8)
	h.Track([]patterns.Match{m}, 8)
	h.Track(nil, 8)
	assert.True(t, h.IsBroken(m.Key()), "vanished pattern should be broken")

	tracked := h.Track([]patterns.Match{m}, 8)
	require.Len(t, tracked, 1)
	assert.True(t, tracked[0].Recreated)
	assert.Equal(t, 0, tracked[0].Match.DaysActive)
	score := calc.PatternScore(tracked[0].Match, tracked[0].Recreated)
	assert.Equal(t, 22, score.Final)
	assert.Equal(t, DecayNone, score.Decay)

	// The bonus is one-time.
	tracked = h.Track([]patterns.Match{m}, 8)
	assert.False(t, tracked[0].Recreated)
	assert.Equal(t, 1, tracked[0].Match.DaysActive)
	assert.False(t, h.IsBroken(m.Key()))
}

func TestBrokenListCapped(t *testing.T) {
	var h History
	h.Track([]patterns.Match{row(0, 1, 2), row(5, 6, 7), row(10, 11, 12)}, 2)
	h.Track(nil, 2)

	// Keys vanish in sorted order; only the newest two survive.
	assert.Equal(t, []string{"row:10,11,12", "row:5,6,7"}, h.Broken)

	tracked := h.Track([]patterns.Match{row(0, 1, 2)}, 2)
	assert.False(t, tracked[0].Recreated, "evicted key should count as new")
}

func TestHistoryClone(t *testing.T) {
	var h History
	h.Track([]patterns.Match{row(0, 1, 2)}, 4)
	c := h.Clone()
	h.Track(nil, 4)

	assert.Equal(t, 0, c.Active["row:0,1,2"])
	assert.Empty(t, c.Broken)
	assert.Len(t, h.Broken, 1)
}

func testCatalog() *farm.Catalog {
	return farm.NewCatalog([]farm.Crop{
		{ID: "wheat", GrowthDays: 1, PassiveScore: 2, MatureMultiplier: 2},
		{ID: "berry", GrowthDays: 3, PassiveScore: 1.5, MatureMultiplier: 1},
	})
}

func TestPassiveScores(t *testing.T) {
	g := farm.NewGrid(3, 2, testCatalog())
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Unlock(i))
	}
	require.NoError(t, g.Plant(0, "wheat"))
	require.NoError(t, g.Plant(1, "wheat"))
	require.NoError(t, g.Plant(2, "berry"))
	require.NoError(t, g.Plant(3, "wheat"))
	require.NoError(t, g.Wither(3))
	require.NoError(t, g.Water(0))
	g.Grow() // slot 0 matures

	got := NewCalculator(DefaultRules(), testCatalog()).PassiveScores(g)
	want := map[int]int{0: 4, 1: 2, 2: 2} // 1.5 rounds half away from zero
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PassiveScores mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateWithoutEffects(t *testing.T) {
	calc := NewCalculator(DefaultRules(), nil)
	a := NewDayAnalysis()
	a.Passive = map[int]int{0: 2, 1: 2, 2: 2}
	var h History
	a.SetTracked(h.Track([]patterns.Match{row(0, 1, 2)}, 8))

	total := calc.Calculate(a, nil)
	assert.Equal(t, 26, total)
	assert.Equal(t, 20, a.PatternTotal)
	assert.Equal(t, 0, a.EffectBonus)
	assert.Equal(t, 3, a.Money) // round(2.6)
	assert.Equal(t, a.PassiveTotal()+a.PatternTotal, total)
}

func TestCalculateEffectPhases(t *testing.T) {
	rules := DefaultRules()
	calc := NewCalculator(rules, nil)
	a := NewDayAnalysis()
	a.Passive = map[int]int{0: 4, 1: 6}
	a.Patterns = []patterns.Match{row(0, 1, 2)}

	// Listed out of phase order on purpose.
	effects, err := DecodeEffects([]EffectSpec{
		{Kind: KindScoreToMoney, Value: 0.5},
		{Kind: KindPercentBonus, Value: 10},
		{Kind: KindPatternBonus, PatternID: "row", Value: 3},
		{Kind: KindPatternBonus, PatternID: "column", Value: 100},
		{Kind: KindPersistentModifier, Value: 50},
	})
	require.NoError(t, err)

	total := calc.Calculate(a, effects)
	// passive 10, +5 persistent, pattern 20, +3 row bonus, +4 (10% of 38).
	assert.Equal(t, 12, a.EffectBonus)
	assert.Equal(t, 42, total)
	// 21 converted + round(4.2) base.
	assert.Equal(t, 25, a.Money)
}

func TestDecodeEffectsUnknownKind(t *testing.T) {
	_, err := DecodeEffects([]EffectSpec{{Kind: "gamble"}})
	assert.Error(t, err)
}

func TestDayAnalysisReset(t *testing.T) {
	a := NewDayAnalysis()
	a.Passive[0] = 5
	a.Patterns = []patterns.Match{row(0, 1, 2)}
	a.PatternTotal = 20
	a.EffectBonus = 3
	a.Money = 2
	a.Reset()

	assert.Equal(t, 0, a.Total())
	assert.Empty(t, a.Patterns)
	assert.Empty(t, a.Passive)
	assert.Zero(t, a.Money)
}

func TestDayAnalysisClearScores(t *testing.T) {
	a := NewDayAnalysis()
	a.Passive[0] = 5
	a.Patterns = []patterns.Match{row(0, 1, 2)}
	a.Scores = []PatternScore{{PatternID: "row", Final: 20}}
	a.PatternTotal = 20
	a.EffectBonus = 3
	a.Money = 2
	a.ClearScores()

	assert.Equal(t, 0, a.Total())
	assert.Len(t, a.Patterns, 1)
	assert.Empty(t, a.Scores)
	assert.Zero(t, a.Money)
}

func TestRulesValidate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())

	bad := DefaultRules()
	bad.SevereAfterDays = bad.PartialAfterDays
	assert.Error(t, bad.Validate())

	bad = DefaultRules()
	bad.SevereMultiplier = 0.9
	assert.Error(t, bad.Validate())

	bad = DefaultRules()
	bad.RecreationBonus = -0.1
	assert.Error(t, bad.Validate())
}
