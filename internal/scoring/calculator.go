package scoring

import (
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
)

// Calculator scores a day.
type Calculator struct {
	rules   Rules
	catalog *farm.Catalog
}

// NewCalculator creates a calculator for the given rules and crops.
func NewCalculator(rules Rules, catalog *farm.Catalog) *Calculator {
	return &Calculator{rules: rules, catalog: catalog}
}

// Rules returns the scoring parameters.
func (c *Calculator) Rules() Rules {
	return c.rules
}

// PassiveScores returns the passive score of every unlocked, planted,
// non-withered slot with a known crop. Mature crops apply their multiplier.
func (c *Calculator) PassiveScores(g patterns.Grid) map[int]int {
	out := make(map[int]int)
	for i := 0; i < g.Len(); i++ {
		s := g.Slot(i)
		if !s.Alive() {
			continue
		}
		crop, ok := c.catalog.Get(s.Crop)
		if !ok {
			continue
		}
		v := crop.PassiveScore
		if s.Growth >= crop.GrowthDays && crop.MatureMultiplier > 0 {
			v *= crop.MatureMultiplier
		}
		out[i] = round(v)
	}
	return out
}

// PatternScore applies decay and the recreation bonus to a match.
func (c *Calculator) PatternScore(m patterns.Match, recreated bool) PatternScore {
	level, mult := c.rules.Decay(m.DaysActive)
	if recreated {
		mult *= 1 + c.rules.RecreationBonus
	}
	return PatternScore{
		Key:        m.Key(),
		PatternID:  m.PatternID,
		Base:       m.BaseScore,
		DaysActive: m.DaysActive,
		Decay:      level,
		Recreated:  recreated,
		Multiplier: mult,
		Final:      round(float64(m.BaseScore) * mult),
	}
}

// Calculate fills the pattern scores, effect bonus and money of a and
// returns the day's total. Passive scores must already be set. Effects run
// phase by phase (persistent, pattern-detected, final-multiplier, post-day),
// in list order within a phase. The base money rate applies last.
func (c *Calculator) Calculate(a *DayAnalysis, effects []Effect) int {
	a.Scores = make([]PatternScore, 0, len(a.Patterns))
	a.PatternTotal = 0
	for _, m := range a.Patterns {
		ps := c.PatternScore(m, a.Recreated[m.Key()])
		a.Scores = append(a.Scores, ps)
		a.PatternTotal += ps.Final
	}

	st := &effectState{passive: a.PassiveTotal(), scores: a.Scores}
	for _, e := range byPhase(effects) {
		e.apply(st)
	}
	a.EffectBonus = st.bonus

	total := a.Total()
	a.Money = st.money + round(float64(total)*c.rules.MoneyRate)
	return total
}
