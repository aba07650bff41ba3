package scoring

import "github.com/vovakirdan/tui-farm/internal/patterns"

// PatternScore is the breakdown of one match's contribution.
type PatternScore struct {
	Key        string     `json:"key"`
	PatternID  string     `json:"pattern_id"`
	Base       int        `json:"base"`
	DaysActive int        `json:"days_active"`
	Decay      DecayLevel `json:"decay"`
	Recreated  bool       `json:"recreated,omitempty"`
	Multiplier float64    `json:"multiplier"`
	Final      int        `json:"final"`
}

// DayAnalysis accumulates the results of one resolution pass. It is reset
// when a pipeline is built and filled by the steps in order.
type DayAnalysis struct {
	Passive      map[int]int      `json:"passive"`
	Patterns     []patterns.Match `json:"patterns"`
	Recreated    map[string]bool  `json:"recreated,omitempty"`
	Scores       []PatternScore   `json:"scores"`
	PatternTotal int              `json:"pattern_total"`
	EffectBonus  int              `json:"effect_bonus"`
	Money        int              `json:"money"`
}

// NewDayAnalysis creates an empty accumulator.
func NewDayAnalysis() *DayAnalysis {
	a := &DayAnalysis{}
	a.Reset()
	return a
}

// Reset clears every field.
func (a *DayAnalysis) Reset() {
	a.Passive = make(map[int]int)
	a.Patterns = nil
	a.Recreated = make(map[string]bool)
	a.Scores = nil
	a.PatternTotal = 0
	a.EffectBonus = 0
	a.Money = 0
}

// ClearScores drops everything the score calculation filled in and keeps
// the detected patterns.
func (a *DayAnalysis) ClearScores() {
	a.Passive = make(map[int]int)
	a.Scores = nil
	a.PatternTotal = 0
	a.EffectBonus = 0
	a.Money = 0
}

// SetTracked stores the day's tracked matches.
func (a *DayAnalysis) SetTracked(tracked []Tracked) {
	a.Patterns = make([]patterns.Match, len(tracked))
	a.Recreated = make(map[string]bool)
	for i, t := range tracked {
		a.Patterns[i] = t.Match
		if t.Recreated {
			a.Recreated[t.Match.Key()] = true
		}
	}
}

// PassiveTotal sums the passive scores.
func (a *DayAnalysis) PassiveTotal() int {
	total := 0
	for _, v := range a.Passive {
		total += v
	}
	return total
}

// Total is passive + pattern total + effect bonus.
func (a *DayAnalysis) Total() int {
	return a.PassiveTotal() + a.PatternTotal + a.EffectBonus
}
