package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Phase orders effect evaluation within a day.
type Phase int

const (
	PhasePersistent Phase = iota
	PhasePatternDetected
	PhaseFinalMultiplier
	PhasePostDay
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePersistent:
		return "persistent"
	case PhasePatternDetected:
		return "pattern_detected"
	case PhaseFinalMultiplier:
		return "final_multiplier"
	case PhasePostDay:
		return "post_day"
	default:
		return "unknown"
	}
}

// Effect is a run modifier. The concrete types are closed: PersistentModifier,
// PatternBonus, PercentBonus and ScoreToMoney.
type Effect interface {
	Phase() Phase
	apply(st *effectState)
}

// effectState is the running tally effects read and write.
type effectState struct {
	passive int
	scores  []PatternScore
	bonus   int
	money   int
}

func (st *effectState) subtotal() int {
	total := st.passive + st.bonus
	for _, s := range st.scores {
		total += s.Final
	}
	return total
}

// PersistentModifier scales passive income by a percentage.
type PersistentModifier struct {
	PassivePercent float64
}

func (PersistentModifier) Phase() Phase { return PhasePersistent }

func (e PersistentModifier) apply(st *effectState) {
	st.bonus += round(float64(st.passive) * e.PassivePercent / 100)
}

// PatternBonus adds a flat amount per detected match of a pattern.
// An empty PatternID applies to every match.
type PatternBonus struct {
	PatternID string
	Flat      int
}

func (PatternBonus) Phase() Phase { return PhasePatternDetected }

func (e PatternBonus) apply(st *effectState) {
	for _, s := range st.scores {
		if e.PatternID == "" || s.PatternID == e.PatternID {
			st.bonus += e.Flat
		}
	}
}

// PercentBonus scales the day's subtotal.
type PercentBonus struct {
	Percent float64
}

func (PercentBonus) Phase() Phase { return PhaseFinalMultiplier }

func (e PercentBonus) apply(st *effectState) {
	st.bonus += round(float64(st.subtotal()) * e.Percent / 100)
}

// ScoreToMoney converts part of the final score into money.
type ScoreToMoney struct {
	Rate float64
}

func (ScoreToMoney) Phase() Phase { return PhasePostDay }

func (e ScoreToMoney) apply(st *effectState) {
	st.money += round(float64(st.subtotal()) * e.Rate)
}

// Effect kinds as stored in run data and the rules file.
const (
	KindPersistentModifier = "persistent_modifier"
	KindPatternBonus       = "pattern_bonus"
	KindPercentBonus       = "percent_bonus"
	KindScoreToMoney       = "score_to_money"
)

// EffectSpec is the serialized form of an effect.
type EffectSpec struct {
	Kind      string  `yaml:"kind" json:"kind"`
	Source    string  `yaml:"source,omitempty" json:"source,omitempty"`
	PatternID string  `yaml:"pattern_id,omitempty" json:"pattern_id,omitempty"`
	Value     float64 `yaml:"value" json:"value"`
}

// Effect decodes the EffectSpec into its concrete type.
func (s EffectSpec) Effect() (Effect, error) {
	switch s.Kind {
	case KindPersistentModifier:
		return PersistentModifier{PassivePercent: s.Value}, nil
	case KindPatternBonus:
		return PatternBonus{PatternID: s.PatternID, Flat: round(s.Value)}, nil
	case KindPercentBonus:
		return PercentBonus{Percent: s.Value}, nil
	case KindScoreToMoney:
		return ScoreToMoney{Rate: s.Value}, nil
	default:
		return nil, fmt.Errorf("scoring: unknown effect kind %q", s.Kind)
	}
}

// DecodeEffects decodes every spec, stopping at the first error.
func DecodeEffects(specs []EffectSpec) ([]Effect, error) {
	out := make([]Effect, 0, len(specs))
	for i, s := range specs {
		e, err := s.Effect()
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// byPhase returns the effects stably ordered by phase.
func byPhase(effects []Effect) []Effect {
	out := append([]Effect(nil), effects...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Phase() < out[j].Phase()
	})
	return out
}

// round rounds half away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
