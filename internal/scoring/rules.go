// Package scoring turns a day's grid and detected patterns into points:
// passive crop income, pattern scores with decay and recreation bonus, and
// run effects applied in fixed phases.
package scoring

import (
	"errors"
	"fmt"
)

// Rules are the tunable scoring parameters.
type Rules struct {
	PartialAfterDays  int     `yaml:"partial_after_days" json:"partial_after_days"`
	PartialMultiplier float64 `yaml:"partial_multiplier" json:"partial_multiplier"`
	SevereAfterDays   int     `yaml:"severe_after_days" json:"severe_after_days"`
	SevereMultiplier  float64 `yaml:"severe_multiplier" json:"severe_multiplier"`
	RecreationBonus   float64 `yaml:"recreation_bonus" json:"recreation_bonus"` // fraction, 0.10 = +10%
	MaxBroken         int     `yaml:"max_broken" json:"max_broken"`
	MoneyRate         float64 `yaml:"money_rate" json:"money_rate"` // money per point scored
}

// DefaultRules returns the built-in scoring parameters.
func DefaultRules() Rules {
	return Rules{
		PartialAfterDays:  2,
		PartialMultiplier: 0.75,
		SevereAfterDays:   4,
		SevereMultiplier:  0.4,
		RecreationBonus:   0.10,
		MaxBroken:         64,
		MoneyRate:         0.1,
	}
}

// Validate checks the rules for consistency.
func (r Rules) Validate() error {
	if r.PartialAfterDays < 1 {
		return fmt.Errorf("scoring: partial_after_days must be >= 1, got %d", r.PartialAfterDays)
	}
	if r.SevereAfterDays <= r.PartialAfterDays {
		return fmt.Errorf("scoring: severe_after_days (%d) must exceed partial_after_days (%d)",
			r.SevereAfterDays, r.PartialAfterDays)
	}
	if r.PartialMultiplier < 0 || r.PartialMultiplier > 1 || r.SevereMultiplier < 0 || r.SevereMultiplier > r.PartialMultiplier {
		return errors.New("scoring: decay multipliers must satisfy 0 <= severe <= partial <= 1")
	}
	if r.RecreationBonus < 0 {
		return fmt.Errorf("scoring: recreation_bonus must be >= 0, got %g", r.RecreationBonus)
	}
	if r.MaxBroken < 0 {
		return fmt.Errorf("scoring: max_broken must be >= 0, got %d", r.MaxBroken)
	}
	if r.MoneyRate < 0 {
		return fmt.Errorf("scoring: money_rate must be >= 0, got %g", r.MoneyRate)
	}
	return nil
}

// DecayLevel classifies how stale a pattern has become.
type DecayLevel int

const (
	DecayNone DecayLevel = iota
	DecayPartial
	DecayCritical
)

// String returns the level name.
func (d DecayLevel) String() string {
	switch d {
	case DecayNone:
		return "none"
	case DecayPartial:
		return "partial"
	case DecayCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Decay returns the decay level and multiplier for a pattern that has been
// active for the given number of consecutive days.
func (r Rules) Decay(daysActive int) (DecayLevel, float64) {
	switch {
	case daysActive >= r.SevereAfterDays:
		return DecayCritical, r.SevereMultiplier
	case daysActive >= r.PartialAfterDays:
		return DecayPartial, r.PartialMultiplier
	default:
		return DecayNone, 1.0
	}
}
