// Package events defines what the day resolution reports to the outside
// world and the sinks that carry it.
package events

import (
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
)

// Event is emitted by resolution steps. The set of events is closed.
type Event interface {
	// Kind is the stable type name used by journals.
	Kind() string
	event()
}

// SlotUpdated is sent for every slot changed by overnight growth.
type SlotUpdated struct {
	Day    int       `json:"day"`
	Index  int       `json:"index"`
	Change string    `json:"change"`
	Slot   farm.Slot `json:"slot"`
}

func (SlotUpdated) Kind() string { return "slot_updated" }
func (SlotUpdated) event()       {}

// PatternDetected is sent for every match found on a day.
type PatternDetected struct {
	Day       int            `json:"day"`
	Match     patterns.Match `json:"match"`
	Recreated bool           `json:"recreated,omitempty"`
}

func (PatternDetected) Kind() string { return "pattern_detected" }
func (PatternDetected) event()       {}

// ScoreCalculated is sent once the day's score is known.
type ScoreCalculated struct {
	Day         int `json:"day"`
	Passive     int `json:"passive"`
	Patterns    int `json:"patterns"`
	EffectBonus int `json:"effect_bonus"`
	Total       int `json:"total"`
	Money       int `json:"money"`
}

func (ScoreCalculated) Kind() string { return "score_calculated" }
func (ScoreCalculated) event()       {}

// DayChanged is sent when the calendar advances.
type DayChanged struct {
	Day  int `json:"day"`
	Week int `json:"week"`
}

func (DayChanged) Kind() string { return "day_changed" }
func (DayChanged) event()       {}

// WeekEnded is sent when the last day of a week resolves.
type WeekEnded struct {
	Week     int  `json:"week"`
	Score    int  `json:"score"`
	Goal     int  `json:"goal"`
	Met      bool `json:"met"`
	NextGoal int  `json:"next_goal"`
}

func (WeekEnded) Kind() string { return "week_ended" }
func (WeekEnded) event()       {}

// CardsDrawn is sent when new cards enter the hand.
type CardsDrawn struct {
	Day   int      `json:"day"`
	Cards []string `json:"cards"`
	Hand  int      `json:"hand"`
}

func (CardsDrawn) Kind() string { return "cards_drawn" }
func (CardsDrawn) event()       {}

// DayResolved closes a resolution pass.
type DayResolved struct {
	Day        int      `json:"day"`
	RunID      string   `json:"run_id"`
	Aborted    bool     `json:"aborted"`
	Reason     string   `json:"reason,omitempty"`
	RolledBack []string `json:"rolled_back,omitempty"`
}

func (DayResolved) Kind() string { return "day_resolved" }
func (DayResolved) event()       {}
