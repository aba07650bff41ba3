// Package run owns the persisted state of a farm run and the store contract
// it is saved through.
package run

import (
	"context"
	"errors"
	"time"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/scoring"
	"github.com/vovakirdan/tui-farm/internal/unlock"
)

// ErrNotFound is returned by stores when a run does not exist.
var ErrNotFound = errors.New("run: not found")

// Seeds are the independent random streams of a run.
type Seeds struct {
	Run    int64 `json:"run"`
	Unlock int64 `json:"unlock"`
	Deck   int64 `json:"deck"`
}

// Data is everything persisted about a run.
type Data struct {
	ID        string    `json:"id"`
	Seeds     Seeds     `json:"seeds"`
	CreatedAt time.Time `json:"created_at"`

	Day         int `json:"day"`
	Week        int `json:"week"`
	DaysPerWeek int `json:"days_per_week"`

	Money       int `json:"money"`
	TotalScore  int `json:"total_score"`
	WeekScore   int `json:"week_score"`
	WeeklyGoal  int `json:"weekly_goal"`
	GoalsMet    int `json:"goals_met"`
	GoalsMissed int `json:"goals_missed"`

	Unlock  unlock.State         `json:"unlock"`
	History scoring.History      `json:"history"`
	Slots   []farm.Slot          `json:"slots"`
	Deck    cards.State          `json:"deck"`
	Effects []scoring.EffectSpec `json:"effects,omitempty"`
}

// Clone returns a deep copy.
func (d *Data) Clone() *Data {
	c := *d
	c.Unlock.Coords = append(c.Unlock.Coords[:0:0], d.Unlock.Coords...)
	c.History = d.History.Clone()
	c.Slots = append([]farm.Slot(nil), d.Slots...)
	c.Deck.DrawPile = append([]string(nil), d.Deck.DrawPile...)
	c.Deck.Hand = append([]string(nil), d.Deck.Hand...)
	c.Deck.Discard = append([]string(nil), d.Deck.Discard...)
	c.Effects = append([]scoring.EffectSpec(nil), d.Effects...)
	return &c
}

// DayOfWeek returns the 1-based day within the current week.
func (d *Data) DayOfWeek() int {
	if d.DaysPerWeek <= 0 {
		return d.Day
	}
	return (d.Day-1)%d.DaysPerWeek + 1
}

// Grid rebuilds the grid service from the persisted slots. A slot list that
// does not fit the dimensions yields a fresh grid with the unlock layout
// applied.
func (d *Data) Grid(w, h int, catalog *farm.Catalog) *farm.Grid {
	g := farm.NewGrid(w, h, catalog)
	if err := g.Restore(d.Slots); err != nil {
		g.ApplyUnlock(d.Unlock.Coords)
	}
	return g
}

// DayRecord is the persisted summary of one resolved (or aborted) day.
type DayRecord struct {
	RunID         string    `json:"run_id"`
	Day           int       `json:"day"`
	Week          int       `json:"week"`
	PipelineRunID string    `json:"pipeline_run_id"`
	Passive       int       `json:"passive"`
	PatternTotal  int       `json:"pattern_total"`
	EffectBonus   int       `json:"effect_bonus"`
	Total         int       `json:"total"`
	Money         int       `json:"money"`
	Matches       int       `json:"matches"`
	Aborted       bool      `json:"aborted"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists runs and their day records.
type Store interface {
	// Save inserts or replaces a run.
	Save(ctx context.Context, d *Data) error

	// Commit saves a run and appends a day record atomically.
	Commit(ctx context.Context, d *Data, rec DayRecord) error

	// Load returns a run by ID or ErrNotFound.
	Load(ctx context.Context, id string) (*Data, error)

	// Latest returns the most recently updated run or ErrNotFound.
	Latest(ctx context.Context) (*Data, error)

	// Days returns the most recent day records of a run, newest first.
	Days(ctx context.Context, runID string, limit int) ([]DayRecord, error)
}
