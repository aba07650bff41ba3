// Package daily builds and runs the pipeline that resolves one in-game day:
// grow the grid, detect patterns, score the day and check the weekly goal,
// advance the calendar and draw new cards.
package daily

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/scoring"
)

// Playback is what a presenter receives after detection.
type Playback struct {
	Day   int
	Grid  patterns.Grid
	Cache *patterns.Cache
}

// Presenter shows detected patterns, typically by animating them slot by
// slot through the cache. It may block until the presentation finishes.
type Presenter interface {
	PresentPatterns(ctx context.Context, pb Playback) error
}

// PresenterFunc adapts a function to a Presenter.
type PresenterFunc func(ctx context.Context, pb Playback) error

// PresentPatterns calls f.
func (f PresenterFunc) PresentPatterns(ctx context.Context, pb Playback) error {
	return f(ctx, pb)
}

// EffectSource is implemented by drawers whose held cards modify scoring.
type EffectSource interface {
	Effects() []scoring.EffectSpec
}

// DeckSnapshotter is implemented by drawers whose state is persisted with
// the run.
type DeckSnapshotter interface {
	State() cards.State
}

// Context bundles the collaborators of one resolution pass. Every step
// built from a Context shares these exact references.
type Context struct {
	Grid       *farm.Grid
	Detector   *patterns.Detector
	Cache      *patterns.Cache
	Calculator *scoring.Calculator
	Analysis   *scoring.DayAnalysis
	Run        *run.Data
	Rules      run.Rules

	// Optional collaborators.
	Events    events.Sink
	Drawer    cards.Drawer
	Presenter Presenter
	Logger    *log.Logger
}
