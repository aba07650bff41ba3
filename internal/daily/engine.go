package daily

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/pipeline"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/scoring"
)

// EngineConfig bundles what an Engine needs. Run and Store are required.
type EngineConfig struct {
	Run      *run.Data
	Store    run.Store
	Runtime  core.RuntimeConfig
	Rules    run.Rules
	Scoring  scoring.Rules
	Catalog  *farm.Catalog
	Detector *patterns.Detector

	// Cards is the card catalog the run's deck is restored against.
	// Drawer overrides the deck entirely.
	Cards  []cards.Card
	Drawer cards.Drawer

	Sink      events.Sink
	Presenter Presenter
	Executor  *pipeline.Executor
	Logger    *log.Logger
}

// DayReport describes one resolution pass.
type DayReport struct {
	Day        int
	Week       int
	Pipeline   pipeline.Report
	Analysis   scoring.DayAnalysis
	Total      int
	ScoreDelta int
	MoneyDelta int
	Matches    int
	WeekEnded  bool
	Events     int
}

// Engine resolves days of one run. It owns the live grid, deck and the
// detection cache between resolutions. An Engine is not safe for
// concurrent use.
type Engine struct {
	data     *run.Data
	store    run.Store
	runtime  core.RuntimeConfig
	rules    run.Rules
	catalog  *farm.Catalog
	cards    []cards.Card
	grid     *farm.Grid
	drawer   cards.Drawer
	detector *patterns.Detector
	calc     *scoring.Calculator
	cache    *patterns.Cache
	analysis *scoring.DayAnalysis

	sink      events.Sink
	presenter Presenter
	builder   *Builder
	exec      *pipeline.Executor
	logger    *log.Logger
	now       func() time.Time
}

// NewEngine creates an engine for cfg.Run.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Run == nil || cfg.Store == nil {
		return nil, fmt.Errorf("%w: run data and store are required", ErrMissingCollaborator)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("run", cfg.Run.ID)

	detector := cfg.Detector
	if detector == nil {
		reg, err := patterns.NewRegistryFromShapes(patterns.DefaultShapes())
		if err != nil {
			return nil, err
		}
		detector = patterns.NewDetectorFromRegistry(reg, logger)
	}
	sink := cfg.Sink
	if sink == nil {
		sink = events.Nop{}
	}
	exec := cfg.Executor
	if exec == nil {
		exec = pipeline.NewExecutor(pipeline.WithLogger(logger))
	}

	e := &Engine{
		data:      cfg.Run,
		store:     cfg.Store,
		runtime:   cfg.Runtime,
		rules:     cfg.Rules,
		catalog:   cfg.Catalog,
		cards:     cfg.Cards,
		drawer:    cfg.Drawer,
		detector:  detector,
		calc:      scoring.NewCalculator(cfg.Scoring, cfg.Catalog),
		cache:     patterns.NewCache(),
		analysis:  scoring.NewDayAnalysis(),
		sink:      sink,
		presenter: cfg.Presenter,
		builder:   NewBuilder(logger),
		exec:      exec,
		logger:    logger,
		now:       time.Now,
	}
	e.grid = cfg.Run.Grid(cfg.Runtime.GridW, cfg.Runtime.GridH, cfg.Catalog)
	if e.drawer == nil && len(cfg.Cards) > 0 {
		deck, err := cards.NewDeck(cfg.Cards, cfg.Run.Deck)
		if err != nil {
			return nil, fmt.Errorf("daily: restore deck: %w", err)
		}
		e.drawer = deck
	}
	return e, nil
}

// Data returns the live run state.
func (e *Engine) Data() *run.Data { return e.data }

// Grid returns the live grid. Mutations must be followed by Save.
func (e *Engine) Grid() *farm.Grid { return e.grid }

// Drawer returns the hand, or nil when the run has no deck.
func (e *Engine) Drawer() cards.Drawer { return e.drawer }

// Analysis returns the breakdown of the last resolution.
func (e *Engine) Analysis() *scoring.DayAnalysis { return e.analysis }

// PatternsAt returns the matches of the last resolution covering slot.
func (e *Engine) PatternsAt(slot int) []patterns.Match {
	return e.cache.MatchesAt(slot)
}

// Save persists the live grid and deck outside of a resolution, e.g. after
// planting or watering.
func (e *Engine) Save(ctx context.Context) error {
	e.data.Slots = e.grid.Snapshot()
	if snap, ok := e.drawer.(DeckSnapshotter); ok {
		e.data.Deck = snap.State()
	}
	if err := e.store.Save(ctx, e.data); err != nil {
		return fmt.Errorf("daily: save run: %w", err)
	}
	return nil
}

// ResolveDay runs the day pipeline once. Events are buffered and delivered
// only after the run has been committed; an aborted pipeline discards them
// and leaves the run as it was. The returned error is the pipeline's abort
// error, a commit error, or ErrMissingCollaborator.
func (e *Engine) ResolveDay(ctx context.Context) (DayReport, error) {
	pre := e.data.Clone()
	pre.Slots = e.grid.Snapshot()

	buf := &events.Buffer{}
	c := &Context{
		Grid:       e.grid,
		Detector:   e.detector,
		Cache:      e.cache,
		Calculator: e.calc,
		Analysis:   e.analysis,
		Run:        e.data,
		Rules:      e.rules,
		Events:     buf,
		Drawer:     e.drawer,
		Presenter:  e.presenter,
		Logger:     e.logger,
	}
	steps, err := e.builder.Build(c)
	if err != nil {
		return DayReport{}, err
	}

	logger := e.logger.With("day", pre.Day)
	logger.Info("resolving day", "steps", len(steps))
	rep := e.exec.Execute(ctx, steps)

	dr := DayReport{
		Day:      pre.Day,
		Week:     pre.Week,
		Pipeline: rep,
		Analysis: *e.analysis,
		Matches:  len(e.analysis.Patterns),
	}
	rec := run.DayRecord{
		RunID:         e.data.ID,
		Day:           pre.Day,
		Week:          pre.Week,
		PipelineRunID: rep.RunID,
		CreatedAt:     e.now().UTC(),
	}

	if !rep.Succeeded() {
		dropped := buf.Discard()
		e.restore(pre)
		rec.Aborted = true
		rec.Reason = rep.Reason
		if err := e.store.Commit(context.WithoutCancel(ctx), e.data, rec); err != nil {
			logger.Warn("cannot record aborted day", "error", err)
		}
		e.publish(pre.Day, events.DayResolved{
			Day:        pre.Day,
			RunID:      rep.RunID,
			Aborted:    true,
			Reason:     rep.Reason,
			RolledBack: rep.RolledBack,
		})
		logger.Error("day aborted", "reason", rep.Reason, "rolled_back", len(rep.RolledBack), "dropped_events", dropped)
		return dr, rep.Error()
	}

	e.data.Slots = e.grid.Snapshot()
	dr.Total = e.analysis.Total()
	dr.ScoreDelta = e.data.TotalScore - pre.TotalScore
	dr.MoneyDelta = e.data.Money - pre.Money
	dr.WeekEnded = e.data.Week != pre.Week

	rec.Passive = e.analysis.PassiveTotal()
	rec.PatternTotal = e.analysis.PatternTotal
	rec.EffectBonus = e.analysis.EffectBonus
	rec.Total = dr.Total
	rec.Money = e.analysis.Money
	rec.Matches = dr.Matches

	if err := e.store.Commit(ctx, e.data, rec); err != nil {
		buf.Discard()
		e.restore(pre)
		return dr, fmt.Errorf("daily: commit day %d: %w", pre.Day, err)
	}

	dr.Events = e.flush(pre.Day, buf)
	e.publish(pre.Day, events.DayResolved{Day: pre.Day, RunID: rep.RunID})
	if errs := rep.Errors; len(errs) > 0 {
		logger.Warn("day resolved with errors", "errors", len(errs))
	}
	logger.Info("day resolved", "total", dr.Total, "score", e.data.TotalScore,
		"money", e.data.Money, "matches", dr.Matches)
	return dr, nil
}

// restore puts the run, grid and deck back to pre.
func (e *Engine) restore(pre *run.Data) {
	*e.data = *pre.Clone()
	if err := e.grid.Restore(pre.Slots); err != nil {
		e.logger.Error("cannot restore grid", "error", err)
	}
	if len(e.cards) > 0 {
		if _, ok := e.drawer.(*cards.Deck); ok {
			if deck, err := cards.NewDeck(e.cards, pre.Deck); err == nil {
				e.drawer = deck
			}
		}
	}
}

func (e *Engine) flush(day int, buf *events.Buffer) int {
	if ds, ok := e.sink.(events.DaySetter); ok {
		ds.SetDay(day)
	}
	return buf.Flush(e.sink)
}

func (e *Engine) publish(day int, evt events.Event) {
	if ds, ok := e.sink.(events.DaySetter); ok {
		ds.SetDay(day)
	}
	e.sink.Publish(evt)
}
