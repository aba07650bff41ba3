package daily

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/pipeline"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/scoring"
)

func testCatalog() *farm.Catalog {
	return farm.NewCatalog([]farm.Crop{
		{ID: "wheat", GrowthDays: 3, PassiveScore: 1, MatureMultiplier: 2},
	})
}

// testRun returns a 5x5 run with every slot unlocked and wheat planted on
// the given slots.
func testRun(t *testing.T, planted ...int) *run.Data {
	t.Helper()
	g := farm.NewGrid(5, 5, testCatalog())
	var coords []core.Coord
	for i := 0; i < g.Len(); i++ {
		coords = append(coords, g.Coord(i))
	}
	g.ApplyUnlock(coords)
	for _, i := range planted {
		require.NoError(t, g.Plant(i, "wheat"))
	}
	return &run.Data{
		ID:          "run-1",
		Day:         1,
		Week:        1,
		DaysPerWeek: 7,
		WeeklyGoal:  150,
		Slots:       g.Snapshot(),
	}
}

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(evt events.Event) { r.events = append(r.events, evt) }

func (r *recorder) kinds() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind()
	}
	return out
}

type fakeDrawer struct {
	hand    int
	effects []scoring.EffectSpec
}

func (f *fakeDrawer) HandSize() int { return f.hand }

func (f *fakeDrawer) Draw(n int) ([]cards.Card, error) {
	out := make([]cards.Card, n)
	for i := range out {
		out[i] = cards.Card{ID: "card"}
	}
	f.hand += n
	return out, nil
}

func (f *fakeDrawer) Effects() []scoring.EffectSpec { return f.effects }

func testEngine(t *testing.T, d *run.Data, store run.Store, mod func(*EngineConfig)) *Engine {
	t.Helper()
	rules := run.DefaultRules()
	rules.DaysPerWeek = d.DaysPerWeek
	cfg := EngineConfig{
		Run:     d,
		Store:   store,
		Runtime: core.RuntimeConfig{GridW: 5, GridH: 5, UnlockCount: 25},
		Rules:   rules,
		Scoring: scoring.DefaultRules(),
		Catalog: testCatalog(),
	}
	if mod != nil {
		mod(&cfg)
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func fullContext(t *testing.T, d *run.Data) *Context {
	t.Helper()
	reg, err := patterns.NewRegistryFromShapes(patterns.DefaultShapes())
	require.NoError(t, err)
	return &Context{
		Grid:       d.Grid(5, 5, testCatalog()),
		Detector:   patterns.NewDetectorFromRegistry(reg, nil),
		Cache:      patterns.NewCache(),
		Calculator: scoring.NewCalculator(scoring.DefaultRules(), testCatalog()),
		Analysis:   scoring.NewDayAnalysis(),
		Run:        d,
		Rules:      run.DefaultRules(),
	}
}

func stepNames(steps []pipeline.Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Name()
	}
	return out
}

func TestBuildMissingCollaborators(t *testing.T) {
	b := NewBuilder(nil)

	_, err := b.Build(nil)
	assert.ErrorIs(t, err, ErrMissingCollaborator)

	_, err = b.Build(&Context{})
	require.ErrorIs(t, err, ErrMissingCollaborator)
	assert.Contains(t, err.Error(), "grid")
	assert.Contains(t, err.Error(), "run data")

	c := fullContext(t, testRun(t))
	c.Detector = nil
	_, err = b.Build(c)
	require.ErrorIs(t, err, ErrMissingCollaborator)
	assert.Contains(t, err.Error(), "detector")
}

func TestBuildOptionalCollaborators(t *testing.T) {
	b := NewBuilder(nil)

	c := fullContext(t, testRun(t))
	steps, err := b.Build(c)
	require.NoError(t, err)
	assert.Equal(t, []string{StepGrow, StepDetect, StepScore, StepAdvance}, stepNames(steps))
	assert.NotNil(t, c.Events, "nil sink is replaced")
	assert.NotNil(t, c.Logger)

	c = fullContext(t, testRun(t))
	c.Presenter = PresenterFunc(func(context.Context, Playback) error { return nil })
	c.Drawer = &fakeDrawer{}
	steps, err = b.Build(c)
	require.NoError(t, err)
	assert.Equal(t, []string{StepGrow, StepDetect, StepPresent, StepScore, StepAdvance, StepDraw}, stepNames(steps))
}

func TestBuildResetsStaleState(t *testing.T) {
	c := fullContext(t, testRun(t))
	c.Analysis.PatternTotal = 99
	c.Cache.Store([]patterns.Match{{PatternID: "row", Slots: []int{0, 1, 2}}})

	_, err := NewBuilder(nil).Build(c)
	require.NoError(t, err)
	assert.Zero(t, c.Analysis.PatternTotal)
	assert.False(t, c.Cache.Populated())
}

func TestResolveDayRowOfThree(t *testing.T) {
	ctx := context.Background()
	store := run.NewMemoryStore()
	rec := &recorder{}
	e := testEngine(t, testRun(t, 0, 1, 2), store, func(c *EngineConfig) { c.Sink = rec })

	dr, err := e.ResolveDay(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, dr.Day)
	assert.Equal(t, 1, dr.Matches)
	assert.Equal(t, 3, dr.Analysis.PassiveTotal())
	assert.Equal(t, 20, dr.Analysis.PatternTotal)
	assert.Equal(t, 23, dr.Total)
	assert.Equal(t, 23, dr.ScoreDelta)
	assert.Equal(t, 2, dr.MoneyDelta) // round(2.3)
	assert.Equal(t, dr.Analysis.PassiveTotal()+dr.Analysis.PatternTotal, dr.ScoreDelta)

	d := e.Data()
	assert.Equal(t, 2, d.Day)
	assert.Equal(t, 1, d.Week)
	assert.Equal(t, 23, d.WeekScore)
	assert.Equal(t, map[string]int{"row:0,1,2": 0}, d.History.Active)

	require.Len(t, e.PatternsAt(1), 1)
	assert.Equal(t, "row", e.PatternsAt(1)[0].PatternID)
	assert.Empty(t, e.PatternsAt(3))

	assert.Equal(t, []string{
		"slot_updated", "slot_updated", "slot_updated",
		"pattern_detected", "score_calculated", "day_changed", "day_resolved",
	}, rec.kinds())
	assert.Equal(t, 6, dr.Events)

	saved, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Day)
	assert.Equal(t, 1, saved.Slots[0].DryDays)

	days, err := store.Days(ctx, "run-1", 10)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 23, days[0].Total)
	assert.Equal(t, 1, days[0].Matches)
	assert.False(t, days[0].Aborted)
	assert.Equal(t, dr.Pipeline.RunID, days[0].PipelineRunID)
}

func TestResolveDayPatternAges(t *testing.T) {
	e := testEngine(t, testRun(t, 0, 1, 2), run.NewMemoryStore(), nil)
	var totals []int
	for i := 0; i < 5; i++ {
		dr, err := e.ResolveDay(context.Background())
		require.NoError(t, err)
		totals = append(totals, dr.Analysis.PatternTotal)
	}
	assert.Equal(t, []int{20, 20, 15, 15, 8}, totals)
	assert.Equal(t, 6, e.Data().Day)
}

func TestCriticalFailureRollsBackDay(t *testing.T) {
	ctx := context.Background()
	store := run.NewMemoryStore()
	rec := &recorder{}
	d := testRun(t, 0, 1, 2)
	d.History.Active = map[string]int{"row:5,6,7": 3}
	before := d.Clone()

	e := testEngine(t, d, store, func(c *EngineConfig) {
		c.Sink = rec
		c.Drawer = &fakeDrawer{effects: []scoring.EffectSpec{{Kind: "bogus"}}}
	})

	dr, err := e.ResolveDay(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.True(t, dr.Pipeline.Aborted)
	assert.Equal(t, []string{StepDetect, StepGrow}, dr.Pipeline.RolledBack)

	got := e.Data()
	assert.Equal(t, before.Day, got.Day)
	assert.Equal(t, before.Week, got.Week)
	assert.Equal(t, before.TotalScore, got.TotalScore)
	assert.Equal(t, before.History, got.History)
	assert.Equal(t, before.Slots, e.Grid().Snapshot())

	require.Len(t, rec.events, 1, "buffered step events are dropped")
	resolved, ok := rec.events[0].(events.DayResolved)
	require.True(t, ok)
	assert.True(t, resolved.Aborted)

	days, err := store.Days(ctx, "run-1", 10)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.True(t, days[0].Aborted)
	assert.NotEmpty(t, days[0].Reason)
}

func TestLateFailureRollsBackEveryStep(t *testing.T) {
	d := testRun(t, 0, 1, 2)
	c := fullContext(t, d)
	before := d.Clone()
	beforeSlots := c.Grid.Snapshot()

	steps, err := NewBuilder(nil).Build(c)
	require.NoError(t, err)
	steps = append(steps, &pipeline.Func{
		StepName: "boom",
		Run: func(context.Context, *pipeline.Control) error {
			return errors.New("boom")
		},
	})

	rep := pipeline.NewExecutor().Execute(context.Background(), steps)
	require.True(t, rep.Aborted)
	assert.Equal(t, []string{StepAdvance, StepScore, StepDetect, StepGrow}, rep.RolledBack)

	assert.Equal(t, before.Day, d.Day)
	assert.Equal(t, before.Money, d.Money)
	assert.Equal(t, before.TotalScore, d.TotalScore)
	assert.Equal(t, before.WeekScore, d.WeekScore)
	assert.Equal(t, before.History, d.History)
	assert.Equal(t, beforeSlots, c.Grid.Snapshot())
	assert.False(t, c.Cache.Populated())

	a := c.Analysis
	assert.Empty(t, a.Patterns)
	assert.Empty(t, a.Scores)
	assert.Zero(t, a.PassiveTotal())
	assert.Zero(t, a.PatternTotal)
	assert.Zero(t, a.Money)
	assert.Zero(t, a.Total())
}

func TestResolveDayWeekEnd(t *testing.T) {
	d := testRun(t, 0, 1, 2)
	d.DaysPerWeek = 2
	d.WeeklyGoal = 10
	rec := &recorder{}
	e := testEngine(t, d, run.NewMemoryStore(), func(c *EngineConfig) { c.Sink = rec })

	dr, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.False(t, dr.WeekEnded)

	dr, err = e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.True(t, dr.WeekEnded)

	got := e.Data()
	assert.Equal(t, 3, got.Day)
	assert.Equal(t, 2, got.Week)
	assert.Equal(t, 1, got.GoalsMet)
	assert.Zero(t, got.GoalsMissed)
	assert.Zero(t, got.WeekScore)
	assert.Equal(t, 13, got.WeeklyGoal) // 10 * 1.25 rounded
	assert.Equal(t, 46, got.TotalScore)

	var ended []events.WeekEnded
	for _, evt := range rec.events {
		if we, ok := evt.(events.WeekEnded); ok {
			ended = append(ended, we)
		}
	}
	require.Len(t, ended, 1)
	assert.Equal(t, events.WeekEnded{Week: 1, Score: 46, Goal: 10, Met: true, NextGoal: 13}, ended[0])
}

func TestResolveDayMissedGoal(t *testing.T) {
	d := testRun(t)
	d.DaysPerWeek = 1
	d.WeeklyGoal = 10
	e := testEngine(t, d, run.NewMemoryStore(), nil)

	_, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, e.Data().GoalsMissed)
	assert.Equal(t, 2, e.Data().Week)
}

func TestResolveDayCancelledContext(t *testing.T) {
	d := testRun(t, 0, 1, 2)
	e := testEngine(t, d, run.NewMemoryStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dr, err := e.ResolveDay(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dr.Pipeline.Order)
	assert.Equal(t, 1, e.Data().Day)
}

func TestPresenterReceivesDetections(t *testing.T) {
	var got []patterns.Match
	presenter := PresenterFunc(func(_ context.Context, pb Playback) error {
		assert.Equal(t, 1, pb.Day)
		got = pb.Cache.MatchesAt(0)
		return nil
	})
	e := testEngine(t, testRun(t, 0, 1, 2), run.NewMemoryStore(), func(c *EngineConfig) { c.Presenter = presenter })

	dr, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{0, 1, 2}, got[0].Slots)
	res, ok := dr.Pipeline.Result(StepPresent)
	require.True(t, ok)
	assert.Equal(t, pipeline.StatusExecuted, res.Status)
}

func TestPresenterSkippedWithoutPatterns(t *testing.T) {
	called := false
	presenter := PresenterFunc(func(context.Context, Playback) error {
		called = true
		return nil
	})
	e := testEngine(t, testRun(t, 0), run.NewMemoryStore(), func(c *EngineConfig) { c.Presenter = presenter })

	dr, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.False(t, called)
	res, _ := dr.Pipeline.Result(StepPresent)
	assert.Equal(t, pipeline.StatusSkipped, res.Status)
}

func TestPresenterFailureIsNotFatal(t *testing.T) {
	presenter := PresenterFunc(func(context.Context, Playback) error {
		return errors.New("terminal gone")
	})
	e := testEngine(t, testRun(t, 0, 1, 2), run.NewMemoryStore(), func(c *EngineConfig) { c.Presenter = presenter })

	dr, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.Len(t, dr.Pipeline.Errors, 1)
	assert.Equal(t, 23, dr.ScoreDelta)
	assert.Equal(t, 2, e.Data().Day)
}

func TestDrawRespectsHandLimit(t *testing.T) {
	drawer := &fakeDrawer{hand: 4}
	e := testEngine(t, testRun(t), run.NewMemoryStore(), func(c *EngineConfig) { c.Drawer = drawer })

	_, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, drawer.hand)

	dr, err := e.ResolveDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, drawer.hand)
	res, _ := dr.Pipeline.Result(StepDraw)
	assert.Equal(t, pipeline.StatusSkipped, res.Status)
}

func TestHeldCardsPersistWithRun(t *testing.T) {
	ctx := context.Background()
	store := run.NewMemoryStore()
	d := testRun(t)
	d.Deck = cards.NewState(cards.DefaultCatalog(), 7)
	pile := len(d.Deck.DrawPile)
	e := testEngine(t, d, store, func(c *EngineConfig) { c.Cards = cards.DefaultCatalog() })

	_, err := e.ResolveDay(ctx)
	require.NoError(t, err)

	saved, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, saved.Deck.Hand, 1)
	assert.Len(t, saved.Deck.DrawPile, pile-1)
}

type failingStore struct {
	*run.MemoryStore
}

func (failingStore) Commit(context.Context, *run.Data, run.DayRecord) error {
	return errors.New("disk full")
}

func TestCommitFailureRestoresState(t *testing.T) {
	d := testRun(t, 0, 1, 2)
	before := d.Clone()
	rec := &recorder{}
	e := testEngine(t, d, failingStore{run.NewMemoryStore()}, func(c *EngineConfig) { c.Sink = rec })

	_, err := e.ResolveDay(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, before.Day, e.Data().Day)
	assert.Equal(t, before.History, e.Data().History)
	assert.Equal(t, before.Slots, e.Grid().Snapshot())
	assert.Empty(t, rec.events)
}

func TestNewEngineRequiresRunAndStore(t *testing.T) {
	_, err := NewEngine(EngineConfig{})
	assert.ErrorIs(t, err, ErrMissingCollaborator)
}
