package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/pipeline"
	"github.com/vovakirdan/tui-farm/internal/scoring"
)

// growStep advances every crop by one night.
type growStep struct {
	pipeline.Tracker
	c      *Context
	before []farm.Slot
}

func (s *growStep) Name() string                    { return StepGrow }
func (s *growStep) CanExecute(context.Context) bool { return true }

func (s *growStep) Execute(_ context.Context, _ *pipeline.Control) error {
	s.before = s.c.Grid.Snapshot()
	s.MarkExecuted()
	changes := s.c.Grid.Grow()
	for _, ch := range changes {
		s.c.Events.Publish(events.SlotUpdated{
			Day:    s.c.Run.Day,
			Index:  ch.Index,
			Change: ch.Kind.String(),
			Slot:   ch.Slot,
		})
	}
	s.c.Logger.Debug("grid grown", "changes", len(changes))
	return nil
}

func (s *growStep) Rollback(context.Context) error {
	if err := s.c.Grid.Restore(s.before); err != nil {
		return err
	}
	s.ResetExecuted()
	return nil
}

// detectStep finds the day's patterns, ages them against the run history
// and fills the detection cache.
type detectStep struct {
	pipeline.Tracker
	c       *Context
	history scoring.History
}

func (s *detectStep) Name() string                    { return StepDetect }
func (s *detectStep) CanExecute(context.Context) bool { return true }

func (s *detectStep) Execute(_ context.Context, _ *pipeline.Control) error {
	s.history = s.c.Run.History.Clone()
	s.MarkExecuted()

	matches := s.c.Detector.DetectAll(s.c.Grid)
	tracked := s.c.Run.History.Track(matches, s.c.Calculator.Rules().MaxBroken)
	s.c.Analysis.SetTracked(tracked)
	s.c.Cache.Store(s.c.Analysis.Patterns)

	for _, t := range tracked {
		s.c.Events.Publish(events.PatternDetected{
			Day:       s.c.Run.Day,
			Match:     t.Match,
			Recreated: t.Recreated,
		})
	}
	s.c.Logger.Debug("patterns detected", "matches", len(tracked))
	return nil
}

func (s *detectStep) Rollback(context.Context) error {
	s.c.Run.History = s.history
	s.c.Analysis.SetTracked(nil)
	s.c.Cache.Clear()
	s.ResetExecuted()
	return nil
}

// presentStep hands the detected patterns to the presenter. It only runs
// when there is something to show, changes no state and never fails the day.
func presentStep(c *Context) *pipeline.Func {
	return &pipeline.Func{
		StepName: StepPresent,
		Optional: true,
		When: func(context.Context) bool {
			return c.Cache.Populated() && c.Cache.Len() > 0
		},
		Run: func(ctx context.Context, _ *pipeline.Control) error {
			return c.Presenter.PresentPatterns(ctx, Playback{
				Day:   c.Run.Day,
				Grid:  c.Grid,
				Cache: c.Cache,
			})
		},
	}
}

// scoreStep scores the day and, on the last day of a week, settles the
// weekly goal.
type scoreStep struct {
	pipeline.Tracker
	c    *Context
	prev scoreFields
}

type scoreFields struct {
	money       int
	totalScore  int
	weekScore   int
	weeklyGoal  int
	goalsMet    int
	goalsMissed int
}

func (s *scoreStep) Name() string                    { return StepScore }
func (s *scoreStep) CanExecute(context.Context) bool { return true }

func (s *scoreStep) Execute(_ context.Context, ctl *pipeline.Control) error {
	d := s.c.Run
	specs := append([]scoring.EffectSpec(nil), d.Effects...)
	if src, ok := s.c.Drawer.(EffectSource); ok {
		specs = append(specs, src.Effects()...)
	}
	effects, err := scoring.DecodeEffects(specs)
	if err != nil {
		return fmt.Errorf("daily: decode effects: %w", err)
	}

	s.prev = scoreFields{
		money:       d.Money,
		totalScore:  d.TotalScore,
		weekScore:   d.WeekScore,
		weeklyGoal:  d.WeeklyGoal,
		goalsMet:    d.GoalsMet,
		goalsMissed: d.GoalsMissed,
	}
	s.MarkExecuted()

	a := s.c.Analysis
	a.Passive = s.c.Calculator.PassiveScores(s.c.Grid)
	total := s.c.Calculator.Calculate(a, effects)

	d.TotalScore += total
	d.WeekScore += total
	d.Money += a.Money
	s.c.Events.Publish(events.ScoreCalculated{
		Day:         d.Day,
		Passive:     a.PassiveTotal(),
		Patterns:    a.PatternTotal,
		EffectBonus: a.EffectBonus,
		Total:       total,
		Money:       a.Money,
	})
	s.c.Logger.Debug("day scored", "day", d.Day, "total", total, "money", a.Money)

	if d.DaysPerWeek > 0 && d.DayOfWeek() == d.DaysPerWeek {
		met := d.WeekScore >= d.WeeklyGoal
		if met {
			d.GoalsMet++
		} else {
			d.GoalsMissed++
		}
		evt := events.WeekEnded{
			Week:     d.Week,
			Score:    d.WeekScore,
			Goal:     d.WeeklyGoal,
			Met:      met,
			NextGoal: s.c.Rules.NextGoal(d.WeeklyGoal),
		}
		d.WeeklyGoal = evt.NextGoal
		d.WeekScore = 0
		s.c.Events.Publish(evt)
		s.c.Logger.Info("week ended", "week", evt.Week, "score", evt.Score, "goal", evt.Goal, "met", met)
	}
	return nil
}

func (s *scoreStep) Rollback(context.Context) error {
	d := s.c.Run
	d.Money = s.prev.money
	d.TotalScore = s.prev.totalScore
	d.WeekScore = s.prev.weekScore
	d.WeeklyGoal = s.prev.weeklyGoal
	d.GoalsMet = s.prev.goalsMet
	d.GoalsMissed = s.prev.goalsMissed
	s.c.Analysis.ClearScores()
	s.ResetExecuted()
	return nil
}

// advanceStep moves the calendar to the next day.
type advanceStep struct {
	pipeline.Tracker
	c    *Context
	day  int
	week int
}

func (s *advanceStep) Name() string                    { return StepAdvance }
func (s *advanceStep) CanExecute(context.Context) bool { return true }

func (s *advanceStep) Execute(_ context.Context, _ *pipeline.Control) error {
	d := s.c.Run
	s.day, s.week = d.Day, d.Week
	s.MarkExecuted()

	d.Day++
	if d.DaysPerWeek > 0 && (d.Day-1)%d.DaysPerWeek == 0 {
		d.Week++
	}
	s.c.Events.Publish(events.DayChanged{Day: d.Day, Week: d.Week})
	return nil
}

func (s *advanceStep) Rollback(context.Context) error {
	s.c.Run.Day, s.c.Run.Week = s.day, s.week
	s.ResetExecuted()
	return nil
}

// drawStep refills the hand. It is optional: an empty deck does not fail
// the day.
type drawStep struct {
	c *Context
}

func (s *drawStep) Name() string   { return StepDraw }
func (s *drawStep) Critical() bool { return false }

func (s *drawStep) CanExecute(context.Context) bool {
	return s.want() > 0
}

func (s *drawStep) want() int {
	n := s.c.Rules.DrawPerDay
	if s.c.Rules.HandLimit > 0 {
		n = min(n, s.c.Rules.HandLimit-s.c.Drawer.HandSize())
	}
	return n
}

func (s *drawStep) Execute(_ context.Context, _ *pipeline.Control) error {
	drawn, err := s.c.Drawer.Draw(s.want())
	if errors.Is(err, cards.ErrDeckEmpty) {
		s.c.Logger.Warn("deck exhausted, no cards drawn", "day", s.c.Run.Day)
		return nil
	}
	if err != nil {
		return fmt.Errorf("daily: draw cards: %w", err)
	}
	if snap, ok := s.c.Drawer.(DeckSnapshotter); ok {
		s.c.Run.Deck = snap.State()
	}

	ids := make([]string, len(drawn))
	for i, c := range drawn {
		ids[i] = c.ID
	}
	s.c.Events.Publish(events.CardsDrawn{
		Day:   s.c.Run.Day,
		Cards: ids,
		Hand:  s.c.Drawer.HandSize(),
	})
	return nil
}
