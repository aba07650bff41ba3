package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-farm/internal/daily"
	"github.com/vovakirdan/tui-farm/internal/events"
	"github.com/vovakirdan/tui-farm/internal/run"
)

var (
	flagResolveDays   int
	flagResolveDryRun bool
	flagResolveEvents bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the current day",
	Long: `Runs the day pipeline: crops grow, patterns are detected and scored,
the weekly goal is checked on the last day of a week, the calendar advances
and new cards are drawn. A failed day is rolled back and recorded as aborted.

Examples:
  farm resolve
  farm resolve --days 7
  farm resolve --dry-run --events`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().IntVarP(&flagResolveDays, "days", "n", 1, "Number of days to resolve")
	resolveCmd.Flags().BoolVar(&flagResolveDryRun, "dry-run", false, "Resolve without saving the run or writing the journal")
	resolveCmd.Flags().BoolVar(&flagResolveEvents, "events", false, "Print every event as it is delivered")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if flagResolveDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	d, err := a.resume(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	opts := engineOptions{}
	var sinks []events.Sink
	if flagResolveDryRun {
		mem := run.NewMemoryStore()
		if err := mem.Save(ctx, d); err != nil {
			return err
		}
		opts.store = mem
	} else if j, closeJournal := a.openJournal(d.ID); j != nil {
		defer closeJournal()
		sinks = append(sinks, j)
	}
	if flagResolveEvents {
		out = &syncWriter{w: out}
		bus := events.NewBus()
		stop := printEvents(out, bus)
		defer stop()
		sinks = append(sinks, bus)
	}
	opts.sink = events.Multi(sinks...)

	engine, err := a.newEngine(d, opts)
	if err != nil {
		return err
	}
	return resolveDays(ctx, out, engine, flagResolveDays)
}

func resolveDays(ctx context.Context, out io.Writer, engine *daily.Engine, days int) error {
	for i := 0; i < days; i++ {
		rep, err := engine.ResolveDay(ctx)
		if err != nil {
			if len(rep.Pipeline.RolledBack) > 0 {
				fmt.Fprintf(out, "Day %d aborted, rolled back: %s\n", rep.Day, strings.Join(rep.Pipeline.RolledBack, ", "))
			}
			return err
		}
		printReport(out, rep, engine.Data())
	}
	return nil
}

func printReport(out io.Writer, rep daily.DayReport, d *run.Data) {
	a := rep.Analysis
	fmt.Fprintf(out, "Day %d: +%d (passive %d, patterns %d, bonus %d), money +%d, %d patterns\n",
		rep.Day, rep.Total, a.PassiveTotal(), a.PatternTotal, a.EffectBonus, rep.MoneyDelta, rep.Matches)
	for _, p := range a.Scores {
		fmt.Fprintf(out, "  %-14s %4d  day %d  %s\n", p.PatternID, p.Final, p.DaysActive, p.Decay)
	}
	if rep.WeekEnded {
		fmt.Fprintf(out, "Week %d ended: goals met %d, missed %d, next goal %d\n",
			rep.Week, d.GoalsMet, d.GoalsMissed, d.WeeklyGoal)
	}
	for _, err := range rep.Pipeline.Errors {
		fmt.Fprintf(out, "  warning: %v\n", err)
	}
}

// printEvents prints bus events until the returned stop func is called.
// stop drains what is still buffered before returning.
func printEvents(out io.Writer, bus *events.Bus) (stop func()) {
	sub := bus.Subscribe(events.DefaultBufferSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case evt := <-sub.Events():
				fmt.Fprintf(out, "  event %s %+v\n", evt.Kind(), evt)
			case <-sub.Done():
				for {
					select {
					case evt := <-sub.Events():
						fmt.Fprintf(out, "  event %s %+v\n", evt.Kind(), evt)
					default:
						return
					}
				}
			}
		}
	}()
	return func() {
		bus.Close()
		<-done
	}
}

// syncWriter serializes writes from the event printer and the command.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
