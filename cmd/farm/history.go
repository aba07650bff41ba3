package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-farm/internal/platform/tui"
	"github.com/vovakirdan/tui-farm/internal/run"
)

var (
	flagHistoryDays int
	flagHistoryTUI  bool
	flagHistoryRm   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs and their resolved days",
	Long: `Lists stored runs, then the statistics and most recent days of the
selected run (--run, default the latest).

Examples:
  farm history
  farm history --days 30
  farm history --tui
  farm history --run <id> --delete`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryDays, "days", 10, "Number of days to list")
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "Browse the history interactively")
	historyCmd.Flags().BoolVar(&flagHistoryRm, "delete", false, "Delete the run given by --run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	out := cmd.OutOrStdout()

	if flagHistoryRm {
		if flagRun == "" {
			return errors.New("--delete needs an explicit --run")
		}
		if err := a.store.DeleteRun(ctx, flagRun); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted run %s\n", flagRun)
		return nil
	}

	if flagHistoryTUI {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
			height = h
		}
		return tui.RunHistory(ctx, a.store, width, height)
	}

	runs, err := a.store.ListRuns(ctx, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs yet.")
		fmt.Fprintln(out, "Run 'farm new' to start one.")
		return nil
	}

	fmt.Fprintln(out, "Runs:")
	fmt.Fprintf(out, "  %-36s  %5s  %7s  %5s  %5s  %s\n", "ID", "Day", "Score", "Money", "Goals", "Updated")
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %5d  %7d  %5d  %2d/%-2d  %s\n",
			r.ID, r.Day, r.TotalScore, r.Money, r.GoalsMet, r.GoalsMet+r.GoalsMissed,
			r.UpdatedAt.Local().Format("Jan 02 15:04"))
	}

	id := flagRun
	if id == "" {
		id = runs[0].ID
	}
	stats, err := a.store.RunStats(ctx, id)
	if err != nil {
		return err
	}
	days, err := a.store.Days(ctx, id, flagHistoryDays)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nRun %s: %d days resolved, %d aborted, best day %d, total %d\n",
		id, stats.Days, stats.Aborted, stats.BestDay, stats.Total)
	printDays(out, days)
	return nil
}

func printDays(out io.Writer, days []run.DayRecord) {
	if len(days) == 0 {
		return
	}
	fmt.Fprintf(out, "  %4s  %4s  %7s  %8s  %5s  %6s  %5s  %s\n",
		"Day", "Week", "Passive", "Patterns", "Bonus", "Total", "Money", "Status")
	for _, d := range days {
		status := "ok"
		if d.Aborted {
			status = "aborted: " + d.Reason
		}
		fmt.Fprintf(out, "  %4d  %4d  %7d  %8d  %5d  %6d  %5d  %s\n",
			d.Day, d.Week, d.Passive, d.PatternTotal, d.EffectBonus, d.Total, d.Money, status)
	}
}
