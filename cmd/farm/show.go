package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/platform/tui"
	"github.com/vovakirdan/tui-farm/internal/run"
)

var flagShowPatterns bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the grid and run state",
	Long: `Prints the run's calendar, score, money and hand next to the grid.
With --patterns the patterns currently standing on the grid are highlighted.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&flagShowPatterns, "patterns", false, "Highlight patterns on the current grid")
}

func runShow(cmd *cobra.Command, args []string) error {
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

	var matches []patterns.Match
	if flagShowPatterns {
		reg, err := a.cfg.Registry()
		if err != nil {
			return err
		}
		rt := a.cfg.Runtime()
		matches = patterns.NewDetectorFromRegistry(reg, a.logger).DetectAll(d.Grid(rt.GridW, rt.GridH, a.cfg.Catalog()))
	}
	return printRun(cmd.OutOrStdout(), a, d, matches)
}

// printRun writes the run header, the grid and the hand.
func printRun(out io.Writer, a *app, d *run.Data, matches []patterns.Match) error {
	theme := tui.DefaultTheme()
	rt := a.cfg.Runtime()
	g := d.Grid(rt.GridW, rt.GridH, a.cfg.Catalog())

	fmt.Fprintf(out, "Run %s  day %d (week %d, day %d/%d)\n", d.ID, d.Day, d.Week, d.DayOfWeek(), d.DaysPerWeek)
	fmt.Fprintf(out, "Score %d  week %d/%d  money %d  goals %d met, %d missed\n\n",
		d.TotalScore, d.WeekScore, d.WeeklyGoal, d.Money, d.GoalsMet, d.GoalsMissed)

	hl := tui.NoHighlight
	if len(matches) > 0 {
		hl = tui.HighlightMatches(matches, -1)
	}
	fmt.Fprintln(out, tui.RenderGrid(g, theme, hl))
	fmt.Fprintln(out, tui.Legend(theme))

	if len(matches) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, tui.RenderMatches(matches, theme))
	}

	if len(a.cfg.Cards) > 0 {
		deck, err := cards.NewDeck(a.cfg.Cards, d.Deck)
		if err != nil {
			return err
		}
		hand := deck.Hand()
		names := make([]string, len(hand))
		for i, c := range hand {
			names[i] = c.Name
		}
		fmt.Fprintf(out, "\nHand (%d): %s\n", len(hand), strings.Join(names, ", "))
	}
	return nil
}
