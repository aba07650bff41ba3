package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-farm/internal/platform/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Resolve the day with an animated pattern playback",
	Long: `Resolves the current day like 'farm resolve', but after detection the
patterns are played back slot by slot in the terminal.

Controls:
  space   - Pause
  right   - Next slot
  enter   - Skip to summary
  +/-     - Faster / slower
  q       - Close the playback (the day still resolves)
  ctrl+c  - Interrupt the playback`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
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

	sink, closeJournal := a.openJournal(d.ID)
	defer closeJournal()

	opts := engineOptions{sink: sink}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts.presenter = tui.NewPresenter(tui.PresenterConfig{
			Frame:      time.Duration(a.cfg.Viewer.FrameMS) * time.Millisecond,
			HoldFrames: a.cfg.Viewer.HoldFrames,
			Logger:     a.logger,
			AltScreen:  true,
		})
	} else {
		a.logger.Warn("stdout is not a terminal, resolving without playback")
	}

	engine, err := a.newEngine(d, opts)
	if err != nil {
		return err
	}
	return resolveDays(ctx, cmd.OutOrStdout(), engine, 1)
}
