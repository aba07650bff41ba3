package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/platform/tui"
	"github.com/vovakirdan/tui-farm/internal/random"
	"github.com/vovakirdan/tui-farm/internal/unlock"
)

var (
	flagUnlockWidth  int
	flagUnlockHeight int
	flagUnlockCount  int
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Preview the unlock layout for a seed",
	Long: `Generates the starting unlock layout for the given seed and grid
without creating a run. The same seed always yields the same layout.

Examples:
  farm unlock --seed 7
  farm unlock --seed 7 --width 7 --height 7 --count 16`,
	Args: cobra.NoArgs,
	RunE: runUnlock,
}

func init() {
	unlockCmd.Flags().IntVar(&flagUnlockWidth, "width", 0, "Grid width (default from config)")
	unlockCmd.Flags().IntVar(&flagUnlockHeight, "height", 0, "Grid height (default from config)")
	unlockCmd.Flags().IntVar(&flagUnlockCount, "count", 0, "Slots to unlock (default from config)")
}

func runUnlock(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	rt := cfg.Runtime()
	if flagUnlockWidth > 0 {
		rt.GridW = flagUnlockWidth
	}
	if flagUnlockHeight > 0 {
		rt.GridH = flagUnlockHeight
	}
	if flagUnlockCount > 0 {
		rt.UnlockCount = flagUnlockCount
	}
	if rt.Slots() == 0 {
		return fmt.Errorf("invalid grid %dx%d", rt.GridW, rt.GridH)
	}

	seed := cfg.Grid.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	gen, err := cfg.Generator()
	if err != nil {
		return err
	}
	st := gen.Generate(rt.GridW, rt.GridH, rt.UnlockCount, seed)

	grid := farm.NewGrid(rt.GridW, rt.GridH, cfg.Catalog())
	grid.ApplyUnlock(st.Coords)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seed %d: %s, %d of %d slots (algorithm v%d)\n\n",
		seed, st.Shape, len(st.Coords), rt.GridW*rt.GridH, unlock.AlgorithmVersion)
	fmt.Fprintln(out, tui.RenderGrid(grid, tui.DefaultTheme(), tui.NoHighlight))
	return nil
}
