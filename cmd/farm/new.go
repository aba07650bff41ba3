package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new run",
	Long: `Creates a run: derives the unlock and deck seeds from the run seed,
generates the starting unlock layout and deals the starting hand.

Examples:
  farm new
  farm new --seed 42 --difficulty easy`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	d, err := a.manager.NewRun(ctx, a.cfg.Grid.Seed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s created (seed %d)\n", d.ID, d.Seeds.Run)
	fmt.Fprintf(out, "Unlock layout: %s, %d slots\n\n", d.Unlock.Shape, len(d.Unlock.Coords))
	return printRun(out, a, d, nil)
}
