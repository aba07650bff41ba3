package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/run"
)

var plantCmd = &cobra.Command{
	Use:   "plant <slot> <crop>",
	Short: "Plant a crop on an unlocked, empty slot",
	Long: `Slots are given as x,y coordinates or as a row-major index.

Examples:
  farm plant 2,1 wheat
  farm plant 7 carrot`,
	Args: cobra.ExactArgs(2),
	RunE: runPlant,
}

var waterCmd = &cobra.Command{
	Use:   "water [slot...]",
	Short: "Water crops for the coming night",
	Long: `Waters the given slots, or every living crop when no slot is given.
Only watered crops grow overnight.`,
	RunE: runWater,
}

var harvestCmd = &cobra.Command{
	Use:   "harvest <slot>",
	Short: "Harvest a mature crop and sell it",
	Args:  cobra.ExactArgs(1),
	RunE:  runHarvest,
}

// editGrid loads the run, applies fn to its grid and saves the result.
func editGrid(cmd *cobra.Command, fn func(a *app, d *run.Data, g *farm.Grid) error) error {
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
	rt := a.cfg.Runtime()
	g := d.Grid(rt.GridW, rt.GridH, a.cfg.Catalog())

	if err := fn(a, d, g); err != nil {
		return err
	}
	d.Slots = g.Snapshot()
	return a.store.Save(ctx, d)
}

func runPlant(cmd *cobra.Command, args []string) error {
	return editGrid(cmd, func(a *app, d *run.Data, g *farm.Grid) error {
		slot, err := parseSlot(args[0], g.Width(), g.Height())
		if err != nil {
			return err
		}
		crop := farm.CropID(args[1])
		if err := g.Plant(slot, crop); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Planted %s at %s\n", crop, g.Coord(slot))
		return nil
	})
}

func runWater(cmd *cobra.Command, args []string) error {
	return editGrid(cmd, func(a *app, d *run.Data, g *farm.Grid) error {
		if len(args) == 0 {
			n := g.WaterAll()
			fmt.Fprintf(cmd.OutOrStdout(), "Watered %d crops\n", n)
			return nil
		}
		for _, arg := range args {
			slot, err := parseSlot(arg, g.Width(), g.Height())
			if err != nil {
				return err
			}
			if err := g.Water(slot); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watered %d crops\n", len(args))
		return nil
	})
}

func runHarvest(cmd *cobra.Command, args []string) error {
	return editGrid(cmd, func(a *app, d *run.Data, g *farm.Grid) error {
		slot, err := parseSlot(args[0], g.Width(), g.Height())
		if err != nil {
			return err
		}
		id, err := g.Harvest(slot)
		if err != nil {
			return err
		}
		crop, _ := g.Catalog().Get(id)
		d.Money += crop.SellPrice
		fmt.Fprintf(cmd.OutOrStdout(), "Harvested %s for %d (money %d)\n", id, crop.SellPrice, d.Money)
		return nil
	})
}
