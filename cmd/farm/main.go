// farm is a terminal farming game resolved one day at a time.
//
// Usage:
//
//	farm new                 - Start a new run
//	farm unlock              - Preview the starting unlock layout for a seed
//	farm plant <slot> <crop> - Plant a crop
//	farm water [slot...]     - Water crops (all when no slot is given)
//	farm resolve             - Resolve the current day
//	farm show                - Show the grid and run state
//	farm history             - List runs and resolved days
//	farm view                - Resolve the day with pattern playback
//
// Global flags:
//
//	--config <path> - Rules file (default search: ~/.farm/configs, ./configs)
//	--db <path>     - Run database (default: ~/.farm/farm.db)
//	--seed <value>  - Seed for new runs and unlock previews
//	--journal <dir> - Event journal directory
//	--run <id>      - Run to act on (default: most recent)
//	--verbose       - Debug logging
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

var (
	// Global flags
	flagConfig     string
	flagDBPath     string
	flagSeed       int64
	flagJournal    string
	flagRun        string
	flagDifficulty string
	flagVerbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "farm",
	Short: "TUI Farm - grow crops, build patterns, beat the weekly goal",
	Long: `TUI Farm is a terminal farming game. Plant crops on the unlocked
slots of your field, water them and resolve the day: crops grow, patterns of
matching crops are detected and scored, and every seventh day your weekly
score is checked against the goal.

Examples:
  farm new --seed 42
  farm plant 2,1 wheat
  farm water
  farm resolve
  farm view
  farm history`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a custom farm.yaml")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the run database (default from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Run seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagJournal, "journal", "", "Event journal directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagRun, "run", "", "Run ID (default: most recent run)")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(plantCmd)
	rootCmd.AddCommand(waterCmd)
	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(viewCmd)
}
