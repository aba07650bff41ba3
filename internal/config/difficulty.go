package config

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-farm/internal/core"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset validates a preset name. The empty string is normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}

// ApplyPreset adjusts goals, starting resources and decay for a preset.
// Normal leaves the loaded rules untouched.
func ApplyPreset(cfg *FarmConfig, preset DifficultyPreset) {
	slots := cfg.Grid.Width * cfg.Grid.Height

	switch preset {
	case DifficultyEasy:
		cfg.Run.WeeklyGoal = scaleInt(cfg.Run.WeeklyGoal, 0.7)
		cfg.Run.GoalGrowth = math.Max(1, cfg.Run.GoalGrowth-0.1)
		cfg.Run.StartingMoney += 10
		cfg.Run.HandLimit++
		cfg.Grid.UnlockCount = core.Clamp(cfg.Grid.UnlockCount+3, 0, slots)
	case DifficultyHard:
		cfg.Run.WeeklyGoal = scaleInt(cfg.Run.WeeklyGoal, 1.3)
		cfg.Run.GoalGrowth += 0.1
		cfg.Run.StartingMoney = cfg.Run.StartingMoney / 2
		cfg.Grid.UnlockCount = core.Clamp(cfg.Grid.UnlockCount-2, 1, slots)
		// Patterns wear out a day earlier.
		if cfg.Scoring.PartialAfterDays > 1 {
			cfg.Scoring.PartialAfterDays--
			cfg.Scoring.SevereAfterDays--
		}
	}
}

func scaleInt(v int, f float64) int {
	return int(math.Round(float64(v) * f))
}
