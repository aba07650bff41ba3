package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/scoring"
	"github.com/vovakirdan/tui-farm/internal/unlock"
)

//go:embed defaults/farm.yaml
var defaultFarmYAML []byte

//go:embed defaults/farm.schema.json
var farmSchemaJSON []byte

// DefaultFarmConfig returns the hardcoded farm configuration. It matches
// the embedded defaults/farm.yaml.
func DefaultFarmConfig() FarmConfig {
	rt := core.DefaultConfig()
	return FarmConfig{
		Grid: GridConfig{
			Width:       rt.GridW,
			Height:      rt.GridH,
			UnlockCount: rt.UnlockCount,
			Seed:        rt.Seed,
		},
		Unlock:  UnlockConfig{Weights: unlock.DefaultWeights()},
		Crops:   DefaultCrops(),
		Shapes:  patterns.DefaultShapes(),
		Scoring: scoring.DefaultRules(),
		Run:     run.DefaultRules(),
		Cards:   cards.DefaultCatalog(),
		Storage: StorageConfig{
			DB:         "~/.farm/farm.db",
			JournalDir: "~/.farm/journal",
		},
		Viewer: ViewerConfig{
			FrameMS:    120,
			HoldFrames: 12,
		},
	}
}

// DefaultCrops returns the built-in crops.
func DefaultCrops() []farm.Crop {
	return []farm.Crop{
		{ID: "wheat", Name: "Wheat", GrowthDays: 2, PassiveScore: 2, MatureMultiplier: 1.5, WitherAfterDryDays: 3, SellPrice: 4},
		{ID: "carrot", Name: "Carrot", GrowthDays: 3, PassiveScore: 3, MatureMultiplier: 1.5, WitherAfterDryDays: 2, SellPrice: 7},
		{ID: "pumpkin", Name: "Pumpkin", GrowthDays: 5, PassiveScore: 4, MatureMultiplier: 2, WitherAfterDryDays: 2, SellPrice: 15},
		{ID: "sunflower", Name: "Sunflower", GrowthDays: 4, PassiveScore: 1, MatureMultiplier: 3, WitherAfterDryDays: 4, SellPrice: 6},
	}
}
