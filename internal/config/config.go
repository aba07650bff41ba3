// Package config provides YAML-based rules loading for the farm: grid size,
// unlock weights, crops, pattern shapes, scoring, calendar and cards.
package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-farm/internal/cards"
	"github.com/vovakirdan/tui-farm/internal/core"
	"github.com/vovakirdan/tui-farm/internal/farm"
	"github.com/vovakirdan/tui-farm/internal/patterns"
	"github.com/vovakirdan/tui-farm/internal/run"
	"github.com/vovakirdan/tui-farm/internal/scoring"
	"github.com/vovakirdan/tui-farm/internal/unlock"
)

// FarmConfig contains all configuration of a farm run.
type FarmConfig struct {
	Grid    GridConfig       `yaml:"grid" json:"grid"`
	Unlock  UnlockConfig     `yaml:"unlock" json:"unlock"`
	Crops   []farm.Crop      `yaml:"crops" json:"crops"`
	Shapes  []patterns.Shape `yaml:"shapes" json:"shapes"`
	Scoring scoring.Rules    `yaml:"scoring" json:"scoring"`
	Run     run.Rules        `yaml:"run" json:"run"`
	Cards   []cards.Card     `yaml:"cards" json:"cards"`
	Storage StorageConfig    `yaml:"storage" json:"storage"`
	Viewer  ViewerConfig     `yaml:"viewer" json:"viewer"`
}

// GridConfig defines the board and its unlock target.
type GridConfig struct {
	Width       int   `yaml:"width" json:"width"`
	Height      int   `yaml:"height" json:"height"`
	UnlockCount int   `yaml:"unlock_count" json:"unlock_count"`
	Seed        int64 `yaml:"seed" json:"seed"` // 0 = random per run
}

// UnlockConfig defines the weighted shapes of the starting layout.
type UnlockConfig struct {
	Weights map[string]int `yaml:"weights" json:"weights"`
}

// StorageConfig defines where runs and journals are written.
type StorageConfig struct {
	DB         string `yaml:"db" json:"db"`
	JournalDir string `yaml:"journal_dir" json:"journal_dir"` // empty disables the journal
}

// ViewerConfig defines the playback viewer timing.
type ViewerConfig struct {
	FrameMS    int `yaml:"frame_ms" json:"frame_ms"`       // Delay between highlighted slots
	HoldFrames int `yaml:"hold_frames" json:"hold_frames"` // Frames to keep the summary on screen
}

// Runtime returns the structural parameters used by the unlock generator
// and the grid.
func (c FarmConfig) Runtime() core.RuntimeConfig {
	return core.RuntimeConfig{
		GridW:       c.Grid.Width,
		GridH:       c.Grid.Height,
		UnlockCount: c.Grid.UnlockCount,
		Seed:        c.Grid.Seed,
	}
}

// Catalog builds the crop catalog.
func (c FarmConfig) Catalog() *farm.Catalog {
	return farm.NewCatalog(c.Crops)
}

// Registry builds the pattern registry from the configured shapes.
func (c FarmConfig) Registry() (*patterns.Registry, error) {
	return patterns.NewRegistryFromShapes(c.Shapes)
}

// Generator builds the weighted unlock generator.
func (c FarmConfig) Generator() (*unlock.Generator, error) {
	return unlock.NewWeightedGenerator(c.Unlock.Weights, nil)
}

// Validate checks semantics the schema cannot express.
func (c FarmConfig) Validate() error {
	var errs []error
	if c.Grid.Width < 1 || c.Grid.Height < 1 {
		errs = append(errs, fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Width, c.Grid.Height))
	}
	if c.Grid.UnlockCount < 0 {
		errs = append(errs, fmt.Errorf("unlock_count must be >= 0, got %d", c.Grid.UnlockCount))
	}
	if _, err := unlock.NewWeightedGenerator(c.Unlock.Weights, nil); err != nil {
		errs = append(errs, err)
	}

	crops := make(map[farm.CropID]bool, len(c.Crops))
	for _, crop := range c.Crops {
		if crop.ID == "" {
			errs = append(errs, errors.New("crop without id"))
			continue
		}
		if crops[crop.ID] {
			errs = append(errs, fmt.Errorf("duplicate crop %q", crop.ID))
		}
		crops[crop.ID] = true
		if crop.GrowthDays < 1 {
			errs = append(errs, fmt.Errorf("crop %s: growth_days must be >= 1", crop.ID))
		}
	}
	if len(crops) == 0 {
		errs = append(errs, errors.New("at least one crop is required"))
	}

	shapes := make(map[string]bool, len(c.Shapes))
	for _, s := range c.Shapes {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
		if shapes[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate shape %q", s.ID))
		}
		shapes[s.ID] = true
	}

	if err := c.Scoring.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Run.Validate(); err != nil {
		errs = append(errs, err)
	}

	cardIDs := make(map[string]bool, len(c.Cards))
	for _, card := range c.Cards {
		if cardIDs[card.ID] {
			errs = append(errs, fmt.Errorf("duplicate card %q", card.ID))
		}
		cardIDs[card.ID] = true
		if _, err := card.Effect.Effect(); err != nil {
			errs = append(errs, fmt.Errorf("card %s: %w", card.ID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
