package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Source names where a configuration came from.
const (
	SourceEmbedded = "embedded"
	SourceDefaults = "defaults"
)

// LoadFarm loads the farm rules.
// Search order: customPath -> ~/.farm/configs/farm.yaml -> ./configs/farm.yaml -> embedded default -> hardcoded default.
// Files are layered on top of the hardcoded defaults, so partial files are
// fine. A custom path that cannot be read or parsed is an error; a broken
// file further down the search order is logged and skipped. The returned
// source is the path used, SourceEmbedded or SourceDefaults.
func LoadFarm(customPath string, logger *log.Logger) (FarmConfig, string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return FarmConfig{}, "", fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return FarmConfig{}, "", fmt.Errorf("config: %s: %w", customPath, err)
		}
		return cfg, customPath, nil
	}

	candidates := []string{userConfigPath("farm.yaml"), filepath.Join("configs", "farm.yaml")}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := Parse(data)
		if err != nil {
			logger.Warn("ignoring invalid config", "path", path, "error", err)
			continue
		}
		return cfg, path, nil
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultFarmYAML)
	if err != nil {
		logger.Warn("embedded config is invalid, using hardcoded defaults", "error", err)
		return DefaultFarmConfig(), SourceDefaults, nil
	}
	return cfg, SourceEmbedded, nil
}

// Parse validates data against the rules schema and decodes it over the
// hardcoded defaults.
func Parse(data []byte) (FarmConfig, error) {
	if err := validateSchema(data); err != nil {
		return FarmConfig{}, err
	}
	cfg := DefaultFarmConfig()
	// Lists and the weight map replace the defaults instead of merging.
	var probe struct {
		Unlock struct {
			Weights yaml.Node `yaml:"weights"`
		} `yaml:"unlock"`
		Crops  []yaml.Node `yaml:"crops"`
		Shapes []yaml.Node `yaml:"shapes"`
		Cards  []yaml.Node `yaml:"cards"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return FarmConfig{}, fmt.Errorf("failed to parse: %w", err)
	}
	if probe.Unlock.Weights.Kind != 0 {
		cfg.Unlock.Weights = nil
	}
	if probe.Crops != nil {
		cfg.Crops = nil
	}
	if probe.Shapes != nil {
		cfg.Shapes = nil
	}
	if probe.Cards != nil {
		cfg.Cards = nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FarmConfig{}, fmt.Errorf("failed to parse: %w", err)
	}
	return cfg, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("farm.schema.json", bytes.NewReader(farmSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("farm.schema.json")
	})
	return schema, schemaErr
}

// validateSchema checks the YAML document structurally. YAML is converted
// to JSON first so numbers reach the validator in JSON form.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}
	if doc == nil {
		// An empty file keeps every default.
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to convert to json: %w", err)
	}

	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// EnvOverrides are the environment variables that take precedence over the
// rules file. Unset variables leave the file value alone.
type EnvOverrides struct {
	GridWidth   *int    `env:"FARM_GRID_WIDTH"`
	GridHeight  *int    `env:"FARM_GRID_HEIGHT"`
	UnlockCount *int    `env:"FARM_UNLOCK_COUNT"`
	Seed        *int64  `env:"FARM_SEED"`
	DB          *string `env:"FARM_DB"`
	JournalDir  *string `env:"FARM_JOURNAL_DIR"`
}

// ApplyEnv reads EnvOverrides from the environment into cfg.
func ApplyEnv(cfg *FarmConfig) error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	o.Apply(cfg)
	return nil
}

// Apply copies the set overrides into cfg.
func (o EnvOverrides) Apply(cfg *FarmConfig) {
	if o.GridWidth != nil {
		cfg.Grid.Width = *o.GridWidth
	}
	if o.GridHeight != nil {
		cfg.Grid.Height = *o.GridHeight
	}
	if o.UnlockCount != nil {
		cfg.Grid.UnlockCount = *o.UnlockCount
	}
	if o.Seed != nil {
		cfg.Grid.Seed = *o.Seed
	}
	if o.DB != nil {
		cfg.Storage.DB = *o.DB
	}
	if o.JournalDir != nil {
		cfg.Storage.JournalDir = *o.JournalDir
	}
}

// Load runs the whole chain: search order, environment overrides and
// semantic validation.
func Load(customPath string, logger *log.Logger) (FarmConfig, string, error) {
	cfg, source, err := LoadFarm(customPath, logger)
	if err != nil {
		return FarmConfig{}, "", err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return FarmConfig{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return FarmConfig{}, "", err
	}
	return cfg, source, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".farm", "configs", filename)
}
