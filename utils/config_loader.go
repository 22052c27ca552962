package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ─── Gap configs ────────────────────────────────────────────────────────

// SigmaConfig holds the beam-size multipliers for each collimation stage.
// Open is applied to the axis a primary or secondary collimator does not close.
type SigmaConfig struct {
	Primary   float64 `yaml:"primary" toml:"primary"`
	Secondary float64 `yaml:"secondary" toml:"secondary"`
	Tertiary  float64 `yaml:"tertiary" toml:"tertiary"`
	Open      float64 `yaml:"open" toml:"open"`
}

// MaterialConfig names the jaw material for each collimation stage.
type MaterialConfig struct {
	Primary   string `yaml:"primary" toml:"primary"`
	Secondary string `yaml:"secondary" toml:"secondary"`
	Tertiary  string `yaml:"tertiary" toml:"tertiary"`
}

type InputConfig struct {
	OpticsPath  string `yaml:"optics_path" toml:"optics_path"`
	ElementType string `yaml:"element_type" toml:"element_type"`
}

type OutputConfig struct {
	Path   string `yaml:"path" toml:"path"`
	Format string `yaml:"format" toml:"format"` // "dat" or "xlsx"
}

// GapConfig is the top-level structure for a gap configuration file.
type GapConfig struct {
	Sigmas    SigmaConfig    `yaml:"sigmas" toml:"sigmas"`
	Materials MaterialConfig `yaml:"materials" toml:"materials"`
	Input     InputConfig    `yaml:"input" toml:"input"`
	Output    OutputConfig   `yaml:"output" toml:"output"`
}

// Defaults reproduce the behaviour of running with no configuration.
const (
	DefaultOpticsPath  = "../madx/ring.tfs"
	DefaultElementType = "RCOLLIMATOR"
	DefaultOutputPath  = "collimatorSettings.dat"
	DefaultFormat      = "dat"
)

// DefaultGapConfig returns the built-in settings.
func DefaultGapConfig() *GapConfig {
	return &GapConfig{
		Sigmas: SigmaConfig{
			Primary:   6,
			Secondary: 7,
			Tertiary:  10,
			Open:      1000,
		},
		Materials: MaterialConfig{
			Primary:   "carbon",
			Secondary: "copper",
			Tertiary:  "tungsten",
		},
		Input: InputConfig{
			OpticsPath:  DefaultOpticsPath,
			ElementType: DefaultElementType,
		},
		Output: OutputConfig{
			Path:   DefaultOutputPath,
			Format: DefaultFormat,
		},
	}
}

// Validate rejects configurations that cannot produce meaningful gaps.
func (c *GapConfig) Validate() error {
	for name, v := range map[string]float64{
		"primary":   c.Sigmas.Primary,
		"secondary": c.Sigmas.Secondary,
		"tertiary":  c.Sigmas.Tertiary,
		"open":      c.Sigmas.Open,
	} {
		if v <= 0 {
			return fmt.Errorf("sigmas.%s must be positive, got %g", name, v)
		}
	}
	for name, v := range map[string]string{
		"primary":   c.Materials.Primary,
		"secondary": c.Materials.Secondary,
		"tertiary":  c.Materials.Tertiary,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("materials.%s must not be empty", name)
		}
	}
	if c.Input.OpticsPath == "" {
		return fmt.Errorf("input.optics_path must not be empty")
	}
	if c.Input.ElementType == "" {
		return fmt.Errorf("input.element_type must not be empty")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must not be empty")
	}
	return nil
}

// ─── Loader ─────────────────────────────────────────────────────────────

// LoadGapConfig reads a YAML or TOML file over the defaults. The format is
// chosen by extension; anything other than .toml is treated as YAML.
func LoadGapConfig(path string) (*GapConfig, error) {
	cfg := DefaultGapConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gap config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse gap config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse gap config: %w", err)
		}
	}
	return cfg, nil
}
