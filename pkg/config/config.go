// Package config merges analysis settings coming from a YAML file,
// environment variables and CLI flags, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "pixprobe.yml"

	envOutputDir       = "PIXPROBE_OUTPUT_DIR"
	envBlockSize       = "PIXPROBE_BLOCK_SIZE"
	envCloneRatio      = "PIXPROBE_CLONE_RATIO"
	envCloneDistance   = "PIXPROBE_CLONE_MIN_DISTANCE"
	envDisabled        = "PIXPROBE_DISABLED_ANALYZERS"
	envExiftoolTimeout = "PIXPROBE_EXIFTOOL_TIMEOUT"
	envELAQuality      = "PIXPROBE_ELA_QUALITY"
)

// Loader merges configuration coming from files, environment variables, and
// CLI flags.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings for an analysis run.
type RuntimeConfig struct {
	OutputDir         string
	BlockSize         int
	CloneRatio        float64
	CloneMinDistance  float64
	DisabledAnalyzers []string
	ExiftoolTimeout   time.Duration
	ELAQuality        int
}

// Overrides captures values coming from env vars or CLI flags. Pointer and
// Set fields distinguish "not provided" from zero values.
type Overrides struct {
	OutputDir           string
	BlockSize           int
	BlockSizeSet        bool
	CloneRatio          float64
	CloneRatioSet       bool
	CloneMinDistance    float64
	CloneMinDistanceSet bool
	DisabledAnalyzers   []string
	ExiftoolTimeout     time.Duration
	ELAQuality          int
	ELAQualitySet       bool
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides
// are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		OutputDir:        "analysis-output",
		BlockSize:        32,
		CloneRatio:       0.7,
		CloneMinDistance: 50,
		ExiftoolTimeout:  30 * time.Second,
		ELAQuality:       90,
	}
}

// Load resolves the final runtime configuration: defaults, then config file,
// then environment, then explicit overrides.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.apply(fileOv)
	} else if l.ConfigPath != "" {
		return cfg, fmt.Errorf("config file not found: %s", l.ConfigPath)
	}

	cfg.apply(overridesFromEnv())
	cfg.apply(override)

	return cfg, cfg.Validate()
}

// Validate rejects settings an analysis run cannot work with.
func (c RuntimeConfig) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if c.BlockSize < 8 || c.BlockSize > 256 {
		return fmt.Errorf("block size must be between 8 and 256 (got %d)", c.BlockSize)
	}
	if c.CloneRatio <= 0 || c.CloneRatio >= 1 {
		return fmt.Errorf("clone ratio must be in (0, 1) (got %g)", c.CloneRatio)
	}
	if c.CloneMinDistance < 0 {
		return fmt.Errorf("clone minimum distance cannot be negative (got %g)", c.CloneMinDistance)
	}
	if c.ELAQuality < 1 || c.ELAQuality > 100 {
		return fmt.Errorf("ELA quality must be between 1 and 100 (got %d)", c.ELAQuality)
	}
	if c.ExiftoolTimeout <= 0 {
		return fmt.Errorf("exiftool timeout must be positive (got %s)", c.ExiftoolTimeout)
	}
	return nil
}

// IsDisabled reports whether the named analyzer is switched off, matching
// case-insensitively.
func (c RuntimeConfig) IsDisabled(name string) bool {
	for _, d := range c.DisabledAnalyzers {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

func (c *RuntimeConfig) apply(src Overrides) {
	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}
	if src.BlockSizeSet {
		c.BlockSize = src.BlockSize
	}
	if src.CloneRatioSet {
		c.CloneRatio = src.CloneRatio
	}
	if src.CloneMinDistanceSet {
		c.CloneMinDistance = src.CloneMinDistance
	}
	if len(src.DisabledAnalyzers) > 0 {
		c.DisabledAnalyzers = cleanList(src.DisabledAnalyzers)
	}
	if src.ExiftoolTimeout > 0 {
		c.ExiftoolTimeout = src.ExiftoolTimeout
	}
	if src.ELAQualitySet {
		c.ELAQuality = src.ELAQuality
	}
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		OutputDir         string   `yaml:"outputDir"`
		BlockSize         *int     `yaml:"blockSize"`
		CloneRatio        *float64 `yaml:"cloneRatio"`
		CloneMinDistance  *float64 `yaml:"cloneMinDistance"`
		DisabledAnalyzers []string `yaml:"disabledAnalyzers"`
		ExiftoolTimeout   string   `yaml:"exiftoolTimeout"`
		ELAQuality        *int     `yaml:"elaQuality"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	over := Overrides{
		OutputDir:         raw.OutputDir,
		DisabledAnalyzers: raw.DisabledAnalyzers,
	}
	if raw.BlockSize != nil {
		over.BlockSize = *raw.BlockSize
		over.BlockSizeSet = true
	}
	if raw.CloneRatio != nil {
		over.CloneRatio = *raw.CloneRatio
		over.CloneRatioSet = true
	}
	if raw.CloneMinDistance != nil {
		over.CloneMinDistance = *raw.CloneMinDistance
		over.CloneMinDistanceSet = true
	}
	if raw.ExiftoolTimeout != "" {
		d, err := time.ParseDuration(raw.ExiftoolTimeout)
		if err != nil {
			return Overrides{}, fmt.Errorf("invalid exiftoolTimeout in %s: %w", path, err)
		}
		over.ExiftoolTimeout = d
	}
	if raw.ELAQuality != nil {
		over.ELAQuality = *raw.ELAQuality
		over.ELAQualitySet = true
	}

	return over, nil
}

func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envOutputDir); value != "" {
		ov.OutputDir = value
	}
	if value := os.Getenv(envBlockSize); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.BlockSize = parsed
			ov.BlockSizeSet = true
		}
	}
	if value := os.Getenv(envCloneRatio); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			ov.CloneRatio = parsed
			ov.CloneRatioSet = true
		}
	}
	if value := os.Getenv(envCloneDistance); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			ov.CloneMinDistance = parsed
			ov.CloneMinDistanceSet = true
		}
	}
	if value := os.Getenv(envDisabled); value != "" {
		ov.DisabledAnalyzers = ParseList(value)
	}
	if value := os.Getenv(envExiftoolTimeout); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			ov.ExiftoolTimeout = parsed
		}
	}
	if value := os.Getenv(envELAQuality); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.ELAQuality = parsed
			ov.ELAQualitySet = true
		}
	}

	return ov
}

// ParseList turns comma or newline separated input into individual entries.
func ParseList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	return cleanList(parts)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
