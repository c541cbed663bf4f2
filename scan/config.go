package scan

import (
	"fmt"

	"github.com/tnicklin/keystonescan/keystone"
)

// Run sources for best and alternate runs.
const (
	RunSourceRaiderIO = "raiderio"
	RunSourceBlizzard = "blizzard"
)

// Config holds scan configuration.
type Config struct {
	InputDir        string `yaml:"input_dir"`
	OutputDir       string `yaml:"output_dir"`
	MaxConcurrent   int    `yaml:"max_concurrent"`
	ExcludeDungeons []int  `yaml:"exclude_dungeons"`
	RunSource       string `yaml:"run_source"`
	// WeeklyCutoff drops weekly runs completed before the last weekly reset.
	WeeklyCutoff *bool `yaml:"weekly_cutoff"`
}

// Defaults applies default values to the config.
func (c *Config) Defaults() {
	if c.InputDir == "" {
		c.InputDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 1
	}
	if c.ExcludeDungeons == nil {
		c.ExcludeDungeons = append([]int(nil), keystone.DefaultExclusions...)
	}
	if c.RunSource == "" {
		c.RunSource = RunSourceRaiderIO
	}
	if c.WeeklyCutoff == nil {
		on := true
		c.WeeklyCutoff = &on
	}
}

// Validate reports configuration errors as keystone.ErrConfig.
func (c Config) Validate() error {
	switch c.RunSource {
	case RunSourceRaiderIO, RunSourceBlizzard:
	default:
		return fmt.Errorf("%w: unknown run_source %q", keystone.ErrConfig, c.RunSource)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max_concurrent must be at least 1", keystone.ErrConfig)
	}
	return nil
}
