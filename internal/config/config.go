// Package config handles adjtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tool settings.
type Config struct {
	Adjacency AdjacencyConfig `yaml:"adjacency"`
	Batch     BatchConfig     `yaml:"batch"`
	Data      DataConfig      `yaml:"data"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AdjacencyConfig holds adjacency build settings.
type AdjacencyConfig struct {
	IndexWidth  int  `yaml:"index_width"`  // 16 or 32 bit output indices
	Strict      bool `yaml:"strict"`       // treat open (non-watertight) meshes as failures
	CheckBounds bool `yaml:"check_bounds"` // validate indices against the vertex count
}

// BatchConfig holds settings for scanning many models.
type BatchConfig struct {
	Workers int           `yaml:"workers"` // concurrent meshes, 0 = number of CPUs
	Pattern string        `yaml:"pattern"` // default archive filter
	Timeout time.Duration `yaml:"timeout"` // 0 = no limit
}

// DataConfig holds model data locations.
type DataConfig struct {
	GRFPaths []string `yaml:"grf_paths"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Adjacency: AdjacencyConfig{
			IndexWidth:  16,
			Strict:      false,
			CheckBounds: true,
		},
		Batch: BatchConfig{
			Workers: 0,
			Pattern: "*.rsm",
			Timeout: 5 * time.Minute,
		},
		Data: DataConfig{
			GRFPaths: []string{"data.grf"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Adjacency.IndexWidth != 16 && c.Adjacency.IndexWidth != 32 {
		return fmt.Errorf("%w: adjacency.index_width must be 16 or 32, got %d", ErrInvalidConfig, c.Adjacency.IndexWidth)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch.workers must not be negative, got %d", ErrInvalidConfig, c.Batch.Workers)
	}
	if c.Batch.Timeout < 0 {
		return fmt.Errorf("%w: batch.timeout must not be negative, got %s", ErrInvalidConfig, c.Batch.Timeout)
	}
	return nil
}
