package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	SceneDir  string `json:"scene_dir" yaml:"scene_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Buffer
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	Depth  int `json:"depth" yaml:"depth"`

	// Image output
	Format  string `json:"format" yaml:"format"`
	Scale   int    `json:"scale" yaml:"scale"`
	Filter  string `json:"filter" yaml:"filter"`
	Workers int    `json:"workers" yaml:"workers"`

	// Viewer
	Backend string `json:"backend" yaml:"backend"` // "window" | "stream"
	Title   string `json:"title" yaml:"title"`
	TPS     int    `json:"tps" yaml:"tps"`
	Listen  string `json:"listen" yaml:"listen"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty"`
}

// Load reads a config file and returns Config. Files ending in .yaml or
// .yml are YAML, everything else JSON. Fields not set in the file keep
// their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	SceneDir  string
	OutputDir string
	Format    string
	Scale     int
	Workers   int
	Backend   string
	Listen    string
	LogLevel  string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.SceneDir != "" {
		c.SceneDir = flags.SceneDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Backend != "" {
		c.Backend = flags.Backend
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.SceneDir == "" {
		c.SceneDir = "scenes"
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.SceneDir, "renders")
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.Depth <= 0 {
		c.Depth = 100
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Filter == "" {
		c.Filter = "nearest"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Backend == "" {
		c.Backend = "window"
	}
	if c.Title == "" {
		c.Title = "viewport"
	}
	if c.TPS <= 0 {
		c.TPS = 60
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
