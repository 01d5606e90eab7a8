// Package config loads scenario files for the AGV port simulator.
//
// Files are YAML (.yaml, .yml) or TOML (.toml). ${VAR} references are
// expanded from the environment before parsing; unset variables become
// empty strings. Keys missing from a file keep their Default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/agv-port/internal/core"
	"github.com/elektrokombinacija/agv-port/internal/port"
)

// Config is a complete scenario plus run settings.
type Config struct {
	Port         PortConfig    `yaml:"port" toml:"port"`
	Targets      [][]int       `yaml:"targets" toml:"targets"`
	Agents       int           `yaml:"agents" toml:"agents"`
	Tasks        int           `yaml:"tasks" toml:"tasks"`
	Speed        float64       `yaml:"speed" toml:"speed"`
	LoadDuration float64       `yaml:"load_duration" toml:"load_duration"`
	Seed         int64         `yaml:"seed" toml:"seed"`
	Consistency  string        `yaml:"consistency" toml:"consistency"`
	MaxReplans   int           `yaml:"max_replans" toml:"max_replans"`
	Logging      LoggingConfig `yaml:"logging" toml:"logging"`

	// TimeUnit is the wall-clock length of one simulated time unit.
	TimeUnit    time.Duration `yaml:"-" toml:"-"`
	TimeUnitRaw string        `yaml:"time_unit" toml:"time_unit"`
}

// PortConfig describes the grid.
type PortConfig struct {
	Rows int `yaml:"rows" toml:"rows"`
	Cols int `yaml:"cols" toml:"cols"`
	// Optional rows of '.' (free) and '#' (blocked)
	Terrain []string `yaml:"terrain" toml:"terrain"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the stock 5x10 port scenario.
func Default() *Config {
	return &Config{
		Port:         PortConfig{Rows: 5, Cols: 10},
		Targets:      [][]int{{0, 1}, {0, 3}, {4, 2}, {4, 4}, {4, 6}, {4, 8}},
		Agents:       5,
		Tasks:        5,
		Speed:        core.DefaultSpeed,
		LoadDuration: core.DefaultLoadDuration,
		Seed:         42,
		Consistency:  port.ConsistencyRelaxed.String(),
		TimeUnit:     time.Second,
		TimeUnitRaw:  "1s",
		Logging:      LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file from the given path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	case ".toml":
		format = "toml"
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
	return Parse(data, format)
}

// Parse decodes YAML or TOML content over the defaults and validates it.
func Parse(data []byte, format string) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	switch format {
	case "yaml":
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}

	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

func (c *Config) parseDurations() error {
	if c.TimeUnitRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(c.TimeUnitRaw)
	if err != nil {
		return fmt.Errorf("parsing time_unit %q: %w", c.TimeUnitRaw, err)
	}
	c.TimeUnit = d
	return nil
}

// SetTimeUnit overrides the time unit, e.g. from a command-line flag.
func (c *Config) SetTimeUnit(raw string) error {
	c.TimeUnitRaw = raw
	return c.parseDurations()
}

// Validate checks that all fields are present and consistent. The error
// names the first offending field.
func (c *Config) Validate() error {
	if c.Port.Rows <= 0 || c.Port.Cols <= 0 {
		return fmt.Errorf("port.rows and port.cols must be positive, got %dx%d", c.Port.Rows, c.Port.Cols)
	}
	terrain, err := c.Terrain()
	if err != nil {
		return err
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("targets must not be empty")
	}
	for i, t := range c.Targets {
		if len(t) != 2 {
			return fmt.Errorf("targets[%d] must be [row, col], got %v", i, t)
		}
		cell := core.C(t[0], t[1])
		if !terrain.InBounds(cell) {
			return fmt.Errorf("targets[%d] %v is outside the %dx%d port", i, cell, c.Port.Rows, c.Port.Cols)
		}
		if terrain.IsBlocked(cell) {
			return fmt.Errorf("targets[%d] %v is blocked terrain", i, cell)
		}
	}

	if c.Agents <= 0 {
		return fmt.Errorf("agents must be positive, got %d", c.Agents)
	}
	if c.Port.Cols/(c.Agents+1) == 0 {
		return fmt.Errorf("agents: %d agents do not fit on a row of %d cells", c.Agents, c.Port.Cols)
	}
	if c.Tasks < 0 {
		return fmt.Errorf("tasks must be non-negative, got %d", c.Tasks)
	}
	if per := c.Tasks / c.Agents; per > len(c.Targets) {
		return fmt.Errorf("tasks: %d per agent exceeds the %d targets", per, len(c.Targets))
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	if c.LoadDuration < 0 {
		return fmt.Errorf("load_duration must be non-negative, got %g", c.LoadDuration)
	}
	if c.TimeUnit <= 0 {
		return fmt.Errorf("time_unit must be positive, got %s", c.TimeUnit)
	}
	if _, err := port.ParseConsistency(c.Consistency); err != nil {
		return fmt.Errorf("consistency: %w", err)
	}
	if c.MaxReplans < 0 {
		return fmt.Errorf("max_replans must be non-negative, got %d", c.MaxReplans)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Terrain builds the static grid.
func (c *Config) Terrain() (core.Grid, error) {
	if len(c.Port.Terrain) == 0 {
		return core.NewGrid(c.Port.Rows, c.Port.Cols), nil
	}
	g, err := core.ParseGrid(c.Port.Terrain)
	if err != nil {
		return core.Grid{}, fmt.Errorf("port.terrain: %w", err)
	}
	if g.Rows != c.Port.Rows || g.Cols != c.Port.Cols {
		return core.Grid{}, fmt.Errorf("port.terrain is %dx%d, want %dx%d", g.Rows, g.Cols, c.Port.Rows, c.Port.Cols)
	}
	return g, nil
}

// ConsistencyLevel returns the parsed consistency setting.
func (c *Config) ConsistencyLevel() port.Consistency {
	level, err := port.ParseConsistency(c.Consistency)
	if err != nil {
		return port.ConsistencyRelaxed
	}
	return level
}

// Layout converts the config into a scenario layout.
func (c *Config) Layout() (core.Layout, error) {
	terrain, err := c.Terrain()
	if err != nil {
		return core.Layout{}, err
	}
	targets := make([]core.Cell, len(c.Targets))
	for i, t := range c.Targets {
		targets[i] = core.C(t[0], t[1])
	}
	return core.Layout{
		Terrain:      terrain,
		Targets:      targets,
		Agents:       c.Agents,
		Tasks:        c.Tasks,
		Speed:        c.Speed,
		LoadDuration: c.LoadDuration,
		Seed:         c.Seed,
	}, nil
}

// Scenario builds the scenario described by the config.
func (c *Config) Scenario() (*core.Scenario, error) {
	layout, err := c.Layout()
	if err != nil {
		return nil, err
	}
	return core.BuildScenario(layout)
}

// EnvPath names the environment variable consulted when no path is given.
const EnvPath = "AGVPORT_CONFIG"

// LoadOrDefault loads path, falling back to $AGVPORT_CONFIG and then to
// Default when neither is set.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
