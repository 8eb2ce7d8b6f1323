package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the dromus configuration file. Unset fields fall back to
// the defaults in DefaultConfig.
type Config struct {
	UseColors           *bool  `yaml:"useColors,omitempty" json:"useColors,omitempty"`
	ShowTimings         *bool  `yaml:"showTimings,omitempty" json:"showTimings,omitempty"`
	ShowExceptions      *bool  `yaml:"showExceptions,omitempty" json:"showExceptions,omitempty"`
	ShowStackTraces     *bool  `yaml:"showStackTraces,omitempty" json:"showStackTraces,omitempty"`
	ShowFullStackTraces *bool  `yaml:"showFullStackTraces,omitempty" json:"showFullStackTraces,omitempty"`
	ShowDurationStats   *bool  `yaml:"showDurationStats,omitempty" json:"showDurationStats,omitempty"`
	ShowModuleNames     *bool  `yaml:"showModuleNames,omitempty" json:"showModuleNames,omitempty"`
	ShowMethodNames     *bool  `yaml:"showMethodNames,omitempty" json:"showMethodNames,omitempty"`
	MaxStackDepth       *int   `yaml:"maxStackTraceDepth,omitempty" json:"maxStackTraceDepth,omitempty"`
	TerminalWidth       int    `yaml:"terminalWidth,omitempty" json:"terminalWidth,omitempty"` // 0 = detect
	PassSymbol          string `yaml:"passSymbol,omitempty" json:"passSymbol,omitempty"`
	FailSymbol          string `yaml:"failSymbol,omitempty" json:"failSymbol,omitempty"`
	SkipSymbol          string `yaml:"skipSymbol,omitempty" json:"skipSymbol,omitempty"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to i.
func IntPtr(i int) *int {
	return &i
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetUseColors returns the use colors setting, defaulting to true
func (c *Config) GetUseColors() bool {
	return getBool(c.UseColors, true)
}

// GetShowTimings returns the show timings setting, defaulting to true
func (c *Config) GetShowTimings() bool {
	return getBool(c.ShowTimings, true)
}

// GetShowExceptions returns the show exceptions setting, defaulting to true
func (c *Config) GetShowExceptions() bool {
	return getBool(c.ShowExceptions, true)
}

// GetShowStackTraces returns the short stack trace setting, defaulting to false
func (c *Config) GetShowStackTraces() bool {
	return getBool(c.ShowStackTraces, false)
}

// GetShowFullStackTraces returns the full stack trace setting, defaulting to false
func (c *Config) GetShowFullStackTraces() bool {
	return getBool(c.ShowFullStackTraces, false)
}

// GetShowDurationStats returns the duration statistics setting, defaulting to false
func (c *Config) GetShowDurationStats() bool {
	return getBool(c.ShowDurationStats, false)
}

// GetShowModuleNames returns whether result lines show the class name, defaulting to true
func (c *Config) GetShowModuleNames() bool {
	return getBool(c.ShowModuleNames, true)
}

// GetShowMethodNames returns whether result lines show the method name, defaulting to true
func (c *Config) GetShowMethodNames() bool {
	return getBool(c.ShowMethodNames, true)
}

// GetMaxStackDepth returns the short stack trace depth, defaulting to MaxStackTraceDepth
func (c *Config) GetMaxStackDepth() int {
	if c.MaxStackDepth == nil {
		return MaxStackTraceDepth
	}
	return *c.MaxStackDepth
}

// ConfigFilenames contains the possible config file names. YAML is a superset
// of JSON, so JSON content is accepted in any of them.
var ConfigFilenames = []string{
	".dromus.yml",
	".dromus.yaml",
	"dromus.yml",
	"dromus.yaml",
	".dromusrc",
	".dromus.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return &Config{}, nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// Fields missing from the file stay nil.
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxStackDepth != nil && *c.MaxStackDepth < 0 {
		return fmt.Errorf("%w: maxStackTraceDepth must be >= 0", ErrInvalidConfig)
	}
	if c.TerminalWidth < 0 {
		return fmt.Errorf("%w: terminalWidth must be >= 0", ErrInvalidConfig)
	}
	// An empty symbol means unset; a blank one would render nothing.
	for name, symbol := range map[string]string{
		"passSymbol": c.PassSymbol,
		"failSymbol": c.FailSymbol,
		"skipSymbol": c.SkipSymbol,
	} {
		if symbol != "" && strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("%w: %s must not be blank", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.TerminalWidth > 0 {
		result.TerminalWidth = other.TerminalWidth
	}
	if other.PassSymbol != "" {
		result.PassSymbol = other.PassSymbol
	}
	if other.FailSymbol != "" {
		result.FailSymbol = other.FailSymbol
	}
	if other.SkipSymbol != "" {
		result.SkipSymbol = other.SkipSymbol
	}

	// Pointer fields only override if explicitly set in other config
	if other.UseColors != nil {
		result.UseColors = other.UseColors
	}
	if other.ShowTimings != nil {
		result.ShowTimings = other.ShowTimings
	}
	if other.ShowExceptions != nil {
		result.ShowExceptions = other.ShowExceptions
	}
	if other.ShowStackTraces != nil {
		result.ShowStackTraces = other.ShowStackTraces
	}
	if other.ShowFullStackTraces != nil {
		result.ShowFullStackTraces = other.ShowFullStackTraces
	}
	if other.ShowDurationStats != nil {
		result.ShowDurationStats = other.ShowDurationStats
	}
	if other.ShowModuleNames != nil {
		result.ShowModuleNames = other.ShowModuleNames
	}
	if other.ShowMethodNames != nil {
		result.ShowMethodNames = other.ShowMethodNames
	}
	if other.MaxStackDepth != nil {
		result.MaxStackDepth = other.MaxStackDepth
	}

	return &result
}

// Options is the fully resolved, immutable rendering configuration for one run.
type Options struct {
	UseColors           bool
	ShowTimings         bool
	ShowExceptions      bool
	ShowStackTraces     bool
	ShowFullStackTraces bool
	ShowDurationStats   bool
	ShowModuleNames     bool
	ShowMethodNames     bool
	MaxStackDepth       int
	PassSymbol          string
	FailSymbol          string
	SkipSymbol          string
	TerminalWidth       int
}

// Options resolves the config into a snapshot. Empty symbols take defaults.
func (c *Config) Options() Options {
	opts := Options{
		UseColors:           c.GetUseColors(),
		ShowTimings:         c.GetShowTimings(),
		ShowExceptions:      c.GetShowExceptions(),
		ShowStackTraces:     c.GetShowStackTraces(),
		ShowFullStackTraces: c.GetShowFullStackTraces(),
		ShowDurationStats:   c.GetShowDurationStats(),
		ShowModuleNames:     c.GetShowModuleNames(),
		ShowMethodNames:     c.GetShowMethodNames(),
		MaxStackDepth:       c.GetMaxStackDepth(),
		PassSymbol:          orDefault(c.PassSymbol, DefaultPassSymbol),
		FailSymbol:          orDefault(c.FailSymbol, DefaultFailSymbol),
		SkipSymbol:          orDefault(c.SkipSymbol, DefaultSkipSymbol),
		TerminalWidth:       c.TerminalWidth,
	}
	if opts.MaxStackDepth < 0 {
		opts.MaxStackDepth = 0
	}
	if opts.TerminalWidth < 0 {
		opts.TerminalWidth = 0
	}
	return opts
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
