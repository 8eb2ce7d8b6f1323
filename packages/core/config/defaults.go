package config

const (
	// MaxStackTraceDepth is the default number of frames shown in short stack traces
	MaxStackTraceDepth = 10

	DefaultPassSymbol = "💚"
	DefaultFailSymbol = "💔"
	DefaultSkipSymbol = "💤"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		UseColors:           BoolPtr(true),
		ShowTimings:         BoolPtr(true),
		ShowExceptions:      BoolPtr(true),
		ShowStackTraces:     BoolPtr(false),
		ShowFullStackTraces: BoolPtr(false),
		ShowDurationStats:   BoolPtr(false),
		ShowModuleNames:     BoolPtr(true),
		ShowMethodNames:     BoolPtr(true),
		MaxStackDepth:       IntPtr(MaxStackTraceDepth),
		TerminalWidth:       0,
		PassSymbol:          DefaultPassSymbol,
		FailSymbol:          DefaultFailSymbol,
		SkipSymbol:          DefaultSkipSymbol,
	}
}

// DefaultOptions returns the resolved default options.
func DefaultOptions() Options {
	return DefaultConfig().Options()
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	return c.Options() == DefaultOptions()
}
