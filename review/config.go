package review

import "log/slog"

// Config holds configuration for the Store.
type Config struct {
	// LockStripes is the number of mutexes guarding keys. Operations on
	// keys that share a stripe are serialized.
	// Default: 64
	// Max: 4096
	LockStripes int

	// Logger receives diagnostic messages. Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LockStripes: 64,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.LockStripes < 1 {
		c.LockStripes = 1
	}
	if c.LockStripes > 4096 {
		c.LockStripes = 4096
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
