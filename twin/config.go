package twin

import (
	"fmt"
	"time"
)

// Config controls how the Keyboard decodes its input.
type Config struct {
	// After this long, ambiguous or incomplete sequences are resolved as
	// whatever they look like on their own. A lone ESC becomes Escape for
	// example.
	KeyTimeout time.Duration

	// How long to wait for input when nothing is in flight
	PollInterval time.Duration

	// How long to wait for input while an incomplete sequence is buffered
	ShortPollInterval time.Duration

	// Decode multi byte UTF-8 characters. If false, each byte is its own key.
	UTF8 bool

	// Recognize mouse reports. Enable this only if you also asked the
	// terminal to send them.
	MouseTracking bool
}

// DefaultConfig returns the 100ms timeout / 100ms poll / 5ms short poll setup
// with UTF-8 decoding on and mouse tracking off.
func DefaultConfig() Config {
	return Config{
		KeyTimeout:        100 * time.Millisecond,
		PollInterval:      100 * time.Millisecond,
		ShortPollInterval: 5 * time.Millisecond,
		UTF8:              true,
		MouseTracking:     false,
	}
}

// Zero durations are replaced by their defaults, negative ones are errors
func (config Config) withDefaults() (Config, error) {
	defaults := DefaultConfig()

	if config.KeyTimeout < 0 {
		return config, fmt.Errorf("key timeout must not be negative: %v", config.KeyTimeout)
	}
	if config.PollInterval < 0 {
		return config, fmt.Errorf("poll interval must not be negative: %v", config.PollInterval)
	}
	if config.ShortPollInterval < 0 {
		return config, fmt.Errorf("short poll interval must not be negative: %v", config.ShortPollInterval)
	}

	if config.KeyTimeout == 0 {
		config.KeyTimeout = defaults.KeyTimeout
	}
	if config.PollInterval == 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.ShortPollInterval == 0 {
		config.ShortPollInterval = defaults.ShortPollInterval
	}

	return config, nil
}
