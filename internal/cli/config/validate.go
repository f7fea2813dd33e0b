package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Lito-docs/graph/internal/resolver"
)

// Accepted values for enumerated options.
var (
	Formats    = []string{"auto", "text", "markdown", "json"}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// Validate checks enumerated options and numeric ranges.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q (expected one of: %s)", c.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (expected one of: %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format %q (expected one of: %s)", c.LogFormat, strings.Join(LogFormats, ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if !resolver.CollisionPolicy(c.Resolver.CollisionPolicy).Valid() {
		return fmt.Errorf("invalid resolver.collision_policy %q (expected last or first)", c.Resolver.CollisionPolicy)
	}
	return nil
}
