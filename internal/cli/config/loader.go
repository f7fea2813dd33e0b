package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// flagKeys maps command flags onto config keys. Flags not listed here are
// command-local and never enter the config.
var flagKeys = map[string]string{
	"input":            "input",
	"output":           "output",
	"graph":            "output",
	"base-url":         "base_url",
	"sqlite":           "sqlite_path",
	"format":           "format",
	"workers":          "workers",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"verbose":          "verbose",
	"exclude-dir":      "discovery.exclude_dirs",
	"exclude-file":     "discovery.exclude_files",
	"ignore-file":      "discovery.ignore_file",
	"collision-policy": "resolver.collision_policy",
}

// pathKeys hold filesystem paths resolved against the project root.
var pathKeys = []string{"input", "output", "sqlite_path"}

// listKeys accept comma-separated values from the environment.
var listKeys = map[string]bool{
	"discovery.exclude_dirs":  true,
	"discovery.exclude_files": true,
}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a config file.
// Returns empty strings if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) (root, cfgFile string) {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if f := configExistsIn(dir); f != "" {
			return dir, f
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return "", ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey turns LITOGRAPH_DISCOVERY__IGNORE_FILE into discovery.ignore_file.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Paths given as flags are relative to the working directory; paths from
// every other layer are relative to the project root.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = ""

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// Project root: explicit config file's directory, else the nearest
	// directory holding a config file, else the working directory.
	projectRoot := cwd
	if cfgFile != "" {
		absPath, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
		}
		cfgFile = absPath
		projectRoot = filepath.Dir(absPath)
	} else if root, found := findProjectRootUpward(cwd); root != "" {
		projectRoot, cfgFile = root, found
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
	}

	// 3. Load environment variables (LITOGRAPH_ prefix, __ for nesting)
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = envKey(key)
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Paths loaded so far are relative to the project root
	for _, key := range pathKeys {
		if v := k.String(key); v != "" {
			if err := k.Set(key, resolvePathRelativeTo(v, projectRoot)); err != nil {
				return nil, err
			}
		}
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			val := posflag.FlagVal(flags, f)
			if s, isString := val.(string); isString && isPathKey(key) && s != "" {
				if abs, err := filepath.Abs(s); err == nil {
					val = abs
				}
			}
			return key, val
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

func isPathKey(key string) bool {
	for _, p := range pathKeys {
		if p == key {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// NewLogger builds the structured logger described by cfg, writing to w.
// Verbose raises the level to at least info.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	if cfg.Verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
