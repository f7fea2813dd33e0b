// Package config loads lito-graph configuration from defaults, a
// litograph.yaml file, LITOGRAPH_ environment variables and command flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Input      string          `koanf:"input"`
	Output     string          `koanf:"output"`
	BaseURL    string          `koanf:"base_url"`
	SQLitePath string          `koanf:"sqlite_path"`
	Format     string          `koanf:"format"`
	Workers    int             `koanf:"workers"`
	LogLevel   string          `koanf:"log_level"`
	LogFormat  string          `koanf:"log_format"`
	Verbose    bool            `koanf:"verbose"`
	Discovery  DiscoveryConfig `koanf:"discovery"`
	Resolver   ResolverConfig  `koanf:"resolver"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// DiscoveryConfig extends the built-in discovery exclusions.
type DiscoveryConfig struct {
	ExcludeDirs  []string `koanf:"exclude_dirs"`
	ExcludeFiles []string `koanf:"exclude_files"`
	IgnoreFile   string   `koanf:"ignore_file"`
}

// ResolverConfig tunes reference resolution.
type ResolverConfig struct {
	CollisionPolicy string `koanf:"collision_policy"`
}

// Default configuration values
const (
	DefaultOutput          = "graph.json"
	DefaultFormat          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "text"
	DefaultIgnoreFile      = ".litoignore"
	DefaultCollisionPolicy = "last"
	EnvPrefix              = "LITOGRAPH_"
)

// ConfigFileNames are searched in order.
var ConfigFileNames = []string{"litograph.yaml", "litograph.yml"}

// Defaults returns the lowest-precedence configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"input":                     "",
		"output":                    DefaultOutput,
		"base_url":                  "",
		"sqlite_path":               "",
		"format":                    DefaultFormat,
		"workers":                   0,
		"log_level":                 DefaultLogLevel,
		"log_format":                DefaultLogFormat,
		"verbose":                   false,
		"discovery.exclude_dirs":    []string{},
		"discovery.exclude_files":   []string{},
		"discovery.ignore_file":     DefaultIgnoreFile,
		"resolver.collision_policy": DefaultCollisionPolicy,
	}
}
