package commands

import (
	"log/slog"

	"github.com/Lito-docs/graph/internal/cli/config"
	"github.com/Lito-docs/graph/internal/cli/output"
	"github.com/Lito-docs/graph/internal/discovery"
	"github.com/Lito-docs/graph/internal/engine"
	"github.com/Lito-docs/graph/internal/resolver"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when the
// command runs outside the root command (tests, embedding).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Output:    config.DefaultOutput,
		Format:    config.DefaultFormat,
		LogLevel:  config.DefaultLogLevel,
		LogFormat: config.DefaultLogFormat,
		Discovery: config.DiscoveryConfig{IgnoreFile: config.DefaultIgnoreFile},
		Resolver:  config.ResolverConfig{CollisionPolicy: config.DefaultCollisionPolicy},
	}
}

// newEngine maps CLI configuration onto an engine.
func newEngine(cfg *config.Config, logger *slog.Logger) *engine.Engine {
	return engine.New(engine.Config{
		BaseURL: cfg.BaseURL,
		Workers: cfg.Workers,
		Discovery: discovery.Options{
			ExcludeDirs:  cfg.Discovery.ExcludeDirs,
			ExcludeFiles: cfg.Discovery.ExcludeFiles,
			IgnoreFile:   cfg.Discovery.IgnoreFile,
		},
		Resolver: resolver.Options{
			CollisionPolicy: resolver.CollisionPolicy(cfg.Resolver.CollisionPolicy),
		},
		Logger: logger,
	})
}
