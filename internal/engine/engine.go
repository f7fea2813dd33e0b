// Package engine assembles the knowledge graph: it discovers documents,
// classifies and converts each one into nodes, resolves edges over the full
// node set and computes statistics.
package engine

import (
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/Lito-docs/graph/internal/discovery"
	"github.com/Lito-docs/graph/internal/resolver"
)

// Fatal configuration errors. Everything else is reported as a warning.
var (
	ErrNoInput       = errors.New("no input directory specified")
	ErrInputNotFound = errors.New("input directory does not exist")
)

// Engine builds graphs from a docs tree.
type Engine struct {
	baseURL   string
	workers   int
	discovery discovery.Options
	resolver  resolver.Options
	logger    *slog.Logger
	now       func() time.Time

	watchDebounce time.Duration
}

// Config holds engine configuration.
type Config struct {
	// BaseURL is prefixed to every node slug to form its public URL (optional).
	BaseURL string
	// Workers bounds concurrent file reads (default: GOMAXPROCS).
	Workers int
	// Discovery adds exclusions on top of the built-in ones.
	Discovery discovery.Options
	// Resolver configures reference resolution.
	Resolver resolver.Options
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Now overrides the clock used for generated_at (optional).
	Now func() time.Time
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		workers:   workers,
		discovery: cfg.Discovery,
		resolver:  cfg.Resolver,
		logger:    logger,
		now:       now,
	}
}
