// Package state persists finished graphs to SQLite so downstream tools can
// query nodes and edges with SQL. Each save replaces the previous graph.
package state

import (
	"context"
	"time"

	"github.com/Lito-docs/graph/internal/graph"
)

// Store persists graphs.
type Store interface {
	// SaveGraph replaces the stored graph with g and records a build.
	SaveGraph(ctx context.Context, g *graph.Graph) (*Build, error)
	// LoadGraph reads the stored graph back.
	LoadGraph(ctx context.Context) (*graph.Graph, error)
	// LatestBuild returns the build recorded by the last save.
	LatestBuild(ctx context.Context) (*Build, error)
	Close() error
}

// Build is one recorded export.
type Build struct {
	ID             string
	Version        string
	GeneratedAt    string
	SourceDir      string
	BaseURL        string
	NodeCount      int
	EdgeCount      int
	UnresolvedRefs int
	CreatedAt      time.Time
}

var _ Store = (*SQLiteStore)(nil)
