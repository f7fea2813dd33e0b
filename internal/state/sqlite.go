package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Lito-docs/graph/internal/graph"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

var (
	errNotOpen = errors.New("database not opened")

	// ErrNoBuild is returned when the database holds no exported graph yet.
	ErrNoBuild = errors.New("no graph has been exported")
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store. A nil logger discards output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the database at path and migrates it to the latest schema.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	s.logger.Debug("opened graph database", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the connection for ad-hoc queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// SaveGraph replaces the stored graph in a single transaction.
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *graph.Graph) (*Build, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	build := &Build{
		ID:             uuid.New().String(),
		Version:        g.Version,
		GeneratedAt:    g.GeneratedAt,
		SourceDir:      g.SourceDir,
		BaseURL:        g.BaseURL,
		NodeCount:      len(g.Nodes),
		EdgeCount:      len(g.Edges),
		UnresolvedRefs: g.Stats.UnresolvedRefs,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"edges", "node_tags", "nodes", "builds"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { //nolint:gosec // G202: fixed table names
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO builds (id, version, generated_at, source_dir, base_url, node_count, edge_count, unresolved_refs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		build.ID, build.Version, build.GeneratedAt, build.SourceDir, nullString(build.BaseURL),
		build.NodeCount, build.EdgeCount, build.UnresolvedRefs, build.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("failed to record build: %w", err)
	}

	if err := insertNodes(ctx, tx, g.Nodes); err != nil {
		return nil, err
	}
	if err := insertEdges(ctx, tx, g.Edges); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit graph: %w", err)
	}

	s.logger.Info("graph exported",
		"path", s.path,
		"build_id", build.ID,
		"nodes", build.NodeCount,
		"edges", build.EdgeCount)

	return build, nil
}

func insertNodes(ctx context.Context, tx *sql.Tx, nodes []graph.Node) error {
	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (id, position, type, title, summary, source_path, slug, url, version, locale, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer func() { _ = nodeStmt.Close() }()

	tagStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO node_tags (node_id, tag) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tag insert: %w", err)
	}
	defer func() { _ = tagStmt.Close() }()

	for i, n := range nodes {
		b := n.Base()
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to encode node %s: %w", b.ID, err)
		}

		if _, err := nodeStmt.ExecContext(ctx,
			b.ID, i, string(b.Type), b.Title, b.Summary, b.SourcePath, b.Slug,
			nullString(b.URL), nullString(b.Version), nullString(b.Locale), string(data),
		); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", b.ID, err)
		}

		for _, tag := range b.Tags {
			if _, err := tagStmt.ExecContext(ctx, b.ID, tag); err != nil {
				return fmt.Errorf("failed to insert tag for %s: %w", b.ID, err)
			}
		}
	}

	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, edges []graph.Edge) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (position, source, target, type, label, unresolved) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range edges {
		if _, err := stmt.ExecContext(ctx,
			i, e.Source, e.Target, string(e.Type), nullString(e.Label), e.IsUnresolved(),
		); err != nil {
			return fmt.Errorf("failed to insert edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	return nil
}

// LatestBuild returns the build recorded by the last SaveGraph.
func (s *SQLiteStore) LatestBuild(ctx context.Context) (*Build, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	build := &Build{}
	var baseURL sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, version, generated_at, source_dir, base_url, node_count, edge_count, unresolved_refs, created_at
		 FROM builds ORDER BY created_at DESC LIMIT 1`,
	).Scan(&build.ID, &build.Version, &build.GeneratedAt, &build.SourceDir, &baseURL,
		&build.NodeCount, &build.EdgeCount, &build.UnresolvedRefs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBuild
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}

	build.BaseURL = baseURL.String
	if build.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid build timestamp %q: %w", createdAt, err)
	}

	return build, nil
}

// LoadGraph rebuilds the stored graph with nodes and edges in their
// original order. Stats are recomputed from the loaded content.
func (s *SQLiteStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	build, err := s.LatestBuild(ctx)
	if err != nil {
		return nil, err
	}

	g := &graph.Graph{
		Version:     build.Version,
		GeneratedAt: build.GeneratedAt,
		SourceDir:   build.SourceDir,
		BaseURL:     build.BaseURL,
		Nodes:       []graph.Node{},
		Edges:       []graph.Edge{},
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM nodes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n, err := graph.DecodeNode([]byte(data))
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edges, err := s.queryEdges(ctx, `SELECT source, target, type, label FROM edges ORDER BY position`)
	if err != nil {
		return nil, err
	}
	g.Edges = edges
	g.Stats = graph.ComputeStats(g.Nodes, g.Edges)

	return g, nil
}

// UnresolvedEdges returns the stored edges whose target is a placeholder.
func (s *SQLiteStore) UnresolvedEdges(ctx context.Context) ([]graph.Edge, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	return s.queryEdges(ctx, `SELECT source, target, type, label FROM edges WHERE unresolved = 1 ORDER BY position`)
}

// NodeIDsByTag returns the ids of nodes carrying tag, in graph order.
func (s *SQLiteStore) NodeIDsByTag(ctx context.Context, tag string) ([]string, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id FROM nodes n JOIN node_tags t ON t.node_id = n.id WHERE t.tag = ? ORDER BY n.position`, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) queryEdges(ctx context.Context, query string, args ...any) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	edges := []graph.Edge{}
	for rows.Next() {
		var e graph.Edge
		var edgeType string
		var label sql.NullString
		if err := rows.Scan(&e.Source, &e.Target, &edgeType, &label); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Type = graph.EdgeType(edgeType)
		e.Label = label.String
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// nullString returns a sql.NullString for optional string fields.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
