package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lito-docs/graph/internal/graph"
	"github.com/Lito-docs/graph/internal/testutil"
)

func testGraph() *graph.Graph {
	nodes := []graph.Node{
		&graph.DocNode{BaseNode: graph.BaseNode{
			ID: "doc1", Type: graph.NodeDoc, Title: "Home", Summary: "Welcome", SourcePath: "index.md",
			Slug: "/", URL: "https://docs.example.com/", Anchors: []string{"home"}, Tags: []string{"intro"},
		}},
		&graph.ConceptNode{
			BaseNode: graph.BaseNode{
				ID: "concept1", Type: graph.NodeConcept, Title: "Workspace", SourcePath: "concepts/workspace.md",
				Slug: "/concepts/workspace", Anchors: []string{}, Tags: []string{"core", "intro"},
			},
			EntityType:      "resource",
			CanonicalName:   "Workspace",
			Aliases:         []string{"Org"},
			RelatedEntities: []string{"Billing"},
		},
		&graph.WorkflowNode{
			BaseNode: graph.BaseNode{
				ID: "wf1", Type: graph.NodeWorkflow, Title: "Onboard", SourcePath: "workflows/onboard.md",
				Slug: "/workflows/onboard", Anchors: []string{}, Tags: []string{},
			},
			WorkflowID: "onboard",
			Goal:       "Onboard a customer",
			Steps:      []graph.WorkflowStep{{StepNumber: 1, Action: "Create it"}},
		},
		&graph.StepNode{
			BaseNode: graph.BaseNode{
				ID: "step1", Type: graph.NodeStep, Title: "Step 1: Create it", Summary: "Create it",
				SourcePath: "workflows/onboard.md", Slug: "/workflows/onboard#step-1", Anchors: []string{}, Tags: []string{},
			},
			StepNumber: 1,
			Action:     "Create it",
			WorkflowID: "onboard",
		},
	}
	edges := []graph.Edge{
		{Source: "wf1", Target: "step1", Type: graph.EdgeContains},
		{Source: "concept1", Target: graph.Unresolved("Billing"), Type: graph.EdgeRelatedTo, Label: "Billing"},
		{Source: "wf1", Target: "concept1", Type: graph.EdgeActsOn},
	}
	return &graph.Graph{
		Version:     graph.SchemaVersion,
		GeneratedAt: "2026-01-02T03:04:05.006Z",
		SourceDir:   "/docs",
		BaseURL:     "https://docs.example.com",
		Stats:       graph.ComputeStats(nodes, edges),
		Nodes:       nodes,
		Edges:       edges,
	}
}

func openTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(context.Background(), path))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	_, err := store.SaveGraph(ctx, testGraph())
	assert.Error(t, err)
	_, err = store.LatestBuild(ctx)
	assert.Error(t, err)
	_, err = store.UnresolvedEdges(ctx)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := openTestStore(t, ":memory:")

	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Migrating twice is a no-op
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSQLiteStore_EmptyDatabase(t *testing.T) {
	store := openTestStore(t, ":memory:")

	_, err := store.LatestBuild(context.Background())
	assert.ErrorIs(t, err, ErrNoBuild)

	_, err = store.LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrNoBuild)
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, ":memory:")
	g := testGraph()

	build, err := store.SaveGraph(ctx, g)
	require.NoError(t, err)
	assert.Len(t, build.ID, 36)
	assert.Equal(t, 4, build.NodeCount)
	assert.Equal(t, 3, build.EdgeCount)
	assert.Equal(t, 1, build.UnresolvedRefs)

	latest, err := store.LatestBuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, build.ID, latest.ID)
	assert.Equal(t, "https://docs.example.com", latest.BaseURL)
	assert.Equal(t, build.CreatedAt, latest.CreatedAt)

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, g.Version, loaded.Version)
	assert.Equal(t, g.GeneratedAt, loaded.GeneratedAt)
	assert.Equal(t, g.SourceDir, loaded.SourceDir)
	assert.Equal(t, g.Stats, loaded.Stats)
	assert.Equal(t, g.Nodes, loaded.Nodes)
	assert.Equal(t, g.Edges, loaded.Edges)
}

func TestSQLiteStore_SaveReplacesPreviousGraph(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "nested", "graph.db"))

	first, err := store.SaveGraph(ctx, testGraph())
	require.NoError(t, err)

	smaller := testGraph()
	smaller.Nodes = smaller.Nodes[:1]
	smaller.Edges = []graph.Edge{}
	smaller.Stats = graph.ComputeStats(smaller.Nodes, smaller.Edges)

	second, err := store.SaveGraph(ctx, smaller)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var builds, nodes, tags, edges int
	db := store.DB()
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM builds").Scan(&builds))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&nodes))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM node_tags").Scan(&tags))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM edges").Scan(&edges))

	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 1, tags)
	assert.Equal(t, 0, edges)
}

func TestSQLiteStore_Queries(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, ":memory:")
	_, err := store.SaveGraph(ctx, testGraph())
	require.NoError(t, err)

	t.Run("unresolved edges", func(t *testing.T) {
		edges, err := store.UnresolvedEdges(ctx)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "concept1", edges[0].Source)
		assert.Equal(t, "Billing", edges[0].Label)
	})

	t.Run("nodes by tag", func(t *testing.T) {
		ids, err := store.NodeIDsByTag(ctx, "intro")
		require.NoError(t, err)
		assert.Equal(t, []string{"doc1", "concept1"}, ids)

		ids, err = store.NodeIDsByTag(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("typed columns", func(t *testing.T) {
		var count int
		require.NoError(t, store.DB().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM nodes WHERE type = ?", string(graph.NodeStep)).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
