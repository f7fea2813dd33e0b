package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lito-docs/graph/internal/discovery"
	"github.com/Lito-docs/graph/internal/factory"
	"github.com/Lito-docs/graph/internal/graph"
	"github.com/Lito-docs/graph/internal/resolver"
	"github.com/Lito-docs/graph/internal/testutil"
)

const fixtureDir = "testdata/docs"

var fixedNow = func() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.FixedZone("CET", 3600))
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Logger = testutil.NewTestLogger(t)
	if cfg.Now == nil {
		cfg.Now = fixedNow
	}
	return New(cfg)
}

func buildFixture(t *testing.T, cfg Config) *BuildResult {
	t.Helper()
	result, err := newTestEngine(t, cfg).Build(context.Background(), fixtureDir)
	require.NoError(t, err)
	require.NotNil(t, result.Graph)
	return result
}

func nodeBySource(g *graph.Graph, sourcePath string, nodeType graph.NodeType) graph.Node {
	for _, n := range g.Nodes {
		if n.Base().SourcePath == sourcePath && n.Base().Type == nodeType {
			return n
		}
	}
	return nil
}

func countEdges(g *graph.Graph, source, target string, edgeType graph.EdgeType) int {
	count := 0
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target && e.Type == edgeType {
			count++
		}
	}
	return count
}

func TestBuild_Errors(t *testing.T) {
	eng := New(Config{})

	_, err := eng.Build(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = eng.Build(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestBuild_Fixture(t *testing.T) {
	result := buildFixture(t, Config{})
	g := result.Graph

	assert.Equal(t, 9, result.Files, "README.md and _assets are excluded")
	assert.Equal(t, graph.SchemaVersion, g.Version)
	assert.Equal(t, "2026-03-14T08:26:53.589Z", g.GeneratedAt)
	assert.True(t, filepath.IsAbs(g.SourceDir))
	assert.Empty(t, g.BaseURL)

	assert.Equal(t, 12, g.Stats.TotalNodes)
	assert.Equal(t, map[graph.NodeType]int{
		graph.NodeDoc:      2,
		graph.NodeConcept:  2,
		graph.NodeAPI:      3,
		graph.NodeWorkflow: 1,
		graph.NodeStep:     4,
	}, g.Stats.NodesByType)

	assert.Equal(t, 22, g.Stats.TotalEdges)
	assert.Equal(t, map[graph.EdgeType]int{
		graph.EdgeActsOn:     4,
		graph.EdgeRelatedTo:  3,
		graph.EdgeUsesAPI:    2,
		graph.EdgeContains:   4,
		graph.EdgeNextStepOf: 3,
		graph.EdgeParentOf:   3,
		graph.EdgeChildOf:    3,
	}, g.Stats.EdgesByType)
	assert.Equal(t, 2, g.Stats.UnresolvedRefs)

	assert.Equal(t, []string{
		"Failed to parse broken.md: line 1: unterminated frontmatter block",
		`Unresolved related_entity "billing_account" in concepts/workspace.md`,
		`Unresolved API reference "invite_member" in step 2 of workflows/onboard.md`,
	}, result.Warnings)
}

func TestBuild_StatsInvariants(t *testing.T) {
	g := buildFixture(t, Config{}).Graph

	assert.Len(t, g.Nodes, g.Stats.TotalNodes)
	assert.Len(t, g.Edges, g.Stats.TotalEdges)

	sumNodes := 0
	for _, c := range g.Stats.NodesByType {
		sumNodes += c
	}
	assert.Equal(t, g.Stats.TotalNodes, sumNodes)

	sumEdges := 0
	unresolved := 0
	for _, e := range g.Edges {
		if e.IsUnresolved() {
			unresolved++
		}
	}
	for _, c := range g.Stats.EdgesByType {
		sumEdges += c
	}
	assert.Equal(t, g.Stats.TotalEdges, sumEdges)
	assert.Equal(t, g.Stats.UnresolvedRefs, unresolved)

	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		assert.False(t, ids[n.Base().ID], "duplicate id %s", n.Base().ID)
		ids[n.Base().ID] = true
	}

	// Every non-placeholder target is a real node
	for _, e := range g.Edges {
		assert.True(t, ids[e.Source], "dangling source %s", e.Source)
		if !e.IsUnresolved() {
			assert.True(t, ids[e.Target], "dangling target %s", e.Target)
		}
	}
}

func TestBuild_Nodes(t *testing.T) {
	g := buildFixture(t, Config{}).Graph

	t.Run("root index", func(t *testing.T) {
		n := nodeBySource(g, "index.md", graph.NodeDoc)
		require.NotNil(t, n)
		b := n.Base()
		assert.Equal(t, factory.MakeID("index.md", graph.NodeDoc), b.ID)
		assert.Equal(t, "Acme Docs", b.Title)
		assert.Equal(t, "/", b.Slug)
		assert.Equal(t, "Everything about the Acme platform.", b.Summary)
		assert.Equal(t, []string{"acme-docs", "getting-started"}, b.Anchors)
	})

	t.Run("concept", func(t *testing.T) {
		n, ok := nodeBySource(g, "concepts/workspace.md", graph.NodeConcept).(*graph.ConceptNode)
		require.True(t, ok)
		assert.Equal(t, "/concepts/workspace", n.Slug)
		assert.Equal(t, "resource", n.EntityType)
		assert.Equal(t, []string{"Org Workspace"}, n.Aliases)
		assert.Equal(t, []string{"core"}, n.Tags)
		assert.Equal(t, []string{"workspace", "lifecycle"}, n.Anchors)
	})

	t.Run("legacy api", func(t *testing.T) {
		n, ok := nodeBySource(g, "api/delete-workspace.md", graph.NodeAPI).(*graph.APINode)
		require.True(t, ok)
		assert.Equal(t, "delete_v1_workspaces__id_", n.OperationID)
		assert.Equal(t, "DELETE", n.Method)
		assert.Equal(t, "/v1/workspaces/{id}", n.Path)
		assert.Equal(t, "http", n.APIType)
	})

	t.Run("workflow", func(t *testing.T) {
		n, ok := nodeBySource(g, "workflows/onboard.md", graph.NodeWorkflow).(*graph.WorkflowNode)
		require.True(t, ok)
		assert.Equal(t, "onboard_new_workspace", n.WorkflowID)
		require.Len(t, n.Steps, 4)
		assert.Equal(t, "create_workspace", n.Steps[0].UsesAPI)
		assert.Equal(t, "invite_member", n.Steps[1].UsesAPI)
		assert.Empty(t, n.Steps[2].UsesAPI)
		assert.Equal(t, []string{"The customer has signed the order form"}, n.Preconditions)
		assert.Equal(t, []string{"Workspace name already taken"}, n.FailureModes)
		assert.Equal(t, []string{"Pick a different name and retry"}, n.Recovery)
		assert.Equal(t, []string{"Never invite external domains without approval"}, n.Guardrails)
	})

	t.Run("steps", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			id := factory.StepID("workflows/onboard.md", i)
			var step *graph.StepNode
			for _, n := range g.Nodes {
				if n.Base().ID == id {
					step, _ = n.(*graph.StepNode)
				}
			}
			require.NotNil(t, step, "step %d", i)
			assert.Equal(t, i, step.StepNumber)
			assert.Equal(t, "onboard_new_workspace", step.WorkflowID)
			assert.Equal(t, fmt.Sprintf("/workflows/onboard#step-%d", i), step.Slug)
		}
	})
}

func TestBuild_Edges(t *testing.T) {
	g := buildFixture(t, Config{})
	gr := g.Graph

	id := func(path string, nt graph.NodeType) string { return factory.MakeID(path, nt) }
	workspace := id("concepts/workspace.md", graph.NodeConcept)
	user := id("concepts/user.md", graph.NodeConcept)
	workflow := id("workflows/onboard.md", graph.NodeWorkflow)
	create := id("api/create-workspace.md", graph.NodeAPI)

	t.Run("related entities resolve case-insensitively", func(t *testing.T) {
		assert.Equal(t, 1, countEdges(gr, workspace, user, graph.EdgeRelatedTo))
		assert.Equal(t, 1, countEdges(gr, user, workspace, graph.EdgeRelatedTo))
		assert.Equal(t, 1, countEdges(gr, workspace, graph.Unresolved("billing_account"), graph.EdgeRelatedTo))
	})

	t.Run("resources resolve by name and alias", func(t *testing.T) {
		for _, p := range []string{"api/create-workspace.md", "api/list-workspaces.md", "api/delete-workspace.md"} {
			assert.Equal(t, 1, countEdges(gr, id(p, graph.NodeAPI), workspace, graph.EdgeActsOn), p)
		}
		assert.Equal(t, 1, countEdges(gr, workflow, workspace, graph.EdgeActsOn))
	})

	t.Run("steps", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			assert.Equal(t, 1, countEdges(gr, workflow, factory.StepID("workflows/onboard.md", i), graph.EdgeContains))
		}
		for i := 1; i < 4; i++ {
			assert.Equal(t, 1, countEdges(gr,
				factory.StepID("workflows/onboard.md", i),
				factory.StepID("workflows/onboard.md", i+1),
				graph.EdgeNextStepOf))
		}
		assert.Equal(t, 1, countEdges(gr, factory.StepID("workflows/onboard.md", 1), create, graph.EdgeUsesAPI))
		assert.Equal(t, 1, countEdges(gr, factory.StepID("workflows/onboard.md", 2), graph.Unresolved("invite_member"), graph.EdgeUsesAPI))
	})

	t.Run("hierarchy", func(t *testing.T) {
		root := id("index.md", graph.NodeDoc)
		concepts := id("concepts/index.md", graph.NodeDoc)

		assert.Equal(t, 1, countEdges(gr, root, concepts, graph.EdgeParentOf))
		assert.Equal(t, 1, countEdges(gr, concepts, root, graph.EdgeChildOf))
		assert.Equal(t, 1, countEdges(gr, concepts, workspace, graph.EdgeParentOf))
		assert.Equal(t, 1, countEdges(gr, user, concepts, graph.EdgeChildOf))
		assert.Zero(t, countEdges(gr, root, root, graph.EdgeParentOf))
	})
}

func TestBuild_Deterministic(t *testing.T) {
	first := buildFixture(t, Config{Workers: 1})
	second := buildFixture(t, Config{Workers: 8})

	a, err := json.Marshal(first.Graph)
	require.NoError(t, err)
	b, err := json.Marshal(second.Graph)
	require.NoError(t, err)

	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestBuild_BaseURL(t *testing.T) {
	g := buildFixture(t, Config{BaseURL: "https://docs.acme.dev/"}).Graph

	assert.Equal(t, "https://docs.acme.dev", g.BaseURL)
	for _, n := range g.Nodes {
		b := n.Base()
		assert.Equal(t, "https://docs.acme.dev"+b.Slug, b.URL, b.SourcePath)
	}

	step := nodeBySource(g, "workflows/onboard.md", graph.NodeStep)
	require.NotNil(t, step)
	assert.Equal(t, "https://docs.acme.dev/workflows/onboard#step-1", step.Base().URL)
}

func TestBuild_NoBaseURLLeavesURLEmpty(t *testing.T) {
	g := buildFixture(t, Config{}).Graph
	for _, n := range g.Nodes {
		assert.Empty(t, n.Base().URL)
	}
}

func TestBuild_DiscoveryOptions(t *testing.T) {
	result := buildFixture(t, Config{
		Discovery: discovery.Options{ExcludeDirs: []string{"workflows"}, ExcludeFiles: []string{"broken.md"}},
	})

	assert.Equal(t, 7, result.Files)
	assert.Zero(t, result.Graph.Stats.NodesByType[graph.NodeWorkflow])
	assert.Zero(t, result.Graph.Stats.NodesByType[graph.NodeStep])
	assert.Equal(t, []string{
		`Unresolved related_entity "billing_account" in concepts/workspace.md`,
	}, result.Warnings)
}

func TestBuild_CollisionPolicy(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	write("a.md", "---\ntype: concept\ncanonical_name: Team\n---\n")
	write("b.md", "---\ntype: concept\ncanonical_name: team\n---\n")
	write("c.md", "---\ntype: api\noperation_id: get_team\nresource: Team\n---\n")

	tests := []struct {
		policy resolver.CollisionPolicy
		want   string
	}{
		{resolver.LastWins, "b.md"},
		{resolver.FirstWins, "a.md"},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			eng := newTestEngine(t, Config{Resolver: resolver.Options{CollisionPolicy: tt.policy}})
			result, err := eng.Build(context.Background(), dir)
			require.NoError(t, err)

			api := factory.MakeID("c.md", graph.NodeAPI)
			target := factory.MakeID(tt.want, graph.NodeConcept)
			assert.Equal(t, 1, countEdges(result.Graph, api, target, graph.EdgeActsOn))
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], "Duplicate entity name")
		})
	}
}

func TestBuild_EmptyDirectory(t *testing.T) {
	result, err := newTestEngine(t, Config{}).Build(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, result.Files)
	assert.NotNil(t, result.Graph.Nodes)
	assert.NotNil(t, result.Graph.Edges)
	assert.NotNil(t, result.Warnings)
	assert.Zero(t, result.Graph.Stats.TotalNodes)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t, Config{}).Build(ctx, fixtureDir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_WritesArtifact(t *testing.T) {
	result := buildFixture(t, Config{})
	out := filepath.Join(t.TempDir(), "out", "graph.json")

	require.NoError(t, graph.WriteFile(out, result.Graph))
	loaded, err := graph.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, result.Graph.Stats, loaded.Stats)
	assert.Len(t, loaded.Nodes, len(result.Graph.Nodes))
	assert.Equal(t, result.Graph.Edges, loaded.Edges)
}

func TestBuild_Logging(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"),
		[]byte("---\ntitle: Page\nowner: docs-team\n---\n\nBody.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"),
		[]byte("---\ntitle: [unclosed\n---\n"), 0o600))

	logger, rec := testutil.NewRecordingLogger()
	_, err := New(Config{Logger: logger, Now: fixedNow}).Build(context.Background(), dir)
	require.NoError(t, err)

	unknown, ok := rec.Find("ignoring unknown frontmatter fields")
	require.True(t, ok)
	assert.Equal(t, "page.md", unknown.Attrs["path"])
	assert.Equal(t, []string{"owner"}, unknown.Attrs["fields"])

	skipped, ok := rec.Find("skipping document")
	require.True(t, ok)
	assert.Equal(t, "bad.md", skipped.Attrs["path"])

	done, ok := rec.Find("build completed")
	require.True(t, ok)
	assert.EqualValues(t, 2, done.Attrs["files"])
	assert.EqualValues(t, 1, done.Attrs["nodes"])
	assert.EqualValues(t, 1, done.Attrs["warnings"])
}
