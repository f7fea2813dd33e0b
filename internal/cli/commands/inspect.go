package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Lito-docs/graph/internal/cli/output"
	"github.com/Lito-docs/graph/internal/graph"
	"github.com/Lito-docs/graph/internal/query"
	"github.com/Lito-docs/graph/internal/state"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// inspectOptions selects the views printed by inspect.
type inspectOptions struct {
	stats      bool
	nodes      bool
	nodeType   string
	tag        string
	limit      int
	node       string
	edges      bool
	edgeType   string
	orphans    bool
	unresolved bool
	search     string
	workflow   string
	entity     string
}

// empty reports whether no view was requested.
func (o *inspectOptions) empty() bool {
	return !o.nodes && o.node == "" && !o.edges && !o.orphans && !o.unresolved &&
		o.search == "" && o.workflow == "" && o.entity == ""
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Explore a built knowledge graph",
		Long: `Load a graph produced by "lito-graph build" and print views of it.

The graph is read from the JSON artifact, or from a SQLite export when the
path ends in .db, .sqlite or .sqlite3. Without a view flag, statistics are
shown.

Node references accept a full node id, a slug or a unique id prefix.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show statistics
  lito-graph inspect -g graph.json

  # List concept nodes tagged core
  lito-graph inspect --nodes --type concept --tag core

  # Show one node and its edges
  lito-graph inspect --node /concepts/workspace

  # Find dangling references
  lito-graph inspect --unresolved --orphans

  # Walk a workflow and its linked APIs
  lito-graph inspect --workflow onboard_new_workspace --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}

	cmd.Flags().StringP("graph", "g", "", "Graph to inspect: JSON artifact or SQLite export (default: graph.json)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Show node and edge statistics (default view)")
	cmd.Flags().BoolVar(&opts.nodes, "nodes", false, "List nodes")
	cmd.Flags().StringVar(&opts.nodeType, "type", "", "Only list nodes of this type (doc|concept|api|workflow|step)")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Only list nodes carrying this tag")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of nodes or search results")
	cmd.Flags().StringVar(&opts.node, "node", "", "Show a single node and its edges")
	cmd.Flags().BoolVar(&opts.edges, "edges", false, "List edges")
	cmd.Flags().StringVar(&opts.edgeType, "edge-type", "", "Only list edges of this type")
	cmd.Flags().BoolVar(&opts.orphans, "orphans", false, "List nodes without any edge")
	cmd.Flags().BoolVar(&opts.unresolved, "unresolved", false, "List references that matched no node")
	cmd.Flags().StringVar(&opts.search, "search", "", "Rank nodes matching a query")
	cmd.Flags().StringVar(&opts.workflow, "workflow", "", "Show a workflow's steps and linked APIs")
	cmd.Flags().StringVar(&opts.entity, "entity", "", "List APIs acting on an entity")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		types := make([]string, 0, len(graph.NodeTypes))
		for _, t := range graph.NodeTypes {
			types = append(types, string(t))
		}
		return types, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInspect(cmd *cobra.Command, opts *inspectOptions) error {
	cc := NewCommandContext(cmd)

	if opts.nodeType != "" && !graph.NodeType(opts.nodeType).Valid() {
		return fmt.Errorf("invalid node type %q", opts.nodeType)
	}
	if opts.edgeType != "" && !graph.EdgeType(opts.edgeType).Valid() {
		return fmt.Errorf("invalid edge type %q", opts.edgeType)
	}

	g, err := loadGraph(cmd.Context(), cc, cc.Cfg.Output)
	if err != nil {
		return err
	}

	out, err := collectInspect(query.New(g), cc.Cfg.Output, opts)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	renderInspect(r, out)
	return nil
}

// loadGraph reads a JSON artifact or a SQLite export.
func loadGraph(ctx context.Context, cc *CommandContext, path string) (*graph.Graph, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("graph not found at %s: run lito-graph build first", path)
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		store := state.NewSQLiteStore(cc.Logger)
		if err := store.Open(ctx, path); err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		defer func() { _ = store.Close() }()
		return store.LoadGraph(ctx)
	default:
		return graph.ReadFile(path)
	}
}

// collectInspect evaluates every requested view.
func collectInspect(ix *query.Index, path string, opts *inspectOptions) (*output.InspectOutput, error) {
	out := &output.InspectOutput{Graph: path}

	if opts.stats || opts.empty() {
		stats := ix.Graph().Stats
		out.Stats = &stats
	}

	if opts.nodes {
		nodes := ix.Nodes(query.Filter{
			Type:  graph.NodeType(opts.nodeType),
			Tag:   opts.tag,
			Limit: opts.limit,
		})
		out.Nodes = summarizeAll(nodes)
	}

	if opts.node != "" {
		n, err := ix.Node(opts.node)
		if err != nil {
			return nil, err
		}
		out.Node = &output.NodeDetail{
			Node:  n,
			Edges: edgeViews(ix, ix.Edges(n.Base().ID)),
		}
	}

	if opts.edges {
		var edges []graph.Edge
		for _, e := range ix.Graph().Edges {
			if opts.edgeType == "" || string(e.Type) == opts.edgeType {
				edges = append(edges, e)
			}
		}
		out.Edges = edgeViews(ix, edges)
	}

	if opts.orphans {
		out.Orphans = summarizeAll(ix.Orphans())
	}

	if opts.unresolved {
		out.Unresolved = edgeViews(ix, ix.Unresolved())
	}

	if opts.search != "" {
		out.Search = []output.SearchHit{}
		for _, res := range ix.Search(opts.search, opts.limit) {
			out.Search = append(out.Search, output.SearchHit{
				NodeSummary: output.Summarize(res.Node),
				Score:       res.Score,
			})
		}
	}

	if opts.workflow != "" {
		view, err := ix.Workflow(opts.workflow)
		if err != nil {
			return nil, err
		}
		out.Workflow = workflowDetail(view)
	}

	if opts.entity != "" {
		apis, err := ix.APIsForEntity(opts.entity)
		if err != nil {
			return nil, err
		}
		out.APIs = make([]output.NodeSummary, 0, len(apis))
		for _, api := range apis {
			out.APIs = append(out.APIs, output.Summarize(api))
		}
	}

	return out, nil
}

func summarizeAll(nodes []graph.Node) []output.NodeSummary {
	summaries := make([]output.NodeSummary, 0, len(nodes))
	for _, n := range nodes {
		summaries = append(summaries, output.Summarize(n))
	}
	return summaries
}

func edgeViews(ix *query.Index, edges []graph.Edge) []output.EdgeView {
	views := make([]output.EdgeView, 0, len(edges))
	for _, e := range edges {
		v := output.EdgeView{
			Type:        e.Type,
			Source:      e.Source,
			SourceTitle: ix.Title(e.Source),
			Target:      e.Target,
			Label:       e.Label,
		}
		if !e.IsUnresolved() {
			v.TargetTitle = ix.Title(e.Target)
		}
		views = append(views, v)
	}
	return views
}

func workflowDetail(view *query.WorkflowView) *output.WorkflowDetail {
	wf := view.Workflow
	detail := &output.WorkflowDetail{
		ID:            wf.ID,
		WorkflowID:    wf.WorkflowID,
		Title:         wf.Title,
		Goal:          wf.Goal,
		PrimaryEntity: wf.PrimaryEntity,
		RiskLevel:     wf.RiskLevel,
		Steps:         make([]output.StepSummary, 0, len(view.Steps)),
	}
	for _, s := range view.Steps {
		step := output.StepSummary{
			StepNumber: s.StepNumber,
			Action:     s.Action,
			UsesAPI:    s.UsesAPI,
			LinkedAPIs: make([]output.NodeSummary, 0, len(s.LinkedAPIs)),
		}
		for _, api := range s.LinkedAPIs {
			step.LinkedAPIs = append(step.LinkedAPIs, output.Summarize(api))
		}
		detail.Steps = append(detail.Steps, step)
	}
	return detail
}

// renderInspect prints the collected views as text or markdown. The
// renderer picks table and header styles for the active mode.
func renderInspect(r *output.Renderer, out *output.InspectOutput) {
	titleCaser := cases.Title(language.English)

	if out.Stats != nil {
		r.Header(1, "Graph Statistics")
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatKeyValue("Graph", out.Graph))
			r.Println(output.FormatKeyValue("Nodes", strconv.Itoa(out.Stats.TotalNodes)))
			r.Println(output.FormatKeyValue("Edges", strconv.Itoa(out.Stats.TotalEdges)))
			r.Println(output.FormatKeyValue("Unresolved References", strconv.Itoa(out.Stats.UnresolvedRefs)))
			r.Println("")
		} else {
			r.Muted(out.Graph)
			r.Printf("Nodes: %d  Edges: %d  Unresolved: %d\n\n",
				out.Stats.TotalNodes, out.Stats.TotalEdges, out.Stats.UnresolvedRefs)
		}
		if rows := nodeTypeRows(*out.Stats); len(rows) > 0 {
			for _, row := range rows {
				row[0] = typeLabel(titleCaser, graph.NodeType(row[0]))
			}
			r.Table([]string{"Node type", "Count"}, rows)
		}
		if rows := edgeTypeRows(*out.Stats); len(rows) > 0 {
			r.Table([]string{"Edge type", "Count"}, rows)
		}
	}

	if out.Nodes != nil {
		r.Header(2, fmt.Sprintf("Nodes (%d)", len(out.Nodes)))
		nodeTable(r, out.Nodes)
	}

	if out.Node != nil {
		b := out.Node.Node.Base()
		r.Header(2, b.Title)
		r.Println(output.FormatKeyValue("ID", b.ID))
		r.Println(output.FormatKeyValue("Type", typeLabel(titleCaser, b.Type)))
		r.Println(output.FormatKeyValue("Slug", b.Slug))
		r.Println(output.FormatKeyValue("Source", b.SourcePath))
		if b.URL != "" {
			r.Println(output.FormatKeyValue("URL", b.URL))
		}
		if len(b.Tags) > 0 {
			r.Println(output.FormatKeyValue("Tags", strings.Join(b.Tags, ", ")))
		}
		if b.Summary != "" {
			r.Println(output.FormatKeyValue("Summary", b.Summary))
		}
		r.Println("")
		edgeTable(r, out.Node.Edges)
	}

	if out.Edges != nil {
		r.Header(2, fmt.Sprintf("Edges (%d)", len(out.Edges)))
		edgeTable(r, out.Edges)
	}

	if out.Orphans != nil {
		r.Header(2, fmt.Sprintf("Orphans (%d)", len(out.Orphans)))
		nodeTable(r, out.Orphans)
	}

	if out.Unresolved != nil {
		r.Header(2, fmt.Sprintf("Unresolved References (%d)", len(out.Unresolved)))
		edgeTable(r, out.Unresolved)
	}

	if out.Search != nil {
		r.Header(2, fmt.Sprintf("Search Results (%d)", len(out.Search)))
		rows := make([][]string, 0, len(out.Search))
		for _, hit := range out.Search {
			rows = append(rows, []string{strconv.Itoa(hit.Score), string(hit.Type), hit.Title, hit.Slug})
		}
		if len(rows) > 0 {
			r.Table([]string{"Score", "Type", "Title", "Slug"}, rows)
		}
	}

	if wf := out.Workflow; wf != nil {
		r.Header(2, wf.Title)
		r.Println(output.FormatKeyValue("Workflow", wf.WorkflowID))
		r.Println(output.FormatKeyValue("Goal", wf.Goal))
		if wf.PrimaryEntity != "" {
			r.Println(output.FormatKeyValue("Primary Entity", wf.PrimaryEntity))
		}
		if wf.RiskLevel != "" {
			r.Println(output.FormatKeyValue("Risk", titleCaser.String(wf.RiskLevel)))
		}
		r.Println("")
		rows := make([][]string, 0, len(wf.Steps))
		for _, s := range wf.Steps {
			apis := make([]string, 0, len(s.LinkedAPIs))
			for _, api := range s.LinkedAPIs {
				apis = append(apis, api.Title)
			}
			rows = append(rows, []string{strconv.Itoa(s.StepNumber), s.Action, s.UsesAPI, strings.Join(apis, ", ")})
		}
		if len(rows) > 0 {
			r.Table([]string{"#", "Action", "Uses API", "Linked APIs"}, rows)
		}
	}

	if out.APIs != nil {
		r.Header(2, fmt.Sprintf("APIs (%d)", len(out.APIs)))
		nodeTable(r, out.APIs)
	}
}

func nodeTable(r *output.Renderer, nodes []output.NodeSummary) {
	if len(nodes) == 0 {
		r.Muted("None")
		return
	}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{string(n.Type), n.Title, n.Slug, shortID(n.ID)})
	}
	r.Table([]string{"Type", "Title", "Slug", "ID"}, rows)
}

func edgeTable(r *output.Renderer, edges []output.EdgeView) {
	if len(edges) == 0 {
		r.Muted("No edges")
		return
	}
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		target := e.TargetTitle
		if target == "" {
			target = e.Target
		}
		rows = append(rows, []string{e.SourceTitle, string(e.Type), target, e.Label})
	}
	r.Table([]string{"Source", "Type", "Target", "Label"}, rows)
}

// typeLabel renders a node type for headings.
func typeLabel(caser cases.Caser, t graph.NodeType) string {
	if t == graph.NodeAPI {
		return "API"
	}
	return caser.String(string(t))
}

// shortID abbreviates node ids for tables. Lookups accept the prefix.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
