package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Lito-docs/graph/internal/cli/output"
	"github.com/Lito-docs/graph/internal/engine"
	"github.com/Lito-docs/graph/internal/graph"
	"github.com/Lito-docs/graph/internal/state"
	"github.com/spf13/cobra"
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile a docs directory into a knowledge graph",
		Long: `Compile a directory of Markdown documents into a typed knowledge graph.

Every .md and .mdx file becomes a doc, concept, api or workflow node
(workflows also produce one node per step). References between documents
become typed edges. The graph is written as JSON and, optionally, exported
to a SQLite database.

Problems with individual documents never abort the build; they are
reported as warnings.

Output adapts to environment:
  - Terminal: Styled summary with node and edge breakdown
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Build the graph for ./docs
  lito-graph build --input ./docs

  # Write to a custom location and export to SQLite
  lito-graph build -i ./docs -o dist/graph.json --sqlite dist/graph.db

  # Prefix node URLs with the public site address
  lito-graph build -i ./docs --base-url https://docs.example.com

  # Rebuild on every change
  lito-graph build -i ./docs --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			return runBuild(cmd, watch)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Docs directory to compile")
	cmd.Flags().StringP("output", "o", "", "Graph JSON output path (default: graph.json)")
	cmd.Flags().String("base-url", "", "Base URL prefixed to every node slug")
	cmd.Flags().String("sqlite", "", "Also export the graph to this SQLite database")
	cmd.Flags().Int("workers", 0, "Concurrent file readers (default: number of CPUs)")
	cmd.Flags().StringSlice("exclude-dir", nil, "Additional directory names to skip")
	cmd.Flags().StringSlice("exclude-file", nil, "Additional file names to skip")
	cmd.Flags().String("ignore-file", "", "Ignore file name inside the docs directory (default: .litoignore)")
	cmd.Flags().String("collision-policy", "", "Which document keeps a duplicated reference key (last|first)")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild whenever a document changes")

	_ = cmd.RegisterFlagCompletionFunc("collision-policy", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"last", "first"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runBuild(cmd *cobra.Command, watch bool) error {
	cc := NewCommandContext(cmd)
	eng := newEngine(cc.Cfg, cc.Logger)

	if !watch {
		result, err := eng.Build(cmd.Context(), cc.Cfg.Input)
		if err != nil {
			return buildError(err)
		}
		return publish(cmd.Context(), cc, result)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cc.Renderer
	err := eng.Watch(ctx, cc.Cfg.Input, func(result *engine.BuildResult, err error) {
		if err != nil {
			r.Error(buildError(err).Error())
			return
		}
		if err := publish(ctx, cc, result); err != nil {
			r.Error(err.Error())
		}
	})
	if err != nil {
		return buildError(err)
	}
	return nil
}

// buildError adds a hint to configuration errors.
func buildError(err error) error {
	if errors.Is(err, engine.ErrNoInput) {
		return fmt.Errorf("%w: use --input or set input in litograph.yaml", err)
	}
	return err
}

// publish writes the artifacts of a finished build and reports it.
func publish(ctx context.Context, cc *CommandContext, result *engine.BuildResult) error {
	cfg := cc.Cfg

	if err := graph.WriteFile(cfg.Output, result.Graph); err != nil {
		return err
	}

	out := output.BuildOutput{
		Output:     cfg.Output,
		Files:      result.Files,
		DurationMS: result.Duration.Milliseconds(),
		Stats:      result.Graph.Stats,
		Warnings:   result.Warnings,
	}

	if cfg.SQLitePath != "" {
		build, err := exportSQLite(ctx, cc, result.Graph)
		if err != nil {
			return err
		}
		out.SQLite = cfg.SQLitePath
		out.BuildID = build.ID
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return buildMarkdown(r, out)
	default:
		return buildText(r, out)
	}
}

func exportSQLite(ctx context.Context, cc *CommandContext, g *graph.Graph) (*state.Build, error) {
	store := state.NewSQLiteStore(cc.Logger)
	if err := store.Open(ctx, cc.Cfg.SQLitePath); err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer func() { _ = store.Close() }()

	build, err := store.SaveGraph(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to export graph: %w", err)
	}
	return build, nil
}

// buildText outputs build results in styled text format.
func buildText(r *output.Renderer, out output.BuildOutput) error {
	for _, w := range out.Warnings {
		r.Warning(w)
	}

	r.Success(fmt.Sprintf("Built %d nodes and %d edges from %d files in %dms",
		out.Stats.TotalNodes, out.Stats.TotalEdges, out.Files, out.DurationMS))
	r.StatusLine(out.Output, "success", "graph JSON")
	if out.SQLite != "" {
		r.StatusLine(out.SQLite, "success", "SQLite export, build "+out.BuildID)
	}
	if n := out.Stats.UnresolvedRefs; n > 0 {
		r.StatusLine("unresolved references", "warning", strconv.Itoa(n))
	}

	if out.Stats.TotalNodes > 0 && r.IsTTY() {
		r.Println("")
		r.Table([]string{"Node type", "Count"}, nodeTypeRows(out.Stats))
		if out.Stats.TotalEdges > 0 {
			r.Table([]string{"Edge type", "Count"}, edgeTypeRows(out.Stats))
		}
	}

	return nil
}

// buildMarkdown outputs build results in markdown format.
func buildMarkdown(r *output.Renderer, out output.BuildOutput) error {
	r.Println(output.FormatHeader(1, "Build Results"))
	r.Println("")
	r.Println(output.FormatKeyValue("Files", strconv.Itoa(out.Files)))
	r.Println(output.FormatKeyValue("Nodes", strconv.Itoa(out.Stats.TotalNodes)))
	r.Println(output.FormatKeyValue("Edges", strconv.Itoa(out.Stats.TotalEdges)))
	r.Println(output.FormatKeyValue("Unresolved References", strconv.Itoa(out.Stats.UnresolvedRefs)))
	r.Println(output.FormatKeyValue("Graph", out.Output))
	if out.SQLite != "" {
		r.Println(output.FormatKeyValue("SQLite", out.SQLite))
	}
	r.Println("")

	if out.Stats.TotalNodes > 0 {
		r.Println(output.FormatHeader(2, "Nodes by Type"))
		r.Println("")
		r.Table([]string{"Node type", "Count"}, nodeTypeRows(out.Stats))
	}
	if out.Stats.TotalEdges > 0 {
		r.Println(output.FormatHeader(2, "Edges by Type"))
		r.Println("")
		r.Table([]string{"Edge type", "Count"}, edgeTypeRows(out.Stats))
	}

	if len(out.Warnings) > 0 {
		r.Println(output.FormatHeader(2, "Warnings"))
		r.Println("")
		for _, w := range out.Warnings {
			r.Printf("- %s\n", w)
		}
	}

	return nil
}

// nodeTypeRows lists non-zero node counts in declaration order.
func nodeTypeRows(stats graph.Stats) [][]string {
	var rows [][]string
	for _, t := range graph.NodeTypes {
		if n := stats.NodesByType[t]; n > 0 {
			rows = append(rows, []string{string(t), strconv.Itoa(n)})
		}
	}
	return rows
}

func edgeTypeRows(stats graph.Stats) [][]string {
	var rows [][]string
	for _, t := range graph.EdgeTypes {
		if n := stats.EdgesByType[t]; n > 0 {
			rows = append(rows, []string{string(t), strconv.Itoa(n)})
		}
	}
	return rows
}
