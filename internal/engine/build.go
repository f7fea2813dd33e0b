package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lito-docs/graph/internal/discovery"
	"github.com/Lito-docs/graph/internal/factory"
	"github.com/Lito-docs/graph/internal/frontmatter"
	"github.com/Lito-docs/graph/internal/graph"
	"github.com/Lito-docs/graph/internal/markdown"
	"github.com/Lito-docs/graph/internal/resolver"
)

// BuildResult is a finished graph plus the diagnostics gathered on the way.
type BuildResult struct {
	Graph *graph.Graph
	// Warnings lists per-file parse failures followed by resolution warnings.
	Warnings []string
	// Files is the number of documents discovered.
	Files    int
	Duration time.Duration
}

// fileResult is the outcome of processing one document.
type fileResult struct {
	nodes   []graph.Node
	warning string
}

// Build compiles the docs tree at docsPath. Only a missing input or an I/O
// failure while walking the tree is an error; per-file problems become
// warnings and the file is left out of the graph.
func (e *Engine) Build(ctx context.Context, docsPath string) (*BuildResult, error) {
	start := time.Now()

	if docsPath == "" {
		return nil, ErrNoInput
	}
	root, err := filepath.Abs(docsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", docsPath, err)
	}
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, root)
		}
		return nil, err
	}

	e.logger.Info("starting build", "source_dir", root)

	// 1. Discovery
	files, err := discovery.Collect(root, e.discovery)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	e.logger.Debug("discovered documents", "count", len(files))

	// 2. Read, classify and build nodes per file. Results are kept in
	// discovery order regardless of completion order.
	results := make([]fileResult, len(files))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	for i, f := range files {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			results[i] = e.processFile(f)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var nodes []graph.Node
	var warnings []string
	for _, r := range results {
		if r.warning != "" {
			warnings = append(warnings, r.warning)
			continue
		}
		nodes = append(nodes, r.nodes...)
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}

	// 3. Resolve edges over the complete node set
	res := resolver.Resolve(nodes, e.resolver)
	warnings = append(warnings, res.Warnings...)
	if warnings == nil {
		warnings = []string{}
	}

	// 4. Stats + artifact
	g := &graph.Graph{
		Version:     graph.SchemaVersion,
		GeneratedAt: e.now().UTC().Format(graph.TimestampFormat),
		SourceDir:   root,
		BaseURL:     e.baseURL,
		Stats:       graph.ComputeStats(nodes, res.Edges),
		Nodes:       nodes,
		Edges:       res.Edges,
	}

	result := &BuildResult{
		Graph:    g,
		Warnings: warnings,
		Files:    len(files),
		Duration: time.Since(start),
	}

	e.logger.Info("build completed",
		"files", result.Files,
		"nodes", g.Stats.TotalNodes,
		"edges", g.Stats.TotalEdges,
		"unresolved_refs", g.Stats.UnresolvedRefs,
		"warnings", len(warnings),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// processFile turns one document into nodes, or into a warning when it
// cannot be read or classified.
func (e *Engine) processFile(f discovery.File) fileResult {
	content, err := os.ReadFile(f.AbsolutePath) //nolint:gosec // G304: path comes from discovery
	if err != nil {
		return e.fileFailure(f, err)
	}

	doc, err := frontmatter.Parse(string(content))
	if err != nil {
		return e.fileFailure(f, err)
	}

	if unknown := unknownFields(doc); len(unknown) > 0 {
		e.logger.Debug("ignoring unknown frontmatter fields", "path", f.RelativePath, "fields", unknown)
	}

	slug := discovery.DeriveSlug(f.RelativePath)
	outline := markdown.ExtractHeadings(doc.Body)
	nodes := factory.CreateNodes(f, doc, slug, outline.Anchors)

	if e.baseURL != "" {
		for _, n := range nodes {
			b := n.Base()
			b.URL = e.baseURL + b.Slug
		}
	}

	return fileResult{nodes: nodes}
}

func (e *Engine) fileFailure(f discovery.File, err error) fileResult {
	e.logger.Debug("skipping document", "path", f.RelativePath, "error", err)
	return fileResult{warning: fmt.Sprintf("Failed to parse %s: %v", f.RelativePath, err)}
}

func unknownFields(doc *frontmatter.Document) []string {
	known := frontmatter.KnownFields(doc.Frontmatter.Kind())
	var unknown []string
	for key := range doc.Raw {
		if !slices.Contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}
