package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lito-docs/graph/internal/frontmatter"
	"github.com/Lito-docs/graph/internal/graph"
)

// generateSchemaDocs generates the document and graph schema reference.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating schema docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateFrontmatterDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate frontmatter.md: %w", err)
	}
	log.Printf("  Generated frontmatter.md")

	if err := generateGraphDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate graph.md: %w", err)
	}
	log.Printf("  Generated graph.md")

	return nil
}

// documentTypes describes each frontmatter type and the node it produces.
var documentTypes = []struct {
	Type        frontmatter.Type
	Description string
	Example     string
}{
	{
		Type:        frontmatter.TypeDoc,
		Description: "A plain documentation page. Used when type is omitted.",
		Example: `---
title: Getting Started
section: guides
---`,
	},
	{
		Type:        frontmatter.TypeConcept,
		Description: "A domain entity. Other documents reference it by canonical name or alias.",
		Example: `---
type: concept
title: Workspace
canonical_name: Workspace
aliases: [Org Workspace]
related_entities: [User]
---`,
	},
	{
		Type:        frontmatter.TypeAPI,
		Description: "A single API operation. Without operation_id, one is derived from method and path.",
		Example: `---
type: api
title: Create workspace
operation_id: create_workspace
method: POST
path: /v1/workspaces
resource: Workspace
---`,
	},
	{
		Type:        frontmatter.TypeWorkflow,
		Description: "A multi-step procedure. Each numbered item under a Steps heading becomes a step node.",
		Example: `---
type: workflow
title: Onboard a workspace
workflow_id: onboard_new_workspace
goal: Get a new customer productive
primary_entity: Workspace
risk_level: low
---

## Steps

1. Create the workspace with ` + "`create_workspace`" + `
2. Invite the first admin`,
	},
}

// generateFrontmatterDoc generates the frontmatter reference page.
func generateFrontmatterDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Frontmatter", "Document metadata recognised by lito-graph")
	w.GeneratedMarker()

	w.Header(1, "Frontmatter")
	w.Paragraph("Each document starts with an optional YAML block between `---` lines. " +
		"The `type` field selects the schema; unknown fields are ignored.")

	common := frontmatter.KnownFields(frontmatter.TypeDoc)
	w.Header(2, "Common Fields")
	w.BulletList(codeList(intersect(common, frontmatter.KnownFields(frontmatter.TypeConcept))))

	for _, dt := range documentTypes {
		w.Header(2, InlineCode(string(dt.Type)))
		w.Paragraph(dt.Description)
		w.Paragraph("Type-specific fields: " + strings.Join(codeList(specificFields(dt.Type)), ", "))
		w.CodeBlock("markdown", dt.Example)
	}

	filename := filepath.Join(outDir, "frontmatter.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

// edgeDescriptions documents each edge type.
var edgeDescriptions = map[graph.EdgeType]string{
	graph.EdgeParentOf:         "Directory index to each document in its directory",
	graph.EdgeChildOf:          "Inverse of PARENT_OF",
	graph.EdgeNextSection:      "Reserved; not produced by build",
	graph.EdgeRelatedTo:        "Concept to each of its related entities",
	graph.EdgeDependsOn:        "Reserved; not produced by build",
	graph.EdgeContains:         "Workflow to each of its steps",
	graph.EdgeDeprecatedBy:     "Reserved; not produced by build",
	graph.EdgeActsOn:           "API resource or workflow primary entity to the concept",
	graph.EdgeRequires:         "Reserved; not produced by build",
	graph.EdgeEmits:            "Reserved; not produced by build",
	graph.EdgeUsesAPI:          "Workflow step to the API it calls",
	graph.EdgeNextStepOf:       "Step to the step that follows it",
	graph.EdgeOnFailureTrigger: "Reserved; not produced by build",
	graph.EdgeEscalatesTo:      "Reserved; not produced by build",
}

// generateGraphDoc generates the graph artifact reference page.
func generateGraphDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Graph Format", "Structure of the graph artifact written by lito-graph build")
	w.GeneratedMarker()

	w.Header(1, "Graph Format")
	w.Paragraph(fmt.Sprintf("`lito-graph build` writes a single JSON document with schema version %s. "+
		"Node ids are stable across builds: they hash the source path and node type.",
		InlineCode(graph.SchemaVersion)))

	w.CodeBlock("json", `{
  "version": "`+graph.SchemaVersion+`",
  "generated_at": "2026-01-01T00:00:00.000Z",
  "source_dir": "/abs/path/to/docs",
  "stats": { "total_nodes": 0, "total_edges": 0, "nodes_by_type": {}, "edges_by_type": {}, "unresolved_refs": 0 },
  "nodes": [],
  "edges": []
}`)

	w.Header(2, "Node Types")
	nodeRows := make([][]string, 0, len(graph.NodeTypes))
	for _, t := range graph.NodeTypes {
		source := "Document with `type: " + string(t) + "`"
		if t == graph.NodeStep {
			source = "Numbered item under a workflow's Steps heading"
		}
		nodeRows = append(nodeRows, []string{InlineCode(string(t)), source})
	}
	w.Table([]string{"Type", "Produced by"}, nodeRows)

	w.Header(2, "Edge Types")
	w.Paragraph(fmt.Sprintf("References that match no node keep their edge; the target is %s followed by the reference text.",
		InlineCode(graph.UnresolvedPrefix)))
	edgeRows := make([][]string, 0, len(graph.EdgeTypes))
	for _, t := range graph.EdgeTypes {
		edgeRows = append(edgeRows, []string{InlineCode(string(t)), edgeDescriptions[t]})
	}
	w.Table([]string{"Type", "Meaning"}, edgeRows)

	filename := filepath.Join(outDir, "graph.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

// specificFields returns the fields only documents of type t recognise.
func specificFields(t frontmatter.Type) []string {
	base := intersect(frontmatter.KnownFields(frontmatter.TypeDoc), frontmatter.KnownFields(frontmatter.TypeConcept))
	var out []string
	for _, f := range frontmatter.KnownFields(t) {
		if !contains(base, f) {
			out = append(out, f)
		}
	}
	return out
}

func intersect(a, b []string) []string {
	var out []string
	for _, v := range a {
		if contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func codeList(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = InlineCode(v)
	}
	return out
}
