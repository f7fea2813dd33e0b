// Package factory turns classified documents into typed graph nodes.
package factory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Lito-docs/graph/internal/discovery"
	"github.com/Lito-docs/graph/internal/frontmatter"
	"github.com/Lito-docs/graph/internal/graph"
	"github.com/Lito-docs/graph/internal/markdown"
)

// IDLength is the number of hex characters kept from the hash.
const IDLength = 12

// SummaryLimit is the maximum summary length in characters.
const SummaryLimit = 200

// MakeID derives a stable node id from a source path and node type.
func MakeID(sourcePath string, nodeType graph.NodeType) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", sourcePath, nodeType)))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// StepID derives the id of step n of the workflow defined in sourcePath.
func StepID(sourcePath string, n int) string {
	return MakeID(fmt.Sprintf("%s:step:%d", sourcePath, n), graph.NodeStep)
}

// CreateNodes builds the nodes for one document. Workflows yield the
// workflow node followed by one step node per parsed step; every other type
// yields exactly one node.
func CreateNodes(file discovery.File, doc *frontmatter.Document, slug string, anchors []string) []graph.Node {
	shared := doc.Frontmatter.Shared()
	if anchors == nil {
		anchors = []string{}
	}

	base := func(t graph.NodeType) graph.BaseNode {
		return graph.BaseNode{
			ID:         MakeID(file.RelativePath, t),
			Type:       t,
			Title:      deriveTitle(shared.Title, slug),
			Summary:    ExtractSummary(doc.Body, shared.Description),
			SourcePath: file.RelativePath,
			Slug:       slug,
			Anchors:    anchors,
			Version:    shared.Version,
			Locale:     shared.Locale,
			Tags:       nonNil(shared.Tags),
		}
	}

	switch fm := doc.Frontmatter.(type) {
	case *frontmatter.Concept:
		return []graph.Node{&graph.ConceptNode{
			BaseNode:        base(graph.NodeConcept),
			EntityType:      fm.EntityType,
			CanonicalName:   fm.CanonicalName,
			Aliases:         nonNil(fm.Aliases),
			RelatedEntities: nonNil(fm.RelatedEntities),
		}}

	case *frontmatter.API:
		return []graph.Node{&graph.APINode{
			BaseNode:      base(graph.NodeAPI),
			APIType:       fm.APIType,
			OperationID:   fm.OperationID,
			Method:        fm.Method,
			Path:          fm.Path,
			Resource:      fm.Resource,
			Capabilities:  nonNil(fm.Capabilities),
			SideEffects:   nonNil(fm.SideEffects),
			Preconditions: nonNil(fm.Preconditions),
			Permissions:   nonNil(fm.Permissions),
			RateLimit:     fm.RateLimit,
		}}

	case *frontmatter.Workflow:
		return workflowNodes(file, fm, base(graph.NodeWorkflow), markdown.ParseWorkflowSections(doc.Body))

	case *frontmatter.Doc:
		return []graph.Node{&graph.DocNode{
			BaseNode: base(graph.NodeDoc),
			Section:  fm.Section,
		}}
	}

	return []graph.Node{&graph.DocNode{BaseNode: base(graph.NodeDoc)}}
}

func workflowNodes(file discovery.File, fm *frontmatter.Workflow, base graph.BaseNode, sections markdown.WorkflowSections) []graph.Node {
	steps := make([]graph.WorkflowStep, 0, len(sections.Steps))
	for _, s := range sections.Steps {
		steps = append(steps, graph.WorkflowStep{StepNumber: s.Number, Action: s.Action, UsesAPI: s.UsesAPI})
	}

	nodes := make([]graph.Node, 0, 1+len(steps))
	nodes = append(nodes, &graph.WorkflowNode{
		BaseNode:              base,
		WorkflowID:            fm.WorkflowID,
		Goal:                  fm.Goal,
		PrimaryEntity:         fm.PrimaryEntity,
		RiskLevel:             fm.RiskLevel,
		RequiresHumanApproval: fm.RequiresHumanApproval,
		Steps:                 steps,
		Preconditions:         sections.Preconditions,
		FailureModes:          sections.FailureModes,
		Recovery:              sections.Recovery,
		Guardrails:            sections.Guardrails,
	})

	for _, s := range steps {
		nodes = append(nodes, &graph.StepNode{
			BaseNode: graph.BaseNode{
				ID:         StepID(file.RelativePath, s.StepNumber),
				Type:       graph.NodeStep,
				Title:      fmt.Sprintf("Step %d: %s", s.StepNumber, s.Action),
				Summary:    s.Action,
				SourcePath: file.RelativePath,
				Slug:       fmt.Sprintf("%s#step-%d", base.Slug, s.StepNumber),
				Anchors:    []string{},
				Version:    fm.Version,
				Locale:     fm.Locale,
				Tags:       []string{},
			},
			StepNumber: s.StepNumber,
			Action:     s.Action,
			UsesAPI:    s.UsesAPI,
			WorkflowID: fm.WorkflowID,
		})
	}

	return nodes
}

// deriveTitle prefers the explicit title, then the last slug segment.
func deriveTitle(title, slug string) string {
	if title != "" {
		return title
	}
	if i := strings.LastIndex(slug, "/"); i >= 0 && slug[i+1:] != "" {
		return slug[i+1:]
	}
	return "Untitled"
}

// ExtractSummary returns description when set, otherwise the first paragraph
// of body: consecutive non-empty lines that are not headings or rules, joined
// by spaces and cut to SummaryLimit characters.
func ExtractSummary(body, description string) string {
	if description != "" {
		return description
	}

	var parts []string
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			if len(parts) > 0 {
				return truncate(strings.Join(parts, " "))
			}
			continue
		case strings.HasPrefix(trimmed, "---"):
			continue
		}
		parts = append(parts, trimmed)
	}

	return truncate(strings.Join(parts, " "))
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= SummaryLimit {
		return s
	}
	return string(runes[:SummaryLimit-3]) + "..."
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
