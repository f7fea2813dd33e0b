package output

import (
	"github.com/Lito-docs/graph/internal/graph"
)

// BuildOutput is the JSON shape of the build command.
type BuildOutput struct {
	Output     string      `json:"output"`
	SQLite     string      `json:"sqlite,omitempty"`
	BuildID    string      `json:"build_id,omitempty"`
	Files      int         `json:"files"`
	DurationMS int64       `json:"duration_ms"`
	Stats      graph.Stats `json:"stats"`
	Warnings   []string    `json:"warnings"`
}

// NodeSummary is a one-line view of a node.
type NodeSummary struct {
	ID      string         `json:"id"`
	Type    graph.NodeType `json:"type"`
	Title   string         `json:"title"`
	Slug    string         `json:"slug"`
	Summary string         `json:"summary,omitempty"`
}

// EdgeView is an edge with both endpoint titles filled in.
type EdgeView struct {
	Type        graph.EdgeType `json:"type"`
	Source      string         `json:"source"`
	SourceTitle string         `json:"source_title"`
	Target      string         `json:"target"`
	TargetTitle string         `json:"target_title,omitempty"`
	Label       string         `json:"label,omitempty"`
}

// NodeDetail is a single node with its edges.
type NodeDetail struct {
	Node  graph.Node `json:"node"`
	Edges []EdgeView `json:"edges"`
}

// SearchHit is one search result.
type SearchHit struct {
	NodeSummary
	Score int `json:"score"`
}

// StepSummary is one step of a workflow view.
type StepSummary struct {
	StepNumber int           `json:"step_number"`
	Action     string        `json:"action"`
	UsesAPI    string        `json:"uses_api,omitempty"`
	LinkedAPIs []NodeSummary `json:"linked_apis"`
}

// WorkflowDetail is a workflow with its ordered steps.
type WorkflowDetail struct {
	ID            string        `json:"id"`
	WorkflowID    string        `json:"workflow_id"`
	Title         string        `json:"title"`
	Goal          string        `json:"goal"`
	PrimaryEntity string        `json:"primary_entity,omitempty"`
	RiskLevel     string        `json:"risk_level,omitempty"`
	Steps         []StepSummary `json:"steps"`
}

// InspectOutput is the JSON shape of the inspect command. Only the
// requested views are populated.
type InspectOutput struct {
	Graph      string          `json:"graph"`
	Stats      *graph.Stats    `json:"stats,omitempty"`
	Nodes      []NodeSummary   `json:"nodes,omitempty"`
	Node       *NodeDetail     `json:"node,omitempty"`
	Edges      []EdgeView      `json:"edges,omitempty"`
	Orphans    []NodeSummary   `json:"orphans,omitempty"`
	Unresolved []EdgeView      `json:"unresolved,omitempty"`
	Search     []SearchHit     `json:"search,omitempty"`
	Workflow   *WorkflowDetail `json:"workflow,omitempty"`
	APIs       []NodeSummary   `json:"apis,omitempty"`
}

// Summarize converts a node into its summary view.
func Summarize(n graph.Node) NodeSummary {
	b := n.Base()
	return NodeSummary{
		ID:      b.ID,
		Type:    b.Type,
		Title:   b.Title,
		Slug:    b.Slug,
		Summary: b.Summary,
	}
}
