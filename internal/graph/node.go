// Package graph defines the typed knowledge graph produced from a docs tree:
// the node variants, the edge families, aggregate statistics and the JSON
// artifact that downstream tooling reads.
package graph

// NodeType discriminates the node variants.
type NodeType string

// Node types.
const (
	NodeDoc      NodeType = "doc"
	NodeConcept  NodeType = "concept"
	NodeAPI      NodeType = "api"
	NodeWorkflow NodeType = "workflow"
	NodeStep     NodeType = "step"
)

// NodeTypes lists every node type in a stable order.
var NodeTypes = []NodeType{NodeDoc, NodeConcept, NodeAPI, NodeWorkflow, NodeStep}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeDoc, NodeConcept, NodeAPI, NodeWorkflow, NodeStep:
		return true
	}
	return false
}

// Node is implemented by every node variant. The set of variants is closed;
// consumers switch on the concrete type.
type Node interface {
	// Base returns the attributes shared by all variants.
	Base() *BaseNode
	isNode()
}

// BaseNode holds the attributes common to all node variants.
type BaseNode struct {
	ID         string   `json:"id"`
	Type       NodeType `json:"type"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	SourcePath string   `json:"source_path"`
	Slug       string   `json:"slug"`
	URL        string   `json:"url,omitempty"`
	Anchors    []string `json:"anchors"`
	Version    string   `json:"version,omitempty"`
	Locale     string   `json:"locale,omitempty"`
	Tags       []string `json:"tags"`
}

// DocNode is a plain documentation page.
type DocNode struct {
	BaseNode
	Section string `json:"section,omitempty"`
}

// ConceptNode describes a domain entity. CanonicalName and Aliases are the
// keys other documents use to reference it.
type ConceptNode struct {
	BaseNode
	EntityType      string   `json:"entity_type"`
	CanonicalName   string   `json:"canonical_name"`
	Aliases         []string `json:"aliases"`
	RelatedEntities []string `json:"related_entities"`
}

// APINode describes a single API operation.
type APINode struct {
	BaseNode
	APIType       string   `json:"api_type"`
	OperationID   string   `json:"operation_id"`
	Method        string   `json:"method,omitempty"`
	Path          string   `json:"path,omitempty"`
	Resource      string   `json:"resource,omitempty"`
	Capabilities  []string `json:"capabilities"`
	SideEffects   []string `json:"side_effects"`
	Preconditions []string `json:"preconditions"`
	Permissions   []string `json:"permissions"`
	RateLimit     string   `json:"rate_limit,omitempty"`
}

// WorkflowStep is the lightweight step descriptor embedded in a workflow.
type WorkflowStep struct {
	StepNumber int    `json:"step_number"`
	Action     string `json:"action"`
	UsesAPI    string `json:"uses_api,omitempty"`
}

// WorkflowNode describes a multi-step procedure. Steps is a denormalized copy
// of the workflow's step nodes.
type WorkflowNode struct {
	BaseNode
	WorkflowID            string         `json:"workflow_id"`
	Goal                  string         `json:"goal"`
	PrimaryEntity         string         `json:"primary_entity,omitempty"`
	RiskLevel             string         `json:"risk_level,omitempty"`
	RequiresHumanApproval bool           `json:"requires_human_approval"`
	Steps                 []WorkflowStep `json:"steps"`
	Preconditions         []string       `json:"preconditions,omitempty"`
	FailureModes          []string       `json:"failure_modes,omitempty"`
	Recovery              []string       `json:"recovery,omitempty"`
	Guardrails            []string       `json:"guardrails,omitempty"`
}

// StepNode is one step of a workflow. WorkflowID refers back to the owner.
type StepNode struct {
	BaseNode
	StepNumber int    `json:"step_number"`
	Action     string `json:"action"`
	UsesAPI    string `json:"uses_api,omitempty"`
	WorkflowID string `json:"workflow_id"`
}

func (n *DocNode) Base() *BaseNode      { return &n.BaseNode }
func (n *ConceptNode) Base() *BaseNode  { return &n.BaseNode }
func (n *APINode) Base() *BaseNode      { return &n.BaseNode }
func (n *WorkflowNode) Base() *BaseNode { return &n.BaseNode }
func (n *StepNode) Base() *BaseNode     { return &n.BaseNode }

func (*DocNode) isNode()      {}
func (*ConceptNode) isNode()  {}
func (*APINode) isNode()      {}
func (*WorkflowNode) isNode() {}
func (*StepNode) isNode()     {}
