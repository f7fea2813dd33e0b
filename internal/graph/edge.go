package graph

import "strings"

// EdgeType names a relationship between two nodes.
type EdgeType string

// Structural edges.
const (
	EdgeParentOf    EdgeType = "PARENT_OF"
	EdgeChildOf     EdgeType = "CHILD_OF"
	EdgeNextSection EdgeType = "NEXT_SECTION"
)

// Semantic edges.
const (
	EdgeRelatedTo    EdgeType = "RELATED_TO"
	EdgeDependsOn    EdgeType = "DEPENDS_ON"
	EdgeContains     EdgeType = "CONTAINS"
	EdgeDeprecatedBy EdgeType = "DEPRECATED_BY"
)

// Capability edges.
const (
	EdgeActsOn   EdgeType = "ACTS_ON"
	EdgeRequires EdgeType = "REQUIRES"
	EdgeEmits    EdgeType = "EMITS"
	EdgeUsesAPI  EdgeType = "USES_API"
)

// Procedural edges.
const (
	EdgeNextStepOf       EdgeType = "NEXT_STEP_OF"
	EdgeOnFailureTrigger EdgeType = "ON_FAILURE_TRIGGER"
	EdgeEscalatesTo      EdgeType = "ESCALATES_TO"
)

// EdgeTypes lists every edge type grouped by family.
var EdgeTypes = []EdgeType{
	EdgeParentOf, EdgeChildOf, EdgeNextSection,
	EdgeRelatedTo, EdgeDependsOn, EdgeContains, EdgeDeprecatedBy,
	EdgeActsOn, EdgeRequires, EdgeEmits, EdgeUsesAPI,
	EdgeNextStepOf, EdgeOnFailureTrigger, EdgeEscalatesTo,
}

// Valid reports whether t is a known edge type.
func (t EdgeType) Valid() bool {
	for _, et := range EdgeTypes {
		if et == t {
			return true
		}
	}
	return false
}

// UnresolvedPrefix marks an edge target whose textual reference matched no node.
const UnresolvedPrefix = "unresolved:"

// Edge is a directed, typed relationship.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
	Label  string   `json:"label,omitempty"`
}

// Unresolved returns the sentinel target for a reference that matched nothing.
func Unresolved(ref string) string {
	return UnresolvedPrefix + ref
}

// IsUnresolved reports whether target is an unresolved sentinel.
func IsUnresolved(target string) bool {
	return strings.HasPrefix(target, UnresolvedPrefix)
}

// IsUnresolved reports whether the edge points at an unresolved sentinel.
func (e Edge) IsUnresolved() bool {
	return IsUnresolved(e.Target)
}
