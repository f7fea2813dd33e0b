// Package resolver turns the textual cross-references carried by graph nodes
// into typed edges, and infers the structural and procedural edges implied
// by the document tree and step order.
//
// Resolution is a pure function of the node list. References that match no
// node are kept as edges to an "unresolved:<ref>" sentinel and reported as
// warnings.
package resolver

import (
	"fmt"
	"path"
	"sort"

	"golang.org/x/text/cases"

	"github.com/Lito-docs/graph/internal/discovery"
	"github.com/Lito-docs/graph/internal/graph"
)

// CollisionPolicy decides which node keeps a lookup key claimed by two nodes.
type CollisionPolicy string

// Collision policies.
const (
	// LastWins lets the later node in input order take the key.
	LastWins CollisionPolicy = "last"
	// FirstWins keeps the key with the first node that claimed it.
	FirstWins CollisionPolicy = "first"
)

// Valid reports whether p is a known policy. The empty policy means LastWins.
func (p CollisionPolicy) Valid() bool {
	return p == "" || p == LastWins || p == FirstWins
}

// Options configures resolution.
type Options struct {
	CollisionPolicy CollisionPolicy
}

// Result is the edge set and the diagnostics produced while building it.
type Result struct {
	Edges    []graph.Edge
	Warnings []string
}

// Resolve builds every edge for nodes. Edges are emitted in three passes:
// reference edges per node in input order, then step chains, then the
// structural hierarchy.
func Resolve(nodes []graph.Node, opts Options) Result {
	r := &resolver{
		nodes: nodes,
		res:   Result{Edges: []graph.Edge{}, Warnings: []string{}},
	}
	r.idx = buildIndexes(nodes, opts.CollisionPolicy, &r.res.Warnings)

	r.referenceEdges()
	r.stepChains()
	r.structuralEdges()

	return r.res
}

type resolver struct {
	nodes []graph.Node
	idx   *indexes
	res   Result
}

func (r *resolver) emit(source, target string, t graph.EdgeType, label string) {
	r.res.Edges = append(r.res.Edges, graph.Edge{Source: source, Target: target, Type: t, Label: label})
}

func (r *resolver) warn(format string, args ...any) {
	r.res.Warnings = append(r.res.Warnings, fmt.Sprintf(format, args...))
}

// link emits a labelled edge to the resolved target, or to the unresolved
// sentinel when id is empty. It reports whether the reference resolved.
func (r *resolver) link(source, id, ref string, t graph.EdgeType) bool {
	if id == "" {
		r.emit(source, graph.Unresolved(ref), t, ref)
		return false
	}
	r.emit(source, id, t, ref)
	return true
}

func (r *resolver) referenceEdges() {
	for _, node := range r.nodes {
		switch n := node.(type) {
		case *graph.ConceptNode:
			for _, entity := range n.RelatedEntities {
				if !r.link(n.ID, r.idx.resolveRef(entity), entity, graph.EdgeRelatedTo) {
					r.warn("Unresolved related_entity %q in %s", entity, n.SourcePath)
				}
			}

		case *graph.APINode:
			if n.Resource != "" {
				if !r.link(n.ID, r.idx.canonical.get(n.Resource), n.Resource, graph.EdgeActsOn) {
					r.warn("Unresolved resource %q in %s", n.Resource, n.SourcePath)
				}
			}

		case *graph.WorkflowNode:
			if n.PrimaryEntity != "" {
				if !r.link(n.ID, r.idx.canonical.get(n.PrimaryEntity), n.PrimaryEntity, graph.EdgeActsOn) {
					r.warn("Unresolved primary_entity %q in %s", n.PrimaryEntity, n.SourcePath)
				}
			}

		case *graph.StepNode:
			if n.UsesAPI != "" {
				if !r.link(n.ID, r.idx.operations.get(n.UsesAPI), n.UsesAPI, graph.EdgeUsesAPI) {
					r.warn("Unresolved API reference %q in step %d of %s", n.UsesAPI, n.StepNumber, n.SourcePath)
				}
			}
			if wf := r.idx.workflows.get(n.WorkflowID); wf != "" {
				r.emit(wf, n.ID, graph.EdgeContains, "")
			}

		case *graph.DocNode:
		}
	}
}

// stepChains links consecutive steps of each workflow id. Groups are visited
// in first-encounter order and sorted stably by step number.
func (r *resolver) stepChains() {
	var order []string
	groups := make(map[string][]*graph.StepNode)
	for _, node := range r.nodes {
		step, ok := node.(*graph.StepNode)
		if !ok {
			continue
		}
		if _, seen := groups[step.WorkflowID]; !seen {
			order = append(order, step.WorkflowID)
		}
		groups[step.WorkflowID] = append(groups[step.WorkflowID], step)
	}

	for _, wf := range order {
		steps := groups[wf]
		sort.SliceStable(steps, func(i, j int) bool {
			return steps[i].StepNumber < steps[j].StepNumber
		})
		for i := 0; i+1 < len(steps); i++ {
			r.emit(steps[i].ID, steps[i+1].ID, graph.EdgeNextStepOf, "")
		}
	}
}

// structuralEdges links index documents to the index of their parent
// directory and every other node to the index of its own directory.
func (r *resolver) structuralEdges() {
	for _, node := range r.nodes {
		b := node.Base()
		dir := path.Dir(b.SourcePath)

		var parent string
		if isIndexNode(node) {
			parent = r.idx.dirIndex[path.Dir(dir)]
		} else {
			parent = r.idx.dirIndex[dir]
		}
		if parent == "" || parent == b.ID {
			continue
		}

		r.emit(parent, b.ID, graph.EdgeParentOf, "")
		r.emit(b.ID, parent, graph.EdgeChildOf, "")
	}
}

// isIndexNode reports whether node stands for its directory. Steps share
// their workflow's source path but never represent the directory.
func isIndexNode(node graph.Node) bool {
	if _, ok := node.(*graph.StepNode); ok {
		return false
	}
	return discovery.IsIndex(node.Base().SourcePath)
}

// keyIndex maps case-folded names to node ids.
type keyIndex struct {
	name   string
	policy CollisionPolicy
	fold   cases.Caser
	ids    map[string]string
	paths  map[string]string
	warn   *[]string
}

func newKeyIndex(name string, policy CollisionPolicy, warnings *[]string) *keyIndex {
	return &keyIndex{
		name:   name,
		policy: policy,
		fold:   cases.Fold(),
		ids:    make(map[string]string),
		paths:  make(map[string]string),
		warn:   warnings,
	}
}

func (k *keyIndex) put(key string, n *graph.BaseNode) {
	if key == "" {
		return
	}
	folded := k.fold.String(key)

	if prev, ok := k.ids[folded]; ok && prev != n.ID {
		kept := n.SourcePath
		if k.policy == FirstWins {
			kept = k.paths[folded]
		}
		*k.warn = append(*k.warn, fmt.Sprintf("Duplicate %s %q in %s and %s; using %s",
			k.name, key, k.paths[folded], n.SourcePath, kept))
		if k.policy == FirstWins {
			return
		}
	}

	k.ids[folded] = n.ID
	k.paths[folded] = n.SourcePath
}

func (k *keyIndex) get(key string) string {
	if key == "" {
		return ""
	}
	return k.ids[k.fold.String(key)]
}

// indexes are built once over the whole node set before any edge is emitted
// and discarded after resolution.
type indexes struct {
	canonical  *keyIndex
	operations *keyIndex
	workflows  *keyIndex
	// dirIndex maps a directory to the id of its index document.
	dirIndex map[string]string
}

func buildIndexes(nodes []graph.Node, policy CollisionPolicy, warnings *[]string) *indexes {
	idx := &indexes{
		canonical:  newKeyIndex("entity name", policy, warnings),
		operations: newKeyIndex("operation_id", policy, warnings),
		workflows:  newKeyIndex("workflow_id", policy, warnings),
		dirIndex:   make(map[string]string),
	}

	for _, node := range nodes {
		switch n := node.(type) {
		case *graph.ConceptNode:
			idx.canonical.put(n.CanonicalName, &n.BaseNode)
			for _, alias := range n.Aliases {
				idx.canonical.put(alias, &n.BaseNode)
			}
		case *graph.APINode:
			idx.operations.put(n.OperationID, &n.BaseNode)
		case *graph.WorkflowNode:
			idx.workflows.put(n.WorkflowID, &n.BaseNode)
		}

		if isIndexNode(node) {
			dir := path.Dir(node.Base().SourcePath)
			if _, taken := idx.dirIndex[dir]; !taken || policy != FirstWins {
				idx.dirIndex[dir] = node.Base().ID
			}
		}
	}

	return idx
}

// resolveRef looks a free-form reference up by entity name, then operation
// id, then workflow id.
func (idx *indexes) resolveRef(ref string) string {
	if id := idx.canonical.get(ref); id != "" {
		return id
	}
	if id := idx.operations.get(ref); id != "" {
		return id
	}
	return idx.workflows.get(ref)
}
