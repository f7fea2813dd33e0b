// Package query provides read access to a finished graph: node lookup,
// filtering, traversal, diagnostics and keyword search.
// An Index is immutable after construction and safe for concurrent use.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Lito-docs/graph/internal/graph"
)

// ErrNodeNotFound is returned when a reference matches no node.
var ErrNodeNotFound = errors.New("node not found")

// Direction selects which edges Traverse follows.
type Direction string

// Traversal directions.
const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case Outgoing, Incoming, Both:
		return true
	}
	return false
}

// Index is a lookup structure over a graph.
type Index struct {
	graph    *graph.Graph
	byID     map[string]graph.Node
	position map[string]int
	bySlug   map[string]graph.Node
	outgoing map[string][]graph.Edge // source -> edges
	incoming map[string][]graph.Edge // target -> edges
}

// New indexes g. The graph must not be modified afterwards.
func New(g *graph.Graph) *Index {
	ix := &Index{
		graph:    g,
		byID:     make(map[string]graph.Node, len(g.Nodes)),
		position: make(map[string]int, len(g.Nodes)),
		bySlug:   make(map[string]graph.Node, len(g.Nodes)),
		outgoing: make(map[string][]graph.Edge),
		incoming: make(map[string][]graph.Edge),
	}

	for i, n := range g.Nodes {
		b := n.Base()
		ix.byID[b.ID] = n
		ix.position[b.ID] = i
		// First node with a given slug wins.
		if _, taken := ix.bySlug[b.Slug]; !taken {
			ix.bySlug[b.Slug] = n
		}
	}

	for _, e := range g.Edges {
		ix.outgoing[e.Source] = append(ix.outgoing[e.Source], e)
		ix.incoming[e.Target] = append(ix.incoming[e.Target], e)
	}

	return ix
}

// Graph returns the indexed graph.
func (ix *Index) Graph() *graph.Graph {
	return ix.graph
}

// Node looks a node up by exact id, then slug, then id prefix. Prefix
// matches pick the first node in graph order.
func (ix *Index) Node(ref string) (graph.Node, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNodeNotFound)
	}
	if n, ok := ix.byID[ref]; ok {
		return n, nil
	}
	if n, ok := ix.bySlug[ref]; ok {
		return n, nil
	}
	for _, n := range ix.graph.Nodes {
		if strings.HasPrefix(n.Base().ID, ref) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, ref)
}

// Filter narrows Nodes. Zero values match everything.
type Filter struct {
	Type  graph.NodeType
	Tag   string
	Limit int
}

// Nodes returns the nodes matching f in graph order.
func (ix *Index) Nodes(f Filter) []graph.Node {
	result := []graph.Node{}
	for _, n := range ix.graph.Nodes {
		b := n.Base()
		if f.Type != "" && b.Type != f.Type {
			continue
		}
		if f.Tag != "" && !contains(b.Tags, f.Tag) {
			continue
		}
		result = append(result, n)
		if f.Limit > 0 && len(result) == f.Limit {
			break
		}
	}
	return result
}

// Edges returns every edge touching id, outgoing first, each group in
// graph order.
func (ix *Index) Edges(id string) []graph.Edge {
	edges := make([]graph.Edge, 0, len(ix.outgoing[id])+len(ix.incoming[id]))
	edges = append(edges, ix.outgoing[id]...)
	edges = append(edges, ix.incoming[id]...)
	return edges
}

// Connection is a node reached by Traverse and the edge types that link it.
type Connection struct {
	Node      graph.Node
	EdgeTypes []graph.EdgeType
}

// Traverse returns the nodes one hop from id. An empty edgeType follows
// every type. Placeholder targets are skipped. Results follow graph order.
func (ix *Index) Traverse(id string, edgeType graph.EdgeType, dir Direction) ([]Connection, error) {
	if _, ok := ix.byID[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if dir == "" {
		dir = Both
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %q", dir)
	}

	linked := make(map[string][]graph.EdgeType)
	visit := func(edges []graph.Edge, other func(graph.Edge) string) {
		for _, e := range edges {
			if edgeType != "" && e.Type != edgeType {
				continue
			}
			peer := other(e)
			if peer == id {
				continue
			}
			if _, ok := ix.byID[peer]; !ok {
				continue
			}
			linked[peer] = append(linked[peer], e.Type)
		}
	}

	if dir == Outgoing || dir == Both {
		visit(ix.outgoing[id], func(e graph.Edge) string { return e.Target })
	}
	if dir == Incoming || dir == Both {
		visit(ix.incoming[id], func(e graph.Edge) string { return e.Source })
	}

	result := make([]Connection, 0, len(linked))
	for peer, types := range linked {
		result = append(result, Connection{Node: ix.byID[peer], EdgeTypes: types})
	}
	sort.Slice(result, func(i, j int) bool {
		return ix.position[result[i].Node.Base().ID] < ix.position[result[j].Node.Base().ID]
	})
	return result, nil
}

// Unresolved returns the edges whose target is a placeholder, in graph order.
func (ix *Index) Unresolved() []graph.Edge {
	result := []graph.Edge{}
	for _, e := range ix.graph.Edges {
		if e.IsUnresolved() {
			result = append(result, e)
		}
	}
	return result
}

// Orphans returns the nodes that no edge touches.
func (ix *Index) Orphans() []graph.Node {
	result := []graph.Node{}
	for _, n := range ix.graph.Nodes {
		id := n.Base().ID
		if len(ix.outgoing[id]) == 0 && len(ix.incoming[id]) == 0 {
			result = append(result, n)
		}
	}
	return result
}

// Title returns the title of the node with the given id, or the id itself
// when it names no node.
func (ix *Index) Title(id string) string {
	if n, ok := ix.byID[id]; ok {
		return n.Base().Title
	}
	return id
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
