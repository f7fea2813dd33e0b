package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SchemaVersion is written into every graph artifact.
const SchemaVersion = "1.0.0"

// TimestampFormat is the layout of Graph.GeneratedAt (UTC, millisecond precision).
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrUnknownNodeType is returned when decoding a node whose type is not recognised.
var ErrUnknownNodeType = errors.New("unknown node type")

// Stats aggregates node and edge counts.
type Stats struct {
	TotalNodes     int              `json:"total_nodes"`
	TotalEdges     int              `json:"total_edges"`
	NodesByType    map[NodeType]int `json:"nodes_by_type"`
	EdgesByType    map[EdgeType]int `json:"edges_by_type"`
	UnresolvedRefs int              `json:"unresolved_refs"`
}

// Graph is the compiled artifact. It is built once and never mutated.
type Graph struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
	SourceDir   string `json:"source_dir"`
	BaseURL     string `json:"base_url,omitempty"`
	Stats       Stats  `json:"stats"`
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
}

// ComputeStats counts nodes and edges by type. Unresolved references are
// counted from edge targets rather than from warnings.
func ComputeStats(nodes []Node, edges []Edge) Stats {
	stats := Stats{
		TotalNodes:  len(nodes),
		TotalEdges:  len(edges),
		NodesByType: make(map[NodeType]int),
		EdgesByType: make(map[EdgeType]int),
	}
	for _, n := range nodes {
		stats.NodesByType[n.Base().Type]++
	}
	for _, e := range edges {
		stats.EdgesByType[e.Type]++
		if e.IsUnresolved() {
			stats.UnresolvedRefs++
		}
	}
	return stats
}

// UnmarshalJSON decodes the node union by its type discriminator.
func (g *Graph) UnmarshalJSON(data []byte) error {
	type rawGraph struct {
		Version     string            `json:"version"`
		GeneratedAt string            `json:"generated_at"`
		SourceDir   string            `json:"source_dir"`
		BaseURL     string            `json:"base_url,omitempty"`
		Stats       Stats             `json:"stats"`
		Nodes       []json.RawMessage `json:"nodes"`
		Edges       []Edge            `json:"edges"`
	}
	var raw rawGraph
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	nodes := make([]Node, 0, len(raw.Nodes))
	for i, msg := range raw.Nodes {
		n, err := DecodeNode(msg)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}

	*g = Graph{
		Version:     raw.Version,
		GeneratedAt: raw.GeneratedAt,
		SourceDir:   raw.SourceDir,
		BaseURL:     raw.BaseURL,
		Stats:       raw.Stats,
		Nodes:       nodes,
		Edges:       raw.Edges,
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return nil
}

// DecodeNode decodes a single JSON node into its concrete variant.
func DecodeNode(data []byte) (Node, error) {
	var head struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var n Node
	switch head.Type {
	case NodeDoc:
		n = &DocNode{}
	case NodeConcept:
		n = &ConceptNode{}
	case NodeAPI:
		n = &APINode{}
	case NodeWorkflow:
		n = &WorkflowNode{}
	case NodeStep:
		n = &StepNode{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, head.Type)
	}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}

// WriteFile writes g as indented JSON, creating parent directories as needed.
func WriteFile(path string, g *Graph) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

// ReadFile loads a graph artifact written by WriteFile.
func ReadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode graph %s: %w", path, err)
	}
	return &g, nil
}
