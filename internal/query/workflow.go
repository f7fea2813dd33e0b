package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Lito-docs/graph/internal/graph"
)

// WorkflowView is a workflow with its ordered steps.
type WorkflowView struct {
	Workflow *graph.WorkflowNode `json:"workflow"`
	Steps    []StepView          `json:"steps"`
}

// StepView is a step and the API nodes its USES_API edges point at.
type StepView struct {
	*graph.StepNode
	LinkedAPIs []*graph.APINode `json:"linked_apis"`
}

// Workflow returns the workflow whose node id or workflow id equals ref,
// with its steps sorted by step number.
func (ix *Index) Workflow(ref string) (*WorkflowView, error) {
	var wf *graph.WorkflowNode
	for _, n := range ix.graph.Nodes {
		w, ok := n.(*graph.WorkflowNode)
		if ok && (w.ID == ref || w.WorkflowID == ref) {
			wf = w
			break
		}
	}
	if wf == nil {
		return nil, fmt.Errorf("%w: workflow %s", ErrNodeNotFound, ref)
	}

	view := &WorkflowView{Workflow: wf, Steps: []StepView{}}
	for _, n := range ix.graph.Nodes {
		step, ok := n.(*graph.StepNode)
		if !ok || step.WorkflowID != wf.WorkflowID {
			continue
		}
		sv := StepView{StepNode: step, LinkedAPIs: []*graph.APINode{}}
		for _, e := range ix.outgoing[step.ID] {
			if e.Type != graph.EdgeUsesAPI {
				continue
			}
			if api, ok := ix.byID[e.Target].(*graph.APINode); ok {
				sv.LinkedAPIs = append(sv.LinkedAPIs, api)
			}
		}
		view.Steps = append(view.Steps, sv)
	}

	sort.SliceStable(view.Steps, func(i, j int) bool {
		return view.Steps[i].StepNumber < view.Steps[j].StepNumber
	})
	return view, nil
}

// APIsForEntity returns the API nodes with an ACTS_ON edge to the concept
// named by ref (node id or case-insensitive canonical name).
func (ix *Index) APIsForEntity(ref string) ([]*graph.APINode, error) {
	var concept *graph.ConceptNode
	for _, n := range ix.graph.Nodes {
		c, ok := n.(*graph.ConceptNode)
		if ok && (c.ID == ref || strings.EqualFold(c.CanonicalName, ref)) {
			concept = c
			break
		}
	}
	if concept == nil {
		return nil, fmt.Errorf("%w: entity %s", ErrNodeNotFound, ref)
	}

	apis := []*graph.APINode{}
	for _, e := range ix.incoming[concept.ID] {
		if e.Type != graph.EdgeActsOn {
			continue
		}
		if api, ok := ix.byID[e.Source].(*graph.APINode); ok {
			apis = append(apis, api)
		}
	}
	return apis, nil
}
