// Package project reads declarations from a project directory or a JSON
// manifest and exposes them as a propagate.Graph.
package project

import (
	"github.com/leapstack-labs/docprop/internal/dag"
	"github.com/leapstack-labs/docprop/internal/propagate"
)

// Project is a loaded project graph.
type Project struct {
	Root      string
	ModelsDir string

	graph *dag.Graph[propagate.Node]
}

// Nodes returns every declared entity, sorted by ID.
func (p *Project) Nodes() []propagate.Node {
	nodes := p.graph.Nodes()
	out := make([]propagate.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Value)
	}
	return out
}

// Parents returns the depends_on targets of id in declaration order.
func (p *Project) Parents(id string) []string {
	return append([]string(nil), p.graph.Parents(id)...)
}

// DAG returns the underlying graph.
func (p *Project) DAG() *dag.Graph[propagate.Node] {
	return p.graph
}
