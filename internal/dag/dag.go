// Package dag holds the dependency graph of declared entities.
// Edges keep insertion order so parent lists are stable across runs.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrCycle is wrapped by CycleError.
var ErrCycle = errors.New("cycle detected")

// CycleError reports a dependency cycle along with its path.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Node is a graph vertex carrying a value.
type Node[T any] struct {
	// ID is the unique identifier (e.g. "model.stg_orders")
	ID string
	// Value is the payload stored with the node
	Value T
}

// Graph is a directed graph where an edge parent -> child means the child
// reads from the parent.
type Graph[T any] struct {
	nodes    map[string]*Node[T]
	children map[string][]string // parent -> children (dependents)
	parents  map[string][]string // child -> parents (dependencies)
}

// New creates an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{
		nodes:    make(map[string]*Node[T]),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds a node, replacing the value of an existing one.
func (g *Graph[T]) AddNode(id string, value T) {
	if n, ok := g.nodes[id]; ok {
		n.Value = value
		return
	}
	g.nodes[id] = &Node[T]{ID: id, Value: value}
	g.children[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that child depends on parent. Repeated edges are ignored.
func (g *Graph[T]) AddEdge(parentID, childID string) error {
	if _, ok := g.nodes[parentID]; !ok {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, ok := g.nodes[childID]; !ok {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return &CycleError{Path: []string{parentID, parentID}}
	}

	if !slices.Contains(g.children[parentID], childID) {
		g.children[parentID] = append(g.children[parentID], childID)
	}
	if !slices.Contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// Node returns a node by ID.
func (g *Graph[T]) Node(id string) (*Node[T], bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Parents returns the parents of a node in the order their edges were added.
func (g *Graph[T]) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the dependents of a node in the order their edges were added.
func (g *Graph[T]) Children(id string) []string {
	return g.children[id]
}

// Nodes returns all nodes sorted by ID.
func (g *Graph[T]) Nodes() []*Node[T] {
	out := make([]*Node[T], 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of nodes.
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph[T]) EdgeCount() int {
	count := 0
	for _, c := range g.children {
		count += len(c)
	}
	return count
}

// CheckCycle returns a *CycleError if the graph has a cycle.
func (g *Graph[T]) CheckCycle() error {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	via := make(map[string]string)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, child := range g.children[id] {
			if !visited[child] {
				via[child] = id
				if dfs(child) {
					return true
				}
			} else if onStack[child] {
				cycle = []string{child}
				for cur := id; cur != child; cur = via[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{child}, cycle...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] && dfs(id) {
			return &CycleError{Path: cycle}
		}
	}
	return nil
}

// TopologicalSort returns nodes with dependencies before dependents.
// Ties are broken by ID.
func (g *Graph[T]) TopologicalSort() ([]*Node[T], error) {
	if err := g.CheckCycle(); err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	out := make([]*Node[T], 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, p := range g.parents[id] {
			visit(p)
		}
		out = append(out, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return out, nil
}

// Levels groups node IDs by depth. Level 0 holds nodes without parents and
// level N holds nodes whose deepest parent sits at level N-1.
func (g *Graph[T]) Levels() ([][]string, error) {
	if err := g.CheckCycle(); err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(g.nodes))
	var level func(id string) int
	level = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		d := 0
		for _, p := range g.parents[id] {
			if pd := level(p) + 1; pd > d {
				d = pd
			}
		}
		depth[id] = d
		return d
	}

	maxLevel := -1
	for id := range g.nodes {
		if d := level(id); d > maxLevel {
			maxLevel = d
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, d := range depth {
		levels[d] = append(levels[d], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// Upstream returns every ancestor of id, sorted.
func (g *Graph[T]) Upstream(id string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		for _, p := range g.parents[cur] {
			if !seen[p] {
				seen[p] = true
				walk(p)
			}
		}
	}
	walk(id)
	return sortedKeys(seen)
}

// Downstream returns every descendant of id, sorted.
func (g *Graph[T]) Downstream(id string) []string {
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		for _, c := range g.children[cur] {
			if !seen[c] {
				seen[c] = true
				walk(c)
			}
		}
	}
	walk(id)
	return sortedKeys(seen)
}

// Roots returns nodes without parents, sorted.
func (g *Graph[T]) Roots() []string {
	var roots []string
	for _, id := range g.sortedIDs() {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

func (g *Graph[T]) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
