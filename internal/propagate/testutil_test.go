package propagate

import (
	"log/slog"
	"sort"
)

// staticGraph is an in-memory Graph for tests.
type staticGraph struct {
	nodes   []Node
	parents map[string][]string
}

func newStaticGraph() *staticGraph {
	return &staticGraph{parents: make(map[string][]string)}
}

func (g *staticGraph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *staticGraph) Parents(id string) []string {
	return g.parents[id]
}

// source adds a root node "<group>.<member>" and returns its ID.
func (g *staticGraph) source(group, member string, cols ...Column) string {
	id := "source." + group + "." + member
	g.nodes = append(g.nodes, Node{
		ID:       id,
		Name:     group + "." + member,
		Type:     NodeSource,
		FilePath: "models/sources.yml",
		Columns:  cols,
	})
	return id
}

// model adds a derived node depending on parents and returns its ID.
func (g *staticGraph) model(name string, parents []string, cols ...Column) string {
	id := "model." + name
	g.nodes = append(g.nodes, Node{
		ID:       id,
		Name:     name,
		Type:     NodeModel,
		FilePath: "models/" + name + ".sql",
		Columns:  cols,
	})
	g.parents[id] = parents
	return id
}

func col(name, desc string) Column {
	return Column{Name: name, Description: desc}
}

// entryFor finds the entry for entity.column.
func entryFor(r *Report, entity, column string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.EntityName == entity && e.ColumnName == column {
			return e, true
		}
	}
	return Entry{}, false
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
