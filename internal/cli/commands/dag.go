package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/spf13/cobra"
)

// GraphQuerier provides read-only access to DAG structure.
type GraphQuerier interface {
	Parents(string) []string
	Children(string) []string
	Roots() []string
	Len() int
	EdgeCount() int
}

// DAGOutput is the JSON output for the dag command.
type DAGOutput struct {
	Levels        []DAGLevel `json:"levels"`
	Roots         []string   `json:"roots"`
	TotalEntities int        `json:"total_entities"`
	TotalEdges    int        `json:"total_edges"`
}

// DAGLevel is one execution level.
type DAGLevel struct {
	Level    int       `json:"level"`
	Entities []DAGNode `json:"entities"`
}

// DAGNode is one entity with its edges.
type DAGNode struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      propagate.NodeType `json:"type"`
	DependsOn []string           `json:"depends_on"`
	UsedBy    []string           `json:"used_by"`
}

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag",
		Short: "Show the dependency graph",
		Long: `Display the dependency graph (DAG) of all sources and models.

Entities are grouped by level: level 0 holds entities without parents and
every other entity sits one level below its deepest parent.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the DAG
  docprop dag

  # Show the DAG stored in a manifest
  docprop dag --manifest build/manifest.json

  # Output as JSON
  docprop dag --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDAG(cmd)
		},
	}

	cmd.Flags().String("manifest", "", "Read the graph from a JSON manifest instead of scanning the project")

	return cmd
}

func runDAG(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	g, err := loadGraph(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	graph, err := graphDAG(g)
	if err != nil {
		return err
	}

	levels, err := graph.Levels()
	if err != nil {
		return fmt.Errorf("failed to get levels: %w", err)
	}

	names := make(map[string]propagate.Node, graph.Len())
	for _, n := range graph.Nodes() {
		names[n.ID] = n.Value
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return dagJSON(r, graph, levels, names)
	case output.ModeMarkdown:
		dagMarkdown(r, graph, levels)
	default:
		dagText(r, graph, levels)
	}
	return nil
}

// dagText outputs DAG in styled text format.
func dagText(r *output.Renderer, graph GraphQuerier, levels [][]string) {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, id := range level {
			deps := graph.Parents(id)
			children := graph.Children(id)

			r.Printf("  %s\n", styles.ModelPath.Render(id))
			if len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Roots: %s", strings.Join(graph.Roots(), ", "))))
	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d entities, %d dependencies", graph.Len(), graph.EdgeCount())))
}

// dagMarkdown outputs DAG in markdown format.
func dagMarkdown(r *output.Renderer, graph GraphQuerier, levels [][]string) {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Roots)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, id := range level {
			deps := graph.Parents(id)
			children := graph.Children(id)

			r.Printf("- %s\n", id)
			if len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Roots", strings.Join(graph.Roots(), ", ")))
	r.Println(output.FormatKeyValue("Total Entities", fmt.Sprintf("%d", graph.Len())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", graph.EdgeCount())))
}

// dagJSON outputs DAG in JSON format.
func dagJSON(r *output.Renderer, graph GraphQuerier, levels [][]string, nodes map[string]propagate.Node) error {
	out := DAGOutput{
		Levels:        make([]DAGLevel, 0, len(levels)),
		Roots:         append([]string{}, graph.Roots()...),
		TotalEntities: graph.Len(),
		TotalEdges:    graph.EdgeCount(),
	}

	for i, level := range levels {
		dagLevel := DAGLevel{
			Level:    i,
			Entities: make([]DAGNode, 0, len(level)),
		}
		for _, id := range level {
			dagLevel.Entities = append(dagLevel.Entities, DAGNode{
				ID:        id,
				Name:      nodes[id].Name,
				Type:      nodes[id].Type,
				DependsOn: append([]string{}, graph.Parents(id)...),
				UsedBy:    append([]string{}, graph.Children(id)...),
			})
		}
		out.Levels = append(out.Levels, dagLevel)
	}

	return r.JSON(out)
}
