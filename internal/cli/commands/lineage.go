package commands

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/dag"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/spf13/cobra"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	Upstream   bool
	Downstream bool
	Depth      int
}

// LineageOutput is the JSON output for the lineage command.
type LineageOutput struct {
	Root       string        `json:"root"`
	Upstream   []LineageNode `json:"upstream"`
	Downstream []LineageNode `json:"downstream"`
}

// LineageNode is one entity reached from the root.
type LineageNode struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Type     propagate.NodeType `json:"type"`
	FilePath string             `json:"file_path,omitempty"`
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage <entity>",
		Short: "Show lineage for an entity",
		Long: `Display the upstream dependencies and downstream dependents of an entity.

Only direct parents take part in description inheritance. The lineage shows
the wider graph, which helps to find where a description should be written
so that it reaches the columns below.`,
		Example: `  # Show full lineage for a model
  docprop lineage stg_customers

  # Show only upstream dependencies
  docprop lineage model.stg_customers --downstream=false

  # Limit traversal depth
  docprop lineage stg_customers --depth 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Upstream, "upstream", true, "Include upstream dependencies")
	cmd.Flags().BoolVar(&opts.Downstream, "downstream", true, "Include downstream dependents")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Max traversal depth (0 = unlimited)")
	cmd.Flags().String("manifest", "", "Read the graph from a JSON manifest instead of scanning the project")

	return cmd
}

func runLineage(cmd *cobra.Command, ref string, opts *LineageOptions) error {
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

	root, err := findEntity(graph, ref)
	if err != nil {
		return err
	}

	out := LineageOutput{Root: root, Upstream: []LineageNode{}, Downstream: []LineageNode{}}
	if opts.Upstream {
		out.Upstream = lineageNodes(graph, walkWithDepth(root, opts.Depth, graph.Parents, graph.Upstream))
	}
	if opts.Downstream {
		out.Downstream = lineageNodes(graph, walkWithDepth(root, opts.Depth, graph.Children, graph.Downstream))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		lineageMarkdown(r, out, opts)
	default:
		lineageText(r, out, opts)
	}
	return nil
}

// findEntity resolves an entity by ID, then by name.
func findEntity(graph *dag.Graph[propagate.Node], ref string) (string, error) {
	if _, ok := graph.Node(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, n := range graph.Nodes() {
		if n.Value.Name == ref {
			matches = append(matches, n.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("entity not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("entity %q is ambiguous, use one of: %v", ref, matches)
	}
}

// walkWithDepth follows step up to maxDepth hops. A zero depth returns the
// full closure.
func walkWithDepth(id string, maxDepth int, step func(string) []string, all func(string) []string) []string {
	if maxDepth <= 0 {
		return all(id)
	}

	visited := make(map[string]bool)
	var result []string

	var traverse func(id string, depth int)
	traverse = func(id string, depth int) {
		if depth > maxDepth {
			return
		}
		for _, next := range step(id) {
			if !visited[next] {
				visited[next] = true
				result = append(result, next)
				traverse(next, depth+1)
			}
		}
	}

	traverse(id, 1)
	sort.Strings(result)
	return result
}

func lineageNodes(graph *dag.Graph[propagate.Node], ids []string) []LineageNode {
	out := make([]LineageNode, 0, len(ids))
	for _, id := range ids {
		n := LineageNode{ID: id}
		if node, ok := graph.Node(id); ok {
			n.Name = node.Value.Name
			n.Type = node.Value.Type
			n.FilePath = propagate.NormalizePath(node.Value.FilePath)
		}
		out = append(out, n)
	}
	return out
}

func lineageText(r *output.Renderer, out LineageOutput, opts *LineageOptions) {
	styles := r.Styles()
	r.Header(1, "Lineage for "+out.Root)

	if opts.Upstream {
		r.Println(styles.Header2.Render(fmt.Sprintf("Upstream dependencies (%d):", len(out.Upstream))))
		for _, n := range out.Upstream {
			r.Printf("  - %s %s\n", styles.ModelPath.Render(n.ID), styles.Muted.Render(n.FilePath))
		}
		r.Println("")
	}
	if opts.Downstream {
		r.Println(styles.Header2.Render(fmt.Sprintf("Downstream dependents (%d):", len(out.Downstream))))
		for _, n := range out.Downstream {
			r.Printf("  - %s %s\n", styles.ModelPath.Render(n.ID), styles.Muted.Render(n.FilePath))
		}
	}
}

func lineageMarkdown(r *output.Renderer, out LineageOutput, opts *LineageOptions) {
	r.Println(output.FormatHeader(1, "Lineage for "+out.Root))
	r.Println("")

	section := func(title string, nodes []LineageNode) {
		r.Println(output.FormatHeader(2, fmt.Sprintf("%s (%d)", title, len(nodes))))
		for _, n := range nodes {
			r.Printf("- %s (%s)\n", n.ID, propagate.OrPlaceholder(n.FilePath))
		}
		r.Println("")
	}
	if opts.Upstream {
		section("Upstream", out.Upstream)
	}
	if opts.Downstream {
		section("Downstream", out.Downstream)
	}
}
