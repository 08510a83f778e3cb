package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/spf13/cobra"
)

// ListOutput is the JSON output for the list command.
type ListOutput struct {
	Entities []EntityInfo `json:"entities"`
}

// EntityInfo describes one entity and how much of it is documented.
type EntityInfo struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       propagate.NodeType `json:"type"`
	FilePath   string             `json:"file_path"`
	Columns    int                `json:"columns"`
	Documented int                `json:"documented"`
	Directives int                `json:"directives"`
	DependsOn  []string           `json:"depends_on"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all entities and their column documentation",
		Long: `List all sources and models in dependency order.

Each entity shows how many of its columns carry their own description and
how many hold an inheritance directive.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all entities (auto-detect output format)
  docprop list

  # List entities as JSON
  docprop list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	cmd.Flags().String("manifest", "", "Read the graph from a JSON manifest instead of scanning the project")

	return cmd
}

func runList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	g, err := loadGraph(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	entities, err := listEntities(g)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(ListOutput{Entities: entities})
	case output.ModeMarkdown:
		listMarkdown(r, entities)
	default:
		listText(r, entities)
	}
	return nil
}

// listEntities returns the documentable entities of g in dependency order.
func listEntities(g propagate.Graph) ([]EntityInfo, error) {
	graph, err := graphDAG(g)
	if err != nil {
		return nil, err
	}
	sorted, err := graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to sort entities: %w", err)
	}

	out := make([]EntityInfo, 0, len(sorted))
	for _, node := range sorted {
		n := node.Value
		if n.Type != propagate.NodeModel && n.Type != propagate.NodeSource {
			continue
		}
		info := EntityInfo{
			ID:        n.ID,
			Name:      n.Name,
			Type:      n.Type,
			FilePath:  propagate.NormalizePath(n.FilePath),
			Columns:   len(n.Columns),
			DependsOn: append([]string{}, graph.Parents(n.ID)...),
		}
		for _, c := range n.Columns {
			switch {
			case propagate.IsDirective(c.Description):
				info.Directives++
			case c.Description != "":
				info.Documented++
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// listText outputs entities in styled text format.
func listText(r *output.Renderer, entities []EntityInfo) {
	styles := r.Styles()
	r.Header(1, fmt.Sprintf("Entities (%d total)", len(entities)))

	for i, e := range entities {
		line := fmt.Sprintf("%3d. %-40s %s", i+1, styles.ModelPath.Render(e.Name), styles.Muted.Render(string(e.Type)))
		line += fmt.Sprintf("  %d/%d documented", e.Documented, e.Columns)
		if e.Directives > 0 {
			line += fmt.Sprintf(", %d inherited by directive", e.Directives)
		}
		r.Println(line)
		if len(e.DependsOn) > 0 {
			r.Printf("       %s %s\n", styles.Muted.Render("<-"), strings.Join(e.DependsOn, ", "))
		}
	}
}

// listMarkdown outputs entities as a markdown table.
func listMarkdown(r *output.Renderer, entities []EntityInfo) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Entities (%d total)", len(entities))))
	r.Println("")

	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{
			e.ID,
			string(e.Type),
			propagate.OrPlaceholder(e.FilePath),
			fmt.Sprintf("%d/%d", e.Documented, e.Columns),
			fmt.Sprintf("%d", e.Directives),
			propagate.OrPlaceholder(strings.Join(e.DependsOn, ", ")),
		})
	}
	r.Println(output.FormatMarkdownTable(
		[]string{"entity", "type", "file", "documented", "directives", "depends_on"}, rows))
}
