package commands

import (
	"time"

	"github.com/leapstack-labs/docprop/internal/project"
	"github.com/spf13/cobra"
)

// NewManifestCommand creates the manifest command.
func NewManifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the project graph as a JSON manifest",
		Long: `Scan the project and print its graph as a JSON manifest.

The manifest lists every source and model with its columns, descriptions
and parents. It is the format read by the --manifest flag, so a graph can
be exported once and propagated elsewhere.

The manifest is always JSON; the --output flag does not apply.`,
		Example: `  # Export the graph
  docprop manifest > build/manifest.json

  # Propagate from the export
  docprop propagate --manifest build/manifest.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runManifest(cmd)
		},
	}
	return cmd
}

func runManifest(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	g, err := loadGraph(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	return project.NewManifest(g, time.Now().UTC()).Write(cmdCtx.Renderer.Writer())
}
