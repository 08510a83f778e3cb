package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/leapstack-labs/docprop/internal/cli/config"
	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/dag"
	"github.com/leapstack-labs/docprop/internal/project"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode, err := output.ParseMode(cfg.OutputFormat)
	if err != nil {
		mode = output.ModeAuto
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults rooted at the
// working directory when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg := config.Defaults()
	cfg.ProjectRoot, _ = os.Getwd()
	return cfg
}

// loadGraph reads the graph from the manifest when one is configured and
// scans the project otherwise. Errors wrap propagate.ErrGraphUnavailable.
func loadGraph(ctx context.Context, cfg *config.Config, logger *slog.Logger) (propagate.Graph, error) {
	if cfg.Manifest != "" {
		logger.Debug("reading manifest", "path", cfg.Manifest)
		m, err := project.ReadManifest(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	logger.Debug("scanning project", "models_dir", cfg.ModelsDir)
	p, err := project.Load(ctx, project.Options{
		Root:        cfg.ProjectRoot,
		ModelsDir:   cfg.ModelsDir,
		Env:         cfg.Environment,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// graphDAG returns the dependency graph behind g. Parents missing from g
// are left out.
func graphDAG(g propagate.Graph) (*dag.Graph[propagate.Node], error) {
	if p, ok := g.(*project.Project); ok {
		return p.DAG(), nil
	}

	d := dag.New[propagate.Node]()
	nodes := g.Nodes()
	for _, n := range nodes {
		d.AddNode(n.ID, n)
	}
	for _, n := range nodes {
		for _, parent := range g.Parents(n.ID) {
			if _, ok := d.Node(parent); !ok {
				continue
			}
			if err := d.AddEdge(parent, n.ID); err != nil {
				return nil, err
			}
		}
	}
	if err := d.CheckCycle(); err != nil {
		return nil, err
	}
	return d, nil
}
