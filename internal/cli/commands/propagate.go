package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/leapstack-labs/docprop/internal/watch"
	"github.com/spf13/cobra"
)

// ErrFailOn is returned when the report holds a status listed in --fail-on.
var ErrFailOn = errors.New("columns need attention")

// PropagateOptions holds options for the propagate command.
type PropagateOptions struct {
	All   bool // Include already documented columns in the table
	Watch bool // Re-run on file changes
}

// NewPropagateCommand creates the propagate command.
func NewPropagateCommand() *cobra.Command {
	opts := &PropagateOptions{}
	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Resolve column descriptions across the model DAG",
		Long: `Classify every column of every model by where its description comes from.

Columns with their own text are already documented. Columns holding an
inheritance directive take the text of the column it names. Empty columns
inherit from the single direct parent that documents a column of the same
name; two or more such parents make the column ambiguous.

The summary line lists the count of each outcome. The table lists the
columns that need review, with the inherited text and where it came from.

Unresolved or ambiguous columns never fail the run unless --fail-on asks
for it. The run fails only when the graph cannot be read.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)
  - JSON: Machine-readable format`,
		Example: `  # Propagate descriptions for the project in the current directory
  docprop propagate

  # Read the graph from an exported manifest
  docprop propagate --manifest build/manifest.json

  # Fail in CI when any column stays ambiguous or unresolved
  docprop propagate --fail-on ambiguous,unresolved

  # Re-run whenever a declaration changes
  docprop propagate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPropagate(cmd, opts)
		},
	}

	cmd.Flags().String("manifest", "", "Read the graph from a JSON manifest instead of scanning the project")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include already documented columns in the table")
	cmd.Flags().Int("preview-length", 0, "Maximum characters of description shown per row (default 60)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when declaration files change")
	cmd.Flags().StringSlice("fail-on", nil, "Exit non-zero when any of these statuses occur")

	_ = cmd.RegisterFlagCompletionFunc("fail-on", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(propagate.Statuses))
		for i, s := range propagate.Statuses {
			names[i] = string(s)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runPropagate(cmd *cobra.Command, opts *PropagateOptions) error {
	cmdCtx := NewCommandContext(cmd)

	if opts.Watch {
		return watchPropagate(cmd.Context(), cmdCtx, opts)
	}

	report, err := propagateOnce(cmd.Context(), cmdCtx, opts)
	if err != nil {
		return err
	}
	return checkFailOn(report, cmdCtx.Cfg.FailOnStatuses())
}

// propagateOnce loads the graph, runs the engine and renders the report.
func propagateOnce(ctx context.Context, cmdCtx *CommandContext, opts *PropagateOptions) (*propagate.Report, error) {
	runID := uuid.New().String()
	logger := cmdCtx.Logger.With("run_id", runID)

	graph, err := loadGraph(ctx, cmdCtx.Cfg, logger)
	if err != nil {
		return nil, err
	}

	report, err := propagate.New(propagate.Config{Logger: logger}).Run(graph)
	if err != nil {
		return nil, err
	}
	logger.Info("propagation finished", "summary", report.Summary())

	if err := renderReport(cmdCtx.Renderer, report, reportView{
		RunID:         runID,
		All:           opts.All,
		PreviewLength: cmdCtx.Cfg.PreviewLength,
	}); err != nil {
		return nil, err
	}
	return report, nil
}

// watchPropagate runs once, then again on every debounced change until
// interrupted. Failed runs are reported and the loop keeps going.
func watchPropagate(ctx context.Context, cmdCtx *CommandContext, opts *PropagateOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	run := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			r.Println(r.Styles().Muted.Render("Changed: " + strings.Join(changed, ", ")))
		}
		if _, err := propagateOnce(ctx, cmdCtx, opts); err != nil {
			r.Warn("%v", err)
		}
		return nil
	}

	_ = run(ctx, nil)

	wopts := watch.Options{Logger: cmdCtx.Logger}
	if manifest := cmdCtx.Cfg.Manifest; manifest != "" {
		wopts.Dirs = []string{filepath.Dir(manifest)}
		wopts.Filter = func(path string) bool {
			return filepath.Clean(path) == filepath.Clean(manifest)
		}
	} else {
		wopts.Dirs = []string{cmdCtx.Cfg.ModelsDir}
	}

	r.Println(r.Styles().Muted.Render(fmt.Sprintf("Watching %s (Ctrl-C to stop)", strings.Join(wopts.Dirs, ", "))))
	return watch.Run(ctx, wopts, run)
}

// checkFailOn returns ErrFailOn when the report holds any listed status.
func checkFailOn(report *propagate.Report, failOn []propagate.Status) error {
	var hits []string
	for _, s := range failOn {
		if n := report.Counts[s]; n > 0 {
			hits = append(hits, fmt.Sprintf("%s=%d", s, n))
		}
	}
	if len(hits) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailOn, strings.Join(hits, " "))
}
