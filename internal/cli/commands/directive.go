package commands

import (
	"strings"

	"github.com/leapstack-labs/docprop/internal/cli/output"
	"github.com/leapstack-labs/docprop/internal/propagate"
	"github.com/spf13/cobra"
)

// DirectiveOutput is the JSON output for the directive command.
type DirectiveOutput struct {
	Directive string `json:"directive"`
	Target    string `json:"target"`
	Column    string `json:"column"`
}

// NewDirectiveCommand creates the directive command.
func NewDirectiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directive <target> <column>",
		Short: "Print an inheritance directive",
		Long: `Print the description text that makes a column inherit from target.column.

Paste the result as the column description. The target is a model name or
the member name of a source table. Qualified targets such as raw.customers
never resolve, since the text is split at its first dot.

The directive is stored as plain text. Tools other than docprop show the
directive itself, not the text it points at.`,
		Example: `  # Inherit from the user_id column of stg_customers
  docprop directive stg_customers user_id

  # Use it inside a declaration
  #   - name: customer_id
  #     description: "{{ inherit('stg_customers', 'user_id') }}"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirective(cmd, args[0], args[1])
		},
	}
	return cmd
}

func runDirective(cmd *cobra.Command, target, column string) error {
	r := NewCommandContext(cmd).Renderer
	directive := propagate.EncodeDirective(target, column)

	if strings.Contains(target, ".") {
		r.Warn("target %q contains a dot and will never resolve; use the member name instead", target)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(DirectiveOutput{Directive: directive, Target: target, Column: column})
	}
	r.Println(directive)
	return nil
}
