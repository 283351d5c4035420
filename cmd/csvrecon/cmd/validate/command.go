// Package validate implements the validate command: check the configuration
// and matching rule without reconciling anything.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

// AppContext defines the interface the validate command needs from the app.
type AppContext interface {
	Options() (*reconcile.Options, error)
}

// NewCommand creates the validate command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Validate configuration without running",
		Long: `Validate resolves the configuration exactly as run would: directories,
matching rule (inline fields or rule-file preset), pairing mode, and
limits. Every violated invariant is reported; nothing is reconciled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := app.Options()
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				if errors.IsValidationError(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "Configuration is invalid:")
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
			fmt.Fprintf(cmd.OutOrStdout(), "  left:   %s\n", opts.LeftDir)
			fmt.Fprintf(cmd.OutOrStdout(), "  right:  %s\n", opts.RightDir)
			fmt.Fprintf(cmd.OutOrStdout(), "  output: %s\n", opts.OutputDir)
			fmt.Fprintf(cmd.OutOrStdout(), "  fields: %v\n", opts.Rule.Fields)
			fmt.Fprintf(cmd.OutOrStdout(), "  mode:   %s\n", opts.Mode)
			return nil
		},
	}
}
