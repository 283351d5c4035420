// Package pairs implements the pairs command: a dry run that lists the file
// pairs a directory combination would produce, without reconciling anything.
package pairs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csvrecon/csvrecon/internal/cmd/table"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
)

// AppContext defines the interface the pairs command needs from the app.
type AppContext interface {
	Options() (*reconcile.Options, error)
}

// NewCommand creates the pairs command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "pairs",
		GroupID: "core",
		Short:   "List the file pairs a run would reconcile",
		Example: `  csvrecon pairs --left ./a --right ./b
  csvrecon pairs --left ./a --right ./b --mode all-against-all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := app.Options()
			if err != nil {
				return err
			}

			built, err := pairing.Build(opts.LeftDir, opts.RightDir, opts.Mode, opts.Extension)
			if err != nil {
				return err
			}
			if len(built) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No file pairs found.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), table.Pairs(built))
			fmt.Fprintf(cmd.OutOrStdout(), "%d pair(s)\n", len(built))
			return nil
		},
	}
}
