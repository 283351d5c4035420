// Package run implements the run command: pair the two directories,
// reconcile every pair, and write the output files and summaries.
package run

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/csvrecon/csvrecon/internal/cmd/table"
	"github.com/csvrecon/csvrecon/pkg/dispatch"
	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/logging"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
	"github.com/csvrecon/csvrecon/pkg/report"
)

// AppContext defines the interface the run command needs from the app.
type AppContext interface {
	Options() (*reconcile.Options, error)
	Logger() *zerolog.Logger
}

// NewCommand creates the run command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Reconcile file pairs across two directories",
		Long: `Run pairs the delimited files of the left and right directories and
partitions each pair's records into three sets: matched (present in
both), only-in-left, and only-in-right. Records are matched on a
composite key built from the configured fields.

Each pair's partition files and a JSON summary are written under the
output directory; a global summary covers the whole run.`,
		Example: `  csvrecon run --left ./a --right ./b --fields Id
  csvrecon run --left ./a --right ./b --fields FirstName,LastName --mode all-against-all
  csvrecon run --left ./a --right ./b --rule-file rules.yaml --rule by-id`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconciliation(cmd, app)
		},
	}
}

func runReconciliation(cmd *cobra.Command, app AppContext) error {
	opts, err := app.Options()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	pairs, err := pairing.Build(opts.LeftDir, opts.RightDir, opts.Mode, opts.Extension)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No file pairs found.")
		return nil
	}

	result := dispatch.New(opts.Concurrency).Run(ctx, pairs, func(pair pairing.Pair) reconcile.Strategy {
		return reconcile.ForPair(pair, opts)
	}, opts)

	if err := report.NewGenerator(opts.OutputDir, opts.Delimiter).Write(ctx, result); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), table.Result(result))
	fmt.Fprintf(cmd.OutOrStdout(), "Output written to %s\n", opts.OutputDir)

	if errors.IsCanceled(ctx.Err()) {
		return errors.ErrCanceled
	}
	if !result.Success() {
		return errors.ErrPairFailed
	}
	return nil
}
