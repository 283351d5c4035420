package app

import (
	"github.com/spf13/cobra"

	"github.com/csvrecon/csvrecon/cmd/csvrecon/cmd/pairs"
	"github.com/csvrecon/csvrecon/cmd/csvrecon/cmd/run"
	"github.com/csvrecon/csvrecon/cmd/csvrecon/cmd/validate"
)

// CreateRunCommand creates the run command with app dependencies.
func (a *App) CreateRunCommand() *cobra.Command {
	cmd := run.NewCommand(a)
	a.bindReconcileFlags(cmd)
	a.bindPairingFlags(cmd)
	return cmd
}

// CreatePairsCommand creates the pairs command with app dependencies.
func (a *App) CreatePairsCommand() *cobra.Command {
	cmd := pairs.NewCommand(a)
	a.bindPairingFlags(cmd)
	return cmd
}

// CreateValidateCommand creates the validate command with app dependencies.
func (a *App) CreateValidateCommand() *cobra.Command {
	cmd := validate.NewCommand(a)
	a.bindReconcileFlags(cmd)
	a.bindPairingFlags(cmd)
	return cmd
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("csvrecon %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// bindPairingFlags registers the flags that control pair discovery.
// The flag values land directly in the app config, so Options() sees them
// after cobra parses the command line.
func (a *App) bindPairingFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&a.config.LeftDir, "left", a.config.LeftDir, "left source directory")
	flags.StringVar(&a.config.RightDir, "right", a.config.RightDir, "right source directory")
	flags.StringVar(&a.config.Mode, "mode", a.config.Mode, "pairing mode: one-to-one or all-against-all")
	flags.StringVar(&a.config.Extension, "extension", a.config.Extension, "file extension to pair (default .csv)")
}

// bindReconcileFlags registers the flags that control matching and output.
func (a *App) bindReconcileFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&a.config.OutputDir, "output", a.config.OutputDir, "output directory (default Output)")
	flags.StringSliceVar(&a.config.Fields, "fields", a.config.Fields, "matching key fields, in order")
	flags.BoolVar(&a.config.CaseSensitive, "case-sensitive", a.config.CaseSensitive, "match keys case-sensitively")
	flags.BoolVar(&a.config.NoTrim, "no-trim", a.config.NoTrim, "keep surrounding whitespace in key values")
	flags.StringVar(&a.config.RuleFile, "rule-file", a.config.RuleFile, "YAML file of named matching-rule presets")
	flags.StringVar(&a.config.RuleName, "rule", a.config.RuleName, "preset name from the rule file")
	flags.IntVar(&a.config.Concurrency, "concurrency", a.config.Concurrency, "pairs reconciled in parallel (default CPU count)")
	flags.StringVar(&a.config.Delimiter, "delimiter", a.config.Delimiter, "field delimiter (default ','; \\t for tab)")
	flags.BoolVar(&a.config.NoHeader, "no-header", a.config.NoHeader, "treat the first row as data, naming columns positionally")
	flags.IntVar(&a.config.MemoryCeilingMB, "memory-ceiling", a.config.MemoryCeilingMB, "memory ceiling in MB for strategy selection (0 = auto)")
	flags.IntVar(&a.config.ChunkSizeMB, "chunk-size", a.config.ChunkSizeMB, "chunk size in MB for the chunked strategy")
	flags.BoolVar(&a.config.InMemory, "in-memory", a.config.InMemory, "keep partitions in memory instead of streaming to temp files")
	flags.StringVar(&a.config.TempDir, "temp-dir", a.config.TempDir, "root for temporary working directories")
}
