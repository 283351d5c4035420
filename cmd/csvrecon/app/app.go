// Package app provides the application context and dependency management
// for the csvrecon CLI. It centralizes configuration loading, logger setup,
// and construction of the engine options the commands run with.
package app

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/csvrecon/csvrecon/pkg/errors"
	"github.com/csvrecon/csvrecon/pkg/matchkey"
	"github.com/csvrecon/csvrecon/pkg/pairing"
	"github.com/csvrecon/csvrecon/pkg/reconcile"
	"github.com/csvrecon/csvrecon/pkg/rules"
)

// App represents the csvrecon application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Options builds validated engine options from the configuration. The
// matching rule comes from a named preset when a rule file is configured,
// otherwise from the configured field list.
func (a *App) Options() (*reconcile.Options, error) {
	opts := reconcile.DefaultOptions()
	opts.LeftDir = a.config.LeftDir
	opts.RightDir = a.config.RightDir
	if a.config.OutputDir != "" {
		opts.OutputDir = a.config.OutputDir
	}
	if a.config.Concurrency > 0 {
		opts.Concurrency = a.config.Concurrency
	}
	if a.config.Extension != "" {
		opts.Extension = a.config.Extension
	}
	if a.config.TempDir != "" {
		opts.TempDir = a.config.TempDir
	}
	opts.HasHeader = !a.config.NoHeader
	opts.MemoryCeilingMB = a.config.MemoryCeilingMB
	if a.config.ChunkSizeMB > 0 {
		opts.ChunkSizeMB = a.config.ChunkSizeMB
	}
	opts.StreamingOutput = !a.config.InMemory
	opts.RetainRecords = a.config.InMemory

	rule, err := a.rule()
	if err != nil {
		return nil, err
	}
	opts.Rule = rule

	mode, err := pairing.ParseMode(a.config.Mode)
	if err != nil {
		return nil, err
	}
	opts.Mode = mode

	delimiter, err := parseDelimiter(a.config.Delimiter)
	if err != nil {
		return nil, err
	}
	opts.Delimiter = delimiter

	return opts, nil
}

// rule resolves the matching rule: a named preset wins over inline fields.
func (a *App) rule() (matchkey.Rule, error) {
	if a.config.RuleFile != "" {
		set, err := rules.Load(a.config.RuleFile)
		if err != nil {
			if errors.IsNotFound(err) {
				return matchkey.Rule{}, errors.NewValidationError("ruleFile", a.config.RuleFile, err.Error())
			}
			return matchkey.Rule{}, err
		}
		name := a.config.RuleName
		if name == "" {
			return matchkey.Rule{}, errors.NewValidationError("rule", name,
				"a rule name is required when a rule file is configured (available: "+strings.Join(set.Names(), ", ")+")")
		}
		return set.Rule(name)
	}

	return matchkey.Rule{
		Fields:        a.config.Fields,
		CaseSensitive: a.config.CaseSensitive,
		Trim:          !a.config.NoTrim,
	}, nil
}

// parseDelimiter converts the configured delimiter string to a rune.
// "\t" and "tab" select a tab; otherwise exactly one character is accepted.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case "\\t", "tab", "\t":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, errors.NewValidationError("delimiter", s, "delimiter must be a single character")
	}
	return runes[0], nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
