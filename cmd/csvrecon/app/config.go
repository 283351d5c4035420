package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Reconciliation configuration
	LeftDir         string
	RightDir        string
	OutputDir       string
	Fields          []string
	CaseSensitive   bool
	NoTrim          bool
	RuleFile        string
	RuleName        string
	Mode            string
	Concurrency     int
	Delimiter       string
	NoHeader        bool
	MemoryCeilingMB int
	ChunkSizeMB     int
	InMemory        bool
	Extension       string
	TempDir         string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.csvrecon.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	// Set up Viper for environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Try to read config file if it exists
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".csvrecon")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		// Config file
		ConfigFile: viper.ConfigFileUsed(),

		// Reconciliation configuration
		LeftDir:         viper.GetString("left_dir"),
		RightDir:        viper.GetString("right_dir"),
		OutputDir:       viper.GetString("output_dir"),
		Fields:          viper.GetStringSlice("fields"),
		CaseSensitive:   viper.GetBool("case_sensitive"),
		NoTrim:          viper.GetBool("no_trim"),
		RuleFile:        viper.GetString("rule_file"),
		RuleName:        viper.GetString("rule"),
		Mode:            viper.GetString("mode"),
		Concurrency:     viper.GetInt("concurrency"),
		Delimiter:       viper.GetString("delimiter"),
		NoHeader:        viper.GetBool("no_header"),
		MemoryCeilingMB: viper.GetInt("memory_ceiling_mb"),
		ChunkSizeMB:     viper.GetInt("chunk_size_mb"),
		InMemory:        viper.GetBool("in_memory"),
		Extension:       viper.GetString("extension"),
		TempDir:         viper.GetString("temp_dir"),

		// Logging configuration
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags so flag values take
// precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
