package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile       string
	logLevel      string
	logFormat     string
	maxSelection  int
)

var rootCmd = &cobra.Command{
	Use:   "gisadmin",
	Short: "GIS attribute and content administration",
	Long: `A CLI for administering GIS attribute tables held in a MySQL workspace,
and the content of a web GIS portal.

Features:
  - Selection counts with an "all records selected" indicator
  - One-to-many attribute transfer between tables
  - Attribute replacement and clearing on selected records
  - Statistics field renaming (SUM_Pop -> Pop)
  - Portal item search, tag histograms and tag remapping
  - NPSpecies park unit species lists`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gisadmin.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Transfer overrides
	rootCmd.PersistentFlags().IntVar(&maxSelection, "max-selection", 0,
		"Override the maximum number of selected output records")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	MaxSelection int
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		MaxSelection: maxSelection,
	}
}
