// Package cli implements the command-line interface for CodeSentry.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

func newRootCmd() *cobra.Command {
	opts := &analyzeOptions{}

	rootCmd := &cobra.Command{
		Use:   "codesentry [dir]",
		Short: "CodeSentry - lexical static analysis for C code bases",
		Long: `CodeSentry scans C source and header files for long functions and files,
overlong lines, TODO comments, naming violations, leaked allocations and
unchecked system call results, and reports per-file and project metrics.

Running codesentry without a command analyzes the given directory
(default: the current directory).

Commands:
  analyze    Analyze a directory or file
  metrics    Show code metrics for one file
  detectors  List the available detectors
  init       Write a .codesentry.yaml config file
  config     View or edit the configuration
  watch      Re-analyze files as they change
  hook       Run CodeSentry from a git pre-commit hook
  mcp        Serve analysis tools over MCP
  cache      Manage the result cache`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .codesentry.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	addAnalyzeFlags(rootCmd, opts)

	// Bind flags to viper
	bindFlag := func(key, flag string) {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
	bindFlag("config_file", "config")

	// Add subcommands
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newMetricsCmd())
	rootCmd.AddCommand(newDetectorsCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHookCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}
