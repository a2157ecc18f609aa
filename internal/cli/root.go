package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/tourload/internal/config"
)

const rootLong = `tourload reads the cleaned passenger and weather datasets, recreates the
Passengers and Weather tables, bulk-loads each table in one transaction and
verifies the stored data against checksums computed from the input files.

Run without a subcommand to execute the load-and-verify pipeline. The report
goes to stdout; progress and diagnostics go to stderr.

Configuration precedence (lowest to highest):
  built-in defaults < tourload.yaml < .env < environment < flags

Exit Codes:
  0  - Success (checksum mismatches are reported, not failed)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Store connection failed
  12 - Table reset failed
  13 - A table load was rolled back
  14 - Input file missing, malformed or uncoercible`

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var flags runFlagValues

	root := &cobra.Command{
		Use:          "tourload",
		Short:        "Load and verify Iceland tourism and weather datasets",
		Long:         rootLong,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, flags)
		},
	}

	root.PersistentFlags().StringP("config", "c", config.ConfigFileName,
		"Path to the yaml configuration file (optional unless given explicitly)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	addRunFlags(root, &flags)

	root.AddCommand(newCleanCmd(), newAnalyzeCmd(), newVersionCmd())
	return root
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return NewRootCommand().Execute()
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
