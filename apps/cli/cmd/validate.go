package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/dromus/packages/core/parser"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Check NDJSON event files against the event schema",
	Long: `Validate NDJSON event files against the dromus event schema without
rendering them.

Examples:
  dromus validate worker-1.ndjson
  dromus validate ./events/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema for NDJSON events",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(parser.Schema())
		return err
	},
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitWith(ExitUsageError, fmt.Errorf("no event files found"))
	}

	hasErrors := false
	for _, file := range files {
		errs, err := validateFile(file)
		if err != nil {
			return exitWith(ExitParseError, err)
		}
		if len(errs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
			continue
		}
		hasErrors = true
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, e)
		}
	}

	if hasErrors {
		return exitWith(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}

func validateFile(path string) ([]error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return parser.Validate(f), nil
}
