package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/dromus/packages/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	verboseFlag bool
	logger      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dromus",
	Short: "Clean terminal output for parallel test runs.",
	Long: `dromus renders test events from parallel test workers as one tidy,
colorized report: a header per task, one line per test, failure details
with bounded stack traces, and a final summary.

Events are read from NDJSON files or from 'go test -json' output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(verboseFlag, cmd.ErrOrStderr())
	},
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return ExitUsageError
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("DROMUS_VERBOSE", false), "Log diagnostics to stderr (env: DROMUS_VERBOSE)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
