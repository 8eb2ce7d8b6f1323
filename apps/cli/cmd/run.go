package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/parser"
	"github.com/abdul-hamid-achik/dromus/packages/core/runner"
	"github.com/abdul-hamid-achik/dromus/packages/output"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stdinArg = "-"

var runCmd = &cobra.Command{
	Use:   "run [file|directory|-]...",
	Short: "Render test events as a terminal report",
	Long: `Render test events from one or more event streams. Each file is treated
as one parallel worker; with no arguments (or "-") events are read from stdin.

Examples:
  dromus run worker-1.ndjson worker-2.ndjson
  dromus run ./events/ --stack-traces --max-depth 5
  go test -json ./... | dromus run --format gotest
  dromus run events.ndjson --watch`,
	RunE: runCommand,
}

var (
	formatFlag          string
	configFlag          string
	noColorFlag         bool
	timingsFlag         bool
	exceptionsFlag      bool
	stackTracesFlag     bool
	fullStackTracesFlag bool
	durationStatsFlag   bool
	moduleNamesFlag     bool
	methodNamesFlag     bool
	maxDepthFlag        int
	widthFlag           int
	passSymbolFlag      string
	failSymbolFlag      string
	skipSymbolFlag      string
	rateFlag            float64
	strictFlag          bool
	watchFlag           bool
)

// envKeys maps flags that may also be set through the environment. A flag
// overrides the config file only when given on the command line or in the
// environment.
var envKeys = map[string]string{
	"no-color":          "DROMUS_NO_COLOR",
	"timings":           "DROMUS_TIMINGS",
	"exceptions":        "DROMUS_EXCEPTIONS",
	"stack-traces":      "DROMUS_STACK_TRACES",
	"full-stack-traces": "DROMUS_FULL_STACK_TRACES",
	"duration-stats":    "DROMUS_DURATION_STATS",
	"module-names":      "DROMUS_MODULE_NAMES",
	"method-names":      "DROMUS_METHOD_NAMES",
	"max-depth":         "DROMUS_MAX_DEPTH",
	"width":             "DROMUS_WIDTH",
	"pass-symbol":       "DROMUS_PASS_SYMBOL",
	"fail-symbol":       "DROMUS_FAIL_SYMBOL",
	"skip-symbol":       "DROMUS_SKIP_SYMBOL",
}

func init() {
	// Input flags
	runCmd.Flags().StringVarP(&formatFlag, "format", "f", getEnvString("DROMUS_FORMAT", string(parser.FormatNDJSON)), "Event format: ndjson, gotest (env: DROMUS_FORMAT)")
	_ = runCmd.RegisterFlagCompletionFunc("format", completeFormats)
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("DROMUS_CONFIG", ""), "Path to config file (env: DROMUS_CONFIG)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("DROMUS_RATE", 0), "Replay each stream at this many events per second, 0 for no limit (env: DROMUS_RATE)")
	runCmd.Flags().BoolVar(&strictFlag, "strict", getEnvBool("DROMUS_STRICT", false), "Fail on the first malformed event instead of skipping it (env: DROMUS_STRICT)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-render when event files change")

	// Output flags
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("DROMUS_NO_COLOR", false), "Disable colored output (env: DROMUS_NO_COLOR)")
	runCmd.Flags().BoolVar(&timingsFlag, "timings", getEnvBool("DROMUS_TIMINGS", true), "Show test durations (env: DROMUS_TIMINGS)")
	runCmd.Flags().BoolVar(&exceptionsFlag, "exceptions", getEnvBool("DROMUS_EXCEPTIONS", true), "Show failure messages (env: DROMUS_EXCEPTIONS)")
	runCmd.Flags().BoolVar(&stackTracesFlag, "stack-traces", getEnvBool("DROMUS_STACK_TRACES", false), "Show short stack traces (env: DROMUS_STACK_TRACES)")
	runCmd.Flags().BoolVar(&fullStackTracesFlag, "full-stack-traces", getEnvBool("DROMUS_FULL_STACK_TRACES", false), "Show complete stack traces (env: DROMUS_FULL_STACK_TRACES)")
	runCmd.Flags().BoolVar(&durationStatsFlag, "duration-stats", getEnvBool("DROMUS_DURATION_STATS", false), "Add duration percentiles to the summary (env: DROMUS_DURATION_STATS)")
	runCmd.Flags().BoolVar(&moduleNamesFlag, "module-names", getEnvBool("DROMUS_MODULE_NAMES", true), "Show the class name in result lines (env: DROMUS_MODULE_NAMES)")
	runCmd.Flags().BoolVar(&methodNamesFlag, "method-names", getEnvBool("DROMUS_METHOD_NAMES", true), "Show the method name in result lines (env: DROMUS_METHOD_NAMES)")
	runCmd.Flags().IntVar(&maxDepthFlag, "max-depth", getEnvInt("DROMUS_MAX_DEPTH", config.MaxStackTraceDepth), "Frames shown per exception in short traces (env: DROMUS_MAX_DEPTH)")
	runCmd.Flags().IntVar(&widthFlag, "width", getEnvInt("DROMUS_WIDTH", 0), "Terminal width, 0 to detect (env: DROMUS_WIDTH)")
	runCmd.Flags().StringVar(&passSymbolFlag, "pass-symbol", getEnvString("DROMUS_PASS_SYMBOL", config.DefaultPassSymbol), "Symbol for passed tests (env: DROMUS_PASS_SYMBOL)")
	runCmd.Flags().StringVar(&failSymbolFlag, "fail-symbol", getEnvString("DROMUS_FAIL_SYMBOL", config.DefaultFailSymbol), "Symbol for failed tests (env: DROMUS_FAIL_SYMBOL)")
	runCmd.Flags().StringVar(&skipSymbolFlag, "skip-symbol", getEnvString("DROMUS_SKIP_SYMBOL", config.DefaultSkipSymbol), "Symbol for skipped tests (env: DROMUS_SKIP_SYMBOL)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func runCommand(cmd *cobra.Command, args []string) error {
	format, err := parser.ParseFormat(formatFlag)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	if rateFlag < 0 {
		return exitWith(ExitUsageError, fmt.Errorf("--rate must be >= 0"))
	}

	opts, err := resolveOptions(cmd)
	if err != nil {
		return exitWith(ExitConfigError, err)
	}

	fromStdin := len(args) == 0 || (len(args) == 1 && args[0] == stdinArg)
	var files []string
	if !fromStdin {
		files, err = collectFiles(args)
		if err != nil {
			return exitWith(ExitUsageError, err)
		}
		if len(files) == 0 {
			return exitWith(ExitUsageError, fmt.Errorf("no event files found"))
		}
	}
	if watchFlag && fromStdin {
		return exitWith(ExitUsageError, fmt.Errorf("--watch needs event files, not stdin"))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &renderer{
		out:    cmd.OutOrStdout(),
		opts:   opts,
		format: format,
		runner: runner.NewRunner(&runner.Config{
			ReplayRate: rateFlag,
			Strict:     strictFlag,
			Logger:     logger,
		}),
	}

	var totals output.Totals
	if fromStdin {
		totals, err = r.render(ctx, []runner.Source{{Name: "stdin", Reader: cmd.InOrStdin(), Format: format}})
	} else {
		totals, err = r.renderFiles(ctx, files)
	}

	if watchFlag {
		return watchFiles(ctx, cmd.OutOrStdout(), files, func(ctx context.Context) {
			if _, err := r.renderFiles(ctx, files); err != nil {
				logger.Warn("re-render failed", zap.Error(err))
			}
		})
	}

	return exitStatus(totals, err)
}

// exitStatus maps the outcome of a run to the command result.
func exitStatus(totals output.Totals, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		// Failures seen before the interrupt still fail the run.
		if totals.Failed > 0 {
			return exitWith(ExitTestFailure, nil)
		}
		return nil
	case err != nil:
		return exitWith(ExitParseError, err)
	case totals.Failed > 0:
		return exitWith(ExitTestFailure, nil)
	}
	return nil
}

// resolveOptions layers flags and environment over the config file and
// freezes the result for one run.
func resolveOptions(cmd *cobra.Command) (config.Options, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return config.Options{}, err
	}

	flags := &config.Config{}
	if explicit(cmd, "no-color") && noColorFlag {
		flags.UseColors = config.BoolPtr(false)
	}
	if explicit(cmd, "timings") {
		flags.ShowTimings = config.BoolPtr(timingsFlag)
	}
	if explicit(cmd, "exceptions") {
		flags.ShowExceptions = config.BoolPtr(exceptionsFlag)
	}
	if explicit(cmd, "stack-traces") {
		flags.ShowStackTraces = config.BoolPtr(stackTracesFlag)
	}
	if explicit(cmd, "full-stack-traces") {
		flags.ShowFullStackTraces = config.BoolPtr(fullStackTracesFlag)
	}
	if explicit(cmd, "duration-stats") {
		flags.ShowDurationStats = config.BoolPtr(durationStatsFlag)
	}
	if explicit(cmd, "module-names") {
		flags.ShowModuleNames = config.BoolPtr(moduleNamesFlag)
	}
	if explicit(cmd, "method-names") {
		flags.ShowMethodNames = config.BoolPtr(methodNamesFlag)
	}
	if explicit(cmd, "max-depth") {
		flags.MaxStackDepth = config.IntPtr(maxDepthFlag)
	}
	if explicit(cmd, "width") {
		flags.TerminalWidth = widthFlag
	}
	if explicit(cmd, "pass-symbol") {
		flags.PassSymbol = passSymbolFlag
	}
	if explicit(cmd, "fail-symbol") {
		flags.FailSymbol = failSymbolFlag
	}
	if explicit(cmd, "skip-symbol") {
		flags.SkipSymbol = skipSymbolFlag
	}
	if err := flags.Validate(); err != nil {
		return config.Options{}, err
	}

	merged := fileConfig.Merge(flags)
	if merged.UseColors == nil {
		merged.UseColors = config.BoolPtr(isTerminal(cmd.OutOrStdout()))
	}
	return merged.Options(), nil
}

func explicit(cmd *cobra.Command, flag string) bool {
	if cmd.Flags().Changed(flag) {
		return true
	}
	key, ok := envKeys[flag]
	return ok && os.Getenv(key) != ""
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// renderer runs one report per call, each with a fresh Aggregator.
type renderer struct {
	out    io.Writer
	opts   config.Options
	format parser.Format
	runner *runner.Runner
}

func (r *renderer) render(ctx context.Context, sources []runner.Source) (output.Totals, error) {
	agg := output.NewAggregator(r.opts,
		output.WithWriter(r.out),
		output.WithLogger(logger),
	)

	_, err := r.runner.Run(ctx, agg, sources...)
	agg.PrintSummary()
	return agg.Stats(), err
}

func (r *renderer) renderFiles(ctx context.Context, files []string) (output.Totals, error) {
	sources, closeAll, err := openSources(files, r.format)
	if err != nil {
		return output.Totals{}, err
	}
	defer closeAll()
	return r.render(ctx, sources)
}

func openSources(files []string, format parser.Format) ([]runner.Source, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	sources := make([]runner.Source, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		opened = append(opened, f)
		sources = append(sources, runner.Source{Name: path, Reader: f, Format: format})
	}
	return sources, closeAll, nil
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isEventFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			// Explicit files are taken as given.
			files = append(files, arg)
		}
	}

	return files, nil
}

func isEventFile(path string) bool {
	switch filepath.Ext(path) {
	case ".ndjson", ".jsonl", ".json":
		return true
	}
	return false
}
