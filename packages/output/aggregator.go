package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/terminal"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

const (
	// ResultColumn is the visible column the filler pads result lines to.
	ResultColumn = 60

	resultIndent = "  "
	fillerChar   = "."
	unknownMark  = "?"
)

// Aggregator consumes test events from any number of concurrent workers,
// keeps the run statistics and renders one line per completed test.
// Create one Aggregator per run.
type Aggregator struct {
	opts      config.Options
	colors    *terminal.Colorizer
	screen    *terminal.ScreenWriter
	stats     *RunStatistics
	headers   *TaskHeaderRegistry
	durations *DurationStats
	logger    *zap.Logger
	now       func() time.Time

	writer io.Writer
	width  terminal.Widther
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWriter sets the output stream. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(a *Aggregator) {
		a.writer = w
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock replaces time.Now for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithWidth replaces the terminal width source.
func WithWidth(w terminal.Widther) Option {
	return func(a *Aggregator) {
		a.width = w
	}
}

// NewAggregator creates an Aggregator rendering with opts.
func NewAggregator(opts config.Options, options ...Option) *Aggregator {
	opts.MaxStackDepth = max(opts.MaxStackDepth, 0)
	opts.TerminalWidth = max(opts.TerminalWidth, 0)
	a := &Aggregator{
		opts:    opts,
		stats:   NewRunStatistics(),
		headers: &TaskHeaderRegistry{},
		logger:  zap.NewNop(),
		now:     time.Now,
		writer:  os.Stdout,
	}
	for _, opt := range options {
		opt(a)
	}

	a.colors = terminal.NewColorizer(opts.UseColors)
	if a.width == nil {
		a.width = terminal.NewWidthResolver(
			terminal.WithConfiguredWidth(opts.TerminalWidth),
			terminal.WithLogger(a.logger),
		)
	}
	a.screen = terminal.NewScreenWriter(
		terminal.WithWriter(a.writer),
		terminal.WithWidth(a.width),
		terminal.WithColorizer(a.colors),
	)
	if opts.ShowDurationStats {
		a.durations = NewDurationStats()
	}
	a.logger = a.logger.With(zap.String("run", a.stats.RunID.String()))

	return a
}

// Handle dispatches ev to the matching callback.
func (a *Aggregator) Handle(ev event.Event) {
	switch e := ev.(type) {
	case event.SuiteStarted:
		a.OnSuiteStart(e.IsRoot)
	case event.SuiteEnded:
		a.OnSuiteEnd(e.IsRoot)
	case event.TestStarted:
		a.OnTestStart(e.TaskID, e.ClassName, e.MethodName)
	case event.TestEnded:
		a.OnTestEnd(e)
	default:
		a.logger.Debug("ignoring unsupported event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

// OnSuiteStart starts the run timer on the first root suite. Later root
// starts leave a running timer untouched.
func (a *Aggregator) OnSuiteStart(isRoot bool) {
	if !isRoot {
		return
	}
	if a.stats.MarkStarted(a.now()) {
		a.logger.Debug("run started")
	}
}

// OnSuiteEnd is a no-op for rendering; the summary is printed by the host.
func (a *Aggregator) OnSuiteEnd(isRoot bool) {
	if isRoot {
		a.logger.Debug("root suite ended", zap.Int64("tests", a.stats.Snapshot().Total))
	}
}

// OnTestStart prints the task header the first time a task is seen.
func (a *Aggregator) OnTestStart(taskID, className, methodName string) {
	if !a.headers.Claim(taskID) {
		return
	}
	a.logger.Debug("task started", zap.String("task", taskID), zap.String("class", className), zap.String("method", methodName))
	a.screen.Println(a.headerLine(taskID))
}

// OnTestEnd counts the test and prints its result line, followed by the
// failure details when it failed.
func (a *Aggregator) OnTestEnd(ev event.TestEnded) {
	a.stats.Record(ev.Outcome)
	if a.durations != nil {
		a.durations.Record(ev.Duration())
	}

	lines := []string{a.resultLine(ev)}
	if ev.Outcome == event.Failed {
		lines = append(lines, a.failureLines(ev.Exceptions)...)
	}
	a.screen.PrintBlock(lines...)
}

// HasTests reports whether at least one test was recorded.
func (a *Aggregator) HasTests() bool {
	return a.stats.Snapshot().Total > 0
}

// Stats returns a copy of the current counters.
func (a *Aggregator) Stats() Totals {
	return a.stats.Snapshot()
}

// RunID identifies this run in logs.
func (a *Aggregator) RunID() string {
	return a.stats.RunID.String()
}

func (a *Aggregator) headerLine(taskID string) string {
	label := taskID
	if label == "" {
		label = "(unnamed task)"
	}
	return a.colors.Colorize("▶ "+label, terminal.StyleHeading...)
}

func (a *Aggregator) resultLine(ev event.TestEnded) string {
	var b strings.Builder
	b.WriteString(resultIndent)
	name := ""
	if a.opts.ShowModuleNames {
		name = simpleClassName(ev.ClassName)
	}
	if name != "" {
		b.WriteString(a.colors.Colorize(name, terminal.StyleMuted...))
		if a.opts.ShowMethodNames {
			b.WriteString(".")
		}
	}
	if a.opts.ShowMethodNames {
		b.WriteString(a.colors.Colorize(ev.MethodName, color.FgWhite))
	}
	b.WriteString(" ")

	fill := ResultColumn - terminal.VisibleWidth(b.String())
	if fill < 1 {
		fill = 1
	}
	b.WriteString(a.colors.Colorize(strings.Repeat(fillerChar, fill), terminal.StyleMuted...))
	b.WriteString(" ")

	symbol, styles := a.symbolFor(ev.Outcome)
	b.WriteString(a.colors.Colorize(symbol, styles...))

	if a.opts.ShowTimings {
		ms := ev.Duration().Milliseconds()
		b.WriteString(" ")
		b.WriteString(a.colors.Colorize(fmt.Sprintf("(%dms)", ms), terminal.StyleMuted...))
	}

	return b.String()
}

func (a *Aggregator) symbolFor(outcome event.Outcome) (string, []color.Attribute) {
	switch outcome {
	case event.Passed:
		return a.opts.PassSymbol, terminal.StyleSuccess
	case event.Failed:
		return a.opts.FailSymbol, terminal.StyleError
	case event.Skipped:
		return a.opts.SkipSymbol, terminal.StyleWarning
	default:
		return unknownMark, terminal.StyleMuted
	}
}

// simpleClassName strips the package qualifier from a class or import path.
func simpleClassName(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}
