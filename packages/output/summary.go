package output

import (
	"fmt"

	"github.com/abdul-hamid-achik/dromus/packages/terminal"
	"go.uber.org/zap"
)

const (
	summaryRule   = "="
	successBanner = "✨ All tests passed!"
	failureBanner = "❌ Some tests failed."
)

// PrintSummary prints the final run summary. It does nothing when no test
// was recorded. The host calls it once after deciding the run is over.
func (a *Aggregator) PrintSummary() {
	if !a.HasTests() {
		return
	}

	totals := a.stats.Snapshot()
	elapsed := a.stats.Elapsed(a.now())
	rule := a.screen.HeadingLine(summaryRule, terminal.StyleMuted...)

	lines := []string{
		"",
		rule,
		a.totalsLine(totals),
		a.colors.Colorize("Time:", terminal.StyleMuted...) + fmt.Sprintf(" %.3fs", elapsed.Seconds()),
	}

	if a.durations != nil {
		if s := a.durations.Summary(); s.Count > 0 {
			lines = append(lines, a.colors.Colorize("Durations:", terminal.StyleMuted...)+
				fmt.Sprintf(" p50 %s, p95 %s, max %s", formatDuration(s.P50), formatDuration(s.P95), formatDuration(s.Max)))
		}
	}

	lines = append(lines, "")
	if totals.Failed == 0 {
		lines = append(lines, a.colors.Colorize(successBanner, terminal.StyleSuccess...))
	} else {
		lines = append(lines, a.colors.Colorize(failureBanner, terminal.StyleError...))
	}
	lines = append(lines, rule)

	a.screen.PrintBlock(lines...)

	a.logger.Debug("run finished",
		zap.Int64("total", totals.Total),
		zap.Int64("failed", totals.Failed),
		zap.Duration("elapsed", elapsed))
}

func (a *Aggregator) totalsLine(t Totals) string {
	return fmt.Sprintf("%s %d tests, %s %d passed, %s %d failed, %s %d skipped",
		a.colors.Colorize("Total:", terminal.StyleMuted...),
		t.Total,
		a.colors.Colorize(a.opts.PassSymbol, terminal.StyleSuccess...),
		t.Passed,
		a.colors.Colorize(a.opts.FailSymbol, terminal.StyleError...),
		t.Failed,
		a.colors.Colorize(a.opts.SkipSymbol, terminal.StyleWarning...),
		t.Skipped,
	)
}
