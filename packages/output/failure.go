package output

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/terminal"
)

const (
	failureIndent = "    "
	traceIndent   = "      "
	frameIndent   = "        "

	// maxCauseDepth caps short-form cause recursion independently of the
	// visited set.
	maxCauseDepth = 32
)

// failureLines renders the details of a failed test, one entry per line.
func (a *Aggregator) failureLines(exceptions []*event.Exception) []string {
	var lines []string
	for _, exc := range exceptions {
		if exc == nil {
			continue
		}

		if a.opts.ShowExceptions {
			lines = a.appendMessage(lines, event.DisplayMessage(exc))
		}

		switch {
		case a.opts.ShowFullStackTraces:
			lines = a.appendFullTrace(lines, exc)
		case a.opts.ShowStackTraces:
			lines = a.appendShortTrace(lines, exc)
		}
	}
	return lines
}

// appendMessage prints the first message line after the marker and aligns
// any further lines under it.
func (a *Aggregator) appendMessage(lines []string, msg string) []string {
	for i, l := range strings.Split(msg, "\n") {
		if i == 0 {
			lines = append(lines, a.errorLine(failureIndent+"→ "+l))
			continue
		}
		lines = append(lines, a.errorLine(failureIndent+"  "+l))
	}
	return lines
}

func (a *Aggregator) appendFullTrace(lines []string, exc *event.Exception) []string {
	for _, l := range strings.Split(event.FormatTrace(exc), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, a.errorLine(traceIndent+strings.ReplaceAll(l, "\t", "    ")))
	}
	return lines
}

// appendShortTrace prints the header and at most MaxStackDepth frames of exc,
// then walks its causes the same way. Each exception is rendered at most once.
func (a *Aggregator) appendShortTrace(lines []string, exc *event.Exception) []string {
	visited := make(map[*event.Exception]bool)

	for depth := 0; exc != nil; depth++ {
		if depth >= maxCauseDepth {
			lines = append(lines, a.errorLine(traceIndent+"... cause chain truncated"))
			break
		}
		visited[exc] = true

		lines = append(lines, a.errorLine(traceIndent+exc.Header()))

		shown := exc.Frames
		if len(shown) > a.opts.MaxStackDepth {
			shown = shown[:a.opts.MaxStackDepth]
		}
		for _, f := range shown {
			lines = append(lines, a.errorLine(frameIndent+"at "+f.String()))
		}
		if remaining := len(exc.Frames) - len(shown); remaining > 0 {
			lines = append(lines, a.errorLine(fmt.Sprintf("%s... %d more", frameIndent, remaining)))
		}

		cause := event.CauseOf(exc)
		if cause == nil {
			break
		}
		if visited[cause] {
			lines = append(lines, a.errorLine(traceIndent+"[CIRCULAR REFERENCE: "+cause.Header()+"]"))
			break
		}
		lines = append(lines, a.errorLine(traceIndent+"Caused by:"))
		exc = cause
	}

	return lines
}

func (a *Aggregator) errorLine(text string) string {
	return a.colors.Colorize(text, terminal.StyleError...)
}
