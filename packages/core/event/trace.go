package event

import (
	"strconv"
	"strings"
)

// CauseOf returns e's cause, treating an exception that names itself as its
// own cause as having none.
func CauseOf(e *Exception) *Exception {
	if e == nil || e.Cause == e {
		return nil
	}
	return e.Cause
}

// FormatTrace renders the full trace of e including every cause, in the
// layout JVM test workers produce:
//
//	Type: message
//		at pkg.Type.method(File.java:12)
//	Caused by: Other: message
//		at ...
//		... 3 more
//
// Frames a cause shares with its enclosing trace are collapsed into the
// "... n more" line. A cause chain that loops back is cut with a
// CIRCULAR REFERENCE marker.
func FormatTrace(e *Exception) string {
	if e == nil {
		return ""
	}
	if e.Trace != "" {
		return e.Trace
	}

	var b strings.Builder
	seen := map[*Exception]bool{e: true}

	b.WriteString(e.Header())
	b.WriteByte('\n')
	for _, f := range e.Frames {
		b.WriteString("\tat ")
		b.WriteString(f.String())
		b.WriteByte('\n')
	}

	enclosing := e.Frames
	for cause := CauseOf(e); cause != nil; cause = CauseOf(cause) {
		if seen[cause] {
			b.WriteString("\t[CIRCULAR REFERENCE: ")
			b.WriteString(cause.Header())
			b.WriteString("]\n")
			break
		}
		seen[cause] = true

		b.WriteString("Caused by: ")
		b.WriteString(cause.Header())
		b.WriteByte('\n')

		unique, common := splitCommonFrames(cause.Frames, enclosing)
		for _, f := range unique {
			b.WriteString("\tat ")
			b.WriteString(f.String())
			b.WriteByte('\n')
		}
		if common > 0 {
			b.WriteString("\t... ")
			b.WriteString(strconv.Itoa(common))
			b.WriteString(" more\n")
		}
		enclosing = cause.Frames
	}

	return b.String()
}

// splitCommonFrames returns the leading frames of trace that differ from
// enclosing, and how many trailing frames the two share.
func splitCommonFrames(trace, enclosing []Frame) ([]Frame, int) {
	m, n := len(trace)-1, len(enclosing)-1
	for m >= 0 && n >= 0 && trace[m] == enclosing[n] {
		m--
		n--
	}
	return trace[:m+1], len(trace) - 1 - m
}
