package output

import (
	"fmt"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frames(n int) []event.Frame {
	out := make([]event.Frame, n)
	for i := range out {
		out[i] = event.Frame{Type: "io.example.Calc", Method: fmt.Sprintf("step%d", i), File: "Calc.java", Line: 10 + i}
	}
	return out
}

func countPrefixed(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			n++
		}
	}
	return n
}

func TestFailureMessage(t *testing.T) {
	t.Run("message is shown under the result line", func(t *testing.T) {
		a, buf := newTestAggregator(t, plainOptions())
		a.OnTestEnd(ended("Suite", "testDivide", event.Failed,
			&event.Exception{Type: "java.lang.ArithmeticException", Message: "/ by zero"}))

		lines := visibleLines(buf)
		require.Len(t, lines, 2)
		assert.Equal(t, "    → / by zero", lines[1])
	})

	t.Run("blank message falls back to the simple type name", func(t *testing.T) {
		a, buf := newTestAggregator(t, plainOptions())
		a.OnTestEnd(ended("Suite", "testNull", event.Failed,
			&event.Exception{Type: "java.lang.NullPointerException", Message: "  "}))

		assert.Equal(t, "    → NullPointerException", visibleLines(buf)[1])
	})

	t.Run("exceptions disabled", func(t *testing.T) {
		opts := plainOptions()
		opts.ShowExceptions = false
		a, buf := newTestAggregator(t, opts)
		a.OnTestEnd(ended("Suite", "testDivide", event.Failed,
			&event.Exception{Type: "java.lang.ArithmeticException", Message: "/ by zero"}))

		assert.Len(t, visibleLines(buf), 1)
	})

	t.Run("passed tests never print failure details", func(t *testing.T) {
		a, buf := newTestAggregator(t, plainOptions())
		a.OnTestEnd(ended("Suite", "testFlaky", event.Passed,
			&event.Exception{Type: "java.lang.IllegalStateException", Message: "retried"}))

		assert.Len(t, visibleLines(buf), 1)
	})

	t.Run("every exception of a test is listed", func(t *testing.T) {
		a, buf := newTestAggregator(t, plainOptions())
		a.OnTestEnd(ended("Suite", "testMulti", event.Failed,
			&event.Exception{Type: "A", Message: "first"},
			nil,
			&event.Exception{Type: "B", Message: "second"}))

		lines := visibleLines(buf)
		assert.Equal(t, []string{"    → first", "    → second"}, lines[1:])
	})
}

func TestShortStackTrace(t *testing.T) {
	traceOptions := func(depth int) (*Aggregator, func() []string) {
		opts := plainOptions()
		opts.ShowStackTraces = true
		opts.MaxStackDepth = depth
		a, buf := newTestAggregator(t, opts)
		return a, func() []string { return visibleLines(buf) }
	}

	t.Run("frames beyond the depth are summarized", func(t *testing.T) {
		a, lines := traceOptions(3)
		a.OnTestEnd(ended("Suite", "testDeep", event.Failed,
			&event.Exception{Type: "java.lang.AssertionError", Message: "boom", Frames: frames(10)}))

		out := lines()
		assert.Equal(t, 3, countPrefixed(out, "at "))
		assert.Contains(t, out, "      java.lang.AssertionError: boom")
		assert.Contains(t, out, "        at io.example.Calc.step0(Calc.java:10)")
		assert.Contains(t, out, "        ... 7 more")
	})

	t.Run("negative depth is treated as zero", func(t *testing.T) {
		a, lines := traceOptions(-1)
		require.NotPanics(t, func() {
			a.OnTestEnd(ended("Suite", "testNegative", event.Failed,
				&event.Exception{Type: "E", Message: "m", Frames: frames(4)}))
		})

		out := lines()
		assert.Equal(t, 0, countPrefixed(out, "at "))
		assert.Contains(t, out, "        ... 4 more")
	})

	t.Run("short traces print no summary line", func(t *testing.T) {
		a, lines := traceOptions(10)
		a.OnTestEnd(ended("Suite", "testShallow", event.Failed,
			&event.Exception{Type: "E", Message: "m", Frames: frames(2)}))

		out := lines()
		assert.Equal(t, 2, countPrefixed(out, "at "))
		assert.Equal(t, 0, countPrefixed(out, "..."))
	})

	t.Run("causes are walked", func(t *testing.T) {
		a, lines := traceOptions(2)
		root := &event.Exception{Type: "java.io.IOException", Message: "disk", Frames: frames(4)}
		top := &event.Exception{Type: "java.lang.RuntimeException", Message: "wrapped", Frames: frames(1), Cause: root}
		a.OnTestEnd(ended("Suite", "testIO", event.Failed, top))

		out := lines()
		assert.Equal(t, 1, countPrefixed(out, "Caused by:"))
		assert.Contains(t, out, "      java.io.IOException: disk")
		assert.Contains(t, out, "        ... 2 more")
		assert.Equal(t, 3, countPrefixed(out, "at "))
	})

	t.Run("self cause is not followed", func(t *testing.T) {
		a, lines := traceOptions(5)
		self := &event.Exception{Type: "E", Message: "loop", Frames: frames(1)}
		self.Cause = self
		a.OnTestEnd(ended("Suite", "testSelf", event.Failed, self))

		out := lines()
		assert.Equal(t, 0, countPrefixed(out, "Caused by:"))
		assert.Equal(t, 0, countPrefixed(out, "[CIRCULAR REFERENCE"))
	})

	t.Run("cycles terminate with a marker", func(t *testing.T) {
		a, lines := traceOptions(5)
		first := &event.Exception{Type: "A", Message: "a", Frames: frames(1)}
		second := &event.Exception{Type: "B", Message: "b", Frames: frames(1), Cause: first}
		first.Cause = second
		a.OnTestEnd(ended("Suite", "testCycle", event.Failed, first))

		out := lines()
		assert.Equal(t, 1, countPrefixed(out, "A: a"))
		assert.Equal(t, 1, countPrefixed(out, "B: b"))
		assert.Equal(t, 1, countPrefixed(out, "Caused by:"))
		assert.Contains(t, out, "      [CIRCULAR REFERENCE: A: a]")
	})

	t.Run("long chains are truncated", func(t *testing.T) {
		a, lines := traceOptions(1)
		var exc *event.Exception
		for i := 0; i < maxCauseDepth+10; i++ {
			exc = &event.Exception{Type: fmt.Sprintf("E%d", i), Cause: exc}
		}
		a.OnTestEnd(ended("Suite", "testChain", event.Failed, exc))

		out := lines()
		assert.Equal(t, maxCauseDepth, countPrefixed(out, "Caused by:"))
		assert.Equal(t, "      ... cause chain truncated", out[len(out)-1])
	})
}

func TestFullStackTrace(t *testing.T) {
	opts := plainOptions()
	opts.ShowFullStackTraces = true
	opts.MaxStackDepth = 1
	a, buf := newTestAggregator(t, opts)

	shared := frames(3)
	cause := &event.Exception{Type: "java.io.IOException", Message: "disk", Frames: shared}
	top := &event.Exception{Type: "java.lang.RuntimeException", Message: "wrapped", Frames: shared, Cause: cause}
	a.OnTestEnd(ended("Suite", "testFull", event.Failed, top))

	out := visibleLines(buf)
	assert.Equal(t, 3, countPrefixed(out, "at "), "full traces ignore the depth limit")
	assert.Contains(t, out, "      Caused by: java.io.IOException: disk")
	assert.Contains(t, out, "          ... 3 more")
	for _, l := range out {
		assert.NotContains(t, l, "\t")
	}
}

func TestPreformattedTrace(t *testing.T) {
	opts := plainOptions()
	opts.ShowFullStackTraces = true
	a, buf := newTestAggregator(t, opts)

	a.OnTestEnd(ended("Suite", "testRaw", event.Failed, &event.Exception{
		Type:    "panic",
		Message: "runtime error",
		Trace:   "goroutine 7 [running]:\n\nmain.crash()\n\t/src/main.go:12\n",
	}))

	out := visibleLines(buf)
	assert.Equal(t, []string{
		"    → runtime error",
		"      goroutine 7 [running]:",
		"      main.crash()",
		"          /src/main.go:12",
	}, out[1:])
}

func TestMultilineFailureMessage(t *testing.T) {
	a, buf := newTestAggregator(t, plainOptions())
	a.OnTestEnd(ended("pkg", "TestParse", event.Failed,
		&event.Exception{Type: "testing.T", Message: "parse_test.go:12: bad input\nparse_test.go:13: want 2"}))

	assert.Equal(t, []string{
		"    → parse_test.go:12: bad input",
		"      parse_test.go:13: want 2",
	}, visibleLines(buf)[1:])
}
