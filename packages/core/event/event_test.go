package event

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		input    string
		expected Outcome
	}{
		{"passed", Passed},
		{"PASS", Passed},
		{"success", Passed},
		{"failed", Failed},
		{"fail", Failed},
		{" skipped ", Skipped},
		{"skip", Skipped},
		{"", Unknown},
		{"flaky", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOutcome(tt.input))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "passed", Passed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestTestEndedDuration(t *testing.T) {
	start := time.UnixMilli(100)
	assert.Equal(t, 150*time.Millisecond, TestEnded{StartTime: start, EndTime: time.UnixMilli(250)}.Duration())
	assert.Equal(t, time.Duration(0), TestEnded{StartTime: start, EndTime: time.UnixMilli(50)}.Duration())
}

func TestSimpleName(t *testing.T) {
	assert.Equal(t, "IllegalStateException", SimpleName("java.lang.IllegalStateException"))
	assert.Equal(t, "Inner", SimpleName("com.example.Outer$Inner"))
	assert.Equal(t, "Plain", SimpleName("Plain"))
	assert.Equal(t, "", SimpleName(""))
}

func TestDisplayMessage(t *testing.T) {
	t.Run("uses message", func(t *testing.T) {
		e := &Exception{Type: "java.lang.RuntimeException", Message: "Test failed"}
		assert.Equal(t, "Test failed", DisplayMessage(e))
	})

	for _, blank := range []string{"", "   ", "\n\t"} {
		t.Run("blank message falls back to simple type name", func(t *testing.T) {
			e := &Exception{Type: "java.lang.NullPointerException", Message: blank}
			got := DisplayMessage(e)
			assert.Equal(t, "NullPointerException", got)
			assert.NotEqual(t, "null", got)
		})
	}

	t.Run("nothing at all", func(t *testing.T) {
		assert.Equal(t, "Exception", DisplayMessage(&Exception{}))
	})
}

func TestFrameString(t *testing.T) {
	f := Frame{Type: "com.example.Foo", Method: "bar", File: "Foo.java", Line: 12}
	assert.Equal(t, "com.example.Foo.bar(Foo.java:12)", f.String())

	f.File = ""
	assert.Equal(t, "com.example.Foo.bar(Unknown Source:12)", f.String())
}

func frames(n int, prefix string) []Frame {
	out := make([]Frame, n)
	for i := range out {
		out[i] = Frame{Type: prefix, Method: "m" + string(rune('a'+i)), File: "F.java", Line: i + 1}
	}
	return out
}

func TestFormatTrace(t *testing.T) {
	t.Run("single exception", func(t *testing.T) {
		e := &Exception{Type: "java.lang.IllegalStateException", Message: "boom", Frames: frames(2, "a.B")}
		want := "java.lang.IllegalStateException: boom\n" +
			"\tat a.B.ma(F.java:1)\n" +
			"\tat a.B.mb(F.java:2)\n"
		assert.Equal(t, want, FormatTrace(e))
	})

	t.Run("cause shares trailing frames", func(t *testing.T) {
		shared := frames(3, "shared.S")
		cause := &Exception{
			Type:   "java.io.IOException",
			Frames: append([]Frame{{Type: "io.R", Method: "read", File: "R.java", Line: 9}}, shared...),
		}
		top := &Exception{Type: "java.lang.RuntimeException", Message: "wrapped", Frames: shared, Cause: cause}

		got := FormatTrace(top)
		assert.Contains(t, got, "Caused by: java.io.IOException\n")
		assert.Contains(t, got, "\tat io.R.read(R.java:9)\n")
		assert.Contains(t, got, "\t... 3 more\n")
		assert.Equal(t, 4, strings.Count(got, "\tat "))
	})

	t.Run("self cause is ignored", func(t *testing.T) {
		e := &Exception{Type: "E"}
		e.Cause = e
		assert.Equal(t, "E\n", FormatTrace(e))
	})

	t.Run("cycle terminates", func(t *testing.T) {
		a := &Exception{Type: "A", Message: "a"}
		b := &Exception{Type: "B", Message: "b"}
		a.Cause = b
		b.Cause = a

		got := FormatTrace(a)
		assert.Equal(t, 1, strings.Count(got, "Caused by: B: b"))
		assert.Contains(t, got, "[CIRCULAR REFERENCE: A: a]")
	})

	t.Run("preformatted trace wins", func(t *testing.T) {
		e := &Exception{Type: "E", Trace: "panic: boom\n\ngoroutine 1 [running]:\n"}
		assert.Equal(t, e.Trace, FormatTrace(e))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, "", FormatTrace(nil))
	})
}
