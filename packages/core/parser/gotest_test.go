package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goTestStream = `{"Time":"2024-05-01T10:00:00Z","Action":"start","Package":"example.com/calc"}
{"Time":"2024-05-01T10:00:00Z","Action":"run","Package":"example.com/calc","Test":"TestAdd"}
{"Time":"2024-05-01T10:00:00Z","Action":"output","Package":"example.com/calc","Test":"TestAdd","Output":"=== RUN   TestAdd\n"}
{"Time":"2024-05-01T10:00:00.25Z","Action":"output","Package":"example.com/calc","Test":"TestAdd","Output":"--- PASS: TestAdd (0.25s)\n"}
{"Time":"2024-05-01T10:00:00.25Z","Action":"pass","Package":"example.com/calc","Test":"TestAdd","Elapsed":0.25}
{"Time":"2024-05-01T10:00:00.25Z","Action":"run","Package":"example.com/calc","Test":"TestDiv"}
{"Time":"2024-05-01T10:00:00.25Z","Action":"output","Package":"example.com/calc","Test":"TestDiv","Output":"=== RUN   TestDiv\n"}
{"Time":"2024-05-01T10:00:00.26Z","Action":"output","Package":"example.com/calc","Test":"TestDiv","Output":"    calc_test.go:21: divide by zero\n"}
{"Time":"2024-05-01T10:00:00.26Z","Action":"output","Package":"example.com/calc","Test":"TestDiv","Output":"    calc_test.go:22: want 0, got 1\n"}
{"Time":"2024-05-01T10:00:00.26Z","Action":"output","Package":"example.com/calc","Test":"TestDiv","Output":"--- FAIL: TestDiv (0.01s)\n"}
{"Time":"2024-05-01T10:00:00.26Z","Action":"fail","Package":"example.com/calc","Test":"TestDiv","Elapsed":0.01}
{"Time":"2024-05-01T10:00:00.26Z","Action":"run","Package":"example.com/calc","Test":"TestSkip"}
{"Time":"2024-05-01T10:00:00.26Z","Action":"skip","Package":"example.com/calc","Test":"TestSkip","Elapsed":0}
{"Time":"2024-05-01T10:00:00.27Z","Action":"output","Package":"example.com/calc","Output":"FAIL\n"}
{"Time":"2024-05-01T10:00:00.27Z","Action":"fail","Package":"example.com/calc","Elapsed":0.27}
`

func TestGoTestDecoder(t *testing.T) {
	events, errs := decodeAll(t, NewGoTestDecoder(strings.NewReader(goTestStream)))
	require.Empty(t, errs)
	require.Len(t, events, 8)

	assert.Equal(t, event.SuiteStarted{}, events[0])
	assert.Equal(t, event.TestStarted{TaskID: "example.com/calc", ClassName: "example.com/calc", MethodName: "TestAdd"}, events[1])

	add := events[2].(event.TestEnded)
	assert.Equal(t, event.Passed, add.Outcome)
	assert.Equal(t, 250*time.Millisecond, add.Duration())
	assert.Empty(t, add.Exceptions)

	div := events[4].(event.TestEnded)
	assert.Equal(t, "TestDiv", div.MethodName)
	assert.Equal(t, event.Failed, div.Outcome)
	require.Len(t, div.Exceptions, 1)
	assert.Equal(t, GoTestFailureType, div.Exceptions[0].Type)
	assert.Equal(t, "calc_test.go:21: divide by zero\ncalc_test.go:22: want 0, got 1", div.Exceptions[0].Message)

	skip := events[6].(event.TestEnded)
	assert.Equal(t, event.Skipped, skip.Outcome)

	assert.Equal(t, event.SuiteEnded{}, events[7])
}

func TestGoTestDecoder_FailureWithoutOutput(t *testing.T) {
	input := `{"Action":"run","Package":"p","Test":"TestQuiet"}
{"Action":"fail","Package":"p","Test":"TestQuiet","Elapsed":0}
`
	events, errs := decodeAll(t, NewGoTestDecoder(strings.NewReader(input)))
	require.Empty(t, errs)
	require.Len(t, events, 2)

	exc := events[1].(event.TestEnded).Exceptions[0]
	assert.Empty(t, exc.Message)
	assert.Equal(t, "T", event.DisplayMessage(exc))
}

func TestGoTestDecoder_BadLines(t *testing.T) {
	input := `# example.com/broken
{"Package":"p"}
{"Action":"run","Package":"p","Test":"TestOK"}
`
	events, errs := decodeAll(t, NewGoTestDecoder(strings.NewReader(input)))
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrMalformedEvent)
	assert.ErrorIs(t, errs[1], ErrMalformedEvent)
	require.Len(t, events, 1)
}

func TestFailureMessage(t *testing.T) {
	got := failureMessage([]string{"=== RUN   TestX\n", "    x_test.go:3: nope\n    more\n", "--- FAIL: TestX (0.00s)\n"})
	assert.Equal(t, "x_test.go:3: nope\nmore", got)
}
