package event

import (
	"fmt"
	"strings"
	"time"
)

// Outcome classifies a completed test.
type Outcome int

const (
	Unknown Outcome = iota
	Passed
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ParseOutcome maps a wire name to an Outcome. Unrecognized names yield Unknown.
func ParseOutcome(s string) Outcome {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed", "pass", "success":
		return Passed
	case "failed", "fail", "failure":
		return Failed
	case "skipped", "skip":
		return Skipped
	default:
		return Unknown
	}
}

// Event is one of SuiteStarted, SuiteEnded, TestStarted or TestEnded.
type Event interface {
	isEvent()
}

// SuiteStarted marks the start of a suite. The root suite spans the run.
type SuiteStarted struct {
	IsRoot bool
}

// SuiteEnded marks the end of a suite.
type SuiteEnded struct {
	IsRoot bool
}

// TestStarted is emitted before a test runs. TaskID names the worker job the
// test belongs to.
type TestStarted struct {
	TaskID     string
	ClassName  string
	MethodName string
}

// TestEnded carries the outcome of a single test.
type TestEnded struct {
	TaskID     string
	ClassName  string
	MethodName string
	Outcome    Outcome
	StartTime  time.Time
	EndTime    time.Time
	Exceptions []*Exception
}

// Duration returns EndTime - StartTime, never negative.
func (e TestEnded) Duration() time.Duration {
	d := e.EndTime.Sub(e.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

func (SuiteStarted) isEvent() {}
func (SuiteEnded) isEvent()   {}
func (TestStarted) isEvent()  {}
func (TestEnded) isEvent()    {}

// Frame is one stack frame of a captured exception.
type Frame struct {
	Type   string `json:"type"`
	Method string `json:"method"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
}

func (f Frame) String() string {
	file := f.File
	if file == "" {
		file = "Unknown Source"
	}
	return fmt.Sprintf("%s.%s(%s:%d)", f.Type, f.Method, file, f.Line)
}

// Exception is a failure captured by a test worker. Cause may point back
// into the chain, so walkers must track what they have visited.
type Exception struct {
	Type    string
	Message string
	Frames  []Frame
	Cause   *Exception

	// Trace is a trace preformatted by the producer. When set it is used
	// verbatim for full stack trace output.
	Trace string
}

// SimpleName returns the part of a qualified type name after the last '.'
// or '$'.
func SimpleName(name string) string {
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// DisplayMessage returns the exception's message, or its simple type name
// when the message is blank.
func DisplayMessage(e *Exception) string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if name := SimpleName(e.Type); name != "" {
		return name
	}
	if e.Type != "" {
		return e.Type
	}
	return "Exception"
}

// Header returns "Type: message", or just the type when the message is blank.
func (e *Exception) Header() string {
	if strings.TrimSpace(e.Message) == "" {
		return e.Type
	}
	return e.Type + ": " + e.Message
}
