package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/tidwall/gjson"
)

// GoTestFailureType is the exception type attached to failed go tests.
const GoTestFailureType = "testing.T"

// GoTestDecoder adapts `go test -json` output. The package becomes the task,
// and output printed by a failing test becomes the failure message.
type GoTestDecoder struct {
	scanner *bufio.Scanner
	line    int
	queue   []event.Event
	outputs map[string][]string
}

// NewGoTestDecoder creates a decoder reading test2json lines from r.
func NewGoTestDecoder(r io.Reader) *GoTestDecoder {
	return &GoTestDecoder{
		scanner: newLineScanner(r),
		outputs: make(map[string][]string),
	}
}

// Next returns the next event.
func (d *GoTestDecoder) Next() (event.Event, error) {
	for len(d.queue) == 0 {
		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading line %d: %w", d.line+1, err)
			}
			return nil, io.EOF
		}
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := d.consume(raw); err != nil {
			return nil, &LineError{Line: d.line, Err: err}
		}
	}

	ev := d.queue[0]
	d.queue = d.queue[1:]
	return ev, nil
}

func (d *GoTestDecoder) consume(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("%w: invalid JSON", ErrMalformedEvent)
	}
	fields := gjson.GetManyBytes(raw, "Action", "Package", "Test", "Time", "Elapsed", "Output")
	action, pkg, test := fields[0].String(), fields[1].String(), fields[2].String()
	if action == "" {
		return fmt.Errorf("%w: missing \"Action\"", ErrMalformedEvent)
	}

	if test == "" {
		switch action {
		case "start":
			d.queue = append(d.queue, event.SuiteStarted{})
		case "pass", "fail", "skip":
			d.queue = append(d.queue, event.SuiteEnded{})
		}
		return nil
	}

	key := pkg + "\x00" + test
	switch action {
	case "run":
		d.queue = append(d.queue, event.TestStarted{
			TaskID:     pkg,
			ClassName:  pkg,
			MethodName: test,
		})
	case "output":
		d.outputs[key] = append(d.outputs[key], fields[5].String())
	case "pass", "fail", "skip":
		end := fields[3].Time()
		elapsed := time.Duration(fields[4].Float() * float64(time.Second))
		ended := event.TestEnded{
			TaskID:     pkg,
			ClassName:  pkg,
			MethodName: test,
			Outcome:    event.ParseOutcome(action),
			StartTime:  end.Add(-elapsed),
			EndTime:    end,
		}
		if action == "fail" {
			ended.Exceptions = []*event.Exception{{
				Type:    GoTestFailureType,
				Message: failureMessage(d.outputs[key]),
			}}
		}
		delete(d.outputs, key)
		d.queue = append(d.queue, ended)
	}
	return nil
}

// failureMessage keeps what the test itself printed, dropping the
// "=== RUN" and "--- FAIL" framing lines.
func failureMessage(output []string) string {
	var lines []string
	for _, chunk := range output {
		for _, l := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(l)
			if trimmed == "" || strings.HasPrefix(trimmed, "=== ") || strings.HasPrefix(trimmed, "--- ") {
				continue
			}
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
