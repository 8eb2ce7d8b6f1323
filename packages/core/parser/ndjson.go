package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/tidwall/gjson"
)

// Wire event types.
const (
	TypeSuiteStarted = "suiteStarted"
	TypeSuiteEnded   = "suiteEnded"
	TypeTestStarted  = "testStarted"
	TypeTestEnded    = "testEnded"
)

type wireEvent struct {
	Type       string           `json:"type"`
	IsRoot     bool             `json:"isRoot"`
	TaskID     string           `json:"taskId"`
	ClassName  string           `json:"className"`
	MethodName string           `json:"methodName"`
	Outcome    string           `json:"outcome"`
	StartTime  int64            `json:"startTime"`
	EndTime    int64            `json:"endTime"`
	Exceptions []*wireException `json:"exceptions"`
}

type wireException struct {
	ID      string         `json:"id"`
	Ref     string         `json:"ref"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Frames  []event.Frame  `json:"frames"`
	Trace   string         `json:"trace"`
	Cause   *wireException `json:"cause"`
}

// NDJSONDecoder reads one dromus event per line.
type NDJSONDecoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewNDJSONDecoder creates a decoder reading from r.
func NewNDJSONDecoder(r io.Reader) *NDJSONDecoder {
	return &NDJSONDecoder{scanner: newLineScanner(r)}
}

// Next returns the next event. Blank lines are skipped. A bad line yields a
// *LineError and the following call continues after it.
func (d *NDJSONDecoder) Next() (event.Event, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		ev, err := DecodeEvent(raw)
		if err != nil {
			return nil, &LineError{Line: d.line, Err: err}
		}
		return ev, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", d.line+1, err)
	}
	return nil, io.EOF
}

// DecodeEvent decodes a single NDJSON event object.
func DecodeEvent(raw []byte) (event.Event, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedEvent)
	}
	typ := gjson.GetBytes(raw, "type")
	if typ.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing \"type\"", ErrMalformedEvent)
	}

	switch typ.String() {
	case TypeSuiteStarted:
		return event.SuiteStarted{IsRoot: gjson.GetBytes(raw, "isRoot").Bool()}, nil
	case TypeSuiteEnded:
		return event.SuiteEnded{IsRoot: gjson.GetBytes(raw, "isRoot").Bool()}, nil
	case TypeTestStarted, TypeTestEnded:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, typ.String())
	}

	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if w.Type == TypeTestStarted {
		return event.TestStarted{TaskID: w.TaskID, ClassName: w.ClassName, MethodName: w.MethodName}, nil
	}
	return event.TestEnded{
		TaskID:     w.TaskID,
		ClassName:  w.ClassName,
		MethodName: w.MethodName,
		Outcome:    event.ParseOutcome(w.Outcome),
		StartTime:  fromMillis(w.StartTime),
		EndTime:    fromMillis(w.EndTime),
		Exceptions: buildExceptions(w.Exceptions),
	}, nil
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

type pendingRef struct {
	target *event.Exception
	ref    string
}

// exceptionBuilder converts wire exceptions and resolves {"ref": id} causes
// against every id declared in the same event.
type exceptionBuilder struct {
	byID    map[string]*event.Exception
	pending []pendingRef
}

func buildExceptions(in []*wireException) []*event.Exception {
	b := &exceptionBuilder{byID: make(map[string]*event.Exception)}

	out := make([]*event.Exception, 0, len(in))
	var topRefs []string
	for _, w := range in {
		if w == nil {
			continue
		}
		if w.Ref != "" && w.Type == "" {
			topRefs = append(topRefs, w.Ref)
			continue
		}
		out = append(out, b.build(w))
	}

	for _, p := range b.pending {
		if cause, ok := b.byID[p.ref]; ok {
			p.target.Cause = cause
		}
	}
	for _, ref := range topRefs {
		if exc, ok := b.byID[ref]; ok {
			out = append(out, exc)
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func (b *exceptionBuilder) build(w *wireException) *event.Exception {
	root := &event.Exception{}
	for cur, w := root, w; ; {
		cur.Type = w.Type
		cur.Message = w.Message
		cur.Frames = w.Frames
		cur.Trace = w.Trace
		if w.ID != "" {
			b.byID[w.ID] = cur
		}

		next := w.Cause
		if next == nil {
			return root
		}
		if next.Ref != "" && next.Type == "" {
			b.pending = append(b.pending, pendingRef{target: cur, ref: next.Ref})
			return root
		}
		cur.Cause = &event.Exception{}
		cur, w = cur.Cause, next
	}
}
