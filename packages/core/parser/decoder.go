package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
)

// MaxLineSize is the longest input line a decoder accepts.
const MaxLineSize = 1 << 20

// Format names an input wire format.
type Format string

const (
	FormatNDJSON Format = "ndjson"
	FormatGoTest Format = "gotest"
)

// Formats lists the supported formats.
var Formats = []Format{FormatNDJSON, FormatGoTest}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatNDJSON, FormatGoTest:
		return f, nil
	case "", "json", "jsonl":
		return FormatNDJSON, nil
	case "go", "test2json":
		return FormatGoTest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// EventDecoder yields events until it returns io.EOF.
type EventDecoder interface {
	Next() (event.Event, error)
}

// NewDecoder returns a decoder for format reading from r.
func NewDecoder(format Format, r io.Reader) (EventDecoder, error) {
	switch format {
	case FormatNDJSON, "":
		return NewNDJSONDecoder(r), nil
	case FormatGoTest:
		return NewGoTestDecoder(r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return s
}
