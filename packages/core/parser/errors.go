package parser

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEvent   = errors.New("malformed event")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrUnknownFormat    = errors.New("unknown event format")
	ErrSchemaViolation  = errors.New("schema violation")
)

// LineError reports a problem with a single input line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// IsLineError reports whether err only affects one line of input.
func IsLineError(err error) bool {
	var le *LineError
	return errors.As(err, &le)
}
