package terminal

import (
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Widther reports the current terminal width.
type Widther interface {
	Width() int
}

// streamLocks holds one mutex per output stream so that every ScreenWriter
// wrapping the same stream serializes on the same lock.
var streamLocks sync.Map

func lockFor(w io.Writer) *sync.Mutex {
	if w == nil || !reflect.TypeOf(w).Comparable() {
		return new(sync.Mutex)
	}
	mu, _ := streamLocks.LoadOrStore(w, new(sync.Mutex))
	return mu.(*sync.Mutex)
}

// ScreenWriter is the only component that writes to the raw output stream.
// Every operation clears the current line first and runs inside the stream's
// critical section, so lines from concurrent callers never interleave.
type ScreenWriter struct {
	mu     *sync.Mutex
	out    io.Writer
	width  Widther
	colors *Colorizer
}

// ScreenOption configures a ScreenWriter.
type ScreenOption func(*ScreenWriter)

// WithWriter sets the output stream. Defaults to os.Stdout.
func WithWriter(w io.Writer) ScreenOption {
	return func(s *ScreenWriter) {
		s.out = w
	}
}

// WithWidth sets the width source. Defaults to a WidthResolver.
func WithWidth(w Widther) ScreenOption {
	return func(s *ScreenWriter) {
		s.width = w
	}
}

// WithColorizer sets the colorizer used for headings.
func WithColorizer(c *Colorizer) ScreenOption {
	return func(s *ScreenWriter) {
		s.colors = c
	}
}

// NewScreenWriter creates a ScreenWriter.
func NewScreenWriter(opts ...ScreenOption) *ScreenWriter {
	s := &ScreenWriter{
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.width == nil {
		s.width = NewWidthResolver()
	}
	if s.colors == nil {
		s.colors = NewColorizer(false)
	}
	s.mu = lockFor(s.out)
	return s
}

// Width returns the width used for clearing and headings.
func (s *ScreenWriter) Width() int {
	if w := s.width.Width(); w > 0 {
		return w
	}
	return DefaultWidth
}

// ClearLine moves to column 0, blanks the line and returns to column 0.
func (s *ScreenWriter) ClearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLine()
}

// Print clears the line and writes text without a newline.
func (s *ScreenWriter) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLine()
	s.write(text)
}

// Println clears the line and writes text followed by a newline.
func (s *ScreenWriter) Println(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLine()
	s.write(text + "\n")
}

// PrintBlock writes several lines in one critical section.
func (s *ScreenWriter) PrintBlock(lines ...string) {
	if len(lines) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		s.clearLine()
		s.write(line + "\n")
	}
}

// HeadingLine returns char repeated across the full width, styled. It is
// meant for callers that print a heading as part of a PrintBlock.
func (s *ScreenWriter) HeadingLine(char string, styles ...color.Attribute) string {
	if char == "" {
		char = "-"
	}
	return s.colors.Colorize(strings.Repeat(char, s.Width()), styles...)
}

// PrintHeading prints a HeadingLine on its own.
func (s *ScreenWriter) PrintHeading(char string, styles ...color.Attribute) {
	s.Println(s.HeadingLine(char, styles...))
}

// clearLine must be called with mu held.
func (s *ScreenWriter) clearLine() {
	s.write("\r" + strings.Repeat(" ", s.Width()) + "\r")
}

// write must be called with mu held. Write errors are dropped; output
// problems never interrupt a run.
func (s *ScreenWriter) write(text string) {
	_, _ = io.WriteString(s.out, text)
}
