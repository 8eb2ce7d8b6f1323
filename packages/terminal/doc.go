// Package terminal provides the low-level pieces of console rendering:
// style sequences, terminal width detection, and a line-clearing writer
// that serializes all output to a stream.
package terminal
