// Package output renders test results to the terminal.
//
// The Aggregator is the heart of dromus. It receives test events from any
// number of concurrent workers and:
//   - keeps per-run counters with lock-free atomic updates
//   - prints a header the first time each task reports a test
//   - prints one result line per completed test, padded to a fixed column
//   - prints failure details with bounded, cycle-safe stack traces
//   - prints the final summary when the host asks for it
//
// All writes go through a terminal.ScreenWriter, so lines from different
// workers never interleave.
package output
