// Package parser decodes test event streams into event.Event values.
//
// Two wire formats are supported:
//   - ndjson: one dromus event object per line (see schema.json)
//   - gotest: the output of `go test -json`
//
// Decoders return one event per call to Next. A malformed line is reported
// as a *LineError and decoding may continue with the next call; any other
// error ends the stream.
package parser
