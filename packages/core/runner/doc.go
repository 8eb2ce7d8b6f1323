// Package runner feeds event streams into a Handler.
//
// Each Source is decoded on its own goroutine and its events are delivered
// synchronously, so a Handler sees events from different sources
// concurrently and events from one source in order. The run is bracketed by
// a root SuiteStarted and a root SuiteEnded.
//
// Sources can be replayed at a fixed rate to mimic live workers.
package runner
