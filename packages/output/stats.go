package output

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/google/uuid"
)

// RunStatistics holds the counters for one run. It is owned by a single
// Aggregator and updated with atomic operations only.
type RunStatistics struct {
	RunID uuid.UUID

	// Counters
	total   atomic.Int64
	passed  atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
	unknown atomic.Int64

	// Unix nanoseconds of the root suite start, zero until set
	startNanos atomic.Int64
}

// Totals is a point-in-time copy of the counters.
type Totals struct {
	Total   int64
	Passed  int64
	Failed  int64
	Skipped int64
	Unknown int64
}

// NewRunStatistics creates zeroed statistics with a fresh run id.
func NewRunStatistics() *RunStatistics {
	return &RunStatistics{RunID: uuid.New()}
}

// MarkStarted records t as the run start unless a start was already
// recorded. It reports whether this call set it.
func (s *RunStatistics) MarkStarted(t time.Time) bool {
	return s.startNanos.CompareAndSwap(0, t.UnixNano())
}

// StartTime returns the recorded start, if any.
func (s *RunStatistics) StartTime() (time.Time, bool) {
	n := s.startNanos.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

// Elapsed returns now minus the start time, or zero when the run never started.
func (s *RunStatistics) Elapsed(now time.Time) time.Duration {
	start, ok := s.StartTime()
	if !ok {
		return 0
	}
	if d := now.Sub(start); d > 0 {
		return d
	}
	return 0
}

// Record counts one completed test.
func (s *RunStatistics) Record(outcome event.Outcome) {
	s.total.Add(1)
	switch outcome {
	case event.Passed:
		s.passed.Add(1)
	case event.Failed:
		s.failed.Add(1)
	case event.Skipped:
		s.skipped.Add(1)
	default:
		s.unknown.Add(1)
	}
}

// Snapshot copies the counters.
func (s *RunStatistics) Snapshot() Totals {
	return Totals{
		Total:   s.total.Load(),
		Passed:  s.passed.Load(),
		Failed:  s.failed.Load(),
		Skipped: s.skipped.Load(),
		Unknown: s.unknown.Load(),
	}
}

// TaskHeaderRegistry remembers which task headers were printed. Entries are
// never removed during a run.
type TaskHeaderRegistry struct {
	seen  sync.Map
	count atomic.Int64
}

// Claim inserts taskID if absent. It returns true for exactly one caller per
// id, however many race.
func (r *TaskHeaderRegistry) Claim(taskID string) bool {
	if _, loaded := r.seen.LoadOrStore(taskID, struct{}{}); loaded {
		return false
	}
	r.count.Add(1)
	return true
}

// Has reports whether taskID was claimed.
func (r *TaskHeaderRegistry) Has(taskID string) bool {
	_, ok := r.seen.Load(taskID)
	return ok
}

// Len returns the number of claimed ids.
func (r *TaskHeaderRegistry) Len() int {
	return int(r.count.Load())
}
