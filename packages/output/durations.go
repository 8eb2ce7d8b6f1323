package output

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Histogram range in microseconds: 1us to 1h
	minTrackableMicros = 1
	maxTrackableMicros = 3_600_000_000
)

// DurationStats tracks the distribution of test durations.
type DurationStats struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
}

// DurationSummary holds the reported percentiles.
type DurationSummary struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// NewDurationStats creates an empty histogram with 3 significant digits.
func NewDurationStats() *DurationStats {
	return &DurationStats{
		histogram: hdrhistogram.New(minTrackableMicros, maxTrackableMicros, 3),
	}
}

// Record adds one test duration.
func (d *DurationStats) Record(duration time.Duration) {
	us := duration.Microseconds()
	if us < minTrackableMicros {
		us = minTrackableMicros
	}
	if us > maxTrackableMicros {
		us = maxTrackableMicros
	}

	d.mu.Lock()
	_ = d.histogram.RecordValue(us)
	d.mu.Unlock()
}

// Summary returns the current percentiles.
func (d *DurationStats) Summary() DurationSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	return DurationSummary{
		Count: d.histogram.TotalCount(),
		P50:   time.Duration(d.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(d.histogram.ValueAtQuantile(95)) * time.Microsecond,
		Max:   time.Duration(d.histogram.Max()) * time.Microsecond,
	}
}

// formatDuration renders a duration for the summary.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
