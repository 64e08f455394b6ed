package harness

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// maxGapMicros caps a recorded gap at ten minutes.
const maxGapMicros = 600_000_000

// Timing tracks the time between consecutive results.
type Timing struct {
	histogram *hdrhistogram.Histogram
}

// NewTiming returns an empty Timing.
func NewTiming() *Timing {
	return &Timing{histogram: hdrhistogram.New(1, maxGapMicros, 3)}
}

// Record adds one gap.
func (t *Timing) Record(d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxGapMicros {
		us = maxGapMicros
	}
	_ = t.histogram.RecordValue(us)
}

// Count is the number of recorded gaps.
func (t *Timing) Count() int64 {
	return t.histogram.TotalCount()
}

// Percentile returns the gap at percentile p (0-100).
func (t *Timing) Percentile(p float64) time.Duration {
	return time.Duration(t.histogram.ValueAtQuantile(p)) * time.Microsecond
}

func (t *Timing) P50() time.Duration { return t.Percentile(50) }
func (t *Timing) P95() time.Duration { return t.Percentile(95) }
func (t *Timing) P99() time.Duration { return t.Percentile(99) }

// Max returns the longest gap.
func (t *Timing) Max() time.Duration {
	return time.Duration(t.histogram.Max()) * time.Microsecond
}

// Mean returns the average gap.
func (t *Timing) Mean() time.Duration {
	return time.Duration(t.histogram.Mean()) * time.Microsecond
}
