package monitor

import (
	"sync/atomic"
	"time"
)

// OperationType names a timed step of an upload cycle
type OperationType string

const (
	OperationValidate OperationType = "validate"
	OperationInspect  OperationType = "inspect"
	OperationUpload   OperationType = "upload"
)

// operations lists every tracked step in cycle order
var operations = []OperationType{OperationValidate, OperationInspect, OperationUpload}

// OperationMetrics holds metrics for one step
type OperationMetrics struct {
	Operation    OperationType `json:"operation"`
	Count        int64         `json:"count"`
	SuccessCount int64         `json:"success_count"`
	ErrorCount   int64         `json:"error_count"`
	TotalTime    int64         `json:"total_time_ns"`
	MinTime      int64         `json:"min_time_ns"`
	MaxTime      int64         `json:"max_time_ns"`
	AvgTime      int64         `json:"avg_time_ns"`
}

// Counter is a thread-safe running total
type Counter struct {
	value atomic.Int64
}

// Inc increments the counter by 1
func (c *Counter) Inc() { c.value.Add(1) }

// Add adds n to the counter
func (c *Counter) Add(n int64) { c.value.Add(n) }

// Get returns the current total
func (c *Counter) Get() int64 { return c.value.Load() }

// Recorder accumulates the outcomes of one operation. The zero value is
// ready to use and safe for concurrent use.
type Recorder struct {
	count  atomic.Int64
	failed atomic.Int64
	total  atomic.Int64
	// min is stored as min+1 so the zero value means "nothing observed"
	min atomic.Int64
	max atomic.Int64
}

// Observe records one run of the operation
func (r *Recorder) Observe(d time.Duration, failed bool) {
	nanos := d.Nanoseconds()
	r.count.Add(1)
	r.total.Add(nanos)
	if failed {
		r.failed.Add(1)
	}

	for {
		current := r.min.Load()
		if current != 0 && nanos+1 >= current {
			break
		}
		if r.min.CompareAndSwap(current, nanos+1) {
			break
		}
	}
	for {
		current := r.max.Load()
		if nanos <= current || r.max.CompareAndSwap(current, nanos) {
			break
		}
	}
}

// Metrics returns the recorder's totals labelled as op
func (r *Recorder) Metrics(op OperationType) OperationMetrics {
	count := r.count.Load()
	failed := r.failed.Load()
	total := r.total.Load()

	m := OperationMetrics{
		Operation:    op,
		Count:        count,
		SuccessCount: count - failed,
		ErrorCount:   failed,
		TotalTime:    total,
		MaxTime:      r.max.Load(),
	}
	if lowest := r.min.Load(); lowest > 0 {
		m.MinTime = lowest - 1
	}
	if count > 0 {
		m.AvgTime = total / count
	}
	return m
}
