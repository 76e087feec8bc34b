package monitor

import (
	"time"
)

// Session collects metrics for the upload cycles of one command run.
// All methods are safe for concurrent use.
type Session struct {
	startedAt time.Time
	now       func() time.Time

	// keyed by every entry of operations; never written after NewSession
	recorders map[OperationType]*Recorder

	captures Counter
	bytes    Counter
}

// Snapshot is a point-in-time copy of a session's metrics
type Snapshot struct {
	StartedAt     time.Time          `json:"started_at"`
	Duration      time.Duration      `json:"duration_ns"`
	Captures      int64              `json:"captures"`
	BytesUploaded int64              `json:"bytes_uploaded"`
	Operations    []OperationMetrics `json:"operations"`
}

// NewSession starts a session clock
func NewSession() *Session {
	s := &Session{
		startedAt: time.Now(),
		now:       time.Now,
		recorders: make(map[OperationType]*Recorder, len(operations)),
	}
	for _, op := range operations {
		s.recorders[op] = &Recorder{}
	}
	return s
}

// TrackOperation times fn and counts it as failed when it returns an error.
// Unknown operations run untracked.
func (s *Session) TrackOperation(operation OperationType, fn func() error) error {
	start := s.now()
	err := fn()

	if recorder, ok := s.recorders[operation]; ok {
		recorder.Observe(s.now().Sub(start), err != nil)
	}
	return err
}

// RecordCapture counts a capture that reached the backend
func (s *Session) RecordCapture(size int64) {
	s.captures.Inc()
	s.bytes.Add(size)
}

// Snapshot returns the current metrics
func (s *Session) Snapshot() Snapshot {
	snapshot := Snapshot{
		StartedAt:     s.startedAt,
		Duration:      s.now().Sub(s.startedAt),
		Captures:      s.captures.Get(),
		BytesUploaded: s.bytes.Get(),
		Operations:    make([]OperationMetrics, 0, len(operations)),
	}
	for _, op := range operations {
		snapshot.Operations = append(snapshot.Operations, s.recorders[op].Metrics(op))
	}
	return snapshot
}

// Operation returns the metrics for one step
func (s Snapshot) Operation(op OperationType) OperationMetrics {
	for _, m := range s.Operations {
		if m.Operation == op {
			return m
		}
	}
	return OperationMetrics{Operation: op}
}
