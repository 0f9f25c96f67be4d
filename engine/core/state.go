package core

import (
	"fmt"
	"sync"
)

// RunState tracks the progress of one stage invocation.
type RunState struct {
	mu        sync.Mutex
	total     int
	processed int
	succeeded int
	failed    int
}

// Snapshot is an immutable copy of a RunState.
type Snapshot struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func NewRunState(total int) *RunState {
	return &RunState{total: total}
}

// Record marks one item as processed and returns the resulting snapshot.
func (s *RunState) Record(ok bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	if ok {
		s.succeeded++
	} else {
		s.failed++
	}
	return s.snapshotLocked()
}

func (s *RunState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *RunState) snapshotLocked() Snapshot {
	return Snapshot{
		Total:     s.total,
		Processed: s.processed,
		Succeeded: s.succeeded,
		Failed:    s.failed,
	}
}

// Percent returns the processed share in [0, 100]. An empty run reports 0.
func (s Snapshot) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Total) * 100
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%d/%d (%.2f%%)", s.Processed, s.Total, s.Percent())
}

// ProgressReporter receives a snapshot after every processed item.
type ProgressReporter interface {
	Report(s Snapshot)
	Done(s Snapshot)
}

// NopReporter discards progress updates.
type NopReporter struct{}

func (NopReporter) Report(Snapshot) {}
func (NopReporter) Done(Snapshot)   {}
