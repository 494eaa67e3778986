package tool

import (
	"sync/atomic"
	"time"
)

// usageStats holds per-tool counters. Updates happen on every dispatch from
// concurrent requests, so counters are atomics rather than a mutex-guarded
// struct. Invariant: successes + errors <= invocations (timeouts count as
// errors; validation rejections touch nothing).
type usageStats struct {
	invocations atomic.Int64
	successes   atomic.Int64
	errors      atomic.Int64
	lastUsed    atomic.Int64 // unix nanos, 0 = never used
}

func (s *usageStats) recordInvocation(at time.Time) {
	s.invocations.Add(1)
	s.lastUsed.Store(at.UnixNano())
}

func (s *usageStats) recordSuccess() { s.successes.Add(1) }
func (s *usageStats) recordError()  { s.errors.Add(1) }

func (s *usageStats) reset() {
	s.invocations.Store(0)
	s.successes.Store(0)
	s.errors.Store(0)
	s.lastUsed.Store(0)
}

func (s *usageStats) snapshot(name string) StatsSnapshot {
	snap := StatsSnapshot{
		Name:            name,
		InvocationCount: s.invocations.Load(),
		SuccessCount:    s.successes.Load(),
		ErrorCount:      s.errors.Load(),
	}
	if snap.InvocationCount > 0 {
		snap.SuccessRate = float64(snap.SuccessCount) / float64(snap.InvocationCount)
	}
	if nanos := s.lastUsed.Load(); nanos != 0 {
		t := time.Unix(0, nanos).UTC()
		snap.LastUsedAt = &t
	}
	return snap
}

// StatsSnapshot is a read-only view of one tool's usage counters.
type StatsSnapshot struct {
	Name            string     `json:"name"`
	InvocationCount int64      `json:"usageCount"`
	SuccessCount    int64      `json:"successCount"`
	ErrorCount      int64      `json:"errorCount"`
	SuccessRate     float64    `json:"successRate"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

// StatsReport aggregates snapshots for every registered tool.
type StatsReport struct {
	TotalTools int             `json:"totalTools"`
	Categories []string        `json:"categories"`
	Tools      []StatsSnapshot `json:"tools"`
}
