package scheduling

import (
	"sync"
	"time"
)

// SinkState is the lifecycle state published in a Snapshot.
type SinkState string

const (
	StateIdle    SinkState = "idle"
	StateRunning SinkState = "running"
	StateSuccess SinkState = "success"
	StateError   SinkState = "error"
)

// PlacedSessionSummary is one row of the current week's placement table.
type PlacedSessionSummary struct {
	Course     string
	ClassLabel string
	Subgroup   string
	Teacher    string
	Start      time.Time
	End        time.Time
	Type       CourseType
}

// Snapshot is an immutable progress value; callers always receive a copy.
type Snapshot struct {
	Total               int
	Placed              int
	CurrentWeekLabel     string
	CurrentWeekSessions []PlacedSessionSummary
	Percent              float64
	ETASeconds           float64
	State                SinkState
	Message              string
}

// ProgressSink is the thread-safe counter the Weekly Planner updates as it
// works; it is owned by the job and passed explicitly down the call stack,
// never read from a process global.
type ProgressSink struct {
	mu        sync.Mutex
	snapshot  Snapshot
	startedAt time.Time
}

// NewProgressSink builds a sink for a run expected to place total sessions.
func NewProgressSink(total int) *ProgressSink {
	return &ProgressSink{
		snapshot: Snapshot{Total: total, State: StateIdle},
	}
}

// Start transitions the sink to running and records the start time for ETA
// extrapolation.
func (p *ProgressSink) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startedAt = currentTime()
	p.snapshot.State = StateRunning
	p.snapshot.Message = "generation started"
}

// BeginWeek resets the current-week table for a new week label.
func (p *ProgressSink) BeginWeek(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.CurrentWeekLabel = label
	p.snapshot.CurrentWeekSessions = nil
}

// RecordPlacement appends a placed session to the current week's table and
// recomputes percent and ETA.
func (p *ProgressSink) RecordPlacement(summary PlacedSessionSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.CurrentWeekSessions = append(p.snapshot.CurrentWeekSessions, summary)
	p.snapshot.Placed++
	p.recomputeLocked()
}

func (p *ProgressSink) recomputeLocked() {
	if p.snapshot.Total <= 0 {
		p.snapshot.Percent = 100
		p.snapshot.ETASeconds = 0
		return
	}
	p.snapshot.Percent = 100 * float64(p.snapshot.Placed) / float64(p.snapshot.Total)
	if p.snapshot.Placed == 0 {
		p.snapshot.ETASeconds = 0
		return
	}
	elapsed := currentTime().Sub(p.startedAt).Seconds()
	remaining := p.snapshot.Total - p.snapshot.Placed
	p.snapshot.ETASeconds = elapsed / float64(p.snapshot.Placed) * float64(remaining)
}

// Finish transitions the sink to a terminal state with a human-readable
// message.
func (p *ProgressSink) Finish(state SinkState, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.State = state
	p.snapshot.Message = message
}

// Snapshot returns a copy-on-read value safe for concurrent callers.
func (p *ProgressSink) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := p.snapshot
	cp.CurrentWeekSessions = append([]PlacedSessionSummary(nil), p.snapshot.CurrentWeekSessions...)
	return cp
}

// currentTime is a seam so tests can observe deterministic ETA math without
// depending on wall-clock time; production callers get time.Now.
var currentTime = time.Now
