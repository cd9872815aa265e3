package scheduling

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// PlanResult is everything a single generation run produces: sessions
// committed to persistence, requests that never found a slot, and — when
// the run was interrupted rather than simply exhausted — the interruption
// reason.
type PlanResult struct {
	Placed   []Session
	Failures []*SessionRequest
	Err      error // nil, *WindowEmptyError, *CancelledError, or *TimeoutError
}

// CancelFunc is polled at suspension points; it returns true once a cancel
// request has landed.
type CancelFunc func() bool

// WeeklyPlanner orchestrates week-by-week placement over a set of
// SessionRequests, invoking the Placement Engine and, for TD/TP, the
// Relocation Engine on failure, and publishing progress throughout.
type WeeklyPlanner struct {
	Calendar   *Calendar
	Index      *AvailabilityIndex
	Placement  *PlacementEngine
	Relocation *RelocationEngine
	Sink       *ProgressSink
	Logger     *zap.Logger
}

// NewWeeklyPlanner builds a planner; a nil logger is replaced with a no-op
// one so callers never need a nil check.
func NewWeeklyPlanner(idx *AvailabilityIndex, cal *Calendar, placement *PlacementEngine, relocation *RelocationEngine, sink *ProgressSink, logger *zap.Logger) *WeeklyPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyPlanner{Calendar: cal, Index: idx, Placement: placement, Relocation: relocation, Sink: sink, Logger: logger}
}

// Run executes the week-by-week algorithm over planningWindow, returning
// once every week has been processed, the request queues are exhausted, or
// the run is cancelled/times out.
func (p *WeeklyPlanner) Run(requests []*SessionRequest, allowedWeeks []AllowedWeek, planningWindow DateRange, cancel CancelFunc, deadline time.Time) PlanResult {
	weeks := p.Calendar.WeeksIn(planningWindow)
	if len(weeks) == 0 {
		return PlanResult{Err: &WindowEmptyError{}}
	}

	pending := make(map[string][]*SessionRequest)
	for _, r := range requests {
		pending[r.Course.ID] = append(pending[r.Course.ID], r)
	}

	quotas := indexAllowedWeeks(allowedWeeks)

	var placed []Session
	p.Sink.Start()

	for _, weekStart := range weeks {
		if cancel != nil && cancel() {
			return PlanResult{Placed: placed, Failures: remainingRequests(pending), Err: &CancelledError{}}
		}
		if !deadline.IsZero() && currentTime().After(deadline) {
			p.Logger.Info("soft wall-clock ceiling reached, stopping after last committed week")
			return PlanResult{Placed: placed, Failures: remainingRequests(pending), Err: &TimeoutError{}}
		}

		p.Sink.BeginWeek(weekStart.Format("2006-01-02"))

		quotaRemaining := make(map[string]*int)
		weekRequests := make([]*SessionRequest, 0)
		for courseID, queue := range pending {
			if len(queue) == 0 {
				continue
			}
			allowed, quota := quotas.allows(courseID, weekStart)
			if !allowed {
				continue
			}
			if quota != nil {
				q := *quota
				quotaRemaining[courseID] = &q
			}
			weekRequests = append(weekRequests, queue...)
		}

		sort.SliceStable(weekRequests, func(i, j int) bool {
			a, b := weekRequests[i], weekRequests[j]
			if typePriority[a.Type] != typePriority[b.Type] {
				return typePriority[a.Type] < typePriority[b.Type]
			}
			if a.Course.Priority != b.Course.Priority {
				return a.Course.Priority < b.Course.Priority
			}
			return a.Course.Name < b.Course.Name
		})

		for _, r := range weekRequests {
			if cancel != nil && cancel() {
				return PlanResult{Placed: placed, Failures: remainingRequests(pending), Err: &CancelledError{}}
			}

			quotaPtr := quotaRemaining[r.Course.ID]
			session, ok, reason := p.Placement.Place(r, weekStart, quotaPtr)
			if !ok && (r.Type == CourseTD || r.Type == CourseTP) {
				session, ok, reason = p.Relocation.Relocate(r, weekStart, quotaPtr)
			}

			if ok {
				placed = append(placed, session)
				pending[r.Course.ID] = removeRequest(pending[r.Course.ID], r)
				if quotaPtr != nil {
					*quotaPtr--
				}
				p.Sink.RecordPlacement(PlacedSessionSummary{
					Course:     r.Course.Name,
					ClassLabel: r.ClassGroupID,
					Subgroup:   r.Subgroup,
					Teacher:    session.TeacherID,
					Start:      session.Start,
					End:        session.End,
					Type:       r.Type,
				})
				continue
			}

			r.PlacementAttempts++
			r.CarryOverWeeks++
			r.LastRejectReason = reason
		}
	}

	failures := remainingRequests(pending)
	if len(failures) > 0 {
		p.Sink.Finish(StateSuccess, "generation finished with unplaced requests")
	} else {
		p.Sink.Finish(StateSuccess, "all requested sessions placed")
	}
	return PlanResult{Placed: placed, Failures: failures}
}

func removeRequest(queue []*SessionRequest, target *SessionRequest) []*SessionRequest {
	for i, r := range queue {
		if r == target {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

func remainingRequests(pending map[string][]*SessionRequest) []*SessionRequest {
	var out []*SessionRequest
	for _, queue := range pending {
		out = append(out, queue...)
	}
	return out
}

// allowedWeekIndex resolves, per (course, week-start), whether the week is
// permitted and what quota (if any) applies.
type allowedWeekIndex struct {
	byCourse map[string]map[int64]*int
	hasAny   map[string]bool
}

func indexAllowedWeeks(weeks []AllowedWeek) allowedWeekIndex {
	idx := allowedWeekIndex{byCourse: make(map[string]map[int64]*int), hasAny: make(map[string]bool)}
	for _, w := range weeks {
		if idx.byCourse[w.CourseID] == nil {
			idx.byCourse[w.CourseID] = make(map[int64]*int)
		}
		idx.byCourse[w.CourseID][truncateDate(w.WeekStart).Unix()] = w.Quota
		idx.hasAny[w.CourseID] = true
	}
	return idx
}

// allows reports whether weekStart is permitted for courseID, and the
// quota that applies (nil = unlimited). A course with no AllowedWeek
// entries at all permits every week in its planning window unconditionally.
func (a allowedWeekIndex) allows(courseID string, weekStart time.Time) (bool, *int) {
	if !a.hasAny[courseID] {
		return true, nil
	}
	quota, ok := a.byCourse[courseID][truncateDate(weekStart).Unix()]
	if !ok {
		return false, nil
	}
	return true, quota
}
