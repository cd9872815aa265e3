package scheduling

import "fmt"

// PlacementFailureError reports one unplaceable request, carrying the
// most-specific Constraint Evaluator rejection observed for it across the
// whole planning window.
type PlacementFailureError struct {
	Request *SessionRequest
	Reason  RejectReason
}

func (e *PlacementFailureError) Error() string {
	return fmt.Sprintf("could not place %s session for course %s, class-group %s: %s", e.Request.Type, e.Request.Course.ID, e.Request.ClassGroupID, e.Reason)
}

// DataInconsistencyError is raised before planning starts: a missing
// foreign reference, a course linked to no class-group, or a class-group
// with zero eligible teachers.
type DataInconsistencyError struct {
	Description string
}

func (e *DataInconsistencyError) Error() string {
	return "data inconsistency: " + e.Description
}

// WindowEmptyError indicates the planning window contains no working days
// after closing-period filtering.
type WindowEmptyError struct{}

func (e *WindowEmptyError) Error() string {
	return "planning window contains no working days"
}

// CancelledError indicates the job was cancelled by the user.
type CancelledError struct{}

func (e *CancelledError) Error() string {
	return "generation cancelled"
}

// TimeoutError indicates the soft wall-clock ceiling was reached; results
// committed up to that point remain valid.
type TimeoutError struct{}

func (e *TimeoutError) Error() string {
	return "soft wall-clock ceiling reached"
}
