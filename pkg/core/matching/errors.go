package matching

import "fmt"

// ValidationError reports malformed input data (a bad personality code or a
// bad time interval). It is localized to the offending value: callers skip
// the value or the candidate and keep going.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports a missing requester or person record. A missing
// requester is fatal to the whole match request.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("person %q not found", e.ID)
}

// ComputationError reports an unexpected failure while scoring a single
// candidate. The candidate is excluded and the failure surfaced as metadata.
type ComputationError struct {
	CandidateID string
	Err         error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("failed to score candidate %q: %v", e.CandidateID, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
