package txflow

import "errors"

// ErrAttemptInProgress is returned when Add is called while another attempt
// runs. Nothing was estimated, sent or recorded.
var ErrAttemptInProgress = errors.New("a supply attempt is already in progress")

// SimulationRevertError wraps a failed gas estimate. Its message is the node's, verbatim.
type SimulationRevertError struct {
	Err error
}

func (e *SimulationRevertError) Error() string { return e.Err.Error() }
func (e *SimulationRevertError) Unwrap() error { return e.Err }

// SubmissionError wraps a failed broadcast. Its message is the node's, verbatim.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }
