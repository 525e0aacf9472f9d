package orchestrator

import "errors"

// ErrCancelled is returned by a stage method when cancellation was observed
// at the stage boundary. The orchestration state is already transitioned to
// CANCELLED by the time this is returned.
var ErrCancelled = errors.New("orchestration cancelled")

// ValidationError is raised before any network call when a stage's
// precondition on the session state is not met — e.g. running competitor
// discovery before a title has been selected.
type ValidationError struct {
	UserMessage string
	Detail      string
}

func (e *ValidationError) Error() string {
	return e.UserMessage + ": " + e.Detail
}

func newValidationError(detail string) *ValidationError {
	return &ValidationError{
		UserMessage: "아직 진행할 수 없는 단계입니다.",
		Detail:      detail,
	}
}
