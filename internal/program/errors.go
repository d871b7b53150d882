package program

import "errors"

var (
	// ErrInvalidDuration means no week layout exists for the requested
	// block duration.
	ErrInvalidDuration = errors.New("invalid block duration")

	// ErrScheduleConflict means a generated or rescheduled block would
	// overlap the following block.
	ErrScheduleConflict = errors.New("schedule conflict with existing block")

	// ErrIncompleteSubmission means a result was submitted for completion
	// with required fields missing. Nothing is saved.
	ErrIncompleteSubmission = errors.New("submission is missing required fields")

	// ErrSessionLocked means the session's release date is still in the future.
	ErrSessionLocked = errors.New("session is not released yet")

	// ErrRestSession means a result was submitted for a rest placeholder,
	// which never completes.
	ErrRestSession = errors.New("rest sessions cannot be completed")
)
