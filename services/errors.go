package services

import "errors"

var (
	// ErrInvalidTimeRange rejects a lesson or slot whose end is not after its start.
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	// ErrForbiddenRelationship rejects an actor or student that does not belong
	// to the lesson, tutor or grid in question.
	ErrForbiddenRelationship = errors.New("forbidden relationship")
	// ErrInvalidTransition rejects a lesson transition from the wrong state.
	ErrInvalidTransition = errors.New("invalid lesson transition")
	// ErrAlreadyConfirmed rejects a second parent verdict.
	ErrAlreadyConfirmed = errors.New("lesson already confirmed by parent")
	ErrNotFound         = errors.New("resource not found")
)
