package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("object storage is not configured")
)

// Error is a message that belongs to one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// --- Error Definitions ---
var (
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrUserAlreadyExists    = newError(ErrConflict, "user with this email already exists")
	ErrAuthenticationFailed = newError(ErrUnauthorized, "invalid email or password")
	ErrInvalidToken         = newError(ErrUnauthorized, "invalid or expired token")
	ErrAccountInUse         = newError(ErrConflict, "another user still references one of your private exercises")

	ErrExerciseNotFound     = newError(ErrNotFound, "exercise not found")
	ErrExerciseAccessDenied = newError(ErrForbidden, "access denied to modify or delete this exercise")
	ErrExerciseInUse        = newError(ErrConflict, "exercise is still used by a workout or an execution")

	ErrWorkoutNotFound         = newError(ErrNotFound, "workout not found")
	ErrWorkoutAccessDenied     = newError(ErrForbidden, "access denied to this workout")
	ErrWorkoutExerciseNotFound = newError(ErrNotFound, "exercise not found in workout")
	ErrWorkoutExerciseMismatch = newError(ErrValidation, "this exercise does not belong to the given workout")
	ErrExecutionNotFound       = newError(ErrNotFound, "execution not found")
	ErrExecutionAccessDenied   = newError(ErrForbidden, "access denied to this execution")
	ErrGoalNotFound            = newError(ErrNotFound, "goal not found")
	ErrGoalAccessDenied        = newError(ErrForbidden, "access denied to this goal")
	ErrPhotoNotFound           = newError(ErrNotFound, "user has no photo")
	ErrUnsupportedPhotoType    = newError(ErrValidation, "photo must be a jpeg, png or webp image")
)

// validationError builds an ErrValidation with a formatted message.
func validationError(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}
