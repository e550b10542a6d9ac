package timer

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode categorizes controller errors.
type ErrorCode string

const (
	// ErrCodeAlreadyRunning indicates Start was called while a timer runs.
	ErrCodeAlreadyRunning ErrorCode = "ALREADY_RUNNING"

	// ErrCodeNotRunning indicates Stop or Status was called while Idle.
	ErrCodeNotRunning ErrorCode = "NOT_RUNNING"

	// ErrCodeInvalidDuration indicates a negative timer duration.
	ErrCodeInvalidDuration ErrorCode = "INVALID_DURATION"
)

// Error is returned by Controller state transitions that are refused.
// These are normal outcomes for an interactive caller, not failures.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Token identifies the running timer (ALREADY_RUNNING only).
	Token string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (token=%s)", e.Code, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAlreadyRunning returns true if the error is an ALREADY_RUNNING error.
// Uses errors.As to handle wrapped errors.
func IsAlreadyRunning(err error) bool {
	return hasCode(err, ErrCodeAlreadyRunning)
}

// IsNotRunning returns true if the error is a NOT_RUNNING error.
func IsNotRunning(err error) bool {
	return hasCode(err, ErrCodeNotRunning)
}

// IsInvalidDuration returns true if the error is an INVALID_DURATION error.
func IsInvalidDuration(err error) bool {
	return hasCode(err, ErrCodeInvalidDuration)
}

func hasCode(err error, code ErrorCode) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

func newAlreadyRunningError(token string, since time.Time) *Error {
	return &Error{
		Code:    ErrCodeAlreadyRunning,
		Message: fmt.Sprintf("a timer is already running since %s", since.Format(time.TimeOnly)),
		Token:   token,
	}
}

func newNotRunningError() *Error {
	return &Error{
		Code:    ErrCodeNotRunning,
		Message: "no timer is running",
	}
}

func newInvalidDurationError(d time.Duration) *Error {
	return &Error{
		Code:    ErrCodeInvalidDuration,
		Message: fmt.Sprintf("duration must not be negative, got %s", d),
	}
}
