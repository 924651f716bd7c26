package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrClaimConflict       = errors.New("claim conflict")
	ErrNotFound            = errors.New("not found")
	ErrSlugTaken           = errors.New("slug taken")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAdapterFailure      = errors.New("adapter failure")
	ErrNotificationFailure = errors.New("notification failure")
	ErrNotConfigured       = errors.New("not configured")
)

// InvalidTransitionError names the attempted action, the state it requires
// and the state the item was actually in.
type InvalidTransitionError struct {
	Action string
	From   Status
	Actual Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s from %s (requires %s)", e.Action, e.Actual, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// AlreadyProcessedError is returned for approval tokens whose item left PENDING_APPROVAL.
type AlreadyProcessedError struct {
	Status Status
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("already processed: content is %s", e.Status)
}

func (e *AlreadyProcessedError) Unwrap() error {
	return ErrAlreadyProcessed
}
