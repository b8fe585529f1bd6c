package attempt

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAccessDenied  Kind = "access_denied"
	KindInvalidState  Kind = "invalid_state"
	KindDataIntegrity Kind = "data_integrity"
	KindTransient     Kind = "transient_store_failure"
)

type Reason string

const (
	ReasonNotFound             Reason = "not_found"
	ReasonWrongTenant          Reason = "wrong_tenant"
	ReasonRestricted           Reason = "restricted"
	ReasonAlreadyLocked        Reason = "already_locked"
	ReasonInvalidOrMissingCode Reason = "invalid_or_missing_code"
	ReasonUnknownStudent       Reason = "unknown_student"
	ReasonNotOwner             Reason = "not_owner"
	ReasonAttemptNotFound      Reason = "attempt_not_found"
	ReasonInvalidIndex         Reason = "invalid_index"
	ReasonNoQuestions          Reason = "no_questions"
	ReasonAttemptLocked        Reason = "attempt_locked"
	ReasonNotSubmitted         Reason = "not_submitted"
	ReasonConcurrentStart      Reason = "concurrent_start"
	ReasonQuestionMissing      Reason = "question_missing"
	ReasonSessionEnded         Reason = "session_ended"
)

// Error carries the failure kind the HTTP layer maps to a status, and a
// machine readable reason for clients.
type Error struct {
	Kind   Kind
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += ": " + string(e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, and on reason when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAccessDenied  = &Error{Kind: KindAccessDenied}
	ErrInvalidState  = &Error{Kind: KindInvalidState}
	ErrDataIntegrity = &Error{Kind: KindDataIntegrity}
	ErrTransient     = &Error{Kind: KindTransient}

	ErrAttemptNotFound = &Error{Kind: KindNotFound, Reason: ReasonAttemptNotFound}
	ErrInvalidIndex    = &Error{Kind: KindNotFound, Reason: ReasonInvalidIndex}
	ErrNotOwner        = &Error{Kind: KindAccessDenied, Reason: ReasonNotOwner}
	ErrAlreadyLocked   = &Error{Kind: KindAccessDenied, Reason: ReasonAlreadyLocked}
	ErrNoQuestions     = &Error{Kind: KindInvalidState, Reason: ReasonNoQuestions}
	ErrAttemptLocked   = &Error{Kind: KindInvalidState, Reason: ReasonAttemptLocked}
	ErrNotSubmitted    = &Error{Kind: KindInvalidState, Reason: ReasonNotSubmitted}
	ErrConcurrentStart = &Error{Kind: KindInvalidState, Reason: ReasonConcurrentStart}
	ErrQuestionMissing = &Error{Kind: KindDataIntegrity, Reason: ReasonQuestionMissing}
	ErrSessionEnded    = &Error{Kind: KindAccessDenied, Reason: ReasonSessionEnded}
)

// denial turns a gate reason into the error surfaced to callers.
func denial(reason Reason) *Error {
	if reason == ReasonNotFound || reason == ReasonUnknownStudent {
		return &Error{Kind: KindNotFound, Reason: reason}
	}
	return &Error{Kind: KindAccessDenied, Reason: reason}
}

// storeErr classifies anything that is not already an *Error as a store
// failure the caller may retry.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindTransient, Err: err}
}
