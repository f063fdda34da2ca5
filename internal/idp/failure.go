package idp

import (
	"errors"
	"fmt"
)

// Failure is the failure outcome of a provider call.
//
// Reason is the provider's own human-readable message and may be returned to
// the caller. Err carries a transport/SDK cause that must only be logged.
type Failure struct {
	Code   string
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	switch {
	case f.Code != "" && f.Reason != "":
		return fmt.Sprintf("idp: %s: %s", f.Code, f.Reason)
	case f.Reason != "":
		return "idp: " + f.Reason
	case f.Err != nil:
		return fmt.Sprintf("idp: %v", f.Err)
	case f.Code != "":
		return "idp: " + f.Code
	}
	return "idp: failure"
}

func (f *Failure) Unwrap() error { return f.Err }

// Reject builds a provider rejection (credentials, duplicate user, bad code...).
func Reject(code, reason string) *Failure {
	return &Failure{Code: code, Reason: reason}
}

// Unavailable wraps an error that happened before the provider could answer.
func Unavailable(err error) *Failure {
	return &Failure{Err: err}
}

// AsFailure normalizes any error into a *Failure. Non-provider errors become a
// failure without reason so their text never reaches a response.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return Unavailable(err)
}

// ReasonOr returns the provider reason, or fallback when there is none.
func ReasonOr(err error, fallback string) string {
	if f := AsFailure(err); f != nil && f.Reason != "" {
		return f.Reason
	}
	return fallback
}

// Provider error codes. The local provider emits the same codes as Cognito so
// callers and dashboards see one vocabulary.
const (
	CodeNotAuthorized    = "NotAuthorizedException"
	CodeUserNotFound     = "UserNotFoundException"
	CodeUserNotConfirmed = "UserNotConfirmedException"
	CodeUsernameExists   = "UsernameExistsException"
	CodeCodeMismatch     = "CodeMismatchException"
	CodeExpiredCode      = "ExpiredCodeException"
	CodeInvalidPassword  = "InvalidPasswordException"
	CodeInvalidParameter = "InvalidParameterException"
	CodeTooManyRequests  = "TooManyRequestsException"
	CodeInternalError    = "InternalErrorException"
)
