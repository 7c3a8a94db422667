// Package session maintains a durable login session for the people-search site:
// it replays stored cookies, detects whether the session is still valid, and
// falls back to a full credential login with an interactive two-factor step.
package session

import (
	"errors"
	"fmt"
)

// Reason classifies why authentication failed.
type Reason string

const (
	// TwoFactorRejected means the one-time code was refused or could not be obtained
	TwoFactorRejected Reason = "two_factor_rejected"
	// CredentialsRejected means the login form could not be completed or was refused
	CredentialsRejected Reason = "credentials_rejected"
	// DriverUnavailable means the browser failed while authenticating
	DriverUnavailable Reason = "driver_unavailable"
)

// AuthError is returned by Manager.Authenticate. It is fatal to the run.
type AuthError struct {
	Reason  Reason
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed (%s): %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("authentication failed (%s): %s", e.Reason, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// IsReason reports whether err is an AuthError with the given reason.
func IsReason(err error, reason Reason) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Reason == reason
}

func driverErr(message string, cause error) *AuthError {
	return &AuthError{Reason: DriverUnavailable, Message: message, Cause: cause}
}
