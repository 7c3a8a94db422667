// Package types provides type definitions for structured data used throughout the people-crossref system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Credentials holds the account used for a full credential login.
// It is immutable for the lifetime of a run.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Secret   string `json:"-" validate:"required"`
}

// Validate validates the Credentials using the validator.
func (c Credentials) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// String redacts the secret so credentials are safe to print.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q, Secret: [redacted]}", c.Username)
}

// AuthState is the transient authentication state of a browser session.
type AuthState int

const (
	// Unauthenticated means no valid session has been established yet
	Unauthenticated AuthState = iota
	// AwaitingTwoFactor means the site issued a one-time-code challenge
	AwaitingTwoFactor
	// Authenticated means the protected landing page is reachable
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingTwoFactor:
		return "awaiting_two_factor"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("auth_state(%d)", int(s))
	}
}
