// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-teamvault.
//
// go-teamvault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package types contains shared type definitions used across the vault
// service, including the error taxonomy surfaced to the port boundary.
// This package has no dependencies on other go-teamvault packages to
// prevent import cycles.
package types

import "errors"

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrAccountNotFound is returned when no durable account record exists
	// for the requested user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoRecoveryInProgress is returned when a recovery operation is
	// requested but no pending recovery stub exists locally.
	ErrNoRecoveryInProgress = errors.New("no account recovery in progress")

	// ErrRecoveryNotComplete is returned when a post-recovery operation is
	// requested before the account has been recovered.
	ErrRecoveryNotComplete = errors.New("account recovery is not complete")
)

// ValidationError describes a request or response shape violation. The
// message is human-readable and surfaced verbatim to the port boundary.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CryptographicError describes a decryption or key parse failure. The
// underlying library error is retained for errors.Is/As inspection but the
// message alone is what reaches the UI.
type CryptographicError struct {
	Message string
	Err     error
}

// NewCryptographicError creates a CryptographicError wrapping the given
// underlying error.
func NewCryptographicError(message string, err error) *CryptographicError {
	return &CryptographicError{Message: message, Err: err}
}

func (e *CryptographicError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CryptographicError) Unwrap() error {
	return e.Err
}

// StateError describes an operation attempted against missing or conflicting
// in-flight wizard state, such as a second tab joining a recovery attempt
// started elsewhere.
type StateError struct {
	Message string
}

// NewStateError creates a StateError with the given message.
func NewStateError(message string) *StateError {
	return &StateError{Message: message}
}

func (e *StateError) Error() string {
	return e.Message
}

// =============================================================================
// Error classification
// =============================================================================

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCryptographicError reports whether err is, or wraps, a CryptographicError.
func IsCryptographicError(err error) bool {
	var ce *CryptographicError
	return errors.As(err, &ce)
}

// IsStateError reports whether err is, or wraps, a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
