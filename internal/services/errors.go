// Package services defines the business logic for policies, agency accounts,
// and demo requests. This file centralizes the service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// Every failure a service returns matches exactly one of three classes with
// errors.Is: ErrValidation, ErrAuthentication or ErrStoreUnavailable.
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that is missing or malformed. The caller can
	// correct it and retry.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication marks a call made without an authenticated owner, or
	// with credentials that do not match an account.
	ErrAuthentication = errors.New("authentication required")

	// ErrStoreUnavailable marks a store that could not be reached or rejected
	// the query. It is never retried by the services.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidCredentials is returned by SignIn for an unknown email or a
	// wrong password. It matches ErrAuthentication.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuthentication)

	// ErrEmailTaken is returned by SignUp when the email already has an
	// account. It matches ErrValidation.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrValidation)

	// ErrPolicyNotFound indicates that the requested policy does not exist or
	// belongs to another owner.
	ErrPolicyNotFound = errors.New("policy not found")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a persistence failure with the operation that hit it.
// It matches both ErrStoreUnavailable and the underlying driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store unavailable: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
