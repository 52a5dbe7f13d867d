// Package ledgererr classifies ledger failures into validation, not-found,
// conflict and persistence kinds so boundaries can map them without knowing
// every domain sentinel.
package ledgererr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation_error")
	ErrNotFound    = errors.New("not_found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence_error")
)

// Error is a coded domain error. Code doubles as the message so sentinels
// read like the rest of the codebase (invalid_name, not_found, ...).
type Error struct {
	Code  string
	kinds []error
}

func (e *Error) Error() string { return e.Code }

func (e *Error) Unwrap() []error { return e.kinds }

func Validation(code string) *Error {
	return &Error{Code: code, kinds: []error{ErrValidation}}
}

func NotFound(code string) *Error {
	return &Error{Code: code, kinds: []error{ErrNotFound}}
}

// Conflict errors are persistence failures the caller may retry.
func Conflict(code string) *Error {
	return &Error{Code: code, kinds: []error{ErrConflict, ErrPersistence}}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *persistenceError) Unwrap() []error { return []error{ErrPersistence, e.err} }

// Persistence wraps a store failure so errors.Is matches both ErrPersistence and the cause.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	return &persistenceError{op: op, err: err}
}

// Code extracts the code of the first coded error in the chain.
func Code(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool    { return errors.Is(err, ErrConflict) }
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
