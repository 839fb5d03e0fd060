// Package errors provides error handling for clarigo.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Classify against the pipeline taxonomy
//	if errors.Is(err, errors.ErrResolution) {
//	    // record and keep going
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// Pipeline error taxonomy. Every failure class the attach pipeline can
// record carries one of these sentinels somewhere in its chain so that
// callers can classify with errors.Is without string probing.
var (
	// ErrArchive indicates an unreadable or corrupt step archive.
	// Fatal for that archive only; other archives still get processed.
	ErrArchive = New("archive unreadable")

	// ErrResolution indicates an ownership-chain lookup that failed with
	// something other than "record absent": auth, network, server error.
	// Callers must not collapse this into a not-found outcome.
	ErrResolution = New("ownership resolution failed")

	// ErrUpload indicates a per-bundle upload or publish-toggle failure.
	ErrUpload = New("upload failed")

	// ErrParse indicates a remote record missing a required field.
	ErrParse = New("malformed record")

	// ErrNotFound indicates the requested remote resource does not exist.
	ErrNotFound = New("not found")

	// ErrUnauthorized indicates the request lacks valid credentials.
	ErrUnauthorized = New("unauthorized")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err is or wraps ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return err != nil && Is(err, ErrUnauthorized)
}

// IsResolution reports whether err is or wraps ErrResolution.
func IsResolution(err error) bool {
	return err != nil && Is(err, ErrResolution)
}

// IsArchive reports whether err is or wraps ErrArchive.
func IsArchive(err error) bool {
	return err != nil && Is(err, ErrArchive)
}

// NewParseError creates an ErrParse error naming the record kind and the
// missing field. Used by record constructors that fail fast instead of
// letting empty fields drift into later stages.
func NewParseError(kind, field string) error {
	return Wrap(ErrParse, Newf("%s record missing %s", kind, field).Error())
}

// WrapNotFound wraps err as a not-found error with context.
func WrapNotFound(err error, context string) error {
	return Wrap(Wrap(ErrNotFound, err.Error()), context)
}
