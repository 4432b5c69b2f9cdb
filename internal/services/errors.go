// Package services defines the business logic for the error catalog.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Every concrete error wraps exactly one of three kinds (ErrInvalidInput,
// ErrNotFound, ErrConflict). Translation into user-facing messages or HTTP
// status codes is performed at the handler layer via KindOf.
package services

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on these with errors.Is.
var (
	// ErrInvalidInput marks missing or malformed caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup that matched no catalog entry.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
)

// Catalog errors.
var (
	// ErrEmptyName is returned when a detailed name is required but blank.
	ErrEmptyName = fmt.Errorf("%w: detailed name is required", ErrInvalidInput)

	// ErrEmptyQuery is returned when a search is issued without terms.
	ErrEmptyQuery = fmt.Errorf("%w: search query is required", ErrInvalidInput)

	// ErrErrorNotFound indicates that no catalog entry matched the given key.
	ErrErrorNotFound = fmt.Errorf("error entry %w", ErrNotFound)

	// ErrDuplicateName is returned when creating an entry whose detailed name
	// is already taken.
	ErrDuplicateName = fmt.Errorf("%w: detailed name already exists", ErrConflict)
)

// Kind classifies the outcome of a catalog operation.
type Kind int

const (
	// KindOK means no error.
	KindOK Kind = iota
	// KindInvalid is a client input error.
	KindInvalid
	// KindNotFound is a missing record.
	KindNotFound
	// KindConflict is a uniqueness violation.
	KindConflict
	// KindInternal is anything unexpected (store failures, bugs).
	KindInternal
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// KindOf maps err to its Kind. Errors that do not wrap one of the three
// kinds are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidInput):
		return KindInvalid
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}
