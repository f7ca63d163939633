package models

import "errors"

// ErrValidation is returned when an entity is missing a required attribute
// or when a payment is added to a group other than the one it was made for.
var ErrValidation = errors.New("validation error")

// ErrNotFound is returned when a lookup by id yields no row, or when a
// backing table that is expected to exist is missing.
var ErrNotFound = errors.New("not found")

// ErrIO is returned when a backing table cannot be read or written.
// It is never retried; an entity whose update failed with ErrIO may be
// partially written and should not be used further.
var ErrIO = errors.New("io failure")
