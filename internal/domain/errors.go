package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (e.g. blank trip title, end date before start date, no region selected).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation is not allowed in the current
// state: a plan that is already hydrated, or a save that is already running.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUpstream is returned when the plan-generation provider fails or answers
// with something that cannot be parsed.
// Handlers should map this to HTTP 500 with a generic message.
var ErrUpstream = errors.New("upstream error")
