// Package services implements the domain operations over the entity
// store: accounts, projects, tasks and calendars. All failures are
// classified into the sentinel errors below so the transport layer can
// map them without inspecting messages.
package services

import "errors"

var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation, e.g. a duplicate
	// email at registration or a duplicate task assignment.
	ErrConflict = errors.New("conflict")

	// ErrUnauthenticated signals missing or invalid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized signals an authenticated principal lacking the
	// required permission or ownership.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput signals a malformed or out-of-range field.
	ErrInvalidInput = errors.New("invalid input")
)
