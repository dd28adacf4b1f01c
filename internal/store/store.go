// Package store persists admin records through sqlx, building queries with
// squirrel from the static schema.Model descriptions.
package store

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("a record with that value already exists")
)
