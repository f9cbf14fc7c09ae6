// Package repository implements the Mongo-backed stores used by the
// services. The sentinel values below let the service layer tell an
// absent document or a uniqueness violation apart from an infrastructure
// failure.
package repository

import "errors"

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would duplicate the
// unique email of another user. Services translate it into a 409.
var ErrEmailExists = errors.New("email already exists")
