package room

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors surfaced by the engine. The boundary layer maps each to an
// HTTP status; anything else is an internal store failure.
var (
	// ErrConflict is returned when a join targets a name that is already present.
	ErrConflict = errors.New("name is already taken")

	// ErrNotFound is returned for an unknown participant or message id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when a mutation comes from anyone but the
	// original sender of the message.
	ErrUnauthorized = errors.New("only the sender may modify this message")

	// ErrNotPresent is returned when a message operation names a sender who
	// is not currently in the room.
	ErrNotPresent = errors.New("sender is not in the room")

	// ErrInternal is the generic error the boundary layer exposes for store
	// failures, which are never detailed to clients.
	ErrInternal = errors.New("internal error")
)

// FieldViolation names a single failed validation rule.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError carries the field-level violations for an unprocessable input.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Rule))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
