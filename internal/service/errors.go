package service

import (
	"github.com/pkg/errors"

	"github.com/iliyamo/crm-service/internal/model"
)

// Kind classifies a failure for the HTTP layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a domain failure raised where it is detected. It reaches the
// central error handler unchanged (wrapped only with a stack trace).
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) error {
	return errors.WithStack(&Error{Kind: kind, Message: msg})
}

// Validation reports a missing or malformed field.
func Validation(msg string) error { return newError(KindValidation, msg) }

// Unauthenticated reports a missing, invalid or expired credential.
func Unauthenticated(msg string) error { return newError(KindUnauthenticated, msg) }

// Forbidden reports a role outside the route's allow-set.
func Forbidden(msg string) error { return newError(KindForbidden, msg) }

// NotFound reports an absent entity.
func NotFound(msg string) error { return newError(KindNotFound, msg) }

// Conflict reports a uniqueness violation.
func Conflict(msg string) error { return newError(KindConflict, msg) }

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

func invalid(r model.Result) error {
	return Validation(r.First().Message)
}
