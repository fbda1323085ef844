package exceptions

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure classes the managers reason about.
type Kind int

const (
	Transient Kind = iota
	Unauthenticated
	NotFoundEmpty
	Validation
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case NotFoundEmpty:
		return "not_found_empty"
	case Validation:
		return "validation"
	default:
		return "transient"
	}
}

type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Exception) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// Is matches sentinel exceptions by kind and message so wrapped copies still compare equal.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, status int, message string, err error) *Exception {
	return &Exception{Kind: kind, Message: message, StatusCode: status, Err: err}
}

func NewValidation(message string) *Exception {
	return &Exception{Kind: Validation, Message: message, StatusCode: http.StatusBadRequest}
}

// KindOf classifies any error; errors that did not pass through a gateway are Transient.
func KindOf(err error) Kind {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Transient
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case NotFoundEmpty:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
