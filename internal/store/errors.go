package store

import (
	"errors"
	"fmt"
)

// Kind classifies store failures.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindTransport.
func ParseKind(s string) Kind {
	switch s {
	case "not_found":
		return KindNotFound
	case "validation":
		return KindValidation
	default:
		return KindTransport
	}
}

// Sentinels for errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failure")
)

// Error is a classified failure of a store operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	default:
		return ErrTransport
	}
}

func NotFound(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

func Invalid(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

func Transport(op string, err error) error {
	return &Error{Op: op, Kind: KindTransport, Err: err}
}

// KindOf returns the kind of err. Unclassified errors count as transport failures.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransport
}
