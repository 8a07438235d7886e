package ctype

import (
	"errors"
	"fmt"
)

// Kind classifies a translation failure.
type Kind int

const (
	// UnsupportedType means the expression has no C mapping.
	UnsupportedType Kind = iota
	// InvalidPath means a multi-segment path outside the libc module.
	InvalidPath
	// MissingName means a function pointer was requested without a
	// declarator name.
	MissingName
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrInvalidPath     = errors.New("invalid path")
	ErrMissingName     = errors.New("missing name")
)

func (k Kind) String() string {
	switch k {
	case UnsupportedType:
		return "UnsupportedType"
	case InvalidPath:
		return "InvalidPath"
	case MissingName:
		return "MissingName"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case InvalidPath:
		return ErrInvalidPath
	case MissingName:
		return ErrMissingName
	}
	return ErrUnsupportedType
}

// Error is returned for any expression that cannot be translated. Expr
// is the offending sub-expression in source syntax.
type Error struct {
	Kind Kind
	Expr string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s `%s`: %s", e.Kind.sentinel(), e.Expr, e.Msg)
}

// Unwrap lets errors.Is match the ErrUnsupportedType, ErrInvalidPath
// and ErrMissingName sentinels.
func (e *Error) Unwrap() error { return e.Kind.sentinel() }

func errorf(kind Kind, expr fmt.Stringer, format string, args ...any) *Error {
	return &Error{Kind: kind, Expr: expr.String(), Msg: fmt.Sprintf(format, args...)}
}
