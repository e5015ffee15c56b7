package services

import "errors"

// ErrorKind classifies service failures so the API layer can map them
// onto responses without matching message strings.
type ErrorKind int

const (
	KindInvalid ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NewInvalidError(msg string) *Error      { return &Error{Kind: KindInvalid, Msg: msg} }
func NewUnauthorizedError(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func NewForbiddenError(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }
func NewNotFoundError(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func NewConflictError(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }

// KindOf extracts the kind carried by err.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
