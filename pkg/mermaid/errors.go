package mermaid

import (
	"github.com/cockroachdb/errors"
)

// Kind classifies render failures
type Kind int

const (
	// KindUnknown is returned by KindOf for errors not produced by the renderer
	KindUnknown Kind = iota
	// KindInvalidInput is returned for empty syntax, no subprocess is launched
	KindInvalidInput
	// KindExecution is returned when the renderer failed to launch,
	// exited with non-zero code or was killed on timeout
	KindExecution
	// KindEmptyOutput is returned when the renderer reported success,
	// but produced no image or an empty one
	KindEmptyOutput
	// KindStorage is returned when the output folder or the temporary input can not be written
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindExecution:
		return "execution"
	case KindEmptyOutput:
		return "empty_output"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Sentinel errors to be used with errors.Is
var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrExecution    = &Error{Kind: KindExecution}
	ErrEmptyOutput  = &Error{Kind: KindEmptyOutput}
	ErrStorage      = &Error{Kind: KindStorage}
)

// Error is returned by Render.
// Message is human readable and safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string

	cause error
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches a sentinel with the same Kind and no Message
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the Kind of the render error, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind returns true if err is a render error of the kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
