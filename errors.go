package concierge

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a request, message or configuration failed validation.
var ErrValidation = errors.New("validation error")

// ErrorKind classifies failures that cross component boundaries. The string
// values are part of the wire format and appear in tool-result payloads.
type ErrorKind string

const (
	KindUnknownTool            ErrorKind = "UnknownTool"
	KindInvalidArgument        ErrorKind = "InvalidArgument"
	KindToolExecution          ErrorKind = "ToolExecutionError"
	KindEndpointUnavailable    ErrorKind = "EndpointUnavailable"
	KindTurnLimitExceeded      ErrorKind = "TurnLimitExceeded"
	KindReasoningEngineFailure ErrorKind = "ReasoningEngineFailure"
)

// ToolLevel reports whether failures of this kind are folded back into the
// conversation instead of ending the episode.
func (k ErrorKind) ToolLevel() bool {
	switch k {
	case KindUnknownTool, KindInvalidArgument, KindToolExecution, KindEndpointUnavailable:
		return true
	default:
		return false
	}
}

// Error is a classified failure. Field is set for argument failures and
// names the offending parameter.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Err     error
}

// Errorf returns an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns an *Error naming the rejected field.
func InvalidArgument(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or an empty
// kind when there is none.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// Classify returns err as an *Error, wrapping unclassified errors with the
// fallback kind.
func Classify(err error, fallback ErrorKind) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return &Error{Kind: fallback, Message: err.Error(), Err: err}
}
