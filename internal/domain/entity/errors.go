package entity

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed error taxonomy. Everything the pipeline can fail
// with maps onto exactly one of these; nothing opaque reaches the caller.
type ErrorKind string

const (
	ErrKindClassification    ErrorKind = "classification_ambiguous"
	ErrKindMissingEntity     ErrorKind = "missing_entity"
	ErrKindElementResolution ErrorKind = "element_resolution_failed"
	ErrKindDriverFatal       ErrorKind = "driver_fatal"
	ErrKindTimeout           ErrorKind = "timeout"
)

// AutomationError is the typed error surfaced to callers.
type AutomationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *AutomationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AutomationError) Unwrap() error { return e.Cause }

func NewError(kind ErrorKind, message string) *AutomationError {
	return &AutomationError{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, cause error) *AutomationError {
	return &AutomationError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the taxonomy kind from any error chain. Unclassified
// errors report as driver_fatal so an unknown failure is never mistaken
// for an assertion failure.
func KindOf(err error) ErrorKind {
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrKindDriverFatal
}
