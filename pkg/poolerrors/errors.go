// Package poolerrors provides the structured error taxonomy for respool:
// categorised errors with optional causes, key/value detail, and a
// captured stack trace, narrowed to the five kinds the pool state
// machine can actually produce.
//
// # Error kinds
//
//	KindConfig     - raised synchronously at construction (bad Config)
//	KindDraining   - raised synchronously from Acquire once Drain has begun
//	KindFactory    - produced by Factory.Create, delivered to one waiter
//	KindTimeout    - produced when an acquire deadline expires
//	KindProgrammer - double/foreign release or destroy; logged and returned
//	  to the offending Release/Destroy caller, but never delivered to a
//	  waiter, since it does not describe a failure to acquire anything.
//
// Errors from a factory's Destroy call and from logger callbacks are
// swallowed by the pool and never surface here; timeouts affect only the
// waiter that timed out.
package poolerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind categorises a pool error.
type Kind string

const (
	// KindConfig indicates a configuration error raised at construction.
	KindConfig Kind = "config"
	// KindDraining indicates Acquire was called after Drain began.
	KindDraining Kind = "draining"
	// KindFactory indicates Factory.Create failed.
	KindFactory Kind = "factory"
	// KindTimeout indicates an acquire deadline expired.
	KindTimeout Kind = "timeout"
	// KindProgrammer indicates a double or foreign release/destroy.
	KindProgrammer Kind = "programmer"
)

// Error is a structured pool error carrying a category, an optional cause,
// free-form detail, and the stack captured at creation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame in a captured call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key/value detail and returns the receiver for
// chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind, capturing the current stack.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Stack: captureStack(2)}
}

// Wrap wraps an existing error with a kind and message, preserving the
// original as Cause. Returns nil if err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Kind: kind, Message: message, Cause: err, Stack: existing.Stack}
	}
	return &Error{Kind: kind, Message: message, Cause: err, Stack: captureStack(2)}
}

// NewConfigError creates a KindConfig error.
func NewConfigError(message string) *Error { return New(KindConfig, message) }

// NewDrainingError creates a KindDraining error.
func NewDrainingError(message string) *Error { return New(KindDraining, message) }

// NewFactoryError wraps a factory Create failure as KindFactory.
func NewFactoryError(cause error) *Error {
	return Wrap(cause, KindFactory, "factory create failed")
}

// NewTimeoutError creates a KindTimeout error for an expired acquire
// deadline.
func NewTimeoutError(message string) *Error { return New(KindTimeout, message) }

// NewProgrammerError creates a KindProgrammer error (double/foreign
// release or destroy). The pool logs these through its log collaborator
// and also returns them from Release/Destroy, so a caller that mishandles
// a handle finds out both ways.
func NewProgrammerError(message string) *Error { return New(KindProgrammer, message) }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsDraining reports whether err is a KindDraining error.
func IsDraining(err error) bool { return IsKind(err, KindDraining) }

// IsTimeout reports whether err is a KindTimeout error.
func IsTimeout(err error) bool { return IsKind(err, KindTimeout) }

// IsFactory reports whether err is a KindFactory error.
func IsFactory(err error) bool { return IsKind(err, KindFactory) }

// IsRetryable reports whether retrying the operation that produced err is
// plausibly useful. Factory and timeout errors are retryable (a later
// acquire may succeed); config, draining, and programmer errors are not.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindFactory, KindTimeout:
		return true
	default:
		return false
	}
}

func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)
	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		frames = append(frames, StackFrame{Function: fn.Name(), File: file, Line: line})
	}
	return frames
}
