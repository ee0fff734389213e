// Package daierr defines the three error kinds the interpreter pipeline
// produces: position-bearing SyntaxError and CompileError structs that abort
// the pipeline, and the sentinel errors wrapped by runtime Error values.
package daierr

import (
	"errors"
	"fmt"
)

// Runtime error subkinds, surfaced to scripts only in an Error value's
// message text (spec: RuntimeError subkinds).
var (
	ErrTypeError      = errors.New("TypeError")
	ErrPropertyError  = errors.New("PropertyError")
	ErrKeyError       = errors.New("KeyError")
	ErrIndexError     = errors.New("IndexError")
	ErrAssertionError = errors.New("AssertionError")
	ErrZeroDivision   = errors.New("ZeroDivision")
	ErrStackOverflow  = errors.New("StackOverflow")
	ErrRecursionError = errors.New("RecursionError")
)

// SyntaxError is raised by the tokenizer or parser; it carries the offending
// position and aborts the pipeline before any bytecode exists.
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: SyntaxError: %s", e.Filename, e.Line, e.Column, e.Message)
}

// CompileError is raised by the bytecode compiler; it carries the offending
// position and aborts before execution begins.
type CompileError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: CompileError: %s", e.Filename, e.Line, e.Column, e.Message)
}

// RuntimeError wraps one of the sentinel subkinds above with a message and
// the call-frame context active when it was raised, mirroring the teacher's
// VMError: a base sentinel plus free-form context, unwrappable via errors.Is.
type RuntimeError struct {
	Kind     error
	Message  string
	Function string
	File     string
	Line     int
}

func (e *RuntimeError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind.Error(), e.Message, e.Function)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

func (e *RuntimeError) Is(target error) bool { return errors.Is(e.Kind, target) }

// New builds a RuntimeError for kind with a formatted message; it is the
// constructor object.Error values use so every built-in and VM call site
// produces consistently shaped text.
func New(kind error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithFrame attaches call-frame context to an already-built RuntimeError,
// used while unwinding so a traceback can name the innermost function first.
func (e *RuntimeError) WithFrame(function, file string, line int) *RuntimeError {
	e.Function = function
	e.File = file
	e.Line = line
	return e
}

// TypeError is a convenience constructor for the most common runtime error.
func TypeError(format string, args ...interface{}) *RuntimeError {
	return New(ErrTypeError, format, args...)
}

// PropertyError reports an unknown or inaccessible property/method name.
func PropertyError(format string, args ...interface{}) *RuntimeError {
	return New(ErrPropertyError, format, args...)
}

// KeyError reports a missing map key.
func KeyError(format string, args ...interface{}) *RuntimeError {
	return New(ErrKeyError, format, args...)
}

// IndexError reports an out-of-range array/string/tuple index.
func IndexError(format string, args ...interface{}) *RuntimeError {
	return New(ErrIndexError, format, args...)
}

// AssertionError reports a failed assert/assert_eq built-in call.
func AssertionError(format string, args ...interface{}) *RuntimeError {
	return New(ErrAssertionError, format, args...)
}

// ZeroDivisionError reports integer or float division/modulo by zero.
func ZeroDivisionError(format string, args ...interface{}) *RuntimeError {
	return New(ErrZeroDivision, format, args...)
}

// StackOverflowError reports exceeding the fixed call-frame ceiling.
func StackOverflowError(format string, args ...interface{}) *RuntimeError {
	return New(ErrStackOverflow, format, args...)
}

// RecursionError reports a depth budget exhausted during equality or
// string formatting of a cyclic container.
func RecursionError(format string, args ...interface{}) *RuntimeError {
	return New(ErrRecursionError, format, args...)
}

// Is reports whether err is a RuntimeError wrapping one of the sentinels
// above, analogous to the teacher's IsVMError helper.
func Is(err error, kind error) bool {
	return errors.Is(err, kind)
}

// AsRuntime extracts a *RuntimeError from err, analogous to the teacher's
// GetVMError helper.
func AsRuntime(err error) (*RuntimeError, bool) {
	var re *RuntimeError
	ok := errors.As(err, &re)
	return re, ok
}
