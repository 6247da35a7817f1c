// Package errs defines the error kinds shared by all stockcore services.
//
// Callers distinguish three kinds: ValidationError (bad input, correctable by
// the caller), NotFoundError (a referenced entity does not exist), and
// IntegrityError (corrupted data, not correctable client-side). All three are
// matched with errors.As so they survive fmt.Errorf("%w") wrapping.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports invalid input. Field-level detail is aggregated so a
// batch operation can report every independent failure in one error.
type ValidationError struct {
	Msg    string
	Fields map[string][]string
}

// Validation creates a ValidationError with the given message.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{
		Msg:    fmt.Sprintf(format, args...),
		Fields: make(map[string][]string),
	}
}

// WithField appends a field-level detail message and returns the error for
// chaining.
func (e *ValidationError) WithField(field, format string, args ...any) *ValidationError {
	e.Fields[field] = append(e.Fields[field], fmt.Sprintf(format, args...))
	return e
}

// HasFieldErrors reports whether any field-level detail was collected.
func (e *ValidationError) HasFieldErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(e.Msg)
	for _, f := range fields {
		b.WriteString(fmt.Sprintf("; %s: %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return b.String()
}

// NotFoundError reports a lookup on a nonexistent entity id.
type NotFoundError struct {
	Kind string
	ID   any
}

// NotFound creates a NotFoundError for the given entity kind and id.
func NotFound(kind string, id any) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// IntegrityError reports corrupted data detected during an operation, such as
// a cyclic BOM or a checksum mismatch. It is fatal for the operation; the core
// never auto-repairs.
type IntegrityError struct {
	Msg string
}

// Integrity creates an IntegrityError with the given message.
func Integrity(format string, args ...any) *IntegrityError {
	return &IntegrityError{Msg: fmt.Sprintf(format, args...)}
}

func (e *IntegrityError) Error() string {
	return e.Msg
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsIntegrity reports whether err is (or wraps) an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
