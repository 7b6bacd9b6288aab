// Package apperr defines the errors returned by the service layer. Each type
// maps to one class of failure so transports can pick a status code with
// errors.As without parsing messages.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports submitted data that fails a required-field or
// format rule. Fields maps the JSON field name to a human-readable message;
// General carries a message that belongs to no single field.
type ValidationError struct {
	Fields  map[string]string
	General string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.General == "" {
			return "validation failed"
		}
		return e.General
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a field message and returns the error for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
	return e
}

// Empty reports whether no message has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0 && e.General == ""
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return (&ValidationError{}).Add(field, message)
}

// Ref names one record involved in a conflict.
type Ref struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
}

// ConflictError reports an operation that would violate a state invariant.
// Conflicts lists the records that caused the rejection.
type ConflictError struct {
	Message   string
	Field     string
	Conflicts []Ref
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		if c.Name != "" {
			names = append(names, c.Name)
		} else {
			names = append(names, c.ID)
		}
	}
	return e.Message + ": " + strings.Join(names, ", ")
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError from any printable id.
func NotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

// UpstreamError wraps a storage or file-system failure the caller may retry.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err, returning nil when err is nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}
