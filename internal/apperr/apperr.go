// Package apperr defines the error taxonomy shared across codelens
// components: NotFound, Ambiguous, ParseWarning, StoreError,
// ResolverError. Callers use errors.As to recover structured fields.
package apperr

import (
	"fmt"

	"github.com/solanumlabs/codelens/pkg/types"
)

// NotFound reports that no matching file or symbol exists.
type NotFound struct {
	Subject string // e.g. "symbol", "file"
	Query   string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Subject, e.Query)
}

// Ambiguous reports multiple matching candidates.
type Ambiguous struct {
	Subject    string
	Query      string
	Candidates []string
}

func (e *Ambiguous) Error() string {
	return fmt.Sprintf("ambiguous %s %q: %d candidates", e.Subject, e.Query, len(e.Candidates))
}

// ParseWarning reports a file partially or wholly skipped during parsing.
type ParseWarning struct {
	File   string
	Reason types.ParseWarningReason
	Detail string
}

func (e *ParseWarning) Error() string {
	return fmt.Sprintf("parse warning for %s [%s]: %s", e.File, e.Reason, e.Detail)
}

// StoreError reports an I/O or schema-level store failure.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// ResolverError reports an unresolved user-supplied path hint. Candidates
// is non-empty only when the failure is ambiguity rather than absence.
type ResolverError struct {
	Hint       string
	Candidates []string
}

func (e *ResolverError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("ambiguous path hint %q: %d candidates", e.Hint, len(e.Candidates))
	}
	return fmt.Sprintf("could not resolve path hint %q", e.Hint)
}

// Wrap attaches an operation name to a store-layer error without losing the
// original via %w.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Cause: err}
}
