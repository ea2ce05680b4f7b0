package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Engine errors. Typed errors below wrap one of these so callers can branch
// with errors.Is and still render the attached context.
var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrHeaderMalformed    = errors.New("header malformed")
	ErrSectionNotFound    = errors.New("section not found")
	ErrSectionAmbiguous   = errors.New("section ordinal is ambiguous")
	ErrNoLedgerFound      = errors.New("no ledger found")
	ErrWriteFailed        = errors.New("write failed")
	ErrValidationMismatch = errors.New("validation mismatch")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrInvalidSelection   = errors.New("invalid selection")
)

// Project lifecycle errors.
var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidID     = errors.New("invalid identifier")
	ErrProjectExists = errors.New("project already exists")
	ErrLedgerLocked  = errors.New("ledger is locked by another process")
)

// DocumentError reports a document that could not be read.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// HeaderError reports a header whose delimiters are present but whose
// content is not a mapping.
type HeaderError struct {
	Path   string
	Line   int
	Reason string
}

func (e *HeaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: header malformed at line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: header malformed: %s", e.Path, e.Reason)
}

func (e *HeaderError) Unwrap() error { return ErrHeaderMalformed }

// SectionNotFoundError is returned when a section ordinal does not resolve.
// Available lists the ordinals the ledger does have, in document order.
type SectionNotFoundError struct {
	Path      string
	Ordinal   int
	Available []int
}

func (e *SectionNotFoundError) Error() string {
	where := ""
	if e.Path != "" {
		where = e.Path + ": "
	}
	if len(e.Available) == 0 {
		return fmt.Sprintf("%ssection %d not found (ledger has no numbered sections)", where, e.Ordinal)
	}
	return fmt.Sprintf("%ssection %d not found (available: %s)", where, e.Ordinal, joinInts(e.Available))
}

func (e *SectionNotFoundError) Unwrap() error { return ErrSectionNotFound }

// AmbiguousSectionError is returned when more than one heading carries the
// requested ordinal. Lines holds the 1-based heading lines.
type AmbiguousSectionError struct {
	Path    string
	Ordinal int
	Lines   []int
}

func (e *AmbiguousSectionError) Error() string {
	where := ""
	if e.Path != "" {
		where = e.Path + ": "
	}
	return fmt.Sprintf("%ssection %d is ambiguous (headings at lines %s)", where, e.Ordinal, joinInts(e.Lines))
}

func (e *AmbiguousSectionError) Unwrap() error { return ErrSectionAmbiguous }

// NoLedgerError is returned when none of the ledger document names exist in
// a project directory.
type NoLedgerError struct {
	Dir   string
	Tried []string
}

func (e *NoLedgerError) Error() string {
	return fmt.Sprintf("%s: no ledger found (tried %s)", e.Dir, strings.Join(e.Tried, ", "))
}

func (e *NoLedgerError) Unwrap() error { return ErrNoLedgerFound }

// PositionError is returned when a selection names positions outside the
// ledger's 1..Total range.
type PositionError struct {
	Path      string
	Positions []int
	Total     int
}

func (e *PositionError) Error() string {
	if e.Total == 0 {
		return fmt.Sprintf("%s: positions %s out of range (ledger has no tasks)", e.Path, joinInts(e.Positions))
	}
	return fmt.Sprintf("%s: positions %s out of range (valid: 1-%d)", e.Path, joinInts(e.Positions), e.Total)
}

func (e *PositionError) Unwrap() error { return ErrPositionOutOfRange }

// WriteError reports a failed rewrite. The target document is left as it
// was before the call.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return ErrWriteFailed }

// Cause returns the underlying I/O error.
func (e *WriteError) Cause() error { return e.Err }

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
