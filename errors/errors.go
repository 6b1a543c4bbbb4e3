// Package errors provides error handling for stacforge.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Typed sentinel errors for the extraction pipeline
//
// Usage:
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check pipeline failure classes
//	if errors.Is(err, errors.ErrClassification) {
//	    // scene could not be classified
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// Sentinel errors classifying every failure the pipeline can surface for a
// scene. Wrap these with errors.Wrap()/Wrapf() to attach the originating
// rule, file, or scene context while preserving the class.
var (
	// ErrClassification indicates no classification rule matched a scene
	ErrClassification = New("no classification rule matched")

	// ErrLookup indicates a product type has no registry binding
	ErrLookup = New("no rule set bound to product type")

	// ErrMappingLoad indicates a malformed rule table (raised at load time)
	ErrMappingLoad = New("malformed mapping table")

	// ErrExtraction indicates a rule's path expression or extension
	// function raised against its input
	ErrExtraction = New("extraction failed")

	// ErrRender indicates a required attribute was missing or a template
	// assembly invariant was violated
	ErrRender = New("render failed")

	// ErrContainerAccess indicates a file was absent or unreadable within
	// a scene's container
	ErrContainerAccess = New("container access failed")

	// ErrTimeout indicates a scene task exceeded its allotted time
	ErrTimeout = New("task timed out")

	// ErrNotFound indicates the requested inner file does not exist
	ErrNotFound = New("not found")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsTimeoutError checks if an error is or wraps ErrTimeout.
func IsTimeoutError(err error) bool {
	return err != nil && Is(err, ErrTimeout)
}

// NewClassificationError creates a classification failure with a formatted message
func NewClassificationError(format string, args ...interface{}) error {
	return Wrap(ErrClassification, Newf(format, args...).Error())
}

// NewMappingLoadError creates a load-time mapping table failure
func NewMappingLoadError(format string, args ...interface{}) error {
	return Wrap(ErrMappingLoad, Newf(format, args...).Error())
}

// NewExtractionError creates an extraction failure with a formatted message
func NewExtractionError(format string, args ...interface{}) error {
	return Wrap(ErrExtraction, Newf(format, args...).Error())
}

// NewRenderError creates a render failure with a formatted message
func NewRenderError(format string, args ...interface{}) error {
	return Wrap(ErrRender, Newf(format, args...).Error())
}

// Class returns a short stable name for the failure class of err, suitable
// for the failure log and batch summaries.
func Class(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrClassification):
		return "ClassificationFailure"
	case Is(err, ErrLookup):
		return "LookupFailure"
	case Is(err, ErrMappingLoad):
		return "MappingLoadFailure"
	case Is(err, ErrTimeout):
		return "TimeoutFailure"
	case Is(err, ErrRender):
		return "RenderFailure"
	case Is(err, ErrNotFound), Is(err, ErrContainerAccess):
		return "ContainerAccessFailure"
	case Is(err, ErrExtraction):
		return "ExtractionFailure"
	default:
		return "Failure"
	}
}
