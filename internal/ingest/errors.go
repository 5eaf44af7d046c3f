package ingest

import (
	"errors"
	"fmt"
)

// ErrorKind tags a pipeline failure with its structural cause.
type ErrorKind int

const (
	// KindUnsupportedFormat means the filename suffix was not recognized.
	// No parsing is attempted.
	KindUnsupportedFormat ErrorKind = iota

	// KindParse means the bytes did not conform to the declared format
	// (malformed delimited text or a corrupt workbook).
	KindParse

	// KindWrite means the durable snapshot could not be persisted. Any
	// partially written file must not be exposed to callers.
	KindWrite
)

// String returns the stable name used in logs and API error codes.
func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindParse:
		return "parse_failure"
	case KindWrite:
		return "write_failure"
	default:
		return "unknown"
	}
}

// PipelineError is the single error type the pipeline returns. It carries
// the failure kind, the stage that failed, and the underlying cause, so
// callers get structured failure information instead of a rendered string.
//
// Cell-level parse failures during inference are NOT PipelineErrors; they
// degrade to null values. Only structural failures abort the pipeline.
type PipelineError struct {
	Kind  ErrorKind
	Phase Phase
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s during %s: %v", e.Kind, e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// pipelineErr wraps err with the failure kind and stage.
func pipelineErr(kind ErrorKind, phase Phase, err error) *PipelineError {
	return &PipelineError{Kind: kind, Phase: phase, Err: err}
}

// KindOf extracts the ErrorKind from an error chain. ok is false when the
// error did not originate from the pipeline.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// ErrDatasetNotFound is returned by registry lookups for unknown IDs.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrFileTooLarge is returned before parsing when the upload exceeds the
// configured size limit.
var ErrFileTooLarge = errors.New("file too large")
