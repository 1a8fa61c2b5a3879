package operations

import (
	"context"
	"errors"
	"fmt"

	"symexport/internal/config"
	"symexport/internal/exporter"
	"symexport/internal/source"
)

// ErrorType classifies a failed job
type ErrorType string

const (
	ErrorTypeConnectivity ErrorType = "connectivity"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeData         ErrorType = "data"
	ErrorTypeOutput       ErrorType = "output"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeExecution    ErrorType = "execution"
)

// JobError is the failure of one job of the export plan
type JobError struct {
	Type    ErrorType      `json:"type"`
	Job     string         `json:"job"`
	Kind    config.JobKind `json:"kind"`
	Library string         `json:"library"`
	Cause   error          `json:"-"`
}

// Error implements the error interface
func (e *JobError) Error() string {
	if e == nil {
		return "unknown job error"
	}
	return fmt.Sprintf("[%s] job %s (%s %s): %v", e.Type, e.Job, e.Kind, e.Library, e.Cause)
}

// Unwrap returns the underlying error
func (e *JobError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewJobError wraps cause with the job that produced it
func NewJobError(job config.Job, cause error) *JobError {
	return &JobError{
		Type:    classify(cause),
		Job:     job.Name,
		Kind:    job.Kind,
		Library: job.Library,
		Cause:   cause,
	}
}

// GetErrorType returns the type of a JobError anywhere in the chain of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr.Type
	}
	return classify(err)
}

func classify(err error) ErrorType {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeCancellation
	case errors.Is(err, source.ErrConnectivity):
		return ErrorTypeConnectivity
	case errors.Is(err, source.ErrLibraryNotFound), errors.Is(err, source.ErrSymbolNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, exporter.ErrMissingColumn), errors.Is(err, exporter.ErrMalformedDataset):
		return ErrorTypeData
	case errors.Is(err, exporter.ErrIO):
		return ErrorTypeOutput
	default:
		return ErrorTypeExecution
	}
}
