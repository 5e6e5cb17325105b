package models

import "fmt"

// ErrorKind classifies failures so callers can map them to an HTTP
// status or a retry decision without string matching.
type ErrorKind string

const (
	KindIngestion  ErrorKind = "ingestion"
	KindNotFound   ErrorKind = "not_found"
	KindGeneration ErrorKind = "generation"
	KindValidation ErrorKind = "validation"
)

// AppError carries an ErrorKind and an optional wrapped cause.
type AppError struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// IngestionError marks a failed document build; no partial index survives it.
func IngestionError(msg string, err error) *AppError {
	return &AppError{Kind: KindIngestion, Message: msg, Err: err}
}

// NotFoundError marks an operation against an unknown document id.
func NotFoundError(docID string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("document %q not found", docID)}
}

// GenerationError marks a failed language-model call. It is retryable;
// the caller owns the retry policy.
func GenerationError(msg string, err error) *AppError {
	return &AppError{Kind: KindGeneration, Message: msg, Retryable: true, Err: err}
}

// ValidationError marks bad caller-supplied parameters.
func ValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

// KindOf returns the ErrorKind of err, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	for err != nil {
		if e, ok := err.(*AppError); ok {
			appErr = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if appErr == nil {
		return ""
	}
	return appErr.Kind
}

// IsRetryable reports whether err (or any wrapped error) is a
// retryable AppError.
func IsRetryable(err error) bool {
	for err != nil {
		if e, ok := err.(*AppError); ok {
			return e.Retryable
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
