// Package failure defines the error kinds surfaced while preparing a session.
//
// Two kinds matter to callers:
//
//   - ValidationError: the input (capabilities, app descriptor) is malformed.
//     It is never retried.
//   - SevereError: preparation cannot continue and the host runner must abort
//     the run instead of retrying. Validation and upload failures reach the
//     runner wrapped in a SevereError.
package failure

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrAppNotFound is returned when a local app path does not exist on disk.
	ErrAppNotFound = errors.New("app file not found")

	// ErrAppURLMissing is returned when the upload response carries no app_url.
	ErrAppURLMissing = errors.New("app_url not found in upload response")
)

// ValidationError reports a malformed input value.
type ValidationError struct {
	Subject string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Reason)
}

// Invalid creates a ValidationError for subject.
func Invalid(subject, format string, args ...interface{}) error {
	return &ValidationError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// SevereError signals that the host runner should stop the run.
type SevereError struct {
	Message string
	Err     error
}

func (e *SevereError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *SevereError) Unwrap() error {
	return e.Err
}

// Severe wraps err into a SevereError. An error that is already severe is
// returned unchanged so repeated wrapping does not stack messages.
func Severe(message string, err error) error {
	var severe *SevereError
	if err != nil && errors.As(err, &severe) {
		return err
	}
	return &SevereError{Message: message, Err: err}
}

// IsSevere reports whether err (or anything it wraps) is a SevereError.
func IsSevere(err error) bool {
	var severe *SevereError
	return errors.As(err, &severe)
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var invalid *ValidationError
	return errors.As(err, &invalid)
}
