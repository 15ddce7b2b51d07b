package conversion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kfreiman/office2md/internal/converter"
)

// User-facing validation messages
const (
	MsgEmptyInput      = "Please upload a file or enter a YouTube URL"
	MsgInvalidURL      = "Please enter a valid YouTube URL"
	MsgUnsupportedFile = "Unsupported file type"
	MsgEmptyFile       = "The uploaded file is empty"
)

// ValidationError represents input validation failure. Reason is shown to the user as-is.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ConversionError represents a failed call into the converter
type ConversionError struct {
	Input string
	Err   error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("conversion failed for %s", e.Input)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err was caused by bad user input
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// UserMessage renders err for display. Validation errors show their reason,
// everything else collapses to a single conversion failure message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		if valErr.Value != "" && valErr.Reason == MsgUnsupportedFile {
			return fmt.Sprintf("%s: %s", valErr.Reason, valErr.Value)
		}
		return valErr.Reason
	}

	detail := err.Error()
	var convErr *ConversionError
	if errors.As(err, &convErr) && convErr.Err != nil {
		detail = convErr.Err.Error()
	}

	var toolErr *converter.ConversionError
	if errors.As(err, &toolErr) {
		detail = toolErr.Summary()
		if toolErr.Path != "" {
			label := "the input"
			if convErr != nil && convErr.Input != "" {
				label = convErr.Input
			}
			detail = strings.ReplaceAll(detail, toolErr.Path, label)
		}
	}

	var unsupported *converter.UnsupportedInputError
	if errors.As(err, &unsupported) {
		detail = "no converter is installed for this kind of input"
	}

	return "Error during conversion: " + detail
}
