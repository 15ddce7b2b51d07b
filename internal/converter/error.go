package converter

import (
	"errors"
	"fmt"
	"strings"
)

var errNoReadableContent = errors.New("no readable content")

// maxStderrLen caps how much converter stderr ends up in error messages
const maxStderrLen = 500

// ConversionError represents a conversion failure with detailed error info
type ConversionError struct {
	Converter     string
	OriginalError error
	Stderr        string
	Path          string
	Hint          string
}

func (e *ConversionError) Error() string {
	name := e.Converter
	if name == "" {
		name = "document"
	}
	msg := fmt.Sprintf("%s conversion failed", name)
	if e.OriginalError != nil {
		msg += fmt.Sprintf(": %v", e.OriginalError)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (file: %s)", e.Path)
	}
	if e.Stderr != "" {
		stderr := e.Stderr
		if len(stderr) > maxStderrLen {
			stderr = stderr[:maxStderrLen] + "..."
		}
		msg += fmt.Sprintf("\nstderr: %s", stderr)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHint: %s", e.Hint)
	}
	return msg
}

// Summary is a single-line form of the error without the input path.
func (e *ConversionError) Summary() string {
	name := e.Converter
	if name == "" {
		name = "document"
	}
	msg := name + " conversion failed"
	if e.OriginalError != nil {
		msg += fmt.Sprintf(": %v", e.OriginalError)
	}
	if stderr := strings.Join(strings.Fields(e.Stderr), " "); stderr != "" {
		if len(stderr) > maxStderrLen {
			stderr = stderr[:maxStderrLen] + "..."
		}
		msg += fmt.Sprintf(" (%s)", stderr)
	}
	if e.Hint != "" {
		msg += "; " + e.Hint
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.OriginalError
}

// FileNotFoundError represents a file not found error
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("path validation failed for %s: %s", e.Path, e.Reason)
}

// BinaryNotFoundError represents a missing markitdown executable
type BinaryNotFoundError struct {
	Searched []string
}

func (e *BinaryNotFoundError) Error() string {
	return `markitdown binary not found. Please install it:

  pip install 'markitdown[all]'
  or visit: https://github.com/microsoft/markitdown`
}

// UnsupportedInputError is returned when no converter accepts an input
type UnsupportedInputError struct {
	Input string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("no available converter supports %s", e.Input)
}
