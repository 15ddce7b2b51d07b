package converter

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DocumentConverter defines the interface for document conversion
type DocumentConverter interface {
	// Convert converts a document to markdown
	Convert(ctx context.Context, input string) (string, error)
	// Supports checks if the converter supports the given input
	Supports(input string) bool
	// IsAvailable checks if the converter is available
	IsAvailable() bool
}

// InputType represents the type of input
type InputType string

const (
	InputTypeFile InputType = "file"
	InputTypeURL  InputType = "url"
	InputTypeText InputType = "text"
)

// InputInfo contains parsed input information
type InputInfo struct {
	Type InputType
	Path string
	URL  *url.URL
	Ext  string
}

// ParseInput parses an input string and returns its type and info
func ParseInput(input string) InputInfo {
	info := InputInfo{}

	// YouTube links are accepted without a scheme
	if IsYouTubeURL(input) && !strings.Contains(input, "://") {
		input = "https://" + input
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if parsedURL, err := url.Parse(input); err == nil {
			info.Type = InputTypeURL
			info.URL = parsedURL
			info.Ext = strings.ToLower(filepath.Ext(parsedURL.Path))
			return info
		}
	}

	if _, err := os.Stat(input); err == nil {
		info.Type = InputTypeFile
		info.Path = input
		info.Ext = strings.ToLower(filepath.Ext(input))
		return info
	}

	info.Type = InputTypeText
	return info
}

// Extension returns the lower-cased extension of name without the leading dot
func Extension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
