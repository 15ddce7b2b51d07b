package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// commandRunner executes the markitdown binary. Tests swap it for a fake.
type commandRunner func(ctx context.Context, bin string, args []string, stdout, stderr io.Writer) error

func execRunner(ctx context.Context, bin string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// MarkitdownConverter implements DocumentConverter using the markitdown binary
type MarkitdownConverter struct {
	binaryPath string
	run        commandRunner
}

// NewMarkitdownConverter creates a new MarkitdownConverter. An empty binPath
// searches PATH and the usual install locations.
func NewMarkitdownConverter(binPath string) (*MarkitdownConverter, error) {
	if binPath == "" {
		found, err := findMarkitdownBinary()
		if err != nil {
			return nil, err
		}
		binPath = found
	} else if _, err := os.Stat(binPath); err != nil {
		return nil, &BinaryNotFoundError{Searched: []string{binPath}}
	}

	return &MarkitdownConverter{
		binaryPath: binPath,
		run:        execRunner,
	}, nil
}

// IsAvailable checks if the markitdown binary is available
func (c *MarkitdownConverter) IsAvailable() bool {
	return c != nil && c.binaryPath != ""
}

// BinaryPath returns the resolved markitdown executable
func (c *MarkitdownConverter) BinaryPath() string {
	return c.binaryPath
}

// Convert converts a file path or YouTube URL to markdown using markitdown
func (c *MarkitdownConverter) Convert(ctx context.Context, input string) (string, error) {
	info := ParseInput(input)

	switch info.Type {
	case InputTypeURL:
		return c.runMarkitdown(ctx, info.URL.String(), "")
	case InputTypeFile:
		if err := validatePath(info.Path); err != nil {
			return "", err
		}
		return c.runMarkitdown(ctx, info.Path, info.Path)
	default:
		return "", &FileNotFoundError{Path: input}
	}
}

// Supports checks if this converter supports the given input
func (c *MarkitdownConverter) Supports(input string) bool {
	info := ParseInput(input)
	switch info.Type {
	case InputTypeURL:
		return IsYouTubeURL(info.URL.String())
	case InputTypeFile:
		return IsSupportedExtension(info.Ext)
	default:
		return false
	}
}

// runMarkitdown executes the markitdown binary with context support
func (c *MarkitdownConverter) runMarkitdown(ctx context.Context, arg, path string) (string, error) {
	var stdout, stderr bytes.Buffer

	if err := c.run(ctx, c.binaryPath, []string{arg}, &stdout, &stderr); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &ConversionError{
				Converter:     "markitdown",
				OriginalError: ctx.Err(),
				Stderr:        stderr.String(),
				Path:          path,
				Hint:          "conversion timed out",
			}
		}
		return "", &ConversionError{
			Converter:     "markitdown",
			OriginalError: err,
			Stderr:        lastLine(stderr.String()),
			Path:          path,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// lastLine keeps the final line of a Python traceback, which names the failure
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// validatePath validates that the path doesn't contain traversal or null bytes
func validatePath(path string) error {
	if strings.Contains(path, "\x00") {
		return &PathValidationError{Path: path, Reason: "null bytes not allowed"}
	}
	if strings.Contains(filepath.ToSlash(path), "../") {
		return &PathValidationError{Path: path, Reason: "path traversal not allowed"}
	}
	return nil
}

// markitdownSearchPaths are checked after PATH lookup fails
var markitdownSearchPaths = []string{
	"/usr/local/bin/markitdown",
	"/usr/bin/markitdown",
	"/opt/homebrew/bin/markitdown",
	"/opt/bin/markitdown",
}

// findMarkitdownBinary locates the markitdown binary in common locations
func findMarkitdownBinary() (string, error) {
	if path, err := exec.LookPath("markitdown"); err == nil {
		return path, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		pipx := filepath.Join(home, ".local", "bin", "markitdown")
		if _, err := os.Stat(pipx); err == nil {
			return pipx, nil
		}
	}

	for _, path := range markitdownSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", &BinaryNotFoundError{Searched: append([]string{"$PATH"}, markitdownSearchPaths...)}
}

// String implements fmt.Stringer for logging
func (c *MarkitdownConverter) String() string {
	return fmt.Sprintf("markitdown(%s)", c.binaryPath)
}
