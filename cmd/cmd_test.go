package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/converter"
)

func TestCreateLogger(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := createLogger(cmdConfig{Format: "json", Level: tt.level})
			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.muted))
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestRequestFromArg(t *testing.T) {
	t.Run("youtube url without scheme", func(t *testing.T) {
		req, err := requestFromArg("youtu.be/dQw4w9WgXcQ")
		require.NoError(t, err)
		assert.Equal(t, "youtu.be/dQw4w9WgXcQ", req.URL)
		assert.Empty(t, req.Filename)
	})

	t.Run("local file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "table.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

		req, err := requestFromArg(path)
		require.NoError(t, err)
		assert.Equal(t, "table.csv", req.Filename)
		assert.Equal(t, "a,b\n1,2\n", string(req.Data))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := requestFromArg(filepath.Join(t.TempDir(), "nope.docx"))
		var notFound *converter.FileNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestFormatsCommand(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		formatsCmd.SetOut(&out)
		require.NoError(t, formatsCmd.Flags().Set("json", "false"))
		require.NoError(t, formatsCmd.RunE(formatsCmd, nil))

		assert.Contains(t, out.String(), "Documents\n")
		assert.Contains(t, out.String(), "extensions: xlsx, xls")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		formatsCmd.SetOut(&out)
		require.NoError(t, formatsCmd.Flags().Set("json", "true"))
		defer formatsCmd.Flags().Set("json", "false")
		require.NoError(t, formatsCmd.RunE(formatsCmd, nil))

		var categories []converter.FormatCategory
		require.NoError(t, json.Unmarshal(out.Bytes(), &categories))
		assert.Len(t, categories, 5)
	})
}

func TestUserError_KeepsCause(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		cause := &conversion.ValidationError{Field: "url", Value: "https://vimeo.com/1", Reason: conversion.MsgInvalidURL}
		err := newUserError(cause)

		assert.Equal(t, conversion.MsgInvalidURL, err.Error())
		var validation *conversion.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "url", validation.Field)
	})

	t.Run("converter failure", func(t *testing.T) {
		cause := &conversion.ConversionError{
			Input: "report.docx",
			Err:   &converter.ConversionError{Converter: "markitdown", OriginalError: errors.New("exit status 1")},
		}
		err := newUserError(cause)

		assert.Equal(t, conversion.UserMessage(cause), err.Error())
		var convErr *converter.ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, "markitdown", convErr.Converter)
	})
}
