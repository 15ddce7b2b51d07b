package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kfreiman/office2md/internal/config"
	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/converter"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <file-or-youtube-url>",
	Short: "Convert a single document or YouTube video to Markdown",
	Long: `Convert a single document or YouTube video to Markdown.

The result is written to stdout, or to the file given with --output. Pass
--output with a directory to save under the derived name (report.docx
becomes report.md, a YouTube video becomes youtube_<id>.md).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger, err := loadLogger()
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		req, err := requestFromArg(args[0])
		if err != nil {
			return err
		}

		application, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.service.Convert(ctx, req)
		if err != nil {
			return newUserError(err)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), result.Markdown)
			return err
		}

		if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, result.Filename)
		}
		if err := os.WriteFile(output, []byte(result.Markdown), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}

		logger.InfoContext(ctx, "markdown written",
			"path", output,
			"chars", len(result.Markdown),
		)
		return nil
	},
}

// userError prints the message shown in the web UI while keeping the
// underlying error reachable through errors.As.
type userError struct {
	msg string
	err error
}

func newUserError(err error) error {
	return &userError{msg: conversion.UserMessage(err), err: err}
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }

// requestFromArg treats YouTube links as URLs and everything else as a local file
func requestFromArg(arg string) (conversion.Request, error) {
	if converter.IsYouTubeURL(arg) {
		return conversion.Request{URL: arg}, nil
	}

	info := converter.ParseInput(arg)
	switch info.Type {
	case converter.InputTypeURL:
		return conversion.Request{URL: arg}, nil
	case converter.InputTypeFile:
		data, err := os.ReadFile(arg)
		if err != nil {
			return conversion.Request{}, fmt.Errorf("read %s: %w", arg, err)
		}
		return conversion.Request{Filename: filepath.Base(arg), Data: data}, nil
	default:
		return conversion.Request{}, &converter.FileNotFoundError{Path: arg}
	}
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "Write Markdown to this file or directory instead of stdout")
	rootCmd.AddCommand(convertCmd)
}
