// Package conversion turns a user submission into Markdown: it validates the
// input, stages uploads for the converter, and derives the download name.
package conversion

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kfreiman/office2md/internal/converter"
	"github.com/kfreiman/office2md/internal/staging"
)

// Converter converts a submission to markdown
type Converter interface {
	Convert(ctx context.Context, req Request) (*Result, error)
}

// ServiceConfig holds configuration for the conversion service
type ServiceConfig struct {
	DocumentConverter converter.DocumentConverter
	Staging           *staging.Area
	Logger            *slog.Logger
	// Timeout bounds a single converter call. Zero means no limit.
	Timeout time.Duration
}

// Service implements Converter on top of a DocumentConverter and a staging area
type Service struct {
	documentConverter converter.DocumentConverter
	staging           *staging.Area
	logger            *slog.Logger
	timeout           time.Duration
	now               func() time.Time
}

// NewService creates a new conversion service
func NewService(config ServiceConfig) *Service {
	s := &Service{
		documentConverter: config.DocumentConverter,
		staging:           config.Staging,
		logger:            config.Logger,
		timeout:           config.Timeout,
		now:               time.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Convert validates req and runs it through the document converter.
// A non-empty URL must be a YouTube URL even when a file is uploaded; the
// file then takes precedence.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	if req.IsEmpty() {
		return nil, &ValidationError{Field: "input", Reason: MsgEmptyInput}
	}

	url := strings.TrimSpace(req.URL)
	if url != "" && !converter.IsYouTubeURL(url) {
		return nil, &ValidationError{Field: "url", Value: url, Reason: MsgInvalidURL}
	}

	if req.HasFile() {
		return s.convertFile(ctx, req.Filename, req.Data)
	}
	return s.convertURL(ctx, url)
}

func (s *Service) convertFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	name := sanitizeFilename(filename)
	if !converter.IsSupportedExtension(converter.Extension(name)) {
		return nil, &ValidationError{Field: "file", Value: name, Reason: MsgUnsupportedFile}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Value: name, Reason: MsgEmptyFile}
	}

	staged, err := s.staging.Stage(ctx, name, data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.staging.Release(context.WithoutCancel(ctx), staged); releaseErr != nil {
			s.logger.WarnContext(ctx, "staged file left behind",
				"error", releaseErr,
				"path", staged.Path,
			)
		}
	}()

	markdown, err := s.invoke(ctx, staged.Path, name)
	if err != nil {
		return nil, err
	}

	return &Result{
		Markdown:    markdown,
		Filename:    DownloadFilename(name),
		Source:      name,
		Kind:        SourceFile,
		ConvertedAt: s.now(),
	}, nil
}

func (s *Service) convertURL(ctx context.Context, url string) (*Result, error) {
	markdown, err := s.invoke(ctx, url, url)
	if err != nil {
		return nil, err
	}

	return &Result{
		Markdown:    markdown,
		Filename:    YouTubeFilename(url),
		Source:      url,
		Kind:        SourceURL,
		ConvertedAt: s.now(),
	}, nil
}

// invoke calls the converter once. label identifies the input in logs and errors.
func (s *Service) invoke(ctx context.Context, input, label string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	markdown, err := s.documentConverter.Convert(ctx, input)
	duration := time.Since(start)

	if err != nil {
		s.logger.ErrorContext(ctx, "conversion failed",
			"error", err,
			"source", label,
			"duration", duration,
		)
		return "", &ConversionError{Input: label, Err: err}
	}

	s.logger.InfoContext(ctx, "conversion completed",
		"source", label,
		"chars", len(markdown),
		"duration", duration,
	)
	return markdown, nil
}
