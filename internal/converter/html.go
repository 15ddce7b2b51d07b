package converter

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/playwright-community/playwright-go"
)

// HTMLConverter extracts readable text from HTML files using go-readability,
// optionally falling back to a headless Chromium render via playwright
type HTMLConverter struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewHTMLConverter creates an HTMLConverter backed only by go-readability
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{}
}

// NewHTMLConverterWithBrowser creates an HTMLConverter with playwright initialized
func NewHTMLConverterWithBrowser() (*HTMLConverter, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Hint:          "failed to initialize playwright",
		}
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			slog.Debug("error stopping playwright", "error", stopErr)
		}
		return nil, &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Hint:          "failed to launch chromium browser",
		}
	}

	return &HTMLConverter{
		pw:      pw,
		browser: browser,
	}, nil
}

// IsAvailable always returns true - readability is pure Go
func (c *HTMLConverter) IsAvailable() bool {
	return true
}

// HasBrowser reports whether the playwright fallback is running
func (c *HTMLConverter) HasBrowser() bool {
	return c.pw != nil && c.browser != nil
}

// Supports checks if the converter supports the given input
func (c *HTMLConverter) Supports(input string) bool {
	info := ParseInput(input)
	if info.Type != InputTypeFile {
		return false
	}
	return isHTMLExt(info.Ext)
}

// Convert extracts text from an HTML file
func (c *HTMLConverter) Convert(ctx context.Context, input string) (string, error) {
	info := ParseInput(input)
	if info.Type != InputTypeFile || !isHTMLExt(info.Ext) {
		return "", &ConversionError{
			Converter: "html",
			Path:      input,
			Hint:      "input is not an HTML file",
		}
	}
	return c.convertFile(ctx, info.Path)
}

// Close cleans up the playwright browser and instance
func (c *HTMLConverter) Close() error {
	var firstErr error
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if c.pw != nil {
		if err := c.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func isHTMLExt(ext string) bool {
	return ext == ".html" || ext == ".htm"
}

// convertFile extracts text from an HTML file
func (c *HTMLConverter) convertFile(ctx context.Context, path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}

	resolvedPath, err := filepath.Abs(path)
	if err != nil {
		return "", &FileNotFoundError{Path: path}
	}

	// #nosec G304 - path has been validated for traversal and null bytes
	htmlBytes, err := os.ReadFile(resolvedPath)
	if err != nil {
		return "", &FileNotFoundError{Path: path}
	}

	fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(resolvedPath)}

	content, err := extractReadable(htmlBytes, fileURL)
	if err == nil && content != "" {
		return content, nil
	}

	if !c.HasBrowser() {
		if err == nil {
			err = errNoReadableContent
		}
		return "", &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Path:          path,
			Hint:          "no readable content found in page",
		}
	}

	// Scripted pages only have content after rendering
	return c.renderWithPlaywright(ctx, fileURL)
}

// renderWithPlaywright uses playwright to render the page and extract content
func (c *HTMLConverter) renderWithPlaywright(_ context.Context, pageURL *url.URL) (string, error) {
	page, err := c.browser.NewPage()
	if err != nil {
		return "", &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Hint:          "failed to create new page",
		}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Debug("error closing page", "error", closeErr)
		}
	}()

	if _, err = page.Goto(pageURL.String(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return "", &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Path:          pageURL.Path,
			Hint:          "failed to render page",
		}
	}

	html, err := page.Content()
	if err != nil {
		return "", &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Hint:          "failed to get page content",
		}
	}

	content, err := extractReadable([]byte(html), pageURL)
	if err != nil || content == "" {
		if err == nil {
			err = errNoReadableContent
		}
		return "", &ConversionError{
			Converter:     "html",
			OriginalError: err,
			Path:          pageURL.Path,
			Hint:          "no readable content found in page",
		}
	}
	return content, nil
}

// extractReadable runs go-readability over raw HTML and renders the article text
func extractReadable(html []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return "", err
	}
	if article.Node == nil {
		return "", errNoReadableContent
	}

	var buf bytes.Buffer
	if err := article.RenderText(&buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
