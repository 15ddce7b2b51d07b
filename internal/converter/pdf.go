package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// pdfiumInstanceTimeout bounds how long a conversion waits for a free instance
const pdfiumInstanceTimeout = 30 * time.Second

// PDFConverter extracts the text layer of PDF files with PDFium compiled to WebAssembly
type PDFConverter struct {
	pool pdfium.Pool
}

// NewPDFConverter creates a new PDFConverter. If PDFium fails to start the
// converter is returned anyway and reports itself unavailable.
func NewPDFConverter() *PDFConverter {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		slog.Debug("pdfium initialization failed", "error", err)
		return &PDFConverter{}
	}
	return &PDFConverter{pool: pool}
}

// IsAvailable returns true if the PDFium pool started
func (c *PDFConverter) IsAvailable() bool {
	return c.pool != nil
}

// Close shuts the PDFium pool down
func (c *PDFConverter) Close() error {
	if c.pool == nil {
		return nil
	}
	err := c.pool.Close()
	c.pool = nil
	return err
}

// Convert extracts text from a PDF file
func (c *PDFConverter) Convert(ctx context.Context, input string) (string, error) {
	if !c.IsAvailable() {
		return "", &ConversionError{
			Converter: "pdf",
			Hint:      "PDF converter not available - pdfium not initialized",
		}
	}

	info := ParseInput(input)
	if info.Type != InputTypeFile {
		return "", &FileNotFoundError{Path: input}
	}
	return c.convertFile(ctx, info.Path)
}

// Supports checks if the converter supports the given input
func (c *PDFConverter) Supports(input string) bool {
	info := ParseInput(input)
	if info.Type != InputTypeFile {
		return false
	}
	return strings.EqualFold(info.Ext, ".pdf")
}

// convertFile extracts text from every page, separating pages with a rule
func (c *PDFConverter) convertFile(ctx context.Context, path string) (string, error) {
	if err := validatePath(path); err != nil {
		return "", err
	}

	resolvedPath, err := filepath.Abs(path)
	if err != nil {
		return "", &FileNotFoundError{Path: path}
	}

	// #nosec G304 - path has been validated for traversal and null bytes
	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return "", &FileNotFoundError{Path: path}
	}

	instance, err := c.pool.GetInstance(pdfiumInstanceTimeout)
	if err != nil {
		return "", &ConversionError{
			Converter:     "pdf",
			OriginalError: err,
			Path:          path,
			Hint:          "no pdfium instance available",
		}
	}
	defer func() {
		if closeErr := instance.Close(); closeErr != nil {
			slog.Debug("error closing pdfium instance", "error", closeErr)
		}
	}()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return "", &ConversionError{
			Converter:     "pdf",
			OriginalError: err,
			Path:          path,
			Hint:          "failed to open PDF",
		}
	}
	defer func() {
		if _, closeErr := instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document}); closeErr != nil {
			slog.Debug("error closing pdf document", "error", closeErr)
		}
	}()

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return "", &ConversionError{
			Converter:     "pdf",
			OriginalError: err,
			Path:          path,
			Hint:          "failed to count PDF pages",
		}
	}

	var pages []string
	for i := 0; i < count.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return "", &ConversionError{Converter: "pdf", OriginalError: err, Path: path}
		}

		text, err := instance.GetPageText(&requests.GetPageText{
			Page: requests.Page{
				ByIndex: &requests.PageByIndex{Document: doc.Document, Index: i},
			},
		})
		if err != nil {
			return "", &ConversionError{
				Converter:     "pdf",
				OriginalError: err,
				Path:          path,
				Hint:          fmt.Sprintf("failed to extract text from page %d", i+1),
			}
		}
		if trimmed := strings.TrimSpace(text.Text); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	return strings.Join(pages, "\n\n---\n\n"), nil
}
