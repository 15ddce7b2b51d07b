package converter

import (
	"slices"
	"strings"
)

// FormatCategory groups related input formats for display
type FormatCategory struct {
	Name       string   `json:"name"`
	Formats    []string `json:"formats"`
	Extensions []string `json:"extensions"`
}

// SupportedFormats returns the catalog of inputs markitdown accepts.
// The list follows what the installed conversion library handles; the UI
// only mirrors it.
func SupportedFormats() []FormatCategory {
	return []FormatCategory{
		{
			Name:       "Documents",
			Formats:    []string{"Word (.docx, .doc)", "PDF", "EPub"},
			Extensions: []string{"docx", "doc", "pdf", "epub"},
		},
		{
			Name:       "Spreadsheets",
			Formats:    []string{"Excel (.xlsx, .xls)"},
			Extensions: []string{"xlsx", "xls"},
		},
		{
			Name:       "Presentations",
			Formats:    []string{"PowerPoint (.pptx, .ppt)"},
			Extensions: []string{"pptx", "ppt"},
		},
		{
			Name:       "Web",
			Formats:    []string{"HTML", "YouTube URLs"},
			Extensions: []string{"html", "htm"},
		},
		{
			Name:       "Others",
			Formats:    []string{"CSV", "JSON", "XML", "ZIP (iterates over contents)"},
			Extensions: []string{"csv", "json", "xml", "zip"},
		},
	}
}

// SupportedExtensions returns every accepted extension, without dots
func SupportedExtensions() []string {
	var exts []string
	for _, category := range SupportedFormats() {
		exts = append(exts, category.Extensions...)
	}
	return exts
}

// IsSupportedExtension checks if the extension is supported.
// Both "pdf" and ".pdf" forms are accepted.
func IsSupportedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return false
	}
	return slices.Contains(SupportedExtensions(), ext)
}

// AcceptAttribute renders the extensions for an HTML file input accept list
func AcceptAttribute() string {
	exts := SupportedExtensions()
	dotted := make([]string, len(exts))
	for i, ext := range exts {
		dotted[i] = "." + ext
	}
	return strings.Join(dotted, ",")
}
