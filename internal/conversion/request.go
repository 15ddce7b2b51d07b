package conversion

import (
	"path"
	"strings"
	"time"

	"github.com/kfreiman/office2md/internal/converter"
)

// PreviewLimit is the number of characters shown before the preview is truncated
const PreviewLimit = 2000

// PreviewTruncatedNote is appended to a truncated preview
const PreviewTruncatedNote = "...\n\n(Preview truncated. Download the full file to see all content.)"

// SourceKind tells what the user submitted
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// Request is a single user submission: an uploaded file or a URL
type Request struct {
	Filename string
	Data     []byte
	URL      string
}

// HasFile reports whether a file was uploaded
func (r Request) HasFile() bool {
	return r.Filename != ""
}

// IsEmpty reports whether neither a file nor a URL was submitted
func (r Request) IsEmpty() bool {
	return !r.HasFile() && strings.TrimSpace(r.URL) == ""
}

// Result is the output of a successful conversion
type Result struct {
	Markdown    string     `json:"markdown"`
	Filename    string     `json:"filename"`
	Source      string     `json:"source"`
	Kind        SourceKind `json:"kind"`
	ConvertedAt time.Time  `json:"converted_at"`
}

// Preview returns at most PreviewLimit characters of the markdown and
// whether it was truncated
func (r *Result) Preview() (string, bool) {
	runes := []rune(r.Markdown)
	if len(runes) <= PreviewLimit {
		return r.Markdown, false
	}
	return string(runes[:PreviewLimit]) + PreviewTruncatedNote, true
}

// DownloadFilename replaces the last extension of an uploaded file name with .md
func DownloadFilename(name string) string {
	base := sanitizeFilename(name)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		base = "document"
	}
	return base + ".md"
}

// YouTubeFilename names the result of a YouTube conversion after the video id
func YouTubeFilename(url string) string {
	if id := converter.ExtractYouTubeID(url); id != "" {
		return "youtube_" + id + ".md"
	}
	return "youtube_video.md"
}

// sanitizeFilename strips directories and characters that break a
// Content-Disposition header
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' || r == ';' {
			return -1
		}
		return r
	}, name)
}
