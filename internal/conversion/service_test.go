package conversion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/office2md/internal/converter"
	"github.com/kfreiman/office2md/internal/staging"
)

// fakeConverter records inputs and what was on disk when it ran
type fakeConverter struct {
	fs       afero.Fs
	output   string
	err      error
	errFor   func(input string) error
	inputs   []string
	seen     []string
	deadline bool
}

func (f *fakeConverter) Convert(ctx context.Context, input string) (string, error) {
	f.inputs = append(f.inputs, input)
	if f.fs != nil {
		if data, err := afero.ReadFile(f.fs, input); err == nil {
			f.seen = append(f.seen, string(data))
		}
	}
	_, f.deadline = ctx.Deadline()
	if f.errFor != nil {
		return "", f.errFor(input)
	}
	return f.output, f.err
}

func (f *fakeConverter) Supports(string) bool { return true }
func (f *fakeConverter) IsAvailable() bool    { return true }

func newTestService(t *testing.T, conv *fakeConverter) (*Service, afero.Fs) {
	t.Helper()
	memFs := afero.NewMemMapFs()
	area, err := staging.NewArea(staging.Config{
		BasePath: "/staging",
		FS:       staging.NewAferoFileSystem(memFs),
	})
	require.NoError(t, err)

	conv.fs = memFs
	svc := NewService(ServiceConfig{DocumentConverter: conv, Staging: area})
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, memFs
}

func stagedFiles(t *testing.T, memFs afero.Fs) []string {
	t.Helper()
	entries, err := afero.ReadDir(memFs, "/staging")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestService_Convert_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		field   string
		message string
	}{
		{
			name:    "empty submission",
			req:     Request{},
			field:   "input",
			message: MsgEmptyInput,
		},
		{
			name:    "whitespace url",
			req:     Request{URL: "   "},
			field:   "input",
			message: MsgEmptyInput,
		},
		{
			name:    "non youtube url",
			req:     Request{URL: "https://example.com/page"},
			field:   "url",
			message: MsgInvalidURL,
		},
		{
			name:    "file with non youtube url",
			req:     Request{Filename: "a.docx", Data: []byte("x"), URL: "https://vimeo.com/1"},
			field:   "url",
			message: MsgInvalidURL,
		},
		{
			name:    "unsupported extension",
			req:     Request{Filename: "notes.txt", Data: []byte("x")},
			field:   "file",
			message: "Unsupported file type: notes.txt",
		},
		{
			name:    "empty upload",
			req:     Request{Filename: "report.pdf"},
			field:   "file",
			message: MsgEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &fakeConverter{output: "unused"}
			svc, _ := newTestService(t, conv)

			result, err := svc.Convert(context.Background(), tt.req)
			assert.Nil(t, result)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, tt.message, UserMessage(err))
			assert.True(t, IsValidation(err))
			assert.Empty(t, conv.inputs, "converter must not be called")
		})
	}
}

func TestService_Convert_File(t *testing.T) {
	conv := &fakeConverter{output: "# Report\n\nBody"}
	svc, memFs := newTestService(t, conv)

	result, err := svc.Convert(context.Background(), Request{
		Filename: "Report.v2.DOCX",
		Data:     []byte("docx payload"),
	})
	require.NoError(t, err)

	assert.Equal(t, "# Report\n\nBody", result.Markdown)
	assert.Equal(t, "Report.v2.md", result.Filename)
	assert.Equal(t, "Report.v2.DOCX", result.Source)
	assert.Equal(t, SourceFile, result.Kind)
	assert.Equal(t, 2025, result.ConvertedAt.Year())

	require.Len(t, conv.inputs, 1)
	assert.True(t, strings.HasPrefix(conv.inputs[0], "/staging/"))
	assert.True(t, strings.HasSuffix(conv.inputs[0], ".docx"))
	assert.Equal(t, []string{"docx payload"}, conv.seen)

	assert.Empty(t, stagedFiles(t, memFs), "staged upload must be released")
	assert.False(t, conv.deadline)
}

func TestService_Convert_FileReleasedOnFailure(t *testing.T) {
	conv := &fakeConverter{err: errors.New("markitdown exploded")}
	svc, memFs := newTestService(t, conv)

	_, err := svc.Convert(context.Background(), Request{Filename: "a.xlsx", Data: []byte("x")})
	require.Error(t, err)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "a.xlsx", convErr.Input)
	assert.False(t, IsValidation(err))
	assert.Equal(t, "Error during conversion: markitdown exploded", UserMessage(err))

	assert.Empty(t, stagedFiles(t, memFs))
}

func TestService_Convert_URL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		filename string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "youtube_dQw4w9WgXcQ.md"},
		{"short url with spaces", "  https://youtu.be/abc123def45  ", "youtube_abc123def45.md"},
		{"channel url", "https://www.youtube.com/@somechannel", "youtube_video.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &fakeConverter{output: "# Video"}
			svc, _ := newTestService(t, conv)

			result, err := svc.Convert(context.Background(), Request{URL: tt.url})
			require.NoError(t, err)

			assert.Equal(t, tt.filename, result.Filename)
			assert.Equal(t, SourceURL, result.Kind)
			assert.Equal(t, []string{strings.TrimSpace(tt.url)}, conv.inputs)
		})
	}
}

func TestService_Convert_FileWinsOverURL(t *testing.T) {
	conv := &fakeConverter{output: "csv"}
	svc, _ := newTestService(t, conv)

	result, err := svc.Convert(context.Background(), Request{
		Filename: "data.csv",
		Data:     []byte("a,b"),
		URL:      "https://youtu.be/abc123def45",
	})
	require.NoError(t, err)
	assert.Equal(t, "data.md", result.Filename)
	assert.Equal(t, SourceFile, result.Kind)
}

func TestService_Convert_Timeout(t *testing.T) {
	conv := &fakeConverter{output: "ok"}
	svc, _ := newTestService(t, conv)
	svc.timeout = time.Minute

	_, err := svc.Convert(context.Background(), Request{URL: "https://youtu.be/abc123def45"})
	require.NoError(t, err)
	assert.True(t, conv.deadline)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Error during conversion: boom", UserMessage(errors.New("boom")))

	unsupported := &ConversionError{Input: "x", Err: &converter.UnsupportedInputError{Input: "x"}}
	assert.Equal(t,
		"Error during conversion: no converter is installed for this kind of input",
		UserMessage(unsupported),
	)
}

func TestUserMessage_OmitsStagedPath(t *testing.T) {
	conv := &fakeConverter{}
	conv.errFor = func(input string) error {
		return &converter.ConversionError{
			Converter:     "markitdown",
			OriginalError: errors.New("exit status 1"),
			Stderr:        "ValueError: bad zip in " + input,
			Path:          input,
			Hint:          "the file may be corrupted",
		}
	}
	svc, _ := newTestService(t, conv)

	_, err := svc.Convert(context.Background(), Request{Filename: "report.docx", Data: []byte("x")})
	require.Error(t, err)
	require.Len(t, conv.inputs, 1)

	msg := UserMessage(err)
	assert.Equal(t,
		"Error during conversion: markitdown conversion failed: exit status 1 (ValueError: bad zip in report.docx); the file may be corrupted",
		msg,
	)
	assert.NotContains(t, msg, "/staging")
	assert.NotContains(t, msg, conv.inputs[0])
	assert.NotContains(t, msg, "\n")
}
