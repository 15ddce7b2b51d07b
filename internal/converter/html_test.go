package converter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleParagraph = "Quarterly planning notes describe how the operations team " +
	"moved the archive migration forward, which services were retired, and what " +
	"the remaining follow-up items are for the next review cycle."

func articleHTML() string {
	var b strings.Builder
	b.WriteString("<html><head><title>Planning notes</title></head><body>")
	b.WriteString("<nav><a href=\"/\">Home</a> <a href=\"/about\">About</a></nav>")
	b.WriteString("<article><h1>Planning notes</h1>")
	for i := 0; i < 6; i++ {
		b.WriteString("<p>")
		b.WriteString(articleParagraph)
		b.WriteString("</p>")
	}
	b.WriteString("</article><footer>Copyright</footer></body></html>")
	return b.String()
}

func TestHTMLConverter_Supports(t *testing.T) {
	conv := NewHTMLConverter()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"html file", writeTempFile(t, "page.html", "<p>x</p>"), true},
		{"htm file", writeTempFile(t, "page.htm", "<p>x</p>"), true},
		{"pdf file", writeTempFile(t, "doc.pdf", "x"), false},
		{"missing html file", "/does/not/exist.html", false},
		{"url", "https://example.com/index.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conv.Supports(tt.input))
		})
	}
}

func TestHTMLConverter_Convert(t *testing.T) {
	conv := NewHTMLConverter()
	assert.True(t, conv.IsAvailable())
	assert.False(t, conv.HasBrowser())

	t.Run("extracts article text", func(t *testing.T) {
		path := writeTempFile(t, "notes.html", articleHTML())

		out, err := conv.Convert(context.Background(), path)

		require.NoError(t, err)
		assert.Contains(t, out, "archive migration")
	})

	t.Run("rejects non html input", func(t *testing.T) {
		path := writeTempFile(t, "notes.txt", "hello")

		_, err := conv.Convert(context.Background(), path)

		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, "html", convErr.Converter)
	})

	t.Run("close without browser", func(t *testing.T) {
		assert.NoError(t, NewHTMLConverter().Close())
	})
}
