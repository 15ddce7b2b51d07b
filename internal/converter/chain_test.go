package converter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConverter implements DocumentConverter for testing
type stubConverter struct {
	suffix    string
	available bool
	output    string
	err       error
	calls     int
}

func (s *stubConverter) Convert(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.output, s.err
}

func (s *stubConverter) Supports(input string) bool { return strings.HasSuffix(input, s.suffix) }

func (s *stubConverter) IsAvailable() bool { return s.available }

func TestChain_Convert(t *testing.T) {
	t.Run("uses first available supporting converter", func(t *testing.T) {
		offline := &stubConverter{suffix: ".pdf", available: false, output: "offline"}
		pdf := &stubConverter{suffix: ".pdf", available: true, output: "pdf text"}
		html := &stubConverter{suffix: ".html", available: true, output: "html text"}

		chain := NewChain(offline, pdf, html)
		out, err := chain.Convert(context.Background(), "a.pdf")

		require.NoError(t, err)
		assert.Equal(t, "pdf text", out)
		assert.Zero(t, offline.calls)
		assert.Zero(t, html.calls)
	})

	t.Run("does not fall through after a failure", func(t *testing.T) {
		first := &stubConverter{suffix: ".pdf", available: true, err: errors.New("corrupt")}
		second := &stubConverter{suffix: ".pdf", available: true, output: "never"}

		_, err := NewChain(first, second).Convert(context.Background(), "a.pdf")

		assert.EqualError(t, err, "corrupt")
		assert.Zero(t, second.calls)
	})

	t.Run("unsupported input", func(t *testing.T) {
		chain := NewChain(&stubConverter{suffix: ".pdf", available: true})

		_, err := chain.Convert(context.Background(), "a.exe")

		var unsupported *UnsupportedInputError
		assert.ErrorAs(t, err, &unsupported)
		assert.False(t, chain.Supports("a.exe"))
	})

	t.Run("skips nil converters", func(t *testing.T) {
		chain := NewChain(nil, &stubConverter{suffix: ".pdf", available: true, output: "ok"})

		out, err := chain.Convert(context.Background(), "a.pdf")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	})
}

func TestChain_Availability(t *testing.T) {
	assert.False(t, NewChain().IsAvailable())
	assert.False(t, NewChain(&stubConverter{}).IsAvailable())
	assert.True(t, NewChain(&stubConverter{}, &stubConverter{available: true}).IsAvailable())

	status := NewChain(NewHTMLConverter(), &PDFConverter{}).Status()
	assert.Equal(t, map[string]string{"html": "available", "pdf": "unavailable"}, status)
}
