package converter

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Chain dispatches each input to the first available converter that supports it.
// A converter that fails is not followed by the next one.
type Chain struct {
	converters []DocumentConverter
	logger     *slog.Logger
}

// NewChain creates a Chain trying converters in the given order. Nil entries are skipped.
func NewChain(converters ...DocumentConverter) *Chain {
	c := &Chain{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, conv := range converters {
		if conv != nil {
			c.converters = append(c.converters, conv)
		}
	}
	return c
}

// WithLogger sets a custom logger for the chain
func (c *Chain) WithLogger(logger *slog.Logger) *Chain {
	c.logger = logger
	return c
}

// Convert runs the selected converter on input
func (c *Chain) Convert(ctx context.Context, input string) (string, error) {
	conv := c.pick(input)
	if conv == nil {
		return "", &UnsupportedInputError{Input: input}
	}

	c.logger.DebugContext(ctx, "converter selected",
		"input", input,
		"converter", converterName(conv),
	)
	return conv.Convert(ctx, input)
}

// Supports reports whether any available converter handles input
func (c *Chain) Supports(input string) bool {
	return c.pick(input) != nil
}

// IsAvailable reports whether at least one converter is usable
func (c *Chain) IsAvailable() bool {
	for _, conv := range c.converters {
		if conv.IsAvailable() {
			return true
		}
	}
	return false
}

// Status maps each converter name to its availability, for readiness reporting
func (c *Chain) Status() map[string]string {
	status := make(map[string]string, len(c.converters))
	for _, conv := range c.converters {
		state := "unavailable"
		if conv.IsAvailable() {
			state = "available"
		}
		status[converterName(conv)] = state
	}
	return status
}

// Close closes every converter holding resources
func (c *Chain) Close() error {
	var errs []error
	for _, conv := range c.converters {
		if closer, ok := conv.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Chain) pick(input string) DocumentConverter {
	for _, conv := range c.converters {
		if conv.IsAvailable() && conv.Supports(input) {
			return conv
		}
	}
	return nil
}

func converterName(conv DocumentConverter) string {
	switch conv.(type) {
	case *MarkitdownConverter:
		return "markitdown"
	case *PDFConverter:
		return "pdf"
	case *HTMLConverter:
		return "html"
	case *Chain:
		return "chain"
	default:
		return "custom"
	}
}
