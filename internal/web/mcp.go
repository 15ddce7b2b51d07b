package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/converter"
)

const serverInstructions = `office2md converts office documents, PDFs, web pages and YouTube videos to Markdown.

Call convert_to_markdown with either:
- url: a YouTube video URL, or
- filename and content_base64: the name and base64 encoded bytes of a document.

Supported file extensions: %s`

// convertToolDefinition describes the convert_to_markdown tool
var convertToolDefinition = &mcp.Tool{
	Name:        "convert_to_markdown",
	Description: "Convert a document (Word, Excel, PowerPoint, PDF, EPub, HTML, CSV, JSON, XML, ZIP) or a YouTube video to Markdown. Returns the Markdown text.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "YouTube video URL to transcribe",
			},
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "Original file name, the extension selects the format",
			},
			"content_base64": map[string]interface{}{
				"type":        "string",
				"description": "Base64 encoded file content, required with filename",
			},
		},
	},
}

func newMCPServer(service conversion.Converter, version string, logger *slog.Logger) *mcp.Server {
	impl := &mcp.Implementation{
		Name:    "office2md",
		Version: version,
	}

	server := mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: fmt.Sprintf(serverInstructions, converter.AcceptAttribute()),
	})

	tool := NewConvertTool(service).WithLogger(logger)
	server.AddTool(convertToolDefinition, tool.Call)

	return server
}

// ConvertTool exposes the conversion service as an MCP tool
type ConvertTool struct {
	service conversion.Converter
	logger  *slog.Logger
}

// NewConvertTool creates a new convert tool
func NewConvertTool(service conversion.Converter) *ConvertTool {
	return &ConvertTool{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger for the tool
func (t *ConvertTool) WithLogger(logger *slog.Logger) *ConvertTool {
	t.logger = logger
	return t
}

// Call implements the MCP tool handler
func (t *ConvertTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		URL           string `json:"url"`
		Filename      string `json:"filename"`
		ContentBase64 string `json:"content_base64"`
	}

	if len(request.Params.Arguments) > 0 {
		if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("Error: invalid arguments: %v", err)), nil
		}
	}

	req := conversion.Request{URL: args.URL, Filename: args.Filename}
	if args.ContentBase64 != "" {
		if args.Filename == "" {
			return toolError("Error: 'filename' is required with 'content_base64'"), nil
		}
		data, err := base64.StdEncoding.DecodeString(args.ContentBase64)
		if err != nil {
			return toolError(fmt.Sprintf("Error: content_base64 is not valid base64: %v", err)), nil
		}
		req.Data = data
	}

	result, err := t.service.Convert(ctx, req)
	if err != nil {
		t.logger.WarnContext(ctx, "convert tool failed",
			"error", err,
			"filename", args.Filename,
			"url", args.URL,
		)
		return toolError(conversion.UserMessage(err)), nil
	}

	t.logger.InfoContext(ctx, "convert tool completed",
		"filename", result.Filename,
		"source", result.Source,
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Markdown},
		},
	}, nil
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
