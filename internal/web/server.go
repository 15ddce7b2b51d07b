// Package web serves the upload page, the download endpoint, a JSON API,
// health probes and an MCP endpoint on top of the conversion service.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/session"
	"github.com/kfreiman/office2md/internal/staging"
)

const (
	serviceName    = "office2md"
	defaultVersion = "dev"

	// formOverhead leaves room for multipart boundaries and the url field
	formOverhead = 1 << 20
	// maxFormMemory is kept in memory while parsing, the rest spills to disk
	maxFormMemory = 32 << 20
)

// ConverterStatus reports converter availability for readiness checks
type ConverterStatus interface {
	IsAvailable() bool
	Status() map[string]string
}

// Options holds the dependencies of the web server
type Options struct {
	Service       conversion.Converter
	Sessions      *session.Store
	Staging       *staging.Area
	Converters    ConverterStatus // Optional: omitted from readiness when nil
	MaxUploadSize int64
	Version       string
	Logger        *slog.Logger
}

// Server encapsulates the HTTP router with all its dependencies
type Server struct {
	service       conversion.Converter
	sessions      *session.Store
	staging       *staging.Area
	converters    ConverterStatus
	maxUploadSize int64
	version       string
	logger        *slog.Logger
	mcpServer     *mcp.Server
	router        chi.Router
}

// NewServer creates the server and registers all routes
func NewServer(opts Options) *Server {
	s := &Server{
		service:       opts.Service,
		sessions:      opts.Sessions,
		staging:       opts.Staging,
		converters:    opts.Converters,
		maxUploadSize: opts.MaxUploadSize,
		version:       opts.Version,
		logger:        opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.version == "" {
		s.version = defaultVersion
	}
	if s.sessions == nil {
		s.sessions = session.NewStore(session.Config{Logger: s.logger})
	}
	if s.maxUploadSize <= 0 {
		s.maxUploadSize = 200 << 20
	}

	s.mcpServer = newMCPServer(s.service, s.version, s.logger)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/convert", s.handleConvert)
	r.Get("/download", s.handleDownload)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Compress(5, "application/json"))
		r.Post("/convert", s.handleAPIConvert)
		r.Get("/formats", s.handleAPIFormats)
	})

	r.Get("/health/live", s.LivenessHandler)
	r.Get("/health/ready", s.ReadinessHandler)

	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		JSONResponse: true,
	}))

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "starting web server",
			"port", port,
			"endpoints", []string{"/", "/convert", "/download", "/api/convert", "/api/formats", "/mcp", "/health/live", "/health/ready"},
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	s.logger.InfoContext(ctx, "shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
