package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"
	"github.com/spf13/cobra"

	"github.com/kfreiman/office2md/internal/config"
	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/converter"
	"github.com/kfreiman/office2md/internal/staging"
)

// Version is set at build time with -ldflags "-X github.com/kfreiman/office2md/cmd.Version=..."
var Version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "office2md",
	Short: "Convert office documents and YouTube videos to Markdown",
	Long: `office2md converts Word, Excel, PowerPoint, PDF, EPub, HTML, CSV, JSON,
XML and ZIP files, as well as YouTube videos, to Markdown.

Run "office2md serve" for the web interface or "office2md convert" for a
one-off conversion. Configuration is read from environment variables:

` + config.Usage(),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cmdConfig holds all configuration for the command line
type cmdConfig struct {
	Format string `env:"LOG_FORMAT" env-default:"text" env-description:"Log output format (text or json)"`
	Level  string `env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
}

// createLogger creates a slog logger from the configuration
func createLogger(conf cmdConfig) *slog.Logger {
	var level slog.Level
	switch conf.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var zerologLogger zerolog.Logger
	if conf.Format == "json" {
		zerologLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		zerologLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Caller().Logger()
	}

	handler := slogzerolog.Option{
		Level:  level,
		Logger: &zerologLogger,
	}.NewZerologHandler()

	logger := slog.New(handler)

	log.SetFlags(0)
	slog.SetDefault(logger)

	return logger
}

// loadLogger reads the logging configuration and installs the default logger
func loadLogger() (*slog.Logger, error) {
	var cmdConf cmdConfig
	if err := cleanenv.ReadEnv(&cmdConf); err != nil {
		return nil, fmt.Errorf("load command config: %w", err)
	}
	return createLogger(cmdConf), nil
}

// app bundles what both serve and convert need
type app struct {
	service *conversion.Service
	chain   *converter.Chain
	staging *staging.Area
}

func (a *app) Close() error {
	return a.chain.Close()
}

// newApp wires the converter chain, the staging area and the conversion service
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	area, err := staging.NewArea(staging.Config{
		BasePath: cfg.StagingPath,
		TTL:      cfg.StagingTTL,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	if removed, err := area.Sweep(ctx, 0); err == nil && removed > 0 {
		logger.InfoContext(ctx, "removed orphaned staged files", "count", removed)
	}

	chain := buildChain(ctx, cfg, logger)

	service := conversion.NewService(conversion.ServiceConfig{
		DocumentConverter: chain,
		Staging:           area,
		Logger:            logger,
		Timeout:           cfg.ConvertTimeout,
	})

	return &app{service: service, chain: chain, staging: area}, nil
}

// buildChain prefers the markitdown executable. Native PDF and HTML
// converters are only started when it is missing.
func buildChain(ctx context.Context, cfg config.Config, logger *slog.Logger) *converter.Chain {
	markitdown, err := converter.NewMarkitdownConverter(cfg.MarkitdownBin)
	if err == nil {
		logger.InfoContext(ctx, "using markitdown", "binary", markitdown.BinaryPath())
		return converter.NewChain(markitdown).WithLogger(logger)
	}

	logger.WarnContext(ctx, "markitdown not found, falling back to native PDF and HTML converters",
		"error", err,
	)

	pdf := converter.NewPDFConverter()
	if !pdf.IsAvailable() {
		logger.WarnContext(ctx, "PDF converter unavailable")
	}

	html := converter.NewHTMLConverter()
	if cfg.BrowserFallback {
		withBrowser, err := converter.NewHTMLConverterWithBrowser()
		if err != nil {
			logger.WarnContext(ctx, "headless browser unavailable, using readability only",
				"error", err,
			)
		} else {
			html = withBrowser
		}
	}

	return converter.NewChain(pdf, html).WithLogger(logger)
}
