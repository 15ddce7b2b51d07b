package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kfreiman/office2md/internal/config"
	"github.com/kfreiman/office2md/internal/session"
	"github.com/kfreiman/office2md/internal/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, err := loadLogger()
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			logger.ErrorContext(ctx, "failed to load config",
				"error", err,
			)
			return fmt.Errorf("load config: %w", err)
		}

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg = cfg.WithPort(port)
		}

		application, err := newApp(ctx, cfg, logger)
		if err != nil {
			logger.ErrorContext(ctx, "failed to initialize",
				"error", err,
			)
			return err
		}
		defer func() {
			if err := application.Close(); err != nil {
				logger.WarnContext(context.Background(), "failed to release converters", "error", err)
			}
		}()

		logger.InfoContext(ctx, "office2md starting",
			"version", Version,
			"port", cfg.Port,
			"staging_path", cfg.StagingPath,
			"max_upload_size", cfg.MaxUploadSize,
			"convert_timeout", cfg.ConvertTimeout,
			"converters", application.chain.Status(),
		)

		server := web.NewServer(web.Options{
			Service: application.service,
			Sessions: session.NewStore(session.Config{
				TTL:    cfg.SessionTTL,
				Logger: logger,
				Secure: cfg.SecureCookies,
			}),
			Staging:       application.staging,
			Converters:    application.chain,
			MaxUploadSize: cfg.MaxUploadSize,
			Version:       Version,
			Logger:        logger,
		})

		if err := server.ListenAndServe(ctx, cfg.Port); err != nil {
			logger.ErrorContext(ctx, "web server stopped",
				"error", err,
			)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}
