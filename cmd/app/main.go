package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	callService "ScamSOS/internal/api/call/service"
	"ScamSOS/internal/config"
	"ScamSOS/pkg/log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(logger).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scamsos: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(logger *logrus.Logger) *cobra.Command {
	serve := newServeCmd(logger)

	cmd := &cobra.Command{
		Use:          "scamsos",
		Short:        "ScamSOS intake backend",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	cmd.AddCommand(serve, newMigrateCmd(logger))
	return cmd
}

func newServeCmd(logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			validate, err := config.NewValidator()
			if err != nil {
				return err
			}

			server, err := config.NewServer(
				config.WithFiber(config.NewFiber(logger)),
				config.WithLogger(logger),
				config.WithValidator(validate),
				config.WithDatabase(),
				config.WithSessionStore(),
				config.WithSigner(),
				config.WithMiddleware(),
				config.WithS3Client(),
				config.WithScriptFonts(),
				config.WithTranscriber(),
				config.WithSummarizer(),
				config.WithTextExtractor(ctx),
				config.WithRetell(),
				config.WithBackend(),
				config.WithCallConfig(callService.ConfigFromEnv()),
				config.WithUtils(),
			)
			if err != nil {
				return err
			}

			server.RegisterHandler()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Run()
			}()

			logger.Info("Server started successfully")

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCmd(logger *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the call journal table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := config.NewServer(
				config.WithFiber(config.NewFiber(logger)),
				config.WithLogger(logger),
				config.WithDatabase(),
			)
			if err != nil {
				return err
			}
			defer server.Shutdown(context.Background())

			if err := server.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			logger.Info("Call journal table is ready")
			return nil
		},
	}
}
