package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/session"
	"budget/internal/tracker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	verifier, err := session.NewVerifier(cfg.PasswordScheme)
	if err != nil {
		return err
	}

	be, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	now := time.Now()
	tr := tracker.New(be.Gateway,
		tracker.WithLogger(logger),
		tracker.WithStart(cfg.Year(now), int(now.Month())-1),
		tracker.WithVerifier(verifier),
	)
	if err := tr.Open(ctx); err != nil {
		// State that could not be read starts empty; the server still runs.
		logger.Warn("Tracker opened with warnings", log.FieldError, err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, tr,
		apphttp.WithCurrency(cfg.Currency),
		apphttp.WithLogger(logger),
		apphttp.WithAuthLimit(cfg.AuthRateLimit),
	)

	logger.Info("Starting budget server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"currency", cfg.Currency)

	if err := cli.ServeUntilSignal(ctx, logger, &srv.Server, cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
