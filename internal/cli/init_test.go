package cli

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"budget/internal/config"
	"budget/internal/log"
)

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}

	t.Setenv("PORT", "0")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatalf("expected validation error for port 0")
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: log.FormatJSON})
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected debug enabled")
	}

	logger = SetupLogger(&config.Config{LogLevel: "nonsense"})
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestOpenBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory", DataDirectory: t.TempDir()}
	be, err := OpenBackend(context.Background(), cfg, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer be.Close()
	if be.Gateway == nil || be.Store == nil {
		t.Fatalf("expected gateway and store")
	}

	cfg.DataBackend = "postgres"
	if _, err := OpenBackend(context.Background(), cfg, log.New(log.DefaultConfig())); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestServeUntilSignalStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- ServeUntilSignal(ctx, log.New(log.DefaultConfig()), srv, time.Second) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}
