package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations",
		Long: `Apply the embedded schema migrations to SQLITE_DB_PATH.

The server also migrates on start; this command is for checking the schema
version without starting it.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if cfg.DataBackend != backend.SQLiteBackend.String() {
		return fmt.Errorf("migrate needs DATA_BACKEND=sqlite, got %q", cfg.DataBackend)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	version, changed, err := storage.MigrateUp(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	logger.Info("Migrations applied", "db_path", cfg.SQLiteDBPath, "version", version, "changed", changed)

	out := cmd.OutOrStdout()
	if changed {
		fmt.Fprintf(out, "Schema migrated to version %d\n", version)
	} else {
		fmt.Fprintf(out, "Schema already at version %d\n", version)
	}
	return nil
}
