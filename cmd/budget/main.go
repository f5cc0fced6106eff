package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"
)

var (
	cfg    *config.Config
	logger *log.Logger

	rootCmd = &cobra.Command{
		Use:   "budget",
		Short: "Personal monthly budget tracker",
		Long: `budget records monthly income and per-day expenses and reports the
remaining balance of each month.

Configuration comes from the environment; a .env file in the working
directory is loaded first when present.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(yearsCmd())
	rootCmd.AddCommand(migrateCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	c, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	cfg = c
	logger = cli.SetupLogger(cfg).WithComponent(log.ComponentCLI)
	return nil
}
