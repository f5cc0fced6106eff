package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/log"
	"budget/internal/storage"
)

func yearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the years that have stored data",
		RunE:  runYears,
	}
}

func runYears(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	be, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	keys, err := be.Store.Keys(ctx)
	if err != nil {
		return err
	}
	var years []int
	for _, key := range keys {
		if y, ok := storage.ParseMonthStoreKey(key); ok {
			years = append(years, y)
		}
	}
	sort.Ints(years)

	out := cmd.OutOrStdout()
	if len(years) == 0 {
		fmt.Fprintln(out, labelStyle.Render("No stored years."))
		return nil
	}
	for _, y := range years {
		fmt.Fprintln(out, y)
	}
	return nil
}
