package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"budget/internal/calendar"
	"budget/internal/cli"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/monthstore"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func summaryCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the income, expenses and balance of a month",
		Long: `Print one month with its expenses grouped by day.

Nothing is written: a year that was never stored is shown as empty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if !cmd.Flags().Changed("year") {
				year = cfg.Year(now)
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}
			if year < 1 || year > 9999 {
				return fmt.Errorf("year must be between 1 and 9999, got %d", year)
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("month must be between 1 and 12, got %d", month)
			}
			return runSummary(cmd, year, month)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year to show (default: DEFAULT_YEAR or the current year)")
	cmd.Flags().IntVar(&month, "month", 0, "month to show, 1-12 (default: the current month)")
	return cmd
}

func runSummary(cmd *cobra.Command, year, month int) error {
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

	snap, found, err := be.Gateway.LoadMonthStore(ctx, year)
	if err != nil {
		return err
	}
	if !found {
		snap = monthstore.InitializeYear(monthstore.Empty(), year)
	}
	m, ok := snap.Get(calendar.MonthID(year, month-1))
	if !ok {
		return fmt.Errorf("month %d of %d not found", month, year)
	}
	summary, err := ledger.Summarize(m)
	if err != nil {
		return err
	}
	return renderSummary(cmd.OutOrStdout(), summary, cfg.Currency)
}

func renderSummary(out io.Writer, s ledger.MonthSummary, currency string) error {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s %d", s.Month.Name, s.Month.Year)))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	balance := s.Balance.Format(currency)
	if s.Balance.IsNegative() {
		balance = negativeStyle.Render(balance)
	}
	fmt.Fprintf(w, "%s\t%s\n", labelStyle.Render("Income"), s.Month.Income.Format(currency))
	fmt.Fprintf(w, "%s\t%s\n", labelStyle.Render("Expenses"), s.Expenses.Format(currency))
	fmt.Fprintf(w, "%s\t%s\n", labelStyle.Render("Balance"), balance)
	if err := w.Flush(); err != nil {
		return err
	}

	if s.Expenses.IsZero() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, labelStyle.Render("No expenses recorded."))
		return nil
	}

	// only days with expenses are listed
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, d := range s.Days {
		if len(d.Items) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\t%s\n", titleStyle.Render(d.Key), d.Total.Format(currency))
		for _, it := range d.Items {
			fmt.Fprintf(w, "  %s\t%s\n", it.Description, it.Amount.Format(currency))
		}
	}
	return w.Flush()
}
