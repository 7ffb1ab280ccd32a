package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halsteadcap/fundscribe/internal/report"
	"github.com/halsteadcap/fundscribe/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate fund documents",
	Long: `Report renders a document from the firm's book: locally computed figures
plus a model-written narrative. When every execution path fails the figures
still print, with a placeholder narrative.`,
}

var reportFundCmd = &cobra.Command{
	Use:   "fund [name]",
	Short: "Fund overview for the investment committee",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(args, true, func(ctx context.Context, g *report.Generator, name string) (*report.Report, error) {
			return g.FundOverview(ctx, name)
		})
	},
}

var reportDealCmd = &cobra.Command{
	Use:   "deal <borrower>",
	Short: "Monitoring note for one position",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(args, false, func(ctx context.Context, g *report.Generator, name string) (*report.Report, error) {
			return g.DealSummary(ctx, name)
		})
	},
}

var reportLetterCmd = &cobra.Command{
	Use:   "letter <partner>",
	Short: "Quarterly letter for one limited partner",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(args, false, func(ctx context.Context, g *report.Generator, name string) (*report.Report, error) {
			return g.QuarterlyLetter(ctx, name)
		})
	},
}

// runReport wires the seeded store and dispatcher, resolves the subject
// name from args or config, and prints the rendered document.
func runReport(args []string, allowDefaultFund bool, render func(context.Context, *report.Generator, string) (*report.Report, error)) error {
	dispatcher, cfg, err := buildDispatcher()
	if err != nil {
		return err
	}

	name := strings.Join(args, " ")
	if name == "" {
		if !allowDefaultFund || cfg.Defaults.Fund == "" {
			return fmt.Errorf("no subject given; pass a name or set defaults.fund")
		}
		name = cfg.Defaults.Fund
	}

	s := store.New()
	store.Seed(s)
	g := report.NewGenerator(s, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := render(ctx, g, name)
	if err != nil {
		return err
	}

	fmt.Println(rep.Body)
	if rep.Degraded {
		fmt.Fprintf(os.Stderr, "%s narrative unavailable, figures computed locally\n", color.YellowString("⚠"))
	}
	return nil
}

func init() {
	reportCmd.AddCommand(reportFundCmd)
	reportCmd.AddCommand(reportDealCmd)
	reportCmd.AddCommand(reportLetterCmd)
}
