// Package report assembles fund analytics into prompts and runs them through
// the dispatcher. Every report carries a data section computed locally; the
// narrative section comes from the model and degrades to a placeholder when
// every execution path is exhausted.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/halsteadcap/fundscribe/internal/dispatch"
	"github.com/halsteadcap/fundscribe/internal/finance"
	"github.com/halsteadcap/fundscribe/internal/store"
	"github.com/halsteadcap/fundscribe/pkg/models"
)

// narrativeUnavailable replaces the model narrative when dispatch exhausts
// every fallback. The numeric sections of a report are still produced.
const narrativeUnavailable = "_Narrative analysis unavailable; figures above are computed locally._"

// Dispatcher is the slice of the dispatch API the generator needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, opts *models.Overrides) (*models.Outcome, error)
}

// Report is a rendered document plus the dispatch outcome that produced its
// narrative, when one was attempted.
type Report struct {
	Title    string
	Body     string
	Outcome  *models.Outcome
	Degraded bool
}

// Generator renders fund reports.
type Generator struct {
	store      *store.Store
	dispatcher Dispatcher
}

// NewGenerator creates a Generator over the given store and dispatcher.
func NewGenerator(s *store.Store, d Dispatcher) *Generator {
	return &Generator{store: s, dispatcher: d}
}

// FundOverview renders the fund's position summary with a model narrative.
func (g *Generator) FundOverview(ctx context.Context, fundName string) (*Report, error) {
	fund, err := g.store.FundByName(fundName)
	if err != nil {
		return nil, err
	}

	data := g.fundDataSection(fund)
	prompt := fmt.Sprintf(
		"Write a concise fund overview narrative for the investment committee of a private lending fund. "+
			"Summarize portfolio health and capital deployment in two short paragraphs. Figures:\n\n%s", data)

	return g.render(ctx, fmt.Sprintf("%s Overview", fund.Name), data, prompt, nil)
}

// DealSummary renders a single-position summary for the named borrower.
func (g *Generator) DealSummary(ctx context.Context, borrower string) (*Report, error) {
	deal, err := g.store.DealByBorrower(borrower)
	if err != nil {
		return nil, err
	}
	fund, err := g.store.Fund(deal.FundID)
	if err != nil {
		return nil, err
	}

	var data strings.Builder
	fmt.Fprintf(&data, "Fund: %s\n", fund.Name)
	fmt.Fprintf(&data, "Borrower: %s (%s)\n", deal.Borrower, deal.Sector)
	fmt.Fprintf(&data, "Principal: $%.1fM at %.2f%% annual coupon\n", deal.Principal/1e6, deal.Rate*100)
	fmt.Fprintf(&data, "Status: %s\n", deal.Status)
	fmt.Fprintf(&data, "Originated: %s, matures: %s\n",
		deal.OriginatedAt.Format("Jan 2006"), deal.MaturesAt.Format("Jan 2006"))
	fmt.Fprintf(&data, "Annual interest income: $%.2fM\n", deal.Principal*deal.Rate/1e6)

	prompt := fmt.Sprintf(
		"Draft a deal monitoring note for a private credit position. Flag any lifecycle concerns "+
			"given the status and maturity date, in one paragraph. Position details:\n\n%s", data.String())

	return g.render(ctx, fmt.Sprintf("Deal Summary: %s", deal.Borrower), data.String(), prompt, nil)
}

// QuarterlyLetter renders the quarterly letter for one limited partner. The
// narrative request is a document-style prompt so it is routed to the larger
// output budget.
func (g *Generator) QuarterlyLetter(ctx context.Context, partnerName string) (*Report, error) {
	lp, err := g.store.PartnerByName(partnerName)
	if err != nil {
		return nil, err
	}
	fund, err := g.store.Fund(lp.FundID)
	if err != nil {
		return nil, err
	}

	var distributed float64
	for _, p := range g.store.Partners(fund.ID) {
		distributed += p.Distributed
	}

	var data strings.Builder
	data.WriteString(g.fundDataSection(fund))
	fmt.Fprintf(&data, "Management fee accrued this quarter: $%.2fM\n",
		finance.QuarterlyManagementFee(fund)/1e6)
	fmt.Fprintf(&data, "Fee terms: %s\n", finance.FeeSummary(fund, distributed))
	fmt.Fprintf(&data, "\nLimited partner: %s\n", lp.Name)
	fmt.Fprintf(&data, "Commitment: $%.1fM, called: $%.1fM, distributed: $%.1fM\n",
		lp.Commitment/1e6, lp.Called/1e6, lp.Distributed/1e6)
	if lp.Called > 0 {
		fmt.Fprintf(&data, "DPI: %.2fx\n", lp.Distributed/lp.Called)
	}

	prompt := fmt.Sprintf(
		"Write a formal quarterly letter to a limited partner in a private lending fund. "+
			"Cover fund performance, capital activity, and outlook. Close with the standard "+
			"availability-for-questions paragraph. Figures:\n\n%s", data.String())

	title := fmt.Sprintf("Quarterly Letter: %s, %s", lp.Name, quarterLabel(time.Now()))
	return g.render(ctx, title, data.String(), prompt, nil)
}

// render dispatches the prompt and assembles the final document. An
// exhausted dispatch degrades to the placeholder narrative; any other error
// aborts the report.
func (g *Generator) render(ctx context.Context, title, data, prompt string, opts *models.Overrides) (*Report, error) {
	if opts == nil {
		opts = &models.Overrides{}
	}
	outcome, err := g.dispatcher.Dispatch(ctx, prompt, opts)

	narrative := narrativeUnavailable
	degraded := true
	switch {
	case err == nil:
		narrative = outcome.Text
		degraded = false
	case isExhausted(err):
		// keep the placeholder, report still renders
	default:
		return nil, err
	}

	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\n", title)
	body.WriteString("## Figures\n\n")
	body.WriteString(data)
	body.WriteString("\n## Commentary\n\n")
	body.WriteString(narrative)
	body.WriteString("\n")

	return &Report{Title: title, Body: body.String(), Outcome: outcome, Degraded: degraded}, nil
}

// fundDataSection computes the locally derived figures for a fund.
func (g *Generator) fundDataSection(fund models.Fund) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fund: %s (vintage %d, %s)\n", fund.Name, fund.Vintage, fund.Strategy)
	fmt.Fprintf(&b, "Committed: $%.1fM, called: $%.1fM (%.0f%%)\n",
		fund.Committed/1e6, fund.Called/1e6, finance.CalledRatio(fund)*100)
	fmt.Fprintf(&b, "NAV: $%.1fM (%.2f per committed dollar)\n",
		finance.NAV(fund)/1e6, finance.NAVPerCommitted(fund))
	fmt.Fprintf(&b, "Annual management fee: $%.2fM\n", finance.AnnualManagementFee(fund)/1e6)

	deals := g.store.Deals(fund.ID)
	if len(deals) > 0 {
		active, watchlist := 0, 0
		var principal float64
		for _, d := range deals {
			switch d.Status {
			case models.DealActive:
				active++
				principal += d.Principal
			case models.DealWatchlist:
				watchlist++
				principal += d.Principal
			}
		}
		fmt.Fprintf(&b, "Positions: %d total, %d active, %d on watchlist, $%.1fM outstanding principal\n",
			len(deals), active, watchlist, principal/1e6)
	}

	if flows := g.store.Cashflows(fund.ID); len(flows) > 1 {
		if irr, err := finance.IRR(flows); err == nil {
			fmt.Fprintf(&b, "Since-inception IRR: %.1f%%\n", irr*100)
		}
	}
	return b.String()
}

func isExhausted(err error) bool {
	var exhausted *dispatch.ExhaustedError
	return errors.As(err, &exhausted)
}

func quarterLabel(t time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}
