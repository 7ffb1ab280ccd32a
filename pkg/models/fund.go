// Package models defines the shared value types for fundscribe: execution
// tiers, dispatch requests and outcomes, and the fund records the report
// generator reads.
package models

import "time"

// Fund is a private lending fund tracked by the firm.
type Fund struct {
	ID            string
	Name          string
	Vintage       int
	Strategy      string
	Committed     float64
	Called        float64
	Assets        float64
	Liabilities   float64
	ManagementFee float64 // annual rate on committed capital, e.g. 0.02
	CarryRate     float64 // carried interest rate above the hurdle, e.g. 0.20
	HurdleRate    float64 // preferred return rate, e.g. 0.08
}

// DealStatus describes where a lending deal sits in its lifecycle.
type DealStatus string

const (
	DealActive    DealStatus = "active"
	DealWatchlist DealStatus = "watchlist"
	DealRepaid    DealStatus = "repaid"
	DealDefaulted DealStatus = "defaulted"
)

// Deal is a single loan position held by a fund.
type Deal struct {
	ID           string
	FundID       string
	Borrower     string
	Sector       string
	Principal    float64
	Rate         float64 // annual coupon, e.g. 0.115
	Status       DealStatus
	OriginatedAt time.Time
	MaturesAt    time.Time
}

// LimitedPartner is an investor in one or more funds.
type LimitedPartner struct {
	ID          string
	Name        string
	FundID      string
	Commitment  float64
	Called      float64
	Distributed float64
}

// Cashflow is a dated cash movement used for IRR approximation.
// Negative amounts are contributions, positive amounts are distributions.
type Cashflow struct {
	Date   time.Time
	Amount float64
}
