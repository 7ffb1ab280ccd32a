// Package finance provides the fee, NAV, and IRR arithmetic embedded into
// report prompts. The formulas are deliberately simple approximations for
// narrative reporting, not accounting-grade calculations.
package finance

import (
	"fmt"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// AnnualManagementFee returns the yearly management fee charged on
// committed capital.
func AnnualManagementFee(fund models.Fund) float64 {
	return fund.Committed * fund.ManagementFee
}

// QuarterlyManagementFee returns one quarter's accrual of the management fee.
func QuarterlyManagementFee(fund models.Fund) float64 {
	return AnnualManagementFee(fund) / 4
}

// CarriedInterest returns the manager's carry on realized profit above the
// preferred return, using a whole-fund (European) waterfall: no carry until
// distributions clear called capital plus the hurdle.
func CarriedInterest(fund models.Fund, distributed float64) float64 {
	hurdleAmount := fund.Called * (1 + fund.HurdleRate)
	excess := distributed - hurdleAmount
	if excess <= 0 {
		return 0
	}
	return excess * fund.CarryRate
}

// FeeSummary is a formatted snapshot of a fund's fee economics, embedded
// into report prompts.
func FeeSummary(fund models.Fund, distributed float64) string {
	return fmt.Sprintf(
		"management fee %.2f%% on $%.0f committed ($%.0f/yr), carry %.0f%% over an %.0f%% hurdle, carried interest to date $%.0f",
		fund.ManagementFee*100, fund.Committed, AnnualManagementFee(fund),
		fund.CarryRate*100, fund.HurdleRate*100, CarriedInterest(fund, distributed),
	)
}
