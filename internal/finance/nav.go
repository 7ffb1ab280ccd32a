package finance

import "github.com/halsteadcap/fundscribe/pkg/models"

// NAV returns the fund's net asset value: assets less liabilities.
func NAV(fund models.Fund) float64 {
	return fund.Assets - fund.Liabilities
}

// NAVPerCommitted returns NAV expressed per dollar of committed capital.
// Zero commitments yield zero rather than dividing by zero.
func NAVPerCommitted(fund models.Fund) float64 {
	if fund.Committed == 0 {
		return 0
	}
	return NAV(fund) / fund.Committed
}

// CalledRatio returns the fraction of commitments drawn so far.
func CalledRatio(fund models.Fund) float64 {
	if fund.Committed == 0 {
		return 0
	}
	return fund.Called / fund.Committed
}
