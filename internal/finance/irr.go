package finance

import (
	"errors"
	"math"
	"sort"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// ErrNoIRR is returned when the cashflows admit no rate in the search
// bracket (all contributions, all distributions, or otherwise degenerate).
var ErrNoIRR = errors.New("cashflows admit no internal rate of return")

const (
	irrLowerBound = -0.9999
	irrUpperBound = 10.0
	irrTolerance  = 1e-7
	irrMaxIter    = 200
)

// IRR approximates the annualized internal rate of return of the dated
// cashflows by bisection on the net present value. Contributions are
// negative, distributions positive. At least one of each is required.
func IRR(flows []models.Cashflow) (float64, error) {
	if len(flows) < 2 {
		return 0, ErrNoIRR
	}

	sorted := make([]models.Cashflow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	hasNeg, hasPos := false, false
	for _, f := range sorted {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0, ErrNoIRR
	}

	lo, hi := irrLowerBound, irrUpperBound
	npvLo := npv(sorted, lo)
	npvHi := npv(sorted, hi)
	if npvLo*npvHi > 0 {
		return 0, ErrNoIRR
	}

	for i := 0; i < irrMaxIter; i++ {
		mid := (lo + hi) / 2
		v := npv(sorted, mid)
		if math.Abs(v) < irrTolerance || hi-lo < irrTolerance {
			return mid, nil
		}
		if v*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = v
		}
	}

	return (lo + hi) / 2, nil
}

// npv discounts each flow at the given annual rate using an actual/365 day
// count from the first flow's date.
func npv(sorted []models.Cashflow, rate float64) float64 {
	t0 := sorted[0].Date
	total := 0.0
	for _, f := range sorted {
		years := f.Date.Sub(t0).Hours() / 24 / 365
		total += f.Amount / math.Pow(1+rate, years)
	}
	return total
}
