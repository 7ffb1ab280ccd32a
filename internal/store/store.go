// Package store provides the in-memory record stores for funds, deals, and
// limited partners. Records live only for the process lifetime; there is no
// persistence layer.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = fmt.Errorf("record not found")

// Store holds the firm's records behind a single lock. Reads return copies;
// callers never hold references into the store's maps.
type Store struct {
	mu        sync.RWMutex
	funds     map[string]models.Fund
	deals     map[string]models.Deal
	partners  map[string]models.LimitedPartner
	cashflows map[string][]models.Cashflow // fund ID -> dated flows
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		funds:     make(map[string]models.Fund),
		deals:     make(map[string]models.Deal),
		partners:  make(map[string]models.LimitedPartner),
		cashflows: make(map[string][]models.Cashflow),
	}
}

// AddFund inserts a fund and returns it with an assigned ID.
func (s *Store) AddFund(fund models.Fund) models.Fund {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fund.ID == "" {
		fund.ID = uuid.NewString()
	}
	s.funds[fund.ID] = fund
	return fund
}

// Fund returns the fund with the given ID.
func (s *Store) Fund(id string) (models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fund, ok := s.funds[id]
	if !ok {
		return models.Fund{}, fmt.Errorf("fund %s: %w", id, ErrNotFound)
	}
	return fund, nil
}

// FundByName returns the fund with the given name.
func (s *Store) FundByName(name string) (models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fund := range s.funds {
		if fund.Name == name {
			return fund, nil
		}
	}
	return models.Fund{}, fmt.Errorf("fund %q: %w", name, ErrNotFound)
}

// Funds returns all funds sorted by name.
func (s *Store) Funds() []models.Fund {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Fund, 0, len(s.funds))
	for _, fund := range s.funds {
		out = append(out, fund)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddDeal inserts a deal and returns it with an assigned ID.
func (s *Store) AddDeal(deal models.Deal) models.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deal.ID == "" {
		deal.ID = uuid.NewString()
	}
	s.deals[deal.ID] = deal
	return deal
}

// Deal returns the deal with the given ID.
func (s *Store) Deal(id string) (models.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deal, ok := s.deals[id]
	if !ok {
		return models.Deal{}, fmt.Errorf("deal %s: %w", id, ErrNotFound)
	}
	return deal, nil
}

// DealByBorrower returns the first deal for the named borrower.
func (s *Store) DealByBorrower(borrower string) (models.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, deal := range s.deals {
		if deal.Borrower == borrower {
			return deal, nil
		}
	}
	return models.Deal{}, fmt.Errorf("deal for borrower %q: %w", borrower, ErrNotFound)
}

// Deals returns the fund's deals sorted by borrower name.
func (s *Store) Deals(fundID string) []models.Deal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Deal
	for _, deal := range s.deals {
		if deal.FundID == fundID {
			out = append(out, deal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Borrower < out[j].Borrower })
	return out
}

// AddPartner inserts a limited partner and returns it with an assigned ID.
func (s *Store) AddPartner(lp models.LimitedPartner) models.LimitedPartner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lp.ID == "" {
		lp.ID = uuid.NewString()
	}
	s.partners[lp.ID] = lp
	return lp
}

// Partner returns the limited partner with the given ID.
func (s *Store) Partner(id string) (models.LimitedPartner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lp, ok := s.partners[id]
	if !ok {
		return models.LimitedPartner{}, fmt.Errorf("partner %s: %w", id, ErrNotFound)
	}
	return lp, nil
}

// PartnerByName returns the limited partner with the given name.
func (s *Store) PartnerByName(name string) (models.LimitedPartner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, lp := range s.partners {
		if lp.Name == name {
			return lp, nil
		}
	}
	return models.LimitedPartner{}, fmt.Errorf("partner %q: %w", name, ErrNotFound)
}

// Partners returns the fund's limited partners sorted by name.
func (s *Store) Partners(fundID string) []models.LimitedPartner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LimitedPartner
	for _, lp := range s.partners {
		if lp.FundID == fundID {
			out = append(out, lp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddCashflow appends a dated flow to the fund's history.
func (s *Store) AddCashflow(fundID string, flow models.Cashflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cashflows[fundID] = append(s.cashflows[fundID], flow)
}

// Cashflows returns a copy of the fund's flow history.
func (s *Store) Cashflows(fundID string) []models.Cashflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flows := s.cashflows[fundID]
	out := make([]models.Cashflow, len(flows))
	copy(out, flows)
	return out
}

// Seed populates the store with the demo book: two funds, a handful of
// deals, and a few limited partners with a distribution history.
func Seed(s *Store) {
	date := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}

	fund2 := s.AddFund(models.Fund{
		Name:          "Halstead Credit Opportunities II",
		Vintage:       2021,
		Strategy:      "senior secured direct lending",
		Committed:     250_000_000,
		Called:        180_000_000,
		Assets:        212_000_000,
		Liabilities:   14_000_000,
		ManagementFee: 0.02,
		CarryRate:     0.20,
		HurdleRate:    0.08,
	})
	fund3 := s.AddFund(models.Fund{
		Name:          "Halstead Credit Opportunities III",
		Vintage:       2024,
		Strategy:      "opportunistic specialty lending",
		Committed:     400_000_000,
		Called:        95_000_000,
		Assets:        99_000_000,
		Liabilities:   2_500_000,
		ManagementFee: 0.0175,
		CarryRate:     0.20,
		HurdleRate:    0.08,
	})

	s.AddDeal(models.Deal{
		FundID: fund2.ID, Borrower: "Brightline Logistics", Sector: "transportation",
		Principal: 32_000_000, Rate: 0.105, Status: models.DealActive,
		OriginatedAt: date(2021, 6, 15), MaturesAt: date(2026, 6, 15),
	})
	s.AddDeal(models.Deal{
		FundID: fund2.ID, Borrower: "Caldera Foods", Sector: "consumer staples",
		Principal: 24_500_000, Rate: 0.0975, Status: models.DealWatchlist,
		OriginatedAt: date(2022, 2, 1), MaturesAt: date(2027, 2, 1),
	})
	s.AddDeal(models.Deal{
		FundID: fund2.ID, Borrower: "Northgate Medical Partners", Sector: "healthcare",
		Principal: 41_000_000, Rate: 0.112, Status: models.DealActive,
		OriginatedAt: date(2021, 11, 30), MaturesAt: date(2026, 11, 30),
	})
	s.AddDeal(models.Deal{
		FundID: fund2.ID, Borrower: "Quarry Ridge Storage", Sector: "real assets",
		Principal: 18_000_000, Rate: 0.099, Status: models.DealRepaid,
		OriginatedAt: date(2021, 8, 1), MaturesAt: date(2024, 8, 1),
	})
	s.AddDeal(models.Deal{
		FundID: fund3.ID, Borrower: "Veritas Marine Finance", Sector: "shipping",
		Principal: 55_000_000, Rate: 0.128, Status: models.DealActive,
		OriginatedAt: date(2024, 9, 12), MaturesAt: date(2029, 9, 12),
	})

	s.AddPartner(models.LimitedPartner{
		FundID: fund2.ID, Name: "Lakeshore Teachers' Pension",
		Commitment: 75_000_000, Called: 54_000_000, Distributed: 21_000_000,
	})
	s.AddPartner(models.LimitedPartner{
		FundID: fund2.ID, Name: "Meridian Insurance Group",
		Commitment: 50_000_000, Called: 36_000_000, Distributed: 14_000_000,
	})
	s.AddPartner(models.LimitedPartner{
		FundID: fund3.ID, Name: "Alder Family Office",
		Commitment: 40_000_000, Called: 9_500_000, Distributed: 0,
	})

	for _, flow := range []models.Cashflow{
		{Date: date(2021, 6, 15), Amount: -60_000_000},
		{Date: date(2021, 11, 30), Amount: -70_000_000},
		{Date: date(2022, 2, 1), Amount: -50_000_000},
		{Date: date(2023, 8, 1), Amount: 28_000_000},
		{Date: date(2024, 8, 1), Amount: 42_000_000},
		{Date: date(2025, 2, 1), Amount: 18_500_000},
	} {
		s.AddCashflow(fund2.ID, flow)
	}
}
