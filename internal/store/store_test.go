package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halsteadcap/fundscribe/pkg/models"
)

func TestAddAndLookupFund(t *testing.T) {
	s := New()
	fund := s.AddFund(models.Fund{Name: "Test Fund I", Committed: 100})
	if fund.ID == "" {
		t.Fatal("expected assigned fund ID")
	}

	got, err := s.Fund(fund.ID)
	if err != nil {
		t.Fatalf("Fund() error: %v", err)
	}
	if got.Name != "Test Fund I" {
		t.Errorf("got name %q, want %q", got.Name, "Test Fund I")
	}

	byName, err := s.FundByName("Test Fund I")
	if err != nil {
		t.Fatalf("FundByName() error: %v", err)
	}
	if byName.ID != fund.ID {
		t.Errorf("FundByName returned ID %s, want %s", byName.ID, fund.ID)
	}
}

func TestLookupMissingRecord(t *testing.T) {
	s := New()
	if _, err := s.Fund("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fund: got %v, want ErrNotFound", err)
	}
	if _, err := s.Deal("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Deal: got %v, want ErrNotFound", err)
	}
	if _, err := s.PartnerByName("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("PartnerByName: got %v, want ErrNotFound", err)
	}
}

func TestDealsFilteredAndSorted(t *testing.T) {
	s := New()
	fundA := s.AddFund(models.Fund{Name: "A"})
	fundB := s.AddFund(models.Fund{Name: "B"})
	s.AddDeal(models.Deal{FundID: fundA.ID, Borrower: "Zephyr Co"})
	s.AddDeal(models.Deal{FundID: fundA.ID, Borrower: "Acme Lending"})
	s.AddDeal(models.Deal{FundID: fundB.ID, Borrower: "Other Fund Deal"})

	deals := s.Deals(fundA.ID)
	if len(deals) != 2 {
		t.Fatalf("got %d deals, want 2", len(deals))
	}
	if deals[0].Borrower != "Acme Lending" || deals[1].Borrower != "Zephyr Co" {
		t.Errorf("deals not sorted by borrower: %q, %q", deals[0].Borrower, deals[1].Borrower)
	}
}

func TestCashflowsReturnsCopy(t *testing.T) {
	s := New()
	fund := s.AddFund(models.Fund{Name: "A"})
	s.AddCashflow(fund.ID, models.Cashflow{Date: time.Now(), Amount: -100})

	flows := s.Cashflows(fund.ID)
	flows[0].Amount = 999

	again := s.Cashflows(fund.ID)
	if again[0].Amount != -100 {
		t.Errorf("store flow mutated through returned slice: %v", again[0].Amount)
	}
}

func TestSeedPopulatesBook(t *testing.T) {
	s := New()
	Seed(s)

	funds := s.Funds()
	if len(funds) != 2 {
		t.Fatalf("got %d funds, want 2", len(funds))
	}

	fund2, err := s.FundByName("Halstead Credit Opportunities II")
	if err != nil {
		t.Fatalf("seed fund missing: %v", err)
	}
	if got := len(s.Deals(fund2.ID)); got != 4 {
		t.Errorf("got %d deals for fund II, want 4", got)
	}
	if got := len(s.Partners(fund2.ID)); got != 2 {
		t.Errorf("got %d partners for fund II, want 2", got)
	}
	if got := len(s.Cashflows(fund2.ID)); got != 6 {
		t.Errorf("got %d cashflows for fund II, want 6", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	fund := s.AddFund(models.Fund{Name: "A"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddDeal(models.Deal{FundID: fund.ID, Borrower: "B"})
		}()
		go func() {
			defer wg.Done()
			s.Deals(fund.ID)
		}()
	}
	wg.Wait()

	if got := len(s.Deals(fund.ID)); got != 20 {
		t.Errorf("got %d deals after concurrent adds, want 20", got)
	}
}
