package savings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/etnz/savings/date"
	"github.com/shopspring/decimal"
)

// memStore is an in memory Store.
type memStore struct {
	accounts     []Account
	transactions map[string][]Transaction
	values       map[string][]AnnualValue
	balances     map[string][]BalanceRecord
	deposits     map[string][]Deposit
	broken       map[string]bool
}

func (s *memStore) Accounts(ctx context.Context) ([]Account, error) { return s.accounts, nil }

func (s *memStore) Account(ctx context.Context, id string) (Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("%q: %w", id, ErrAccountNotFound)
}

func (s *memStore) Transactions(ctx context.Context, id string) ([]Transaction, error) {
	if s.broken[id] {
		return nil, errors.New("corrupted ledger")
	}
	return s.transactions[id], nil
}

func (s *memStore) AnnualValues(ctx context.Context, id string) ([]AnnualValue, error) {
	return s.values[id], nil
}

func (s *memStore) Balances(ctx context.Context, id string) ([]BalanceRecord, error) {
	return s.balances[id], nil
}

func (s *memStore) Deposits(ctx context.Context, id string) ([]Deposit, error) {
	return s.deposits[id], nil
}

// fakeMarket prices from a fixed table and counts batches.
type fakeMarket struct {
	prices  Prices
	rates   Rates
	batches [][]string
}

func (m *fakeMarket) FetchPrices(ctx context.Context, tickers []string) (Prices, error) {
	m.batches = append(m.batches, tickers)
	res := make(Prices)
	var errs []error
	for _, t := range tickers {
		if p, ok := m.prices[t]; ok {
			res[t] = p
		} else {
			errs = append(errs, fmt.Errorf("no quote for %q", t))
		}
	}
	return res, errors.Join(errs...)
}

func (m *fakeMarket) FetchRates(ctx context.Context, pairs []string) (Rates, error) {
	res := make(Rates)
	for _, p := range pairs {
		if r, ok := m.rates[p]; ok {
			res[p] = r
		}
	}
	return res, nil
}

func newTestEngine(on date.Date) (*Engine, *memStore, *fakeMarket) {
	store := &memStore{
		accounts: []Account{
			{ID: "pea", Name: "PEA", Kind: PEA, Currency: "EUR"},
			{ID: "cto", Name: "CTO", Kind: PEA, Currency: "EUR"},
			{ID: "cc", Name: "Checking", Kind: CompteCourant, Currency: "EUR"},
		},
		transactions: map[string][]Transaction{
			"pea": {
				buy(day(2023, time.January, 10), "CW8", 5, 100),
				buy(day(2023, time.June, 10), "CW8", 5, 120),
			},
			"cto": {
				buy(day(2024, time.January, 10), "AAPL", 2, 150),
				buy(day(2024, time.January, 10), "MSFT", 1, 300),
			},
		},
		values: map[string][]AnnualValue{
			"pea": {{Year: 2023, EndValue: EUR(1300)}},
		},
		balances: map[string][]BalanceRecord{
			"cc": {{Date: day(2024, time.March, 1), Balance: EUR(700)}},
		},
		broken: map[string]bool{},
	}
	market := &fakeMarket{
		prices: Prices{"CW8": EUR(150), "AAPL": USD(200)},
		rates:  Rates{"USDEUR": decimal.RequireFromString("0.9")},
	}
	e := NewEngine(store, market, market)
	e.Today = func() date.Date { return on }
	return e, store, market
}

func TestEngineSummary(t *testing.T) {
	e, _, _ := newTestEngine(day(2024, time.June, 30))
	ctx := context.Background()

	s, err := e.Summary(ctx, "pea")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if want := EUR(1500); !s.CurrentValue.Equal(want) {
		t.Errorf("Summary().CurrentValue = %v, want %v", s.CurrentValue, want)
	}
	if !s.XIRR.OK() || !s.CurrentYearXIRR.OK() {
		t.Errorf("Summary() XIRR = %v, current year = %v, want both", s.XIRR, s.CurrentYearXIRR)
	}

	if _, err := e.Summary(ctx, "nope"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Summary(nope) error = %v, want ErrAccountNotFound", err)
	}
}

func TestEngineConvertsForeignPrices(t *testing.T) {
	e, _, _ := newTestEngine(day(2024, time.June, 30))
	positions, err := e.Positions(context.Background(), "cto")
	if err != nil {
		t.Fatalf("Positions() error = %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("Positions() = %d, want 2", len(positions))
	}
	aapl, msft := positions[0], positions[1]
	if !aapl.Valued || !aapl.CurrentPrice.Equal(EUR(180)) {
		t.Errorf("AAPL price = %v valued=%v, want 180 EUR", aapl.CurrentPrice, aapl.Valued)
	}
	if msft.Valued {
		t.Errorf("MSFT is valued without a quote")
	}
}

func TestEngineAnnualXIRR(t *testing.T) {
	e, _, _ := newTestEngine(day(2024, time.June, 30))
	got, err := e.AnnualXIRR(context.Background(), "pea")
	if err != nil {
		t.Fatalf("AnnualXIRR() error = %v", err)
	}
	if len(got) != 2 || got[0].Year != 2023 || got[1].Year != 2024 {
		t.Errorf("AnnualXIRR() = %v, want 2023 and 2024", got)
	}

	rows, err := e.AnnualOverview(context.Background(), "pea")
	if err != nil {
		t.Fatalf("AnnualOverview() error = %v", err)
	}
	if len(rows) != 2 || !rows[1].EndValue.Equal(EUR(1500)) {
		t.Errorf("AnnualOverview() = %+v, want 2024 at its live value", rows)
	}
}

func TestEngineNetWorth(t *testing.T) {
	e, store, market := newTestEngine(day(2024, time.June, 30))
	store.accounts = append(store.accounts, Account{ID: "bad", Name: "Bad", Kind: PEA, Currency: "EUR"})
	store.broken["bad"] = true

	n, err := e.NetWorth(context.Background(), "EUR")
	if err != nil {
		t.Fatalf("NetWorth() error = %v", err)
	}

	if len(market.batches) != 1 {
		t.Errorf("NetWorth() fetched prices %d times, want a single batch", len(market.batches))
	}
	if want := []string{"AAPL", "CW8", "MSFT"}; !slices.Equal(market.batches[0], want) {
		t.Errorf("NetWorth() fetched %v, want %v", market.batches[0], want)
	}
	// 1500 (pea) + 360 (cto, MSFT unpriced) + 700 (cc)
	if want := EUR(2560); !n.Total.Equal(want) {
		t.Errorf("NetWorth().Total = %v, want %v", n.Total, want)
	}
	var kinds []WarningKind
	for _, w := range n.Warnings {
		kinds = append(kinds, w.Kind)
	}
	if want := []WarningKind{WarningMissingPrices, WarningAccountError}; !slices.Equal(kinds, want) {
		t.Errorf("NetWorth().Warnings = %v, want %v", n.Warnings, want)
	}
}

func TestEngineValuate(t *testing.T) {
	e, _, _ := newTestEngine(day(2024, time.June, 30))
	v, err := e.Valuate(context.Background(), "cc")
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	if !v.CurrentValue.Equal(EUR(700)) {
		t.Errorf("Valuate().CurrentValue = %v, want 700 EUR", v.CurrentValue)
	}
}

func TestEngineCurrencyMismatch(t *testing.T) {
	e, store, _ := newTestEngine(day(2024, time.June, 30))
	ctx := context.Background()
	store.transactions["cto"] = append(store.transactions["cto"],
		NewBuy(day(2024, time.February, 1), "MSFT", Q(1), USD(400), USD(0), USD(0)))
	store.accounts = append(store.accounts, Account{ID: "us", Name: "US", Kind: PEA, Currency: "EUR"})
	store.transactions["us"] = []Transaction{NewBuy(day(2024, time.January, 10), "AAPL", Q(1), USD(150), USD(0), USD(0))}

	for _, id := range []string{"cto", "us"} {
		if _, err := e.Summary(ctx, id); !errors.Is(err, ErrCurrencyMismatch) {
			t.Errorf("Summary(%s) error = %v, want ErrCurrencyMismatch", id, err)
		}
		if _, err := e.Positions(ctx, id); !errors.Is(err, ErrCurrencyMismatch) {
			t.Errorf("Positions(%s) error = %v, want ErrCurrencyMismatch", id, err)
		}
		if _, err := e.Valuate(ctx, id); !errors.Is(err, ErrCurrencyMismatch) {
			t.Errorf("Valuate(%s) error = %v, want ErrCurrencyMismatch", id, err)
		}
	}

	n, err := e.NetWorth(ctx, "EUR")
	if err != nil {
		t.Fatalf("NetWorth() error = %v", err)
	}
	// 1500 (pea) + 700 (cc)
	if want := EUR(2200); !n.Total.Equal(want) {
		t.Errorf("NetWorth().Total = %v, want %v", n.Total, want)
	}
	var failed []string
	for _, w := range n.Warnings {
		if w.Kind == WarningAccountError {
			failed = append(failed, w.AccountID)
		}
	}
	if want := []string{"cto", "us"}; !slices.Equal(failed, want) {
		t.Errorf("NetWorth() failed accounts = %v, want %v", failed, want)
	}
}

func TestEngineNetWorthIsolatesValuation(t *testing.T) {
	e, store, _ := newTestEngine(day(2024, time.June, 30))
	store.accounts = append(store.accounts, Account{ID: "ie", Name: "Interessement", Kind: Interessement, Currency: "EUR"})
	store.deposits = map[string][]Deposit{
		"ie": {
			{ID: "1", DepositDate: day(2022, time.May, 1), Amount: EUR(100), CurrentValue: EUR(110)},
			{ID: "2", DepositDate: day(2023, time.May, 1), Amount: USD(100), CurrentValue: USD(105)},
		},
	}

	if _, err := e.Valuate(context.Background(), "ie"); err == nil {
		t.Errorf("Valuate(ie) succeeded with deposits in two currencies, want an error")
	}

	n, err := e.NetWorth(context.Background(), "EUR")
	if err != nil {
		t.Fatalf("NetWorth() error = %v", err)
	}
	if want := EUR(2560); !n.Total.Equal(want) {
		t.Errorf("NetWorth().Total = %v, want %v", n.Total, want)
	}
	last := n.Warnings[len(n.Warnings)-1]
	if last.AccountID != "ie" || last.Kind != WarningAccountError {
		t.Errorf("NetWorth() last warning = %+v, want an account error for ie", last)
	}
}
