package savings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/etnz/savings/date"
)

// ErrAccountNotFound is returned by a Store for an unknown account id.
var ErrAccountNotFound = errors.New("account not found")

// Store gives read access to the recorded data of accounts.
type Store interface {
	Accounts(ctx context.Context) ([]Account, error)
	Account(ctx context.Context, id string) (Account, error)
	Transactions(ctx context.Context, id string) ([]Transaction, error)
	AnnualValues(ctx context.Context, id string) ([]AnnualValue, error)
	Balances(ctx context.Context, id string) ([]BalanceRecord, error)
	Deposits(ctx context.Context, id string) ([]Deposit, error)
}

// PriceFetcher returns the current prices of tickers.
//
// It is best effort: tickers it could not price are missing from the result,
// and the error, if any, describes them. A non nil error with a non empty
// result is a partial success.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, tickers []string) (Prices, error)
}

// RateFetcher returns the exchange rates of currency pairs (see Pair), best effort.
type RateFetcher interface {
	FetchRates(ctx context.Context, pairs []string) (Rates, error)
}

// Engine computes analytics of the accounts of a Store, pricing them with the
// fetchers. Every call reads the store again, nothing is cached.
type Engine struct {
	store  Store
	prices PriceFetcher
	rates  RateFetcher

	// Today returns the current day, date.Today by default.
	Today func() date.Date
}

// NewEngine creates an Engine. prices and rates may be nil: no price or no rate is then known.
func NewEngine(store Store, prices PriceFetcher, rates RateFetcher) *Engine {
	return &Engine{store: store, prices: prices, rates: rates, Today: date.Today}
}

// fetchPrices fetches tickers in a single batch. Failures are logged and only
// leave the failed tickers out.
func (e *Engine) fetchPrices(ctx context.Context, tickers []string) Prices {
	prices := make(Prices)
	if e.prices == nil || len(tickers) == 0 {
		return prices
	}
	fetched, err := e.prices.FetchPrices(ctx, tickers)
	if err != nil {
		log.Printf("fetch-prices-partial tickers=%d priced=%d err=%q", len(tickers), len(fetched), err)
	}
	for t, p := range fetched {
		prices[t] = p
	}
	return prices
}

func (e *Engine) fetchRates(ctx context.Context, pairs []string) Rates {
	rates := make(Rates)
	if e.rates == nil || len(pairs) == 0 {
		return rates
	}
	fetched, err := e.rates.FetchRates(ctx, pairs)
	if err != nil {
		log.Printf("fetch-rates-partial pairs=%q err=%q", pairs, err)
	}
	for p, r := range fetched {
		rates[p] = r
	}
	return rates
}

// pricePairs returns the currency pairs needed to express prices of tickers in currency.
func pricePairs(prices Prices, tickers []string, currency string) []string {
	var pairs []string
	for _, t := range tickers {
		p, ok := prices[t]
		if !ok || p.Currency() == "" || p.Currency() == currency {
			continue
		}
		if pair := Pair(p.Currency(), currency); !slices.Contains(pairs, pair) {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// pricesIn returns the prices of tickers expressed in currency. Prices that
// cannot be converted are left out, as if unknown.
func pricesIn(prices Prices, tickers []string, currency string, rates Rates) Prices {
	converted := make(Prices, len(tickers))
	for _, t := range tickers {
		p, ok := prices[t]
		if !ok {
			continue
		}
		c, ok := rates.Convert(p, currency)
		if !ok {
			log.Printf("price-currency-unconvertible ticker=%q from=%q to=%q", t, p.Currency(), currency)
			continue
		}
		converted[t] = c
	}
	return converted
}

// accountPrices fetches the prices of the tickers traded in txs, in the account currency.
func (e *Engine) accountPrices(ctx context.Context, a Account, txs []Transaction) Prices {
	tickers := Tickers(txs)
	raw := e.fetchPrices(ctx, tickers)
	rates := e.fetchRates(ctx, pricePairs(raw, tickers, a.Currency))
	return pricesIn(raw, tickers, a.Currency, rates)
}

// Accounts lists the accounts of the store.
func (e *Engine) Accounts(ctx context.Context) ([]Account, error) { return e.store.Accounts(ctx) }

// Account returns the account id, or ErrAccountNotFound.
func (e *Engine) Account(ctx context.Context, id string) (Account, error) { return e.store.Account(ctx, id) }

// ledger loads the account and its transactions.
func (e *Engine) ledger(ctx context.Context, id string) (Account, []Transaction, error) {
	a, err := e.store.Account(ctx, id)
	if err != nil {
		return Account{}, nil, err
	}
	txs, err := e.store.Transactions(ctx, id)
	if err != nil {
		return Account{}, nil, fmt.Errorf("could not read transactions of %q: %w", id, err)
	}
	if err := CheckCurrency(txs, a.Currency); err != nil {
		return Account{}, nil, fmt.Errorf("ledger of %q: %w", id, err)
	}
	return a, txs, nil
}

// Positions returns the current positions of account id, valued at current prices.
func (e *Engine) Positions(ctx context.Context, id string) ([]Position, error) {
	a, txs, err := e.ledger(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildPositions(txs, e.accountPrices(ctx, a, txs)), nil
}

// Summary returns the performance summary of account id, with its
// current year XIRR.
func (e *Engine) Summary(ctx context.Context, id string) (Summary, error) {
	a, txs, err := e.ledger(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	values, err := e.store.AnnualValues(ctx, id)
	if err != nil {
		return Summary{}, fmt.Errorf("could not read annual values of %q: %w", id, err)
	}
	return e.summary(ctx, a, txs, values), nil
}

func (e *Engine) summary(ctx context.Context, a Account, txs []Transaction, values []AnnualValue) Summary {
	on := e.Today()
	s := BuildSummary(txs, e.accountPrices(ctx, a, txs), on)
	if s.Currency == "" {
		s.Currency = a.Currency
		s.TotalInvested = s.TotalInvested.In(a.Currency)
		s.CurrentValue = s.CurrentValue.In(a.Currency)
		s.TotalGainLoss = s.TotalGainLoss.In(a.Currency)
	}
	if len(txs) == 0 {
		return s
	}
	live := s.CurrentValue
	for _, o := range AnnualOutcomes(txs, values, &live, on) {
		if o.Year == on.Year() {
			s.CurrentYearXIRR = o.Rate
		}
	}
	return s
}

// annual loads what the annual return partitioner needs for account id.
func (e *Engine) annual(ctx context.Context, id string) ([]Transaction, []AnnualValue, *Money, error) {
	a, txs, err := e.ledger(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	values, err := e.store.AnnualValues(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not read annual values of %q: %w", id, err)
	}
	var live *Money
	if len(txs) > 0 {
		v := BuildSummary(txs, e.accountPrices(ctx, a, txs), e.Today()).CurrentValue
		live = &v
	}
	return txs, values, live, nil
}

// AnnualXIRR returns the computable annual XIRRs of account id, the current
// year closed at its live value.
func (e *Engine) AnnualXIRR(ctx context.Context, id string) ([]YearReturn, error) {
	txs, values, live, err := e.annual(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildAnnualXIRR(txs, values, live, e.Today()), nil
}

// AnnualOverview returns the yearly rows of account id.
func (e *Engine) AnnualOverview(ctx context.Context, id string) ([]AnnualRow, error) {
	txs, values, live, err := e.annual(ctx, id)
	if err != nil {
		return nil, err
	}
	return AnnualOverview(txs, values, live, e.Today()), nil
}

// accountData loads what Valuate needs for a. Brokerage prices are taken from
// prices, expressed in the account currency with rates.
func (e *Engine) accountData(ctx context.Context, a Account, prices Prices, rates Rates) (AccountData, error) {
	var data AccountData
	switch a.Kind {
	case PEA:
		txs, err := e.store.Transactions(ctx, a.ID)
		if err != nil {
			return data, fmt.Errorf("could not read transactions: %w", err)
		}
		if err := CheckCurrency(txs, a.Currency); err != nil {
			return data, err
		}
		data.Transactions = txs
		data.Prices = pricesIn(prices, Tickers(txs), a.Currency, rates)
	case Interessement:
		deposits, err := e.store.Deposits(ctx, a.ID)
		if err != nil {
			return data, fmt.Errorf("could not read deposits: %w", err)
		}
		data.Deposits = deposits
	default:
		records, err := e.store.Balances(ctx, a.ID)
		if err != nil {
			return data, fmt.Errorf("could not read balances: %w", err)
		}
		data.Balances = Balances(records)
	}
	return data, nil
}

// Valuate returns the valuation of account id.
func (e *Engine) Valuate(ctx context.Context, id string) (Valuation, error) {
	a, err := e.store.Account(ctx, id)
	if err != nil {
		return Valuation{}, err
	}
	var prices Prices
	var rates Rates
	if a.Brokerage() {
		txs, err := e.store.Transactions(ctx, id)
		if err != nil {
			return Valuation{}, fmt.Errorf("could not read transactions of %q: %w", id, err)
		}
		tickers := Tickers(txs)
		prices = e.fetchPrices(ctx, tickers)
		rates = e.fetchRates(ctx, pricePairs(prices, tickers, a.Currency))
	}
	data, err := e.accountData(ctx, a, prices, rates)
	if err != nil {
		return Valuation{}, fmt.Errorf("could not value %q: %w", id, err)
	}
	return valuate(a, data, e.Today())
}

// valuate runs Valuate, reporting a panic as an error of account a.
func valuate(a Account, data AccountData, on date.Date) (v Valuation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("could not value %q: %v", a.ID, r)
		}
	}()
	return Valuate(a, data, on), nil
}

// NetWorth values every account and aggregates them in currency.
//
// Prices of all brokerage accounts are fetched in one batch. An account that
// cannot be read or valued, or whose ledger is not in the account currency,
// is reported as a warning and does not stop the others.
func (e *Engine) NetWorth(ctx context.Context, currency string) (NetWorth, error) {
	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return NetWorth{}, fmt.Errorf("could not list accounts: %w", err)
	}

	var failed NetWorth
	var ledgers [][]Transaction
	for _, a := range accounts {
		if !a.Brokerage() {
			continue
		}
		txs, err := e.store.Transactions(ctx, a.ID)
		if err != nil {
			// reported again when the account is valued
			continue
		}
		ledgers = append(ledgers, txs)
	}
	tickers := Tickers(ledgers...)
	prices := e.fetchPrices(ctx, tickers)

	var pairs []string
	add := func(p ...string) {
		for _, pair := range p {
			if !slices.Contains(pairs, pair) {
				pairs = append(pairs, pair)
			}
		}
	}
	for _, a := range accounts {
		if a.Currency != "" && a.Currency != currency {
			add(Pair(a.Currency, currency))
		}
		if a.Brokerage() {
			add(pricePairs(prices, tickers, a.Currency)...)
		}
	}
	rates := e.fetchRates(ctx, pairs)

	on := e.Today()
	var valuations []Valuation
	for _, a := range accounts {
		data, err := e.accountData(ctx, a, prices, rates)
		if err != nil {
			log.Printf("net-worth-account-failed id=%q err=%q", a.ID, err)
			failed.Warn(a.ID, err)
			continue
		}
		v, err := valuate(a, data, on)
		if err != nil {
			log.Printf("net-worth-account-failed id=%q err=%q", a.ID, err)
			failed.Warn(a.ID, err)
			continue
		}
		valuations = append(valuations, v)
	}

	n := AggregateNetWorth(valuations, currency, rates)
	n.Warnings = append(n.Warnings, failed.Warnings...)
	return n, nil
}
