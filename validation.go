package savings

import (
	"errors"
	"fmt"
)

var (
	// ErrOversell is reported when a sell exceeds the quantity held at that date.
	ErrOversell = errors.New("sell exceeds held quantity")
	// ErrCurrencyMismatch is reported when a ledger mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// ValidateTransaction checks a single transaction for obvious input errors.
func ValidateTransaction(t Transaction) error {
	var errs []error
	if t.Date.IsZero() {
		errs = append(errs, errors.New("date is missing"))
	}
	switch t.Type {
	case Buy, Sell:
		if t.Ticker == "" {
			errs = append(errs, errors.New("ticker is missing"))
		}
		if !t.Quantity.IsPositive() {
			errs = append(errs, fmt.Errorf("quantity must be positive, got %v", t.Quantity))
		}
	case Dividend, Fee:
	default:
		errs = append(errs, fmt.Errorf("unknown transaction type %q", t.Type))
	}
	if t.TotalAmount.IsNegative() {
		errs = append(errs, fmt.Errorf("total amount must be a positive magnitude, got %v", t.TotalAmount))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid transaction %s %s on %s: %w", t.Type, t.Ticker, t.Date, err)
	}
	return nil
}

// CheckCurrency reports every transaction of txs that is not in currency cur.
// Transactions without a currency are accepted.
func CheckCurrency(txs []Transaction, cur string) error {
	var errs []error
	for _, t := range txs {
		if c := t.Currency(); c != "" && c != cur {
			errs = append(errs, fmt.Errorf("%w: %s %s on %s is in %s, not %s", ErrCurrencyMismatch, t.Type, t.Ticker, t.Date, c, cur))
		}
	}
	return errors.Join(errs...)
}

// ValidateLedger checks every transaction, checks they share a single
// currency, and replays the ledger in date order to detect sells that would
// take a position below zero.
//
// It is meant for callers accepting user input: the analytics functions
// never reject a ledger.
func ValidateLedger(txs []Transaction) error {
	var errs []error
	held := make(map[string]Quantity)
	sorted := Chronological(txs)
	if err := CheckCurrency(sorted, LedgerCurrency(sorted)); err != nil {
		errs = append(errs, err)
	}
	for _, t := range sorted {
		if err := ValidateTransaction(t); err != nil {
			errs = append(errs, err)
			continue
		}
		switch t.Type {
		case Buy:
			held[t.Ticker] = held[t.Ticker].Add(t.Quantity)
		case Sell:
			left := held[t.Ticker].Sub(t.Quantity)
			if left.IsNegative() {
				errs = append(errs, fmt.Errorf("%w: selling %v %s on %s, holding %v", ErrOversell, t.Quantity, t.Ticker, t.Date, held[t.Ticker]))
			}
			held[t.Ticker] = left
		}
	}
	return errors.Join(errs...)
}
