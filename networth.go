package savings

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rates holds exchange rates keyed by currency pair: Rates["USDEUR"] is the
// price of one USD in EUR.
type Rates map[string]decimal.Decimal

// Pair returns the key of the rate converting from into to.
func Pair(from, to string) string { return from + to }

// Convert converts m into currency to, using the direct pair or else the
// inverse of the reverse pair. Amounts without a currency are taken as
// already in to.
func (r Rates) Convert(m Money, to string) (Money, bool) {
	from := m.Currency()
	if from == "" || from == to {
		return m.In(to), true
	}
	if rate, ok := r[Pair(from, to)]; ok && rate.IsPositive() {
		return Money{value: m.value.Mul(rate), cur: to}, true
	}
	if rate, ok := r[Pair(to, from)]; ok && rate.IsPositive() {
		return Money{value: m.value.Div(rate), cur: to}, true
	}
	return Money{}, false
}

// WarningKind classifies data quality issues of a net worth.
type WarningKind string

const (
	WarningMissingPrices WarningKind = "missing-prices" // included with a partial value
	WarningMissingRate   WarningKind = "missing-rate"   // excluded from the total
	WarningAccountError  WarningKind = "account-error"  // excluded from the total
)

// Warning flags an account whose contribution to the net worth is partial or missing.
type Warning struct {
	AccountID string      `json:"accountId"`
	Kind      WarningKind `json:"kind"`
	Message   string      `json:"message"`
	Tickers   []string    `json:"tickers,omitempty"`
}

func (w Warning) String() string { return w.Message }

// AccountNetWorth is the contribution of one account to the net worth.
type AccountNetWorth struct {
	Valuation
	Value    Money // CurrentValue in the net worth currency
	Included bool
}

// NetWorth is the consolidated value of all accounts.
type NetWorth struct {
	Currency string
	Total    Money
	Accounts []AccountNetWorth
	Warnings []Warning
}

// Complete reports whether the total has no known gap.
func (n NetWorth) Complete() bool { return len(n.Warnings) == 0 }

// Warn records an account that could not be valued at all.
func (n *NetWorth) Warn(accountID string, err error) {
	n.Warnings = append(n.Warnings, Warning{
		AccountID: accountID,
		Kind:      WarningAccountError,
		Message:   fmt.Sprintf("%s: %v", accountID, err),
	})
}

// AggregateNetWorth sums the current values of valuations in currency.
//
// Accounts valued with missing prices still contribute their partial value,
// and are reported in Warnings. Accounts in another currency without a rate
// are listed but excluded from the total, and reported too.
func AggregateNetWorth(valuations []Valuation, currency string, rates Rates) NetWorth {
	n := NetWorth{Currency: currency, Total: M(0, currency)}
	for _, v := range valuations {
		a := AccountNetWorth{Valuation: v}
		if len(v.MissingPrices) > 0 {
			n.Warnings = append(n.Warnings, Warning{
				AccountID: v.AccountID,
				Kind:      WarningMissingPrices,
				Message:   fmt.Sprintf("%s: no price for %s", v.AccountName, strings.Join(v.MissingPrices, ", ")),
				Tickers:   v.MissingPrices,
			})
		}
		value, ok := rates.Convert(v.CurrentValue, currency)
		if !ok {
			n.Warnings = append(n.Warnings, Warning{
				AccountID: v.AccountID,
				Kind:      WarningMissingRate,
				Message:   fmt.Sprintf("%s: no %s rate, excluded from total", v.AccountName, Pair(v.CurrentValue.Currency(), currency)),
			})
		} else {
			a.Value = value.Round(2)
			a.Included = true
			n.Total = n.Total.Add(a.Value)
		}
		n.Accounts = append(n.Accounts, a)
	}
	return n
}
