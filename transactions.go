package savings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/savings/date"
)

// TransactionType identifies what a ledger entry does.
type TransactionType string

// Transaction types recorded in an account ledger.
const (
	Buy      TransactionType = "Buy"
	Sell     TransactionType = "Sell"
	Dividend TransactionType = "Dividend"
	Fee      TransactionType = "Fee"
)

// ParseTransactionType parses a transaction type, ignoring case.
func ParseTransactionType(s string) (TransactionType, error) {
	for _, t := range []TransactionType{Buy, Sell, Dividend, Fee} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is a single immutable ledger entry of an account.
//
// TotalAmount is always a positive magnitude: the sign of the cash movement
// is derived from Type by CashFlow.
type Transaction struct {
	ID          string
	Date        date.Date
	Type        TransactionType
	Ticker      string
	ISIN        string
	AssetName   string
	Quantity    Quantity
	UnitPrice   Money
	Fees        Money
	TTF         Money // financial transaction tax, paid on buys
	TotalAmount Money
}

// NewBuy creates a Buy transaction. The total cost is quantity×unitPrice plus fees and tax.
func NewBuy(on date.Date, ticker string, quantity Quantity, unitPrice, fees, ttf Money) Transaction {
	return Transaction{
		Date:        on,
		Type:        Buy,
		Ticker:      ticker,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Fees:        fees,
		TTF:         ttf,
		TotalAmount: unitPrice.Mul(quantity).Add(fees).Add(ttf),
	}
}

// NewSell creates a Sell transaction. The total proceeds are quantity×unitPrice minus fees.
func NewSell(on date.Date, ticker string, quantity Quantity, unitPrice, fees Money) Transaction {
	return Transaction{
		Date:        on,
		Type:        Sell,
		Ticker:      ticker,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Fees:        fees,
		TotalAmount: unitPrice.Mul(quantity).Sub(fees),
	}
}

// NewDividend creates a Dividend transaction crediting amount for ticker.
func NewDividend(on date.Date, ticker string, amount Money) Transaction {
	return Transaction{Date: on, Type: Dividend, Ticker: ticker, TotalAmount: amount.Abs()}
}

// NewFee creates a Fee transaction debiting amount from the account.
func NewFee(on date.Date, ticker string, amount Money) Transaction {
	return Transaction{Date: on, Type: Fee, Ticker: ticker, TotalAmount: amount.Abs()}
}

// CashFlow returns the transaction seen from the investor: buys and fees are
// money leaving (negative), sells and dividends are money returned (positive).
func (t Transaction) CashFlow() CashFlow {
	amount := t.TotalAmount.Abs().Float()
	switch t.Type {
	case Buy, Fee:
		amount = -amount
	}
	return CashFlow{Amount: amount, When: t.Date}
}

// Currency returns the currency of the transaction amounts.
func (t Transaction) Currency() string { return t.TotalAmount.Currency() }

// LedgerCurrency returns the currency of the earliest transaction of txs
// that has one, or "".
func LedgerCurrency(txs []Transaction) string {
	for _, t := range Chronological(txs) {
		if c := t.Currency(); c != "" {
			return c
		}
	}
	return ""
}

// Chronological returns a copy of txs sorted by date. Transactions on the
// same day keep their original relative order.
func Chronological(txs []Transaction) []Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	return sorted
}

// Tickers returns the distinct tickers traded in txs, sorted.
func Tickers(txs ...[]Transaction) []string {
	var tickers []string
	for _, list := range txs {
		for _, t := range list {
			if t.Ticker != "" && !slices.Contains(tickers, t.Ticker) {
				tickers = append(tickers, t.Ticker)
			}
		}
	}
	slices.Sort(tickers)
	return tickers
}
