package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/savings"
)

// Transaction renders a transaction as a short sentence.
func Transaction(tx savings.Transaction) string {
	switch tx.Type {
	case savings.Buy:
		return fmt.Sprintf("Bought %s of %s at %s for %s", tx.Quantity, tx.Ticker, tx.UnitPrice, tx.TotalAmount)
	case savings.Sell:
		return fmt.Sprintf("Sold %s of %s at %s for %s", tx.Quantity, tx.Ticker, tx.UnitPrice, tx.TotalAmount)
	case savings.Dividend:
		return fmt.Sprintf("Dividend of %s for %s", tx.TotalAmount, tx.Ticker)
	case savings.Fee:
		if tx.Ticker == "" {
			return fmt.Sprintf("Fee of %s", tx.TotalAmount)
		}
		return fmt.Sprintf("Fee of %s for %s", tx.TotalAmount, tx.Ticker)
	default:
		return string(tx.Type)
	}
}

// Transactions renders transactions as a markdown table, with their signed cash flow.
func Transactions(txs []savings.Transaction) string {
	var b strings.Builder
	b.WriteString("| Date | Transaction | Cash Flow | ID |\n|:---|:---|---:|:---|\n")
	for _, tx := range txs {
		flow := tx.TotalAmount
		if tx.CashFlow().Amount < 0 {
			flow = flow.Neg()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", tx.Date, Transaction(tx), flow.SignedString(), tx.ID)
	}
	return b.String()
}
