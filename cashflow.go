package savings

import "github.com/etnz/savings/date"

// CashFlow is a signed movement of money at a date, seen from the investor.
// A negative amount leaves the investor (a purchase, or an opening valuation
// treated as a notional purchase), a positive amount returns to the investor
// (a sale, a dividend, or a closing valuation).
type CashFlow struct {
	Amount float64
	When   date.Date
}

// CashFlows returns the signed cash flows of txs, in the given order.
func CashFlows(txs []Transaction) []CashFlow {
	flows := make([]CashFlow, 0, len(txs)+2)
	for _, t := range txs {
		flows = append(flows, t.CashFlow())
	}
	return flows
}
