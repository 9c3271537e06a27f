package savings

import "github.com/etnz/savings/date"

// Summary is the performance snapshot of one account at a date.
type Summary struct {
	Currency      string
	TotalInvested Money // over valued positions only
	CurrentValue  Money // over valued positions only
	TotalGainLoss Money // CurrentValue - TotalInvested
	XIRR          Rate  // lifetime, money-weighted

	// CurrentYearXIRR is set by the Engine; BuildSummary leaves it undefined.
	CurrentYearXIRR Rate

	// MissingPrices lists the held tickers without a price, excluded from the sums.
	MissingPrices []string
	// Mismatched lists the tickers with transactions in another currency than
	// the summary's. Those transactions are excluded from the sums and the XIRR.
	Mismatched []string
	Positions  []Position
}

// Complete reports whether every position could be valued.
func (s Summary) Complete() bool { return len(s.MissingPrices) == 0 && len(s.Mismatched) == 0 }

// GainLossPercent is the total gain relative to the amount invested.
func (s Summary) GainLossPercent() (Percent, bool) {
	r, ok := s.TotalGainLoss.Ratio(s.TotalInvested)
	if !ok {
		return 0, false
	}
	return Ratio(r.InexactFloat64()), true
}

// BuildSummary aggregates the positions of txs valued at prices, and solves the
// lifetime XIRR of the ledger closed by a synthetic sale of the current value on
// the given day.
//
// The summary is in the currency of the earliest transaction; transactions
// in any other currency are reported in Mismatched.
//
// An empty ledger yields zero amounts and an undefined XIRR without solving.
func BuildSummary(txs []Transaction, prices Prices, on date.Date) Summary {
	cur := LedgerCurrency(txs)
	s := Summary{
		Currency:        cur,
		TotalInvested:   M(0, cur),
		CurrentValue:    M(0, cur),
		TotalGainLoss:   M(0, cur),
		XIRR:            NoRate,
		CurrentYearXIRR: NoRate,
	}
	if len(txs) == 0 {
		return s
	}

	s.Positions = BuildPositions(txs, prices)
	for _, p := range s.Positions {
		foreign := p.Currency != "" && p.Currency != cur
		if foreign || p.Mismatched() {
			s.Mismatched = append(s.Mismatched, p.Ticker)
		}
		if foreign {
			continue
		}
		if !p.Valued {
			if !p.Closed() {
				s.MissingPrices = append(s.MissingPrices, p.Ticker)
			}
			continue
		}
		s.TotalInvested = s.TotalInvested.Add(p.TotalInvested)
		s.CurrentValue = s.CurrentValue.Add(p.CurrentValue)
	}
	s.TotalGainLoss = s.CurrentValue.Sub(s.TotalInvested)

	var same []Transaction
	for _, t := range txs {
		if c := t.Currency(); c == "" || c == cur {
			same = append(same, t)
		}
	}
	flows := CashFlows(same)
	flows = append(flows, CashFlow{Amount: s.CurrentValue.Float(), When: on})
	s.XIRR = SolveXIRR(flows)
	return s
}
