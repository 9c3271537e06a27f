package savings

import (
	"slices"
)

// Prices maps a ticker to its current unit price. A missing key means the
// price is unknown, never zero.
type Prices map[string]Money

// Position is the state of one asset of an account, replayed from its ledger
// with the weighted-average cost method.
type Position struct {
	Ticker   string
	ISIN     string
	Name     string
	Currency string // of the first transaction, "" when none has one

	// Excluded counts transactions in another currency, left out of the position.
	Excluded int

	Quantity      Quantity
	AverageCost   Money // unchanged by sells
	TotalInvested Money // cost basis of the quantity held
	RealizedGain  Money // sell proceeds minus the cost basis of what was sold
	Income        Money // dividends received

	// Valued is false when no price is known for the ticker: the fields below
	// are then meaningless and must not be summed.
	Valued         bool
	CurrentPrice   Money
	CurrentValue   Money
	UnrealizedGain Money
}

// Oversold reports whether sells exceeded buys, leaving a negative quantity.
func (p Position) Oversold() bool { return p.Quantity.IsNegative() }

// Closed reports whether the position holds nothing.
func (p Position) Closed() bool { return p.Quantity.IsZero() }

// UnrealizedPercent returns the unrealized gain relative to the amount
// invested. It is undefined for unvalued positions or a zero basis.
func (p Position) UnrealizedPercent() (Percent, bool) {
	if !p.Valued {
		return 0, false
	}
	r, ok := p.UnrealizedGain.Ratio(p.TotalInvested)
	if !ok {
		return 0, false
	}
	return Ratio(r.InexactFloat64()), true
}

// BuildPosition replays txs for ticker in ascending date order, ties keeping
// their order in txs, and values the result with prices.
//
// A Sell larger than the held quantity is not an error: the quantity goes
// negative and the position is reported as such (see Oversold).
func BuildPosition(txs []Transaction, ticker string, prices Prices) Position {
	pos := Position{Ticker: ticker}
	for _, t := range Chronological(txs) {
		if t.Ticker != ticker {
			continue
		}
		pos.apply(t)
	}
	pos.value(prices)
	return pos
}

// BuildPositions builds one position per ticker found in txs, sorted by ticker.
func BuildPositions(txs []Transaction, prices Prices) []Position {
	sorted := Chronological(txs)
	index := make(map[string]int)
	var positions []Position
	for _, t := range sorted {
		if t.Ticker == "" {
			continue
		}
		i, ok := index[t.Ticker]
		if !ok {
			i = len(positions)
			index[t.Ticker] = i
			positions = append(positions, Position{Ticker: t.Ticker})
		}
		positions[i].apply(t)
	}
	for i := range positions {
		positions[i].value(prices)
	}
	slices.SortFunc(positions, func(a, b Position) int {
		switch {
		case a.Ticker < b.Ticker:
			return -1
		case a.Ticker > b.Ticker:
			return 1
		}
		return 0
	})
	return positions
}

// Mismatched reports whether transactions were left out for their currency.
func (p Position) Mismatched() bool { return p.Excluded > 0 }

func (p *Position) zero() Money { return M(0, p.Currency) }

func (p *Position) apply(t Transaction) {
	if c := t.Currency(); c != "" {
		if p.Currency == "" {
			p.Currency = c
		} else if c != p.Currency {
			p.Excluded++
			return
		}
	}
	if t.ISIN != "" {
		p.ISIN = t.ISIN
	}
	if t.AssetName != "" {
		p.Name = t.AssetName
	}
	total := t.TotalAmount.Abs()
	switch t.Type {
	case Buy:
		if !t.Quantity.IsPositive() {
			return
		}
		held := p.Quantity
		p.Quantity = held.Add(t.Quantity)
		switch {
		case held.IsPositive():
			p.TotalInvested = p.TotalInvested.Add(total)
			p.AverageCost = p.TotalInvested.Div(p.Quantity)
		default:
			// Nothing (or less than nothing) was held: the buy sets a fresh basis.
			p.AverageCost = total.Div(t.Quantity)
			p.TotalInvested = p.zero()
			if p.Quantity.IsPositive() {
				p.TotalInvested = p.AverageCost.Mul(p.Quantity)
			}
		}

	case Sell:
		if !t.Quantity.IsPositive() {
			return
		}
		cost := p.AverageCost.Mul(t.Quantity)
		p.RealizedGain = p.RealizedGain.Add(total.Sub(cost))
		p.Quantity = p.Quantity.Sub(t.Quantity)
		if p.Quantity.IsPositive() {
			p.TotalInvested = p.TotalInvested.Sub(cost)
		} else {
			p.TotalInvested = p.zero()
		}

	case Dividend:
		p.Income = p.Income.Add(total)
	}
}

func (p *Position) value(prices Prices) {
	price, ok := prices[p.Ticker]
	if !ok {
		return
	}
	if c := p.Currency; c != "" && price.Currency() != "" && c != price.Currency() {
		// A price in another currency cannot value this position.
		return
	}
	p.Valued = true
	p.CurrentPrice = price
	p.CurrentValue = price.Mul(p.Quantity)
	p.UnrealizedGain = price.Sub(p.AverageCost).Mul(p.Quantity)
}
