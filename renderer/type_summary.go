package renderer

import (
	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
)

// Summary is the data of an account summary report.
type Summary struct {
	Account  string              `json:"account"`
	Kind     savings.AccountKind `json:"kind"`
	Date     date.Date           `json:"date"`
	Currency string              `json:"currency"`

	CurrentValue    savings.Money `json:"currentValue"`
	TotalInvested   savings.Money `json:"totalInvested"`
	TotalGainLoss   savings.Money `json:"totalGainLoss"`
	GainLossPercent string        `json:"gainLossPercent"`
	XIRR            savings.Rate  `json:"xirr"`
	CurrentYearXIRR savings.Rate  `json:"currentYearXirr"`

	Positions     []SummaryPosition `json:"positions"`
	MissingPrices []string          `json:"missingPrices,omitempty"`
	Mismatched    []string          `json:"mismatched,omitempty"`
}

// SummaryPosition is a line of the positions table. Value fields are "n/a"
// when the asset has no price.
type SummaryPosition struct {
	Ticker         string           `json:"ticker"`
	Name           string           `json:"name,omitempty"`
	Quantity       savings.Quantity `json:"quantity"`
	AverageCost    savings.Money    `json:"averageCost"`
	Price          string           `json:"price"`
	Value          string           `json:"value"`
	UnrealizedGain string           `json:"unrealizedGain"`
	Unrealized     string           `json:"unrealized"`
	RealizedGain   savings.Money    `json:"realizedGain"`
}

const na = "n/a"

// NewSummary creates the summary report of account a. Closed positions
// without realized gain are left out.
func NewSummary(a savings.Account, s savings.Summary, on date.Date) *Summary {
	r := &Summary{
		Account:         a.Name,
		Kind:            a.Kind,
		Date:            on,
		Currency:        s.Currency,
		CurrentValue:    s.CurrentValue,
		TotalInvested:   s.TotalInvested,
		TotalGainLoss:   s.TotalGainLoss,
		GainLossPercent: na,
		XIRR:            s.XIRR,
		CurrentYearXIRR: s.CurrentYearXIRR,
		MissingPrices:   s.MissingPrices,
		Mismatched:      s.Mismatched,
	}
	if p, ok := s.GainLossPercent(); ok {
		r.GainLossPercent = p.SignedString()
	}
	for _, p := range s.Positions {
		if p.Closed() && p.RealizedGain.IsZero() {
			continue
		}
		line := SummaryPosition{
			Ticker:         p.Ticker,
			Name:           p.Name,
			Quantity:       p.Quantity,
			AverageCost:    p.AverageCost,
			Price:          na,
			Value:          na,
			UnrealizedGain: na,
			Unrealized:     na,
			RealizedGain:   p.RealizedGain,
		}
		if p.Valued {
			line.Price = p.CurrentPrice.String()
			line.Value = p.CurrentValue.String()
			line.UnrealizedGain = p.UnrealizedGain.SignedString()
		}
		if pct, ok := p.UnrealizedPercent(); ok {
			line.Unrealized = pct.SignedString()
		}
		r.Positions = append(r.Positions, line)
	}
	return r
}
