package api

import (
	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
)

type accountResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Kind        savings.AccountKind `json:"type"`
	Currency    string              `json:"currency"`
	Description string              `json:"description,omitempty"`
	Default     bool                `json:"isDefault,omitempty"`
}

func newAccountResponse(a savings.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Kind:        a.Kind,
		Currency:    a.Currency,
		Description: a.Description,
		Default:     a.Default,
	}
}

// positionResponse leaves value fields out for positions without a price.
type positionResponse struct {
	Ticker         string           `json:"ticker"`
	ISIN           string           `json:"isin,omitempty"`
	Name           string           `json:"name,omitempty"`
	Quantity       savings.Quantity `json:"quantity"`
	AverageCost    savings.Money    `json:"averageCost"`
	TotalInvested  savings.Money    `json:"totalInvested"`
	RealizedGain   savings.Money    `json:"realizedGain"`
	Income         savings.Money    `json:"income"`
	Valued         bool             `json:"valued"`
	CurrentPrice   *savings.Money   `json:"currentPrice,omitempty"`
	CurrentValue   *savings.Money   `json:"currentValue,omitempty"`
	UnrealizedGain *savings.Money   `json:"unrealizedGainLoss,omitempty"`
}

func newPositionResponse(p savings.Position) positionResponse {
	r := positionResponse{
		Ticker:        p.Ticker,
		ISIN:          p.ISIN,
		Name:          p.Name,
		Quantity:      p.Quantity,
		AverageCost:   p.AverageCost,
		TotalInvested: p.TotalInvested,
		RealizedGain:  p.RealizedGain,
		Income:        p.Income,
		Valued:        p.Valued,
	}
	if p.Valued {
		r.CurrentPrice, r.CurrentValue, r.UnrealizedGain = &p.CurrentPrice, &p.CurrentValue, &p.UnrealizedGain
	}
	return r
}

type summaryResponse struct {
	AccountID       string             `json:"accountId"`
	Date            date.Date          `json:"date"`
	Currency        string             `json:"currency"`
	TotalInvested   savings.Money      `json:"totalInvested"`
	CurrentValue    savings.Money      `json:"currentValue"`
	TotalGainLoss   savings.Money      `json:"totalGainLoss"`
	XIRR            savings.Rate       `json:"xirr"`
	CurrentYearXIRR savings.Rate       `json:"currentYearXirr"`
	MissingPrices   []string           `json:"missingPrices,omitempty"`
	Mismatched      []string           `json:"mismatched,omitempty"`
	Positions       []positionResponse `json:"positions"`
}

func newSummaryResponse(id string, on date.Date, s savings.Summary) summaryResponse {
	r := summaryResponse{
		AccountID:       id,
		Date:            on,
		Currency:        s.Currency,
		TotalInvested:   s.TotalInvested,
		CurrentValue:    s.CurrentValue,
		TotalGainLoss:   s.TotalGainLoss,
		XIRR:            s.XIRR,
		CurrentYearXIRR: s.CurrentYearXIRR,
		MissingPrices:   s.MissingPrices,
		Mismatched:      s.Mismatched,
		Positions:       []positionResponse{},
	}
	for _, p := range s.Positions {
		r.Positions = append(r.Positions, newPositionResponse(p))
	}
	return r
}

type annualRowResponse struct {
	Year     int            `json:"year"`
	EndValue *savings.Money `json:"endValue,omitempty"`
	XIRR     savings.Rate   `json:"xirr"`
}

type yearReturnResponse struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

type annualResponse struct {
	AccountID string               `json:"accountId"`
	XIRR      []yearReturnResponse `json:"annualXirr"`
	Rows      []annualRowResponse  `json:"rows"`
}

func newAnnualResponse(id string, rows []savings.AnnualRow) annualResponse {
	r := annualResponse{AccountID: id, XIRR: []yearReturnResponse{}, Rows: []annualRowResponse{}}
	for _, row := range rows {
		line := annualRowResponse{Year: row.Year, XIRR: row.XIRR}
		if row.HasEndValue {
			line.EndValue = &row.EndValue
		}
		r.Rows = append(r.Rows, line)
		if row.XIRR.OK() {
			r.XIRR = append(r.XIRR, yearReturnResponse{Year: row.Year, Value: row.XIRR.Value})
		}
	}
	return r
}

type valuationResponse struct {
	AccountID        string              `json:"accountId"`
	AccountName      string              `json:"accountName"`
	Kind             savings.AccountKind `json:"accountType"`
	CurrentValue     savings.Money       `json:"currentValue"`
	TotalContributed savings.Money       `json:"totalContributed"`
	TotalGainLoss    savings.Money       `json:"totalGainLoss"`
	GainLossPercent  float64             `json:"gainLossPercentage"`
	LastUpdated      date.Date           `json:"lastUpdated,omitzero"`
	Estimated        bool                `json:"isEstimated"`
	MissingPrices    []string            `json:"missingPrices,omitempty"`
}

func newValuationResponse(v savings.Valuation) valuationResponse {
	return valuationResponse{
		AccountID:        v.AccountID,
		AccountName:      v.AccountName,
		Kind:             v.Kind,
		CurrentValue:     v.CurrentValue,
		TotalContributed: v.TotalContributed,
		TotalGainLoss:    v.TotalGainLoss,
		GainLossPercent:  float64(v.GainLossPercent),
		LastUpdated:      v.LastUpdated,
		Estimated:        v.Estimated,
		MissingPrices:    v.MissingPrices,
	}
}

type netWorthAccountResponse struct {
	valuationResponse
	Value    *savings.Money `json:"value,omitempty"`
	Included bool           `json:"included"`
}

type netWorthResponse struct {
	Currency string                    `json:"currency"`
	Total    savings.Money             `json:"total"`
	Accounts []netWorthAccountResponse `json:"accounts"`
	Warnings []savings.Warning         `json:"warnings"`
}

func newNetWorthResponse(n savings.NetWorth) netWorthResponse {
	r := netWorthResponse{
		Currency: n.Currency,
		Total:    n.Total,
		Accounts: []netWorthAccountResponse{},
		Warnings: n.Warnings,
	}
	if r.Warnings == nil {
		r.Warnings = []savings.Warning{}
	}
	for _, a := range n.Accounts {
		line := netWorthAccountResponse{valuationResponse: newValuationResponse(a.Valuation), Included: a.Included}
		if a.Included {
			line.Value = &a.Value
		}
		r.Accounts = append(r.Accounts, line)
	}
	return r
}
