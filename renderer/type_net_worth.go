package renderer

import (
	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
)

// NetWorth is the data of the net worth report.
type NetWorth struct {
	Date     date.Date         `json:"date"`
	Currency string            `json:"currency"`
	Total    savings.Money     `json:"total"`
	Accounts []NetWorthAccount `json:"accounts"`
	Warnings []string          `json:"warnings,omitempty"`
}

// NetWorthAccount is an account line. Value is in the net worth currency.
type NetWorthAccount struct {
	Name      string              `json:"name"`
	Kind      savings.AccountKind `json:"kind"`
	Value     string              `json:"value"`
	GainLoss  savings.Money       `json:"gainLoss"`
	Gain      string              `json:"gain"`
	Estimated bool                `json:"estimated"`
	Included  bool                `json:"included"`
	Updated   string              `json:"updated"`
}

// NewNetWorth creates the net worth report.
func NewNetWorth(n savings.NetWorth, on date.Date) *NetWorth {
	r := &NetWorth{Date: on, Currency: n.Currency, Total: n.Total}
	for _, a := range n.Accounts {
		line := NetWorthAccount{
			Name:      a.AccountName,
			Kind:      a.Kind,
			Value:     na,
			GainLoss:  a.TotalGainLoss,
			Gain:      a.GainLossPercent.SignedString(),
			Estimated: a.Estimated,
			Included:  a.Included,
		}
		if !a.LastUpdated.IsZero() {
			line.Updated = a.LastUpdated.String()
		}
		if a.Included {
			line.Value = a.Value.String()
		}
		r.Accounts = append(r.Accounts, line)
	}
	for _, w := range n.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	return r
}
