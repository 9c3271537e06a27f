package renderer

import (
	"github.com/etnz/savings"
)

// Annual is the data of the yearly returns report.
type Annual struct {
	Account string      `json:"account"`
	Rows    []AnnualRow `json:"rows"`
}

// AnnualRow is a year of the report.
type AnnualRow struct {
	Year     int          `json:"year"`
	EndValue string       `json:"endValue"`
	XIRR     savings.Rate `json:"xirr"`
}

// NewAnnual creates the yearly returns report of account a.
func NewAnnual(a savings.Account, rows []savings.AnnualRow) *Annual {
	r := &Annual{Account: a.Name}
	for _, row := range rows {
		end := na
		if row.HasEndValue {
			end = row.EndValue.String()
		}
		r.Rows = append(r.Rows, AnnualRow{Year: row.Year, EndValue: end, XIRR: row.XIRR})
	}
	return r
}
