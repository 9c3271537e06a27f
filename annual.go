package savings

import (
	"log"
	"math"

	"github.com/etnz/savings/date"
)

// AnnualValue is a user checkpoint: the total value of an account at the end
// of a calendar year. There is one per year, the last recorded wins.
type AnnualValue struct {
	Year     int
	EndValue Money
	EndDate  date.Date // informational, segments always close on Dec 31
}

// Segment is the slice of an account history bounded by one calendar year.
//
// Flows start with the synthetic purchase of StartValue on Range.From and end
// with the synthetic sale of EndValue on Range.To.
type Segment struct {
	Year       int
	Range      date.Range
	StartValue Money
	EndValue   Money
	Flows      []CashFlow
}

// YearOutcome is the XIRR outcome of one calendar year.
type YearOutcome struct {
	Year int
	Rate Rate
}

// YearReturn is a computed annual XIRR.
type YearReturn struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// checkpoints indexes values by year, the last one wins.
func checkpoints(values []AnnualValue) map[int]Money {
	m := make(map[int]Money, len(values))
	for _, v := range values {
		m[v.Year] = v.EndValue
	}
	return m
}

// firstYear returns the year of the earliest transaction.
func firstYear(txs []Transaction) (int, bool) {
	if len(txs) == 0 {
		return 0, false
	}
	first := txs[0].Date
	for _, t := range txs[1:] {
		if t.Date.Before(first) {
			first = t.Date
		}
	}
	return first.Year(), true
}

// AnnualSegments partitions the history of an account into calendar years,
// from the year of its first transaction to the year of on.
//
// A year ends at its checkpoint value, or at currentValue for the year of on
// (nil when unknown). It starts at zero for the first year, and at the
// previous year's checkpoint otherwise. Years whose bounds are unknown are
// returned in skipped.
func AnnualSegments(txs []Transaction, values []AnnualValue, currentValue *Money, on date.Date) (segments []Segment, skipped []int) {
	first, ok := firstYear(txs)
	if !ok {
		return nil, nil
	}
	sorted := Chronological(txs)
	ends := checkpoints(values)
	current := on.Year()

	for y := first; y <= current; y++ {
		end, ok := ends[y]
		if !ok && y == current && currentValue != nil {
			end, ok = *currentValue, true
		}
		if !ok {
			skipped = append(skipped, y)
			continue
		}
		var start Money
		if y != first {
			if start, ok = ends[y-1]; !ok {
				skipped = append(skipped, y)
				continue
			}
		}

		r := date.Year(y)
		if y == current {
			r.To = on
		}
		flows := []CashFlow{{Amount: -start.Float(), When: r.From}}
		for _, t := range sorted {
			if r.Contains(t.Date) {
				flows = append(flows, t.CashFlow())
			}
		}
		flows = append(flows, CashFlow{Amount: end.Float(), When: r.To})

		segments = append(segments, Segment{Year: y, Range: r, StartValue: start, EndValue: end, Flows: flows})
	}
	return segments, skipped
}

// AnnualOutcomes returns one outcome per calendar year from the first
// transaction year to the year of on. Years that cannot be bounded are
// StatusInsufficientData; the others carry their solver outcome.
func AnnualOutcomes(txs []Transaction, values []AnnualValue, currentValue *Money, on date.Date) []YearOutcome {
	segments, skipped := AnnualSegments(txs, values, currentValue, on)
	first, ok := firstYear(txs)
	if !ok || first > on.Year() {
		return nil
	}
	outcomes := make([]YearOutcome, 0, on.Year()-first+1)
	for y := first; y <= on.Year(); y++ {
		outcomes = append(outcomes, YearOutcome{Year: y, Rate: NoRate})
	}
	for _, y := range skipped {
		log.Printf("annual-xirr-skipped year=%d status=%q", y, StatusInsufficientData)
	}
	for _, s := range segments {
		rate := SolveXIRR(s.Flows)
		if rate.OK() && (math.IsNaN(rate.Value) || math.IsInf(rate.Value, 0)) {
			rate = Rate{Status: StatusNonConvergence}
		}
		if !rate.OK() {
			log.Printf("annual-xirr-skipped year=%d status=%q", s.Year, rate.Status)
		}
		outcomes[s.Year-first].Rate = rate
	}
	return outcomes
}

// BuildAnnualXIRR returns the finite annual XIRRs of the account, in year order.
// Years that could not be computed are omitted.
func BuildAnnualXIRR(txs []Transaction, values []AnnualValue, currentValue *Money, on date.Date) []YearReturn {
	var returns []YearReturn
	for _, o := range AnnualOutcomes(txs, values, currentValue, on) {
		if o.Rate.OK() {
			returns = append(returns, YearReturn{Year: o.Year, Value: o.Rate.Value})
		}
	}
	return returns
}

// AnnualRow is a line of the annual overview of an account.
type AnnualRow struct {
	Year        int
	EndValue    Money
	HasEndValue bool
	XIRR        Rate
}

// AnnualOverview lists every year from the first transaction year (or the year
// of on for an empty ledger) to the year of on, with its end value when known
// and its XIRR when computable.
func AnnualOverview(txs []Transaction, values []AnnualValue, currentValue *Money, on date.Date) []AnnualRow {
	current := on.Year()
	first, ok := firstYear(txs)
	if !ok {
		first = current
	}
	rates := make(map[int]Rate)
	for _, o := range AnnualOutcomes(txs, values, currentValue, on) {
		rates[o.Year] = o.Rate
	}
	ends := checkpoints(values)

	var rows []AnnualRow
	for y := first; y <= current; y++ {
		row := AnnualRow{Year: y, XIRR: NoRate}
		if v, ok := ends[y]; ok {
			row.EndValue, row.HasEndValue = v, true
		} else if y == current && currentValue != nil {
			row.EndValue, row.HasEndValue = *currentValue, true
		}
		if r, ok := rates[y]; ok {
			row.XIRR = r
		}
		rows = append(rows, row)
	}
	return rows
}
