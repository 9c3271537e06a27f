package savings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/etnz/savings/date"
)

// XIRR failures. They are returned wrapped, test them with errors.Is.
var (
	// ErrInsufficientData is returned for fewer than two cash flows, or flows on a single date.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoSignChange is returned when all cash flows have the same sign: no rate can balance them.
	ErrNoSignChange = errors.New("cash flows do not change sign")
	// ErrNonConvergence is returned when no root was found within the step budget.
	ErrNonConvergence = errors.New("xirr did not converge")
)

const (
	xirrGuess      = 0.1
	xirrTolerance  = 1e-7  // on the residual, relative to the flows' magnitude
	rateTolerance  = 1e-10 // on the last step, relative to the rate
	newtonMaxSteps = 100
	bisectMaxSteps = 300
	daysPerYear    = 365.0
)

// bracketGrid is scanned for a sign change of the NPV when Newton's method fails.
var bracketGrid = []float64{-0.999999, -0.99, -0.9, -0.75, -0.5, -0.25, 0, 0.1, 0.25, 0.5, 1, 2, 5, 10, 100, 1e3, 1e4, 1e6}

// XIRR returns the annualized rate r such that
//
//	Σ amount_i / (1+r)^((when_i - when_0)/365) = 0
//
// where when_0 is the earliest date among flows. Flows may be given in any order.
//
// Newton's method is tried first from a 10% guess, and stops when both the
// residual and the last step are small. When it leaves the domain, stalls or
// exceeds its step budget, the NPV is bracketed on a fixed grid of rates and
// the root is bisected down to the same relative precision on the rate.
func XIRR(flows []CashFlow) (float64, error) {
	if len(flows) < 2 {
		return 0, fmt.Errorf("%w: %d cash flow(s)", ErrInsufficientData, len(flows))
	}

	origin := flows[0].When
	for _, f := range flows[1:] {
		if f.When.Before(origin) {
			origin = f.When
		}
	}

	var (
		hasNeg, hasPos bool
		first          date.Date
		distinct       bool
		scale          float64
	)
	years := make([]float64, len(flows))
	amounts := make([]float64, len(flows))
	for i, f := range flows {
		if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) {
			return 0, fmt.Errorf("%w: non finite amount on %s", ErrInsufficientData, f.When)
		}
		years[i] = float64(f.When.Sub(origin)) / daysPerYear
		amounts[i] = f.Amount
		scale += math.Abs(f.Amount)
		switch {
		case f.Amount < 0:
			hasNeg = true
		case f.Amount > 0:
			hasPos = true
		default:
			continue
		}
		if first.IsZero() {
			first = f.When
		} else if f.When != first {
			distinct = true
		}
	}
	if !hasNeg || !hasPos {
		return 0, fmt.Errorf("%w: %d cash flow(s)", ErrNoSignChange, len(flows))
	}
	if !distinct {
		return 0, fmt.Errorf("%w: all cash flows on %s", ErrInsufficientData, first)
	}

	npv := npvFunc(years, amounts)
	tolerance := xirrTolerance * math.Max(1, scale)

	if r, ok := newton(npv, tolerance); ok {
		return r, nil
	}
	if r, ok := bisect(npv); ok {
		return r, nil
	}
	log.Printf("xirr-non-convergence flows=%d from=%s", len(flows), origin)
	return 0, fmt.Errorf("%w: %d cash flow(s) from %s", ErrNonConvergence, len(flows), origin)
}

// npvFunc returns the NPV and its derivative as a function of the rate.
func npvFunc(years, amounts []float64) func(r float64) (f, df float64) {
	return func(r float64) (f, df float64) {
		base := 1 + r
		for i, t := range years {
			d := math.Pow(base, -t)
			f += amounts[i] * d
			df -= t * amounts[i] * d / base
		}
		return f, df
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func newton(npv func(float64) (float64, float64), tolerance float64) (float64, bool) {
	r := xirrGuess
	for range newtonMaxSteps {
		f, df := npv(r)
		if !finite(f) || !finite(df) {
			return 0, false
		}
		if df == 0 {
			return r, f == 0
		}
		step := f / df
		next := r - step
		if math.Abs(f) <= tolerance && math.Abs(step) <= rateTolerance*math.Max(1, math.Abs(r)) {
			return next, true
		}
		if next <= -1 {
			// Stay in the domain: move halfway toward -1 instead.
			next = (r - 1) / 2
		}
		if !finite(next) {
			return 0, false
		}
		r = next
	}
	return 0, false
}

func bisect(npv func(float64) (float64, float64)) (float64, bool) {
	lo, hi, ok := bracket(npv)
	if !ok {
		return 0, false
	}
	flo, _ := npv(lo)
	for range bisectMaxSteps {
		mid := lo + (hi-lo)/2
		f, _ := npv(mid)
		if !finite(f) {
			return 0, false
		}
		if f == 0 || hi-lo <= rateTolerance*math.Max(1, math.Abs(mid)) {
			return mid, true
		}
		if (f < 0) == (flo < 0) {
			lo, flo = mid, f
		} else {
			hi = mid
		}
	}
	return 0, false
}

// bracket finds the interval of bracketGrid with an NPV sign change that is the
// closest to the initial guess.
func bracket(npv func(float64) (float64, float64)) (lo, hi float64, ok bool) {
	best := math.Inf(1)
	prev, fprev := math.NaN(), math.NaN()
	for _, r := range bracketGrid {
		f, _ := npv(r)
		if !finite(f) {
			prev, fprev = math.NaN(), math.NaN()
			continue
		}
		if f == 0 {
			return r, r, true
		}
		if finite(fprev) && (f < 0) != (fprev < 0) {
			d := 0.0
			if xirrGuess < prev {
				d = prev - xirrGuess
			} else if xirrGuess > r {
				d = xirrGuess - r
			}
			if d < best {
				best, lo, hi, ok = d, prev, r, true
			}
		}
		prev, fprev = r, f
	}
	return lo, hi, ok
}

// Status is the outcome of a rate computation.
type Status int

const (
	StatusOK Status = iota
	StatusInsufficientData
	StatusNoSignChange
	StatusNonConvergence
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInsufficientData:
		return "insufficient data"
	case StatusNoSignChange:
		return "no sign change"
	case StatusNonConvergence:
		return "non convergence"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Computable reports whether a value was produced.
func (s Status) Computable() bool { return s == StatusOK }

// StatusOf maps an XIRR error to its Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNoSignChange):
		return StatusNoSignChange
	case errors.Is(err, ErrNonConvergence):
		return StatusNonConvergence
	default:
		return StatusInsufficientData
	}
}

// Rate is the result of an XIRR computation: a value when Status is StatusOK.
type Rate struct {
	Value  float64 // annualized, as a ratio (0.05 for 5%)
	Status Status
}

// NoRate is the rate of an empty computation.
var NoRate = Rate{Status: StatusInsufficientData}

// SolveXIRR runs XIRR and captures its outcome as a Rate.
func SolveXIRR(flows []CashFlow) Rate {
	r, err := XIRR(flows)
	if err != nil {
		return Rate{Status: StatusOf(err)}
	}
	return Rate{Value: r}
}

// OK reports whether the rate holds a value.
func (r Rate) OK() bool { return r.Status.Computable() }

// Percent returns the rate as a percentage.
func (r Rate) Percent() Percent { return Ratio(r.Value) }

// String returns the percentage, or "n/a" when the rate could not be computed.
func (r Rate) String() string {
	if !r.OK() {
		return "n/a"
	}
	return r.Percent().String()
}

// SignedString is like String but with an explicit sign.
func (r Rate) SignedString() string {
	if !r.OK() {
		return "n/a"
	}
	return r.Percent().SignedString()
}

func (r Rate) MarshalJSON() ([]byte, error) {
	type jsonRate struct {
		Value  *float64 `json:"value,omitempty"`
		Status Status   `json:"status"`
	}
	j := jsonRate{Status: r.Status}
	if r.OK() {
		j.Value = &r.Value
	}
	return json.Marshal(j)
}
