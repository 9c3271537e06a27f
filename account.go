package savings

import (
	"fmt"
	"strings"

	"github.com/etnz/savings/date"
	"github.com/shopspring/decimal"
)

// AccountKind is the type of a savings account, it decides how it is valued.
type AccountKind string

// Account kinds.
const (
	PEA           AccountKind = "PEA"           // brokerage, valued from positions
	CompteCourant AccountKind = "CompteCourant" // current account, valued at its latest balance
	Interessement AccountKind = "Interessement" // employee savings, valued from deposits
	PEL           AccountKind = "PEL"           // home savings plan, taxed interest
	LivretA       AccountKind = "LivretA"       // regulated savings, tax-free interest
	AssuranceVie  AccountKind = "AssuranceVie"  // life insurance, monthly contributions
)

// AccountKinds lists the known kinds.
var AccountKinds = []AccountKind{PEA, CompteCourant, Interessement, PEL, LivretA, AssuranceVie}

// ParseAccountKind parses a kind, ignoring case.
func ParseAccountKind(s string) (AccountKind, error) {
	for _, k := range AccountKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown account kind %q", s)
}

// Account describes a savings account.
type Account struct {
	ID          string
	Name        string
	Kind        AccountKind
	Currency    string
	Description string
	Default     bool
	Config      *AccountConfig // nil when not configured
}

// Brokerage reports whether the account holds priced assets.
func (a Account) Brokerage() bool { return a.Kind == PEA }

// AccountConfig holds the kind specific parameters of an account.
type AccountConfig struct {
	OpeningDate         date.Date
	GrossRate           decimal.Decimal // PEL, before tax
	CurrentRate         decimal.Decimal // LivretA, net
	MonthlyContribution Money           // AssuranceVie
	LastAnnualYield     decimal.Decimal // AssuranceVie
	LockYears           int             // Interessement
}

// BalanceRecord is a known balance of an account at a date.
type BalanceRecord struct {
	Date    date.Date
	Balance Money
}

// Deposit is a single employee savings deposit and its last known value.
type Deposit struct {
	ID           string
	DepositDate  date.Date
	Amount       Money
	Strategy     string
	LockEnd      date.Date
	CurrentValue Money
	ValueDate    date.Date
}

// Locked reports whether the deposit is still locked on the given day.
func (d Deposit) Locked(on date.Date) bool { return on.Before(d.LockEnd) }

// AccountData gathers what an account is valued from. Only the fields
// relevant to the account kind are used.
type AccountData struct {
	Transactions []Transaction
	Prices       Prices
	Balances     date.History[Money]
	Deposits     []Deposit
}

// Balances indexes records by date, the last record of a day wins.
func Balances(records []BalanceRecord) date.History[Money] {
	var h date.History[Money]
	for _, r := range records {
		h.Append(r.Date, r.Balance)
	}
	return h
}

// Valuation is the value of an account at a date.
type Valuation struct {
	AccountID        string
	AccountName      string
	Kind             AccountKind
	Currency         string
	CurrentValue     Money
	TotalContributed Money
	TotalGainLoss    Money
	GainLossPercent  Percent
	LastUpdated      date.Date
	Estimated        bool     // CurrentValue is projected from older data
	MissingPrices    []string // tickers excluded from CurrentValue
	XIRR             Rate     // brokerage accounts only
}

func newValuation(a Account) Valuation {
	zero := M(0, a.Currency)
	return Valuation{
		AccountID:        a.ID,
		AccountName:      a.Name,
		Kind:             a.Kind,
		Currency:         a.Currency,
		CurrentValue:     zero,
		TotalContributed: zero,
		TotalGainLoss:    zero,
		XIRR:             NoRate,
	}
}

// setGain computes the gain fields from the value and contributions.
func (v *Valuation) setGain() {
	v.TotalGainLoss = v.CurrentValue.Sub(v.TotalContributed)
	if !v.TotalContributed.IsPositive() {
		v.GainLossPercent = 0
		return
	}
	r, _ := v.TotalGainLoss.Ratio(v.TotalContributed)
	v.GainLossPercent = Ratio(r.Round(4).InexactFloat64())
}

// Valuate values account a on the given day.
func Valuate(a Account, data AccountData, on date.Date) Valuation {
	switch a.Kind {
	case PEA:
		return valuateBrokerage(a, data, on)
	case CompteCourant:
		return valuateBalance(a, &data.Balances)
	case Interessement:
		return valuateDeposits(a, data.Deposits)
	case PEL:
		return valuateInterest(a, &data.Balances, on, pelNetRate)
	case LivretA:
		return valuateInterest(a, &data.Balances, on, func(c AccountConfig, _ date.Date) decimal.Decimal { return c.CurrentRate })
	case AssuranceVie:
		return valuateContributions(a, &data.Balances, on)
	default:
		return newValuation(a)
	}
}

func valuateBrokerage(a Account, data AccountData, on date.Date) Valuation {
	v := newValuation(a)
	s := BuildSummary(data.Transactions, data.Prices, on)
	if len(data.Transactions) > 0 {
		v.CurrentValue = s.CurrentValue
		v.TotalContributed = s.TotalInvested
	}
	v.setGain()
	v.LastUpdated = on
	v.MissingPrices = s.MissingPrices
	v.XIRR = s.XIRR
	return v
}

// valuateBalance values the account at its latest balance, with no gain.
func valuateBalance(a Account, balances *date.History[Money]) Valuation {
	v := newValuation(a)
	day, balance, ok := balances.Latest()
	if !ok {
		return v
	}
	v.CurrentValue = balance
	v.TotalContributed = balance
	v.setGain()
	v.LastUpdated = day
	return v
}

func valuateDeposits(a Account, deposits []Deposit) Valuation {
	v := newValuation(a)
	for _, d := range deposits {
		v.TotalContributed = v.TotalContributed.Add(d.Amount)
		v.CurrentValue = v.CurrentValue.Add(d.CurrentValue)
		if d.ValueDate.After(v.LastUpdated) {
			v.LastUpdated = d.ValueDate
		}
	}
	v.setGain()
	return v
}

// PEL interest is taxed at 17.2% for plans opened before 2018 and younger
// than 12 years, at the 30% flat tax otherwise.
var (
	pelReducedTax = decimal.RequireFromString("0.172")
	pelFlatTax    = decimal.RequireFromString("0.30")
)

func pelNetRate(c AccountConfig, on date.Date) decimal.Decimal {
	age := float64(on.Sub(c.OpeningDate)) / 365.25
	tax := pelFlatTax
	if c.OpeningDate.Year() < 2018 && age < 12 {
		tax = pelReducedTax
	}
	return c.GrossRate.Mul(decimal.NewFromInt(1).Sub(tax))
}

// valuateInterest projects the latest balance with simple interest, credited
// yearly, for the fraction of year elapsed since.
func valuateInterest(a Account, balances *date.History[Money], on date.Date, rate func(AccountConfig, date.Date) decimal.Decimal) Valuation {
	if a.Config == nil {
		return valuateBalance(a, balances)
	}
	v := newValuation(a)
	day, balance, ok := balances.Latest()
	if !ok {
		return v
	}
	_, oldest, _ := balances.Earliest()

	days := on.Sub(day)
	fraction := decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(365))
	growth := decimal.NewFromInt(1).Add(rate(*a.Config, on).Mul(fraction))

	v.CurrentValue = balance.MulRate(growth).Round(2)
	v.TotalContributed = oldest
	v.setGain()
	v.LastUpdated = day
	v.Estimated = days > 0
	return v
}

const daysPerMonth = 30.44

// valuateContributions adds the monthly contributions paid since the latest
// balance. Gains are only known from year end statements.
func valuateContributions(a Account, balances *date.History[Money], on date.Date) Valuation {
	if a.Config == nil {
		return valuateBalance(a, balances)
	}
	v := newValuation(a)
	day, balance, ok := balances.Latest()
	if !ok {
		return v
	}
	months := max(0, int64(float64(on.Sub(day))/daysPerMonth))
	estimate := balance
	if c := a.Config.MonthlyContribution; !c.IsZero() {
		estimate = balance.Add(c.Mul(Q(months)))
	}
	v.CurrentValue = estimate.Round(2)
	v.TotalContributed = v.CurrentValue
	v.setGain()
	v.LastUpdated = day
	v.Estimated = months > 0
	return v
}
