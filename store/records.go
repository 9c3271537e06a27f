package store

import (
	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// transactionRecord is a ledger line of transactions/<account>.jsonl.
type transactionRecord struct {
	ID          string                  `json:"id"`
	Date        date.Date               `json:"date"`
	Type        savings.TransactionType `json:"type"`
	AssetName   string                  `json:"assetName,omitempty"`
	ISIN        string                  `json:"isin,omitempty"`
	Ticker      string                  `json:"ticker"`
	Quantity    decimal.Decimal         `json:"quantity"`
	UnitPrice   decimal.Decimal         `json:"unitPrice"`
	Fees        decimal.Decimal         `json:"fees"`
	TTF         decimal.Decimal         `json:"ttf"`
	TotalAmount decimal.Decimal         `json:"totalAmount"`
	Currency    string                  `json:"currency,omitempty"`
}

func newTransactionRecord(t savings.Transaction) transactionRecord {
	return transactionRecord{
		ID:          t.ID,
		Date:        t.Date,
		Type:        t.Type,
		AssetName:   t.AssetName,
		ISIN:        t.ISIN,
		Ticker:      t.Ticker,
		Quantity:    t.Quantity.Decimal(),
		UnitPrice:   t.UnitPrice.Decimal(),
		Fees:        t.Fees.Decimal(),
		TTF:         t.TTF.Decimal(),
		TotalAmount: t.TotalAmount.Decimal(),
		Currency:    t.Currency(),
	}
}

// transaction decodes the record, amounts without currency are in cur.
func (r transactionRecord) transaction(cur string) savings.Transaction {
	if r.Currency != "" {
		cur = r.Currency
	}
	return savings.Transaction{
		ID:          r.ID,
		Date:        r.Date,
		Type:        r.Type,
		AssetName:   r.AssetName,
		ISIN:        r.ISIN,
		Ticker:      r.Ticker,
		Quantity:    savings.Q(r.Quantity),
		UnitPrice:   savings.M(r.UnitPrice, cur),
		Fees:        savings.M(r.Fees, cur),
		TTF:         savings.M(r.TTF, cur),
		TotalAmount: savings.M(r.TotalAmount, cur),
	}
}

// configRecord holds the kind specific settings of an account.
type configRecord struct {
	OpeningDate         date.Date       `json:"opening_date,omitzero"`
	GrossRate           decimal.Decimal `json:"gross_rate,omitzero"`
	CurrentRate         decimal.Decimal `json:"current_rate,omitzero"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution,omitzero"`
	LastAnnualYield     decimal.Decimal `json:"last_annual_yield,omitzero"`
	LockYears           int             `json:"lock_years,omitempty"`
}

// accountRecord is an entry of accounts.json.
type accountRecord struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Kind        savings.AccountKind `json:"type"`
	Description string              `json:"description,omitempty"`
	Currency    string              `json:"currency"`
	Default     bool                `json:"isDefault,omitempty"`
	Config      *configRecord       `json:"config,omitempty"`
}

func newAccountRecord(a savings.Account) accountRecord {
	r := accountRecord{
		ID:          a.ID,
		Name:        a.Name,
		Kind:        a.Kind,
		Description: a.Description,
		Currency:    a.Currency,
		Default:     a.Default,
	}
	if c := a.Config; c != nil {
		r.Config = &configRecord{
			OpeningDate:         c.OpeningDate,
			GrossRate:           c.GrossRate,
			CurrentRate:         c.CurrentRate,
			MonthlyContribution: c.MonthlyContribution.Decimal(),
			LastAnnualYield:     c.LastAnnualYield,
			LockYears:           c.LockYears,
		}
	}
	return r
}

func (r accountRecord) account() savings.Account {
	a := savings.Account{
		ID:          r.ID,
		Name:        r.Name,
		Kind:        r.Kind,
		Description: r.Description,
		Currency:    r.Currency,
		Default:     r.Default,
	}
	if c := r.Config; c != nil {
		a.Config = &savings.AccountConfig{
			OpeningDate:         c.OpeningDate,
			GrossRate:           c.GrossRate,
			CurrentRate:         c.CurrentRate,
			MonthlyContribution: savings.M(c.MonthlyContribution, r.Currency),
			LastAnnualYield:     c.LastAnnualYield,
			LockYears:           c.LockYears,
		}
	}
	return a
}

// annualValueRecord is an entry of annual-values/<account>.json.
type annualValueRecord struct {
	Year     int             `json:"year"`
	EndValue decimal.Decimal `json:"endValue"`
	EndDate  date.Date       `json:"endDate,omitzero"`
}

func newAnnualValueRecord(v savings.AnnualValue) annualValueRecord {
	return annualValueRecord{Year: v.Year, EndValue: v.EndValue.Decimal(), EndDate: v.EndDate}
}

func (r annualValueRecord) annualValue(cur string) savings.AnnualValue {
	return savings.AnnualValue{Year: r.Year, EndValue: savings.M(r.EndValue, cur), EndDate: r.EndDate}
}

// balanceRecord is an entry of balances/<account>.json.
type balanceRecord struct {
	Date    date.Date       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// depositRecord is an entry of deposits/<account>.json.
type depositRecord struct {
	ID            string          `json:"id"`
	DepositDate   date.Date       `json:"deposit_date"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Strategy      string          `json:"strategy"`
	LockEndDate   date.Date       `json:"lock_end_date"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	ValueDate     date.Date       `json:"value_date"`
}

func newDepositRecord(d savings.Deposit) depositRecord {
	return depositRecord{
		ID:            d.ID,
		DepositDate:   d.DepositDate,
		DepositAmount: d.Amount.Decimal(),
		Strategy:      d.Strategy,
		LockEndDate:   d.LockEnd,
		CurrentValue:  d.CurrentValue.Decimal(),
		ValueDate:     d.ValueDate,
	}
}

func (r depositRecord) deposit(cur string) savings.Deposit {
	return savings.Deposit{
		ID:           r.ID,
		DepositDate:  r.DepositDate,
		Amount:       savings.M(r.DepositAmount, cur),
		Strategy:     r.Strategy,
		LockEnd:      r.LockEndDate,
		CurrentValue: savings.M(r.CurrentValue, cur),
		ValueDate:    r.ValueDate,
	}
}
