package savings

import (
	"time"

	"github.com/etnz/savings/date"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to create a date
func day(y int, m time.Month, d int) date.Date { return date.New(y, m, d) }

// buy is a fee free Buy of qty at unit price, in EUR.
func buy(on date.Date, ticker string, qty, price float64) Transaction {
	return NewBuy(on, ticker, Q(qty), EUR(price), EUR(0), EUR(0))
}

// sell is a fee free Sell of qty at unit price, in EUR.
func sell(on date.Date, ticker string, qty, price float64) Transaction {
	return NewSell(on, ticker, Q(qty), EUR(price), EUR(0))
}
