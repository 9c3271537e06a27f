package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
	"github.com/google/subcommands"
)

// appendTransaction validates tx against the account ledger and records it.
func appendTransaction(ctx context.Context, account string, tx savings.Transaction) subcommands.ExitStatus {
	e, d, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := resolveAccount(ctx, e, account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if !a.Brokerage() {
		fmt.Fprintf(os.Stderr, "Error: account %q is a %s, transactions are for brokerage accounts\n", a.ID, a.Kind)
		return subcommands.ExitUsageError
	}
	if tx.Currency() == "" {
		tx = inCurrency(tx, a.Currency)
	}
	txs, err := d.Transactions(ctx, a.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := savings.ValidateLedger(append(txs, tx)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tx, err = d.AddTransaction(ctx, a.ID, tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %s on %s into %s (id %s)\n", tx.Type, tx.TotalAmount, tx.Date, a.ID, tx.ID)
	return subcommands.ExitSuccess
}

// inCurrency sets the currency of the amounts of tx.
func inCurrency(tx savings.Transaction, cur string) savings.Transaction {
	tx.UnitPrice = tx.UnitPrice.In(cur)
	tx.Fees = tx.Fees.In(cur)
	tx.TTF = tx.TTF.In(cur)
	tx.TotalAmount = tx.TotalAmount.In(cur)
	return tx
}

// txFlags are the flags common to all transactions.
type txFlags struct {
	account  string
	date     string
	currency string
	isin     string
	name     string
}

func (c *txFlags) set(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account. Defaults to the default account.")
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "", "Currency of the amounts. Defaults to the account currency.")
	f.StringVar(&c.isin, "isin", "", "Security ISIN")
	f.StringVar(&c.name, "name", "", "Security name")
}

func (c *txFlags) day() (date.Date, error) { return date.Parse(c.date) }

func (c *txFlags) money(v float64) savings.Money { return savings.M(v, c.currency) }

// --- Buy Command ---

type buyCmd struct {
	txFlags
	security string
	quantity float64
	price    float64
	fees     float64
	ttf      float64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares to open or add to a position" }
func (*buyCmd) Usage() string {
	return `sav buy [-a <account>] -d <date> -s <ticker> -q <quantity> -p <price> [-fees <fees>] [-ttf <tax>]

  Records a purchase. The total cost is quantity×price plus fees and tax.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.StringVar(&c.security, "s", "", "Security ticker")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share")
	f.Float64Var(&c.fees, "fees", 0, "Brokerage fees")
	f.Float64Var(&c.ttf, "ttf", 0, "Financial transaction tax")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity <= 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := c.day()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := savings.NewBuy(day, c.security, savings.Q(c.quantity), c.money(c.price), c.money(c.fees), c.money(c.ttf))
	tx.ISIN, tx.AssetName = c.isin, c.name
	return appendTransaction(ctx, c.account, tx)
}

// --- Sell Command ---

type sellCmd struct {
	txFlags
	security string
	quantity float64
	price    float64
	fees     float64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares to trim or close a position" }
func (*sellCmd) Usage() string {
	return `sav sell [-a <account>] -d <date> -s <ticker> -q <quantity> -p <price> [-fees <fees>]

  Records a sale. The proceeds are quantity×price minus fees. Selling more than
  held is rejected.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.StringVar(&c.security, "s", "", "Security ticker")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share")
	f.Float64Var(&c.fees, "fees", 0, "Brokerage fees")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.quantity <= 0 || c.price < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := c.day()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := savings.NewSell(day, c.security, savings.Q(c.quantity), c.money(c.price), c.money(c.fees))
	tx.ISIN, tx.AssetName = c.isin, c.name
	return appendTransaction(ctx, c.account, tx)
}

// --- Dividend and Fee Commands ---

// cashCmd records a cash movement tied to an optional security.
type cashCmd struct {
	txFlags
	kind     savings.TransactionType
	security string
	amount   float64
}

func (c *cashCmd) Name() string {
	if c.kind == savings.Dividend {
		return "dividend"
	}
	return "fee"
}

func (c *cashCmd) Synopsis() string {
	if c.kind == savings.Dividend {
		return "record a dividend payment for a security"
	}
	return "record a fee debited from the account"
}

func (c *cashCmd) Usage() string {
	return fmt.Sprintf(`sav %s [-a <account>] -d <date> [-s <ticker>] -x <amount>

  %s.
`, c.Name(), c.Synopsis())
}

func (c *cashCmd) SetFlags(f *flag.FlagSet) {
	c.txFlags.set(f)
	f.StringVar(&c.security, "s", "", "Security ticker")
	f.Float64Var(&c.amount, "x", 0, "Amount")
}

func (c *cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount <= 0 || (c.kind == savings.Dividend && c.security == "") {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := c.day()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	var tx savings.Transaction
	if c.kind == savings.Dividend {
		tx = savings.NewDividend(day, c.security, c.money(c.amount))
	} else {
		tx = savings.NewFee(day, c.security, c.money(c.amount))
	}
	tx.ISIN, tx.AssetName = c.isin, c.name
	return appendTransaction(ctx, c.account, tx)
}
