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

// --- Checkpoint Command ---

type checkpointCmd struct {
	account string
	year    int
	value   float64
	date    string
}

func (*checkpointCmd) Name() string     { return "checkpoint" }
func (*checkpointCmd) Synopsis() string { return "record the year end value of an account" }
func (*checkpointCmd) Usage() string {
	return `sav checkpoint [-a <account>] -y <year> -x <value> [-d <date>]

  Records the value of a brokerage account at the end of a year. Yearly returns
  need the value at the end of the year and of the year before.
`
}

func (c *checkpointCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account. Defaults to the default account.")
	f.IntVar(&c.year, "y", date.Today().Year()-1, "Year")
	f.Float64Var(&c.value, "x", 0, "Value at the end of the year")
	f.StringVar(&c.date, "d", "", "Date the value was observed, informational")
}

func (c *checkpointCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.value < 0 || c.year <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	v := savings.AnnualValue{Year: c.year}
	if c.date != "" {
		on, err := date.Parse(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		v.EndDate = on
	}
	e, d, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := resolveAccount(ctx, e, c.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	v.EndValue = savings.M(c.value, a.Currency)
	if err := d.SetAnnualValue(ctx, a.ID, v); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording year end value: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %d year end value %s for %s\n", v.Year, v.EndValue, a.ID)
	return subcommands.ExitSuccess
}

// --- Balance Command ---

type balanceCmd struct {
	account string
	date    string
	balance float64
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "record the balance of a cash account" }
func (*balanceCmd) Usage() string {
	return `sav balance -a <account> [-d <date>] -x <balance>

  Records the balance of a current account, savings book or plan at a date.
  A balance recorded on the same date is replaced.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account. Defaults to the default account.")
	f.StringVar(&c.date, "d", date.Today().String(), "Balance date")
	f.Float64Var(&c.balance, "x", 0, "Balance")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	e, d, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := resolveAccount(ctx, e, c.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	b := savings.BalanceRecord{Date: on, Balance: savings.M(c.balance, a.Currency)}
	if err := d.AddBalance(ctx, a.ID, b); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording balance: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded balance %s on %s for %s\n", b.Balance, b.Date, a.ID)
	return subcommands.ExitSuccess
}

// --- Deposit Command ---

type depositCmd struct {
	account  string
	date     string
	amount   float64
	strategy string
	value    float64
	valueOn  string
	remove   string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record an employee savings deposit" }
func (*depositCmd) Usage() string {
	return `sav deposit -a <account> [-d <date>] -x <amount> [-strategy <fund>] [-value <value> -value-date <date>]
sav deposit -a <account> -rm <id>

  Records a deposit of an employee savings account. It stays locked for the
  lock years of the account. The current value defaults to the amount.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account. Defaults to the default account.")
	f.StringVar(&c.date, "d", date.Today().String(), "Deposit date")
	f.Float64Var(&c.amount, "x", 0, "Deposited amount")
	f.StringVar(&c.strategy, "strategy", "", "Investment fund")
	f.Float64Var(&c.value, "value", 0, "Current value")
	f.StringVar(&c.valueOn, "value-date", "", "Date of the current value")
	f.StringVar(&c.remove, "rm", "", "Id of a deposit to delete")
}

func (c *depositCmd) deposit(a savings.Account) (savings.Deposit, error) {
	on, err := date.Parse(c.date)
	if err != nil {
		return savings.Deposit{}, err
	}
	dep := savings.Deposit{
		DepositDate:  on,
		Amount:       savings.M(c.amount, a.Currency),
		Strategy:     c.strategy,
		CurrentValue: savings.M(c.amount, a.Currency),
		ValueDate:    on,
	}
	if a.Config != nil && a.Config.LockYears > 0 {
		dep.LockEnd = date.New(on.Year()+a.Config.LockYears, on.Month(), on.Day())
	}
	if c.value > 0 {
		dep.CurrentValue = savings.M(c.value, a.Currency)
	}
	if c.valueOn != "" {
		if dep.ValueDate, err = date.Parse(c.valueOn); err != nil {
			return savings.Deposit{}, err
		}
	}
	return dep, nil
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.remove == "" && c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	e, d, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := resolveAccount(ctx, e, c.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	if c.remove != "" {
		if err := d.DeleteDeposit(ctx, a.ID, c.remove); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting deposit: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Deleted deposit %s of %s\n", c.remove, a.ID)
		return subcommands.ExitSuccess
	}

	dep, err := c.deposit(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if dep, err = d.SaveDeposit(ctx, a.ID, dep); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording deposit: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded deposit %s of %s for %s\n", dep.ID, dep.Amount, a.ID)
	return subcommands.ExitSuccess
}
