package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type addAccountCmd struct {
	id          string
	name        string
	kind        string
	currency    string
	description string
	isDefault   bool

	opened    string
	grossRate string
	rate      string
	monthly   float64
	yield     string
	lockYears int
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create or replace an account" }
func (*addAccountCmd) Usage() string {
	return `sav add-account -id <id> -n <name> -t <type> [-c <currency>] [-default] [config flags]

  Creates or replaces an account. Types are PEA, CompteCourant, Interessement,
  PEL, LivretA and AssuranceVie. Rates are fractions: 0.03 for 3%.

  PEL:          -opened <date> -gross-rate <rate>
  LivretA:      -rate <rate>
  AssuranceVie: -monthly <amount> [-yield <rate>]
  Interessement: -lock-years <n>
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Account id")
	f.StringVar(&c.name, "n", "", "Account name")
	f.StringVar(&c.kind, "t", "", "Account type")
	f.StringVar(&c.currency, "c", "EUR", "Account currency")
	f.StringVar(&c.description, "m", "", "Description")
	f.BoolVar(&c.isDefault, "default", false, "Make it the default account")
	f.StringVar(&c.opened, "opened", "", "Opening date")
	f.StringVar(&c.grossRate, "gross-rate", "", "Gross interest rate")
	f.StringVar(&c.rate, "rate", "", "Net interest rate")
	f.Float64Var(&c.monthly, "monthly", 0, "Monthly contribution")
	f.StringVar(&c.yield, "yield", "", "Last annual yield")
	f.IntVar(&c.lockYears, "lock-years", 0, "Years a deposit stays locked")
}

// config returns the account configuration, nil if no config flag was set.
func (c *addAccountCmd) config() (*savings.AccountConfig, error) {
	if c.opened == "" && c.grossRate == "" && c.rate == "" && c.monthly == 0 && c.yield == "" && c.lockYears == 0 {
		return nil, nil
	}
	var cfg savings.AccountConfig
	var err error
	if c.opened != "" {
		if cfg.OpeningDate, err = date.Parse(c.opened); err != nil {
			return nil, err
		}
	}
	for _, r := range []struct {
		flag string
		dst  *decimal.Decimal
	}{{c.grossRate, &cfg.GrossRate}, {c.rate, &cfg.CurrentRate}, {c.yield, &cfg.LastAnnualYield}} {
		if r.flag == "" {
			continue
		}
		if *r.dst, err = decimal.NewFromString(r.flag); err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", r.flag, err)
		}
	}
	cfg.MonthlyContribution = savings.M(c.monthly, c.currency)
	cfg.LockYears = c.lockYears
	return &cfg, nil
}

func (c *addAccountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.kind == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	kind, err := savings.ParseAccountKind(c.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	cfg, err := c.config()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	name := c.name
	if name == "" {
		name = c.id
	}

	d, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a := savings.Account{
		ID:          c.id,
		Name:        name,
		Kind:        kind,
		Currency:    c.currency,
		Description: c.description,
		Default:     c.isDefault,
		Config:      cfg,
	}
	if err := d.SaveAccount(ctx, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving account: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved account %s (%s)\n", a.ID, a.Kind)
	return subcommands.ExitSuccess
}
