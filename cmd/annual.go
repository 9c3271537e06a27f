package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/savings/renderer"
	"github.com/google/subcommands"
)

type annualCmd struct {
	account string
	json    bool
}

func (*annualCmd) Name() string     { return "annual" }
func (*annualCmd) Synopsis() string { return "display the yearly returns of an account" }
func (*annualCmd) Usage() string {
	return `sav annual [-a <account>] [-json]

  Displays, for every year since the first transaction, the recorded year end
  value and the XIRR of the year. The current year is valued at current prices.
  Years without the previous year end value are reported n/a.
`
}

func (c *annualCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account to report on. Defaults to the default account.")
	f.BoolVar(&c.json, "json", false, "Print the computable yearly XIRR as JSON")
}

func (c *annualCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, _, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := resolveAccount(ctx, e, c.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	if c.json {
		returns, err := e.AnnualXIRR(ctx, a.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing yearly returns of %q: %v\n", a.ID, err)
			return subcommands.ExitFailure
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(returns); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	rows, err := e.AnnualOverview(ctx, a.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing yearly returns of %q: %v\n", a.ID, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderAnnual(renderer.NewAnnual(a, rows)))
	return subcommands.ExitSuccess
}
