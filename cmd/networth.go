package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/savings"
	"github.com/etnz/savings/renderer"
	"github.com/google/subcommands"
)

type netWorthCmd struct {
	currency string
}

func (*netWorthCmd) Name() string     { return "networth" }
func (*netWorthCmd) Synopsis() string { return "value every account and sum them" }
func (*netWorthCmd) Usage() string {
	return `sav networth [-c <currency>]

  Values every account today and sums them in a single currency. Accounts that
  could not be valued, or converted, are listed as warnings.
`
}

func (c *netWorthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Currency of the total. Defaults to the global -currency.")
}

func (c *netWorthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	currency := strings.ToUpper(c.currency)
	if currency == "" {
		currency = *defaultCurrency
	}
	if err := savings.ValidateCurrency(currency); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	e, _, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	n, err := e.NetWorth(ctx, currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing net worth: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderNetWorth(renderer.NewNetWorth(n, e.Today())))
	return subcommands.ExitSuccess
}
