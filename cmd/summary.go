package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/savings/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	account string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the performance summary of an account" }
func (*summaryCmd) Usage() string {
	return `sav summary [-a <account>]

  Displays the positions of a brokerage account at current prices, the total
  gain or loss, and the XIRR since inception and for the current year.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account to report on. Defaults to the default account.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	s, err := e.Summary(ctx, a.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing summary of %q: %v\n", a.ID, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSummary(renderer.NewSummary(a, s, e.Today())))
	return subcommands.ExitSuccess
}
