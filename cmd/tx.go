package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
	"github.com/etnz/savings/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	account string
	start   string
	end     string
	year    int
	head    int
	tail    int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions of an account" }
func (*txCmd) Usage() string {
	return `sav tx [-a <account>] [-y <year> | -s <start_date>] [-d <end_date>] [-head <n>] [-tail <n>]

  Lists transactions from the ledger, in date order, with options for filtering and limiting the output.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "a", "", "Account. Defaults to the default account.")
	f.IntVar(&p.year, "y", 0, "Only the transactions of this year.")
	f.StringVar(&p.start, "s", "", "The start date for a custom range. Overrides -y.")
	f.StringVar(&p.end, "d", "", "The end date for the range.")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
}

// period returns the range to list, ok is false for the full ledger.
func (p *txCmd) period() (r date.Range, ok bool, err error) {
	if p.start == "" && p.end == "" && p.year == 0 {
		return r, false, nil
	}
	if p.year != 0 {
		r = date.Year(p.year)
	} else {
		r = date.NewRange(date.New(1, 1, 1), date.Today())
	}
	if p.start != "" {
		if r.From, err = date.Parse(p.start); err != nil {
			return r, false, err
		}
	}
	if p.end != "" {
		if r.To, err = date.Parse(p.end); err != nil {
			return r, false, err
		}
	}
	return r, true, nil
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	r, filtered, err := p.period()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	e, d, err := openEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := resolveAccount(ctx, e, p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	txs, err := d.Transactions(ctx, a.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var transactions []savings.Transaction
	for _, tx := range savings.Chronological(txs) {
		if !filtered || r.Contains(tx.Date) {
			transactions = append(transactions, tx)
		}
	}
	if p.head > 0 && len(transactions) > p.head {
		transactions = transactions[:p.head]
	}
	if p.tail > 0 && len(transactions) > p.tail {
		transactions = transactions[len(transactions)-p.tail:]
	}

	printMarkdown(renderer.Transactions(transactions))
	return subcommands.ExitSuccess
}
