package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the savings accounts" }
func (*accountsCmd) Usage() string {
	return `sav accounts

  Lists the accounts of the data directory.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	accounts, err := d.Accounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading accounts: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	b.WriteString("| ID | Name | Type | Currency | Default |\n|:---|:---|:---|:---|:---:|\n")
	for _, a := range accounts {
		def := ""
		if a.Default {
			def = "✓"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", a.ID, a.Name, a.Kind, a.Currency, def)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
