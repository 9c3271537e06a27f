package cmd

import (
	"context"
	"flag"
	"testing"

	"github.com/etnz/savings"
	"github.com/etnz/savings/store"
	"github.com/google/subcommands"
)

// run parses args into c flags and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

// useTempData points the global data path to a fresh directory.
func useTempData(t *testing.T) string {
	t.Helper()
	old := *dataPath
	t.Cleanup(func() { *dataPath = old })
	*dataPath = t.TempDir()
	return *dataPath
}

func TestRecordCommands(t *testing.T) {
	ctx := context.Background()
	path := useTempData(t)

	steps := []struct {
		cmd  subcommands.Command
		args []string
		want subcommands.ExitStatus
	}{
		{&addAccountCmd{}, []string{"-id", "pea", "-n", "My PEA", "-t", "pea", "-default"}, subcommands.ExitSuccess},
		{&addAccountCmd{}, []string{"-id", "bad", "-t", "crypto"}, subcommands.ExitUsageError},
		{&addAccountCmd{}, []string{"-id", "livret", "-t", "LivretA", "-rate", "0.03"}, subcommands.ExitSuccess},
		{&buyCmd{}, []string{"-d", "2024-01-10", "-s", "CW8", "-q", "10", "-p", "100", "-fees", "1.5"}, subcommands.ExitSuccess},
		{&sellCmd{}, []string{"-d", "2024-02-10", "-s", "CW8", "-q", "4", "-p", "110"}, subcommands.ExitSuccess},
		{&sellCmd{}, []string{"-d", "2024-03-10", "-s", "CW8", "-q", "7", "-p", "110"}, subcommands.ExitFailure},
		{&cashCmd{kind: savings.Dividend}, []string{"-d", "2024-03-15", "-s", "CW8", "-x", "12"}, subcommands.ExitSuccess},
		{&cashCmd{kind: savings.Fee}, []string{"-d", "2024-03-31", "-x", "5"}, subcommands.ExitSuccess},
		{&buyCmd{}, []string{"-a", "livret", "-d", "2024-01-10", "-s", "CW8", "-q", "1", "-p", "1"}, subcommands.ExitUsageError},
		{&checkpointCmd{}, []string{"-y", "2024", "-x", "700"}, subcommands.ExitSuccess},
		{&balanceCmd{}, []string{"-a", "livret", "-d", "2024-01-01", "-x", "1000"}, subcommands.ExitSuccess},
		{&summaryCmd{}, []string{"-a", "unknown"}, subcommands.ExitUsageError},
	}
	for _, s := range steps {
		if got := run(t, s.cmd, s.args...); got != s.want {
			t.Errorf("%s %v = %v, want %v", s.cmd.Name(), s.args, got, s.want)
		}
	}

	d, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	txs, err := d.Transactions(ctx, "pea")
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 4 {
		t.Fatalf("Transactions(pea) = %d transactions, want 4", len(txs))
	}
	if want := savings.M(1001.5, "EUR"); !txs[0].TotalAmount.Equal(want) {
		t.Errorf("buy total = %v, want %v", txs[0].TotalAmount, want)
	}
	values, err := d.AnnualValues(ctx, "pea")
	if err != nil || len(values) != 1 || values[0].Year != 2024 {
		t.Errorf("AnnualValues(pea) = %v, %v, want 2024", values, err)
	}
	balances, err := d.Balances(ctx, "livret")
	if err != nil || len(balances) != 1 {
		t.Errorf("Balances(livret) = %v, %v, want 1 balance", balances, err)
	}
	a, err := d.Account(ctx, "livret")
	if err != nil || a.Config == nil || a.Config.CurrentRate.String() != "0.03" {
		t.Errorf("Account(livret) = %+v, %v, want a 0.03 rate", a, err)
	}
}

func TestDepositCommand(t *testing.T) {
	ctx := context.Background()
	path := useTempData(t)

	if got := run(t, &addAccountCmd{}, "-id", "pee", "-t", "Interessement", "-lock-years", "5"); got != subcommands.ExitSuccess {
		t.Fatalf("add-account = %v", got)
	}
	if got := run(t, &depositCmd{}, "-a", "pee", "-d", "2022-04-15", "-x", "1500", "-value", "1650", "-value-date", "2024-06-01"); got != subcommands.ExitSuccess {
		t.Fatalf("deposit = %v", got)
	}

	d, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	deps, err := d.Deposits(ctx, "pee")
	if err != nil || len(deps) != 1 {
		t.Fatalf("Deposits(pee) = %v, %v, want 1 deposit", deps, err)
	}
	if got, want := deps[0].LockEnd.String(), "2027-04-15"; got != want {
		t.Errorf("LockEnd = %s, want %s", got, want)
	}
	if want := savings.M(1650, "EUR"); !deps[0].CurrentValue.Equal(want) {
		t.Errorf("CurrentValue = %v, want %v", deps[0].CurrentValue, want)
	}

	if got := run(t, &depositCmd{}, "-a", "pee", "-rm", deps[0].ID); got != subcommands.ExitSuccess {
		t.Errorf("deposit -rm = %v, want success", got)
	}
	if deps, _ := d.Deposits(ctx, "pee"); len(deps) != 0 {
		t.Errorf("Deposits(pee) after delete = %v, want none", deps)
	}
}

func TestTransactionCurrency(t *testing.T) {
	ctx := context.Background()
	path := useTempData(t)

	steps := []struct {
		cmd  subcommands.Command
		args []string
		want subcommands.ExitStatus
	}{
		{&addAccountCmd{}, []string{"-id", "cto", "-t", "pea", "-c", "USD"}, subcommands.ExitSuccess},
		{&buyCmd{}, []string{"-a", "cto", "-d", "2024-01-10", "-s", "MSFT", "-q", "2", "-p", "300"}, subcommands.ExitSuccess},
		{&cashCmd{kind: savings.Dividend}, []string{"-a", "cto", "-d", "2024-03-15", "-s", "MSFT", "-x", "1.5"}, subcommands.ExitSuccess},
		{&buyCmd{}, []string{"-a", "cto", "-d", "2024-01-11", "-s", "MSFT", "-q", "1", "-p", "300", "-c", "EUR"}, subcommands.ExitFailure},
	}
	for _, s := range steps {
		if got := run(t, s.cmd, s.args...); got != s.want {
			t.Errorf("%s %v = %v, want %v", s.cmd.Name(), s.args, got, s.want)
		}
	}

	d, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	txs, err := d.Transactions(ctx, "cto")
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("Transactions(cto) = %d transactions, want 2", len(txs))
	}
	if want := savings.M(600, "USD"); !txs[0].TotalAmount.Equal(want) || txs[0].Currency() != "USD" {
		t.Errorf("buy total = %v, want %v", txs[0].TotalAmount, want)
	}
}
