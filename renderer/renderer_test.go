package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/savings"
	"github.com/etnz/savings/date"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func EUR(v float64) savings.Money { return savings.M(v, "EUR") }

// tables parses markdown and returns the number of body rows of each table,
// and the text of its first header cells.
func tables(t *testing.T, md string) (rows []int, headers []string) {
	t.Helper()
	source := []byte(md)
	parser := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()
	root := parser.Parse(text.NewReader(source))
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *extast.Table:
			rows = append(rows, 0)
		case *extast.TableRow:
			rows[len(rows)-1]++
		case *extast.TableHeader:
			if c := n.FirstChild(); c != nil {
				headers = append(headers, string(c.Text(source)))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("ast.Walk() error = %v", err)
	}
	return rows, headers
}

func TestRenderSummary(t *testing.T) {
	on := date.New(2024, time.June, 30)
	txs := []savings.Transaction{
		savings.NewBuy(date.New(2023, time.January, 10), "CW8", savings.Q(5), EUR(100), EUR(0), EUR(0)),
		savings.NewBuy(date.New(2023, time.June, 10), "ESE", savings.Q(5), EUR(20), EUR(0), EUR(0)),
	}
	s := savings.BuildSummary(txs, savings.Prices{"CW8": EUR(120)}, on)
	a := savings.Account{ID: "pea", Name: "My PEA", Kind: savings.PEA, Currency: "EUR"}

	md := RenderSummary(NewSummary(a, s, on))

	rows, headers := tables(t, md)
	if want := []int{1, 2}; len(rows) != 2 || rows[0] != want[0] || rows[1] != want[1] {
		t.Errorf("RenderSummary() tables rows = %v, want %v:\n%s", rows, want, md)
	}
	if len(headers) != 2 || headers[1] != "Ticker" {
		t.Errorf("RenderSummary() headers = %v, want a positions table:\n%s", headers, md)
	}
	for _, want := range []string{"# My PEA on 2024-06-30", "| ESE |", "n/a", "No price for ESE"} {
		if !strings.Contains(md, want) {
			t.Errorf("RenderSummary() does not contain %q:\n%s", want, md)
		}
	}
}

func TestRenderSummaryMismatched(t *testing.T) {
	on := date.New(2024, time.June, 30)
	txs := []savings.Transaction{
		savings.NewBuy(date.New(2023, time.January, 10), "CW8", savings.Q(5), EUR(100), EUR(0), EUR(0)),
		savings.NewBuy(date.New(2023, time.June, 10), "MSFT", savings.Q(1), savings.M(300, "USD"), savings.M(0, "USD"), savings.M(0, "USD")),
	}
	s := savings.BuildSummary(txs, savings.Prices{"CW8": EUR(120)}, on)
	a := savings.Account{ID: "pea", Name: "My PEA", Kind: savings.PEA, Currency: "EUR"}

	md := RenderSummary(NewSummary(a, s, on))
	if want := "another currency than EUR for MSFT"; !strings.Contains(md, want) {
		t.Errorf("RenderSummary() does not contain %q:\n%s", want, md)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	on := date.New(2024, time.June, 30)
	a := savings.Account{ID: "pea", Name: "Empty", Kind: savings.PEA, Currency: "EUR"}
	md := RenderSummary(NewSummary(a, savings.BuildSummary(nil, nil, on), on))
	if rows, _ := tables(t, md); len(rows) != 1 {
		t.Errorf("RenderSummary(empty) has %d tables, want 1:\n%s", len(rows), md)
	}
	if strings.Contains(md, "Positions") || strings.Contains(md, "error") {
		t.Errorf("RenderSummary(empty) = \n%s", md)
	}
}

func TestRenderAnnual(t *testing.T) {
	txs := []savings.Transaction{
		savings.NewBuy(date.New(2023, time.January, 10), "CW8", savings.Q(5), EUR(100), EUR(0), EUR(0)),
	}
	live := EUR(600)
	rows := savings.AnnualOverview(txs, []savings.AnnualValue{{Year: 2023, EndValue: EUR(550)}}, &live, date.New(2024, time.June, 30))
	a := savings.Account{ID: "pea", Name: "My PEA", Kind: savings.PEA, Currency: "EUR"}

	md := RenderAnnual(NewAnnual(a, rows))

	if got, _ := tables(t, md); len(got) != 1 || got[0] != 2 {
		t.Errorf("RenderAnnual() tables rows = %v, want [2]:\n%s", got, md)
	}
	for _, want := range []string{"| 2023 |", "| 2024 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("RenderAnnual() does not contain %q:\n%s", want, md)
		}
	}
}

func TestRenderNetWorth(t *testing.T) {
	on := date.New(2024, time.June, 30)
	valuations := []savings.Valuation{
		{AccountID: "pea", AccountName: "PEA", Kind: savings.PEA, CurrentValue: EUR(1000), TotalGainLoss: EUR(100), LastUpdated: on, MissingPrices: []string{"ESE"}},
		{AccountID: "la", AccountName: "Livret A", Kind: savings.LivretA, CurrentValue: EUR(10000), Estimated: true},
		{AccountID: "isa", AccountName: "ISA", Kind: savings.PEA, CurrentValue: savings.M(10, "GBP")},
	}
	n := savings.AggregateNetWorth(valuations, "EUR", savings.Rates{"USDEUR": decimal.RequireFromString("0.9")})

	md := RenderNetWorth(NewNetWorth(n, on))

	if got, _ := tables(t, md); len(got) != 1 || got[0] != 3 {
		t.Errorf("RenderNetWorth() tables rows = %v, want [3]:\n%s", got, md)
	}
	for _, want := range []string{"## Warnings", "no price for ESE", "no GBPEUR rate", "✓"} {
		if !strings.Contains(md, want) {
			t.Errorf("RenderNetWorth() does not contain %q:\n%s", want, md)
		}
	}
}

func TestTransactions(t *testing.T) {
	on := date.New(2024, time.March, 1)
	txs := []savings.Transaction{
		savings.NewBuy(on, "CW8", savings.Q(2), EUR(100), EUR(1), EUR(0)),
		savings.NewDividend(on, "CW8", EUR(3)),
		savings.NewFee(on, "", EUR(5)),
	}

	md := Transactions(txs)

	if got, _ := tables(t, md); len(got) != 1 || got[0] != 3 {
		t.Errorf("Transactions() tables rows = %v, want [3]:\n%s", got, md)
	}
	for _, want := range []string{"Bought 2 of CW8", "Dividend of", "| Fee of"} {
		if !strings.Contains(md, want) {
			t.Errorf("Transactions() does not contain %q:\n%s", want, md)
		}
	}
}
