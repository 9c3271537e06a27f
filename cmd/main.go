package cmd

import (
	"github.com/etnz/savings"
	"github.com/etnz/savings/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Commands are the subcommands of the application, by group.
var Commands = map[string][]subcommands.Command{
	"accounts": {
		&accountsCmd{},
		&addAccountCmd{},
	},
	"transactions": {
		&buyCmd{},
		&sellCmd{},
		&cashCmd{kind: savings.Dividend},
		&cashCmd{kind: savings.Fee},
	},
	"records": {
		&checkpointCmd{},
		&balanceCmd{},
		&depositCmd{},
	},
	"reports": {
		&summaryCmd{},
		&annualCmd{},
		&netWorthCmd{},
		&txCmd{},
	},
	"tools": {
		&serveCmd{},
		&assistCmd{},
		&topicCmd{},
	},
}

// Register registers every command into c.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// Completion returns the shell completion of the application. Run its
// Complete method first thing in main.
func Completion() *complete.Command {
	kinds := make(predict.Set, 0, len(savings.AccountKinds))
	for _, k := range savings.AccountKinds {
		kinds = append(kinds, string(k))
	}
	account := predict.Something
	topics, _ := docs.GetAllTopics()
	sub := map[string]*complete.Command{
		"accounts": {},
		"add-account": {Flags: map[string]complete.Predictor{
			"id": predict.Something, "n": predict.Something, "t": kinds, "c": predict.Something,
			"opened": predict.Something, "gross-rate": predict.Something, "rate": predict.Something,
			"monthly": predict.Something, "yield": predict.Something, "lock-years": predict.Something,
		}},
		"summary":    {Flags: map[string]complete.Predictor{"a": account}},
		"annual":     {Flags: map[string]complete.Predictor{"a": account}},
		"networth":   {Flags: map[string]complete.Predictor{"c": predict.Something}},
		"checkpoint": {Flags: map[string]complete.Predictor{"a": account, "y": predict.Something, "x": predict.Something, "d": predict.Something}},
		"balance":    {Flags: map[string]complete.Predictor{"a": account, "d": predict.Something, "x": predict.Something}},
		"deposit":    {Flags: map[string]complete.Predictor{"a": account, "d": predict.Something, "x": predict.Something, "rm": predict.Something}},
		"serve":      {Flags: map[string]complete.Predictor{"addr": predict.Something}},
		"assist":     {},
		"topic":      {Args: predict.Set(topics)},
		"tx":         {Flags: map[string]complete.Predictor{"a": account, "y": predict.Something, "s": predict.Something, "d": predict.Something, "head": predict.Something, "tail": predict.Something}},
	}
	tx := map[string]complete.Predictor{"a": account, "d": predict.Something, "c": predict.Something, "s": predict.Something, "isin": predict.Something, "name": predict.Something}
	for _, name := range []string{"buy", "sell", "dividend", "fee"} {
		sub[name] = &complete.Command{Flags: tx}
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"data":     predict.Dirs("*"),
			"currency": predict.Something,
			"v":        predict.Nothing,
			"quotes":   predict.Set{"yahoo", "eodhd"},
		},
	}
}

// Known reports whether name is a registered command.
func Known(name string) bool {
	for _, cmds := range Commands {
		for _, c := range cmds {
			if c.Name() == name {
				return true
			}
		}
	}
	return false
}
