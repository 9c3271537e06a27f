package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/savings"
	"github.com/etnz/savings/docs"
	"github.com/etnz/savings/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.

			The user is here to understand how their savings perform: accounts, positions,
			yearly returns and total net worth.

			Devise a plan of questions to ask to each expert and come up with the best response to the user's request.
			Answer in markdown.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded on Google Search for market news.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, aware of financial products, funds and companies
		and of the latest market news. Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in trading, you can search about anything related to
			financial institutions, companies, markets and funds. Leverage Google Search to
			ground your assertions.
			`}}},
		},
	}
}

// NewAnalyst returns an expert reading the accounts through the engine.
// Net worth is expressed in currency.
func NewAnalyst(engine *savings.Engine, currency string) *Expert {
	lib := Tools(engine, currency)
	manual, err := docs.GetTopics("accounts", "xirr", "annual", "networth")
	if err != nil {
		panic(err) // embedded
	}
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It reads the user's savings accounts and computes
		their figures: positions, gains, XIRR, yearly returns and net worth.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an analyst in charge of the user's savings accounts.
			Use the Tools to get the figures, never make them up. Start by listing the
			accounts to find the account id the user is talking about.

			Here is how the figures are computed:

			` + manual}}},
		},
		Library: NewLibrary(lib),
	}
}

var accountParameter = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"account": {
			Type:        genai.TypeString,
			Description: "The account id, as returned by list_accounts.",
		},
	},
	Required: []string{"account"},
}

var markdownResponse = &genai.Schema{Type: genai.TypeString, Description: "A markdown report."}

// Tools returns the functions giving access to the engine.
func Tools(engine *savings.Engine, currency string) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "list_accounts",
				Description: "Lists the user's accounts: id, name, type and currency.",
				Response:    markdownResponse,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				accounts, err := engine.Accounts(ctx)
				if err != nil {
					return failure(id, "list_accounts", err)
				}
				var b strings.Builder
				b.WriteString("| ID | Name | Type | Currency |\n|---|---|---|---|\n")
				for _, a := range accounts {
					fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", a.ID, a.Name, a.Kind, a.Currency)
				}
				return success(id, "list_accounts", b.String())
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "account_summary",
				Description: `Summarizes a brokerage account today: total invested, current value,
				gain or loss, XIRR since inception and for the current year, and every position.`,
				Parameters: accountParameter,
				Response:   markdownResponse,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				a, err := account(ctx, engine, args)
				if err != nil {
					return failure(id, "account_summary", err)
				}
				s, err := engine.Summary(ctx, a.ID)
				if err != nil {
					return failure(id, "account_summary", err)
				}
				return success(id, "account_summary", renderer.RenderSummary(renderer.NewSummary(a, s, engine.Today())))
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "annual_returns",
				Description: "Lists, year by year, the year end value and the XIRR of a brokerage account.",
				Parameters:  accountParameter,
				Response:    markdownResponse,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				a, err := account(ctx, engine, args)
				if err != nil {
					return failure(id, "annual_returns", err)
				}
				rows, err := engine.AnnualOverview(ctx, a.ID)
				if err != nil {
					return failure(id, "annual_returns", err)
				}
				return success(id, "annual_returns", renderer.RenderAnnual(renderer.NewAnnual(a, rows)))
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "net_worth",
				Description: "Values every account today and sums them in " + currency + ", with warnings about what could not be valued.",
				Response:    markdownResponse,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				n, err := engine.NetWorth(ctx, currency)
				if err != nil {
					return failure(id, "net_worth", err)
				}
				return success(id, "net_worth", renderer.RenderNetWorth(renderer.NewNetWorth(n, engine.Today())))
			},
		},
	}
}

func account(ctx context.Context, engine *savings.Engine, args map[string]any) (savings.Account, error) {
	id, ok := args["account"].(string)
	if !ok || id == "" {
		return savings.Account{}, fmt.Errorf("argument 'account' must be an account id, got %v", args["account"])
	}
	return engine.Account(ctx, id)
}
