package agent

import (
	"context"
	"fmt"

	"github.com/etnz/budget"
	"github.com/etnz/budget/docs"
	"github.com/etnz/budget/renderer"
	"google.golang.org/genai"
)

// Source loads the budget, a store.Store usually.
type Source interface {
	Load(ctx context.Context) (*budget.Snapshot, error)
}

func instruction(s string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: s}}}
}

// NewFacilitator creates the expert in charge of the conversation, it delegates to experts.
func NewFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.

			The user tracks a personal budget: planned income, expenses and investments over a
			12-month planning period, and the actual transactions, debt payments and investments.
			Devise a plan of questions to ask to each expert and come up with the best response to
			the user's request. Answer in markdown, quote the figures you rely on.
			`),
		},
		Library: NewLibrary(experts),
	}
}

// NewAdvisor creates an expert of personal finance, grounded with Google Search.
func NewAdvisor(model string) *Expert {
	return &Expert{
		Name: "Advisor",
		Description: `This is a personal finance advisor, aware of budgeting practices, saving and debt
		reduction strategies, and of the latest news about rates and financial products.
		Ask the Advisor for general knowledge or recent information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are a personal finance advisor. You leverage Google Search to ground your assertions.
			You give practical advice on budgeting, saving rates, paying off debt and investing,
			and relate them to the question you are asked.
			`),
		},
	}
}

// NewAnalyst creates the expert reading the user's budget. Its instructions are seeded with the
// current dashboard, its tools give access to the details.
func NewAnalyst(ctx context.Context, model string, src Source, engine *budget.Engine) (*Expert, error) {
	s, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load the budget: %w", err)
	}
	dashboard := renderer.RenderDashboard(engine.Compute(s), renderer.DashboardOptions{TopCategories: 10, SkipMonthly: true})
	topics, err := docs.GetTopics("planning", "balances")
	if err != nil {
		return nil, err
	}

	lib := AnalystTools(src, engine)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It reads the user's budget: planner, ledger, balances,
		monthly figures and categories, and knows how every figure is computed.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are the analyst of the user's budget. You are part of a team of experts, yours is
			everything about the user's figures. Use the available tools to get details, pardon the
			approximate language of the questions and figure out what they meant.

			Here is the current dashboard:

			` + dashboard + `

			Here is how the figures are computed:

			` + topics),
		},
		Library: NewLibrary(lib),
	}, nil
}

// AnalystTools returns the functions reading the budget.
func AnalystTools(src Source, engine *budget.Engine) []Function {
	stats := func(ctx context.Context) (*budget.Snapshot, *budget.Statistics, error) {
		s, err := src.Load(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load the budget: %w", err)
		}
		return s, engine.Compute(s), nil
	}
	str := func(desc string) *genai.Schema { return &genai.Schema{Type: genai.TypeString, Description: desc} }
	markdown := str("A markdown report.")

	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Dashboard",
				Description: "Dashboard returns the balances, cash flow, health ratios and top categories as of today.",
				Response:    markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				_, st, err := stats(ctx)
				if err != nil {
					return "", err
				}
				return renderer.RenderDashboard(st, renderer.DashboardOptions{SkipMonthly: true}), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Monthly",
				Description: "Monthly returns the actual and planned figures of each month of the planning period.",
				Response:    markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				_, st, err := stats(ctx)
				if err != nil {
					return "", err
				}
				return renderer.RenderMonthly(st), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Planner",
				Description: "Planner lists the rows of a planner section with their value over the planning period.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"section": str(`One of "Current Holding", "Current Outstanding", "Expected Income", "Planned Expenses" or "Planned Investments".`),
					},
					Required: []string{"section"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				arg, err := stringArg(args, "section")
				if err != nil {
					return "", err
				}
				section, err := budget.ParseSection(arg)
				if err != nil {
					return "", err
				}
				s, _, err := stats(ctx)
				if err != nil {
					return "", err
				}
				return renderer.RenderPlanner(s, section), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Ledger",
				Description: "Ledger lists the records of a ledger collection.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"collection": str(`One of "transactions", "debts" or "investments".`),
					},
					Required: []string{"collection"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				arg, err := stringArg(args, "collection")
				if err != nil {
					return "", err
				}
				c, err := budget.ParseCollection(arg)
				if err != nil {
					return "", err
				}
				s, _, err := stats(ctx)
				if err != nil {
					return "", err
				}
				return renderer.RenderLedger(s, c), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Query",
				Description: `Query evaluates a JSONPath expression on the statistics, for instance
				"$.balances.netWorth", "$.monthly[*].balance" or "$.categories[0]".`,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"path": str("The JSONPath expression."),
					},
					Required: []string{"path"},
				},
				Response: str("The JSON value found."),
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				path, err := stringArg(args, "path")
				if err != nil {
					return "", err
				}
				_, st, err := stats(ctx)
				if err != nil {
					return "", err
				}
				v, err := st.Query(path)
				if err != nil {
					return "", err
				}
				return fmt.Sprint(v), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Topic",
				Description: "Topic returns a documentation topic: dates, frequencies, planning, balances or storage.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": str("The topic name."),
					},
					Required: []string{"name"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "name")
				if err != nil {
					return "", err
				}
				return docs.GetTopic(name)
			},
		},
	}
}
