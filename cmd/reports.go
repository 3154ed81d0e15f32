package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

type dashboardCmd struct {
	app         *App
	html        string
	today       string
	top         int
	skipMonthly bool
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display balances, cash flow and health ratios" }
func (*dashboardCmd) Usage() string {
	return `budget dashboard [-today <date>] [-top <n>] [-no-monthly] [-html <file>]

  Displays the budget dashboard: current holdings, outstanding debt and net
  worth, planned and actual cash flow over the planning period and to date,
  health ratios, top categories and the monthly breakdown.

Usage Examples:
# as of the end of last month
$ budget dashboard -today -1m

# export an HTML page
$ budget dashboard -html dashboard.html
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.html, "html", "", "Write the dashboard as an HTML page to this file instead of the terminal.")
	f.StringVar(&c.today, "today", "", "Compute 'to date' figures as of this date (defaults to today).")
	f.IntVar(&c.top, "top", 5, "Number of categories listed, 0 for all.")
	f.BoolVar(&c.skipMonthly, "no-monthly", false, "Do not display the monthly breakdown.")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, err := c.app.engine(c.today)
	if err != nil {
		return c.app.usage("invalid -today: %v", err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	st := engine.Compute(s)
	if st.Malformed > 0 {
		c.app.warn("%d malformed record(s) are excluded, see 'budget start -n'", st.Malformed)
	}
	md := renderer.RenderDashboard(st, renderer.DashboardOptions{TopCategories: c.top, SkipMonthly: c.skipMonthly})

	if c.html == "" {
		c.app.printMarkdown(md)
		return subcommands.ExitSuccess
	}
	file, err := os.Create(c.html)
	if err != nil {
		return c.app.fail(err)
	}
	defer file.Close()
	if err := renderer.HTML(file, "Budget Dashboard "+st.Today.String(), md); err != nil {
		return c.app.fail(err)
	}
	if err := file.Close(); err != nil {
		return c.app.fail(err)
	}
	c.app.success("dashboard written to %s", c.html)
	return subcommands.ExitSuccess
}

type monthlyCmd struct {
	app   *App
	today string
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the month by month breakdown of the planning period" }
func (*monthlyCmd) Usage() string {
	return `budget monthly [-today <date>]

  Displays, for each month of the planning period, the actual and planned
  income and expenses, investments, debt payments and the running balance.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.today, "today", "", "Reference date (defaults to today).")
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, err := c.app.engine(c.today)
	if err != nil {
		return c.app.usage("invalid -today: %v", err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.printMarkdown(renderer.RenderMonthly(engine.Compute(s)))
	return subcommands.ExitSuccess
}

type categoriesCmd struct {
	app *App
	top int
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "display actual income and expenses by category" }
func (*categoriesCmd) Usage() string {
	return `budget categories [-top <n>]

  Displays the actual income, expenses and net amount of each sub-category,
  largest absolute net first. Transactions without sub-category are "Other".
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.top, "top", 0, "Number of categories listed, 0 for all.")
}

func (c *categoriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, err := c.app.engine("")
	if err != nil {
		return c.app.fail(err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.printMarkdown(renderer.RenderCategories(engine.Compute(s), c.top))
	return subcommands.ExitSuccess
}

type queryCmd struct {
	app   *App
	today string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "query the statistics with a JSONPath expression" }
func (*queryCmd) Usage() string {
	return `budget query [-today <date>] <jsonpath>

  Evaluates a JSONPath expression on the statistics and prints the result as
  JSON. Amounts are numbers, dates DD-MMM-YYYY strings.

Usage Examples:
$ budget query '$.balances.netWorth'
$ budget query '$.monthly[*].balance'
$ budget query '$'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.today, "today", "", "Reference date (defaults to today).")
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return c.app.usage("a JSONPath expression is required")
	}
	engine, err := c.app.engine(c.today)
	if err != nil {
		return c.app.usage("invalid -today: %v", err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	v, err := engine.Compute(s).Query(strings.Join(f.Args(), " "))
	if err != nil {
		return c.app.fail(err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintln(c.app.Out, string(out))
	return subcommands.ExitSuccess
}
