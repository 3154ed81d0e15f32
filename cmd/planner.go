package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

type plannerCmd struct {
	app     *App
	section string
}

func (*plannerCmd) Name() string     { return "planner" }
func (*plannerCmd) Synopsis() string { return "display the planner sections" }
func (*plannerCmd) Usage() string {
	return `budget planner [-section <section>]

  Displays the opening balances and the recurring items of the planner, with
  their monthly equivalent and their total over the planning period.

  Sections: holding, outstanding, income, expenses, investments.
`
}

func (c *plannerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.section, "section", "", "Display only this section.")
}

func (c *plannerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sections := budget.Sections
	if c.section != "" {
		s, err := budget.ParseSection(c.section)
		if err != nil {
			return c.app.usage("%v", err)
		}
		sections = []budget.Section{s}
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	var b strings.Builder
	for _, section := range sections {
		b.WriteString(renderer.RenderPlanner(s, section))
		b.WriteString("\n")
	}
	c.app.printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type itemCmd struct {
	app *App

	section   string
	account   string
	sub       string
	frequency string
	amount    string
	start     string
	end       string
	notes     string
}

func (*itemCmd) Name() string     { return "item" }
func (*itemCmd) Synopsis() string { return "add or remove a planner row" }
func (*itemCmd) Usage() string {
	return `budget item add -section <section> [options]
budget item rm -section <section> <n>

  Adds a row to a planner section, or removes the n-th row (as numbered by
  'budget planner').

  Balance sections (holding, outstanding) take -account and -amount.
  Recurring sections (income, expenses, investments) take -sub, -freq,
  -amount, and optionally -start, -end (the planning period by default)
  and -notes.

Usage Examples:
$ budget item add -section holding -account Checking -amount 1000
$ budget item add -section expenses -sub Rent -freq monthly -amount 800
$ budget item rm -section expenses 2
`
}

func (c *itemCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.section, "section", "", "Planner section (required).")
	f.StringVar(&c.account, "account", "", "Account of a balance row.")
	f.StringVar(&c.sub, "sub", "", "Sub-category of a recurring item.")
	f.StringVar(&c.frequency, "freq", "Monthly", "Frequency of a recurring item: weekly, bi-weekly, monthly, quarterly or yearly.")
	f.StringVar(&c.amount, "amount", "", "Amount (required for add).")
	f.StringVar(&c.start, "start", "", "Start date of a recurring item.")
	f.StringVar(&c.end, "end", "", "End date of a recurring item.")
	f.StringVar(&c.notes, "notes", "", "Notes of a recurring item.")
}

func (c *itemCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return c.app.usage("expected 'add' or 'rm'")
	}
	action := f.Arg(0)
	if action != "add" && action != "rm" {
		return c.app.usage("unknown action %q, expected 'add' or 'rm'", action)
	}
	args, err := c.parseAction(f, action)
	if err != nil {
		return c.app.usage("%v", err)
	}
	if c.section == "" {
		return c.app.usage("-section is required")
	}
	section, err := budget.ParseSection(c.section)
	if err != nil {
		return c.app.usage("%v", err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}

	var p budget.Planner
	if action == "add" {
		if len(args) != 0 {
			return c.app.usage("unexpected argument %q", args[0])
		}
		p, err = c.add(s, section)
	} else {
		if len(args) != 1 {
			return c.app.usage("expected the row number to remove")
		}
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return c.app.usage("invalid row number %q", args[0])
		}
		p, err = s.Planner().Without(section, n-1)
	}
	if err != nil {
		return c.app.fail(err)
	}

	if err := c.app.save(ctx, s.WithPlanner(p), budget.PlannerDataset); err != nil {
		return c.app.fail(err)
	}
	c.app.success("%s updated, %d row(s)", section, p.Len(section))
	return subcommands.ExitSuccess
}

// parseAction parses the flags following the action word, on top of the ones given before it,
// and returns the remaining arguments.
func (c *itemCmd) parseAction(f *flag.FlagSet, action string) ([]string, error) {
	fs := flag.NewFlagSet("item "+action, flag.ContinueOnError)
	fs.SetOutput(c.app.Err)
	c.SetFlags(fs)
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err == nil {
			err = fs.Set(fl.Name, fl.Value.String())
		}
	})
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(f.Args()[1:]); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

func (c *itemCmd) add(s *budget.Snapshot, section budget.Section) (budget.Planner, error) {
	p := s.Planner()
	if c.amount == "" {
		return p, errors.New("-amount is required")
	}
	amount, err := budget.ParseMoney(c.amount, "")
	if err != nil {
		return p, err
	}

	if !section.IsRecurring() {
		return p.WithBalance(section, budget.Balance{Account: c.account, Amount: amount})
	}

	if c.sub == "" {
		return p, errors.New("-sub is required")
	}
	if _, ok := budget.ParseFrequency(c.frequency); !ok {
		c.app.warn("unknown frequency %q is read as Monthly", c.frequency)
	}
	var start, end budget.Date
	if period, err := s.Period(); err == nil {
		start, end = period.Start, period.End
	}
	if c.start != "" {
		if start, err = budget.ParseDate(c.start); err != nil {
			return p, fmt.Errorf("invalid -start: %w", err)
		}
	}
	if c.end != "" {
		if end, err = budget.ParseDate(c.end); err != nil {
			return p, fmt.Errorf("invalid -end: %w", err)
		}
	}
	group := map[budget.Section]budget.Group{
		budget.ExpectedIncome:     budget.IncomeGroup,
		budget.PlannedExpenses:    budget.ExpensesGroup,
		budget.PlannedInvestments: budget.InvestmentsGroup,
	}[section]
	if !s.Categories().Contains(group, c.sub) {
		c.app.warn("%q is not a known %s category", c.sub, group)
	}
	return p.WithItem(section, budget.NewRecurringItem(c.sub, c.frequency, amount, start, end, c.notes))
}

type startCmd struct {
	app      *App
	dryRun   bool
	currency string
}

func (*startCmd) Name() string     { return "start" }
func (*startCmd) Synopsis() string { return "set the start date of the planning period" }
func (*startCmd) Usage() string {
	return `budget start [-n] [-currency <symbol>] <date>

  Sets the first day of the one year planning period. The change is refused
  when a transaction, a debt payment, an investment or a recurring item date
  would fall outside the new period: every conflicting record is listed.
  Records that could not be read are listed as warnings.

  With -n, only checks the date. 'budget start -n' checks the current one.

Usage Examples:
$ budget start 1-Jan-2025
$ budget start -n 2025-07-01
`
}

func (c *startCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "Dry run: report conflicts without saving.")
	f.StringVar(&c.currency, "currency", "", "Also set the planner currency symbol, e.g. € or $.")
}

func (c *startCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}

	var d budget.Date
	switch {
	case f.NArg() == 1:
		if d, err = budget.ParseDate(f.Arg(0)); err != nil {
			return c.app.usage("%v", err)
		}
	case f.NArg() == 0 && c.dryRun && !s.Planner().Start().IsZero():
		d = s.Planner().Start()
	default:
		return c.app.usage("expected a start date")
	}

	next, err := s.WithStartDate(d)
	var conflict *budget.StartDateConflictError
	if errors.As(err, &conflict) {
		c.app.printMarkdown(renderer.RenderConflicts(conflict))
		c.warnMalformed(s)
		return subcommands.ExitFailure
	}
	if err != nil {
		return c.app.fail(err)
	}
	c.warnMalformed(next)
	period, _ := next.Period()
	if c.dryRun {
		c.app.success("every record fits in %s", period)
		return subcommands.ExitSuccess
	}
	if c.currency != "" {
		next = next.WithPlanner(next.Planner().WithCurrency(c.currency))
	}
	if err := c.app.save(ctx, next, budget.PlannerDataset); err != nil {
		return c.app.fail(err)
	}
	c.app.success("planning period is now %s", period)
	return subcommands.ExitSuccess
}

// warnMalformed lists the records that could not be checked.
func (c *startCmd) warnMalformed(s *budget.Snapshot) {
	for _, m := range s.Malformed() {
		c.app.warn("not checked, %v", m)
	}
}
