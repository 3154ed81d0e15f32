package cmd

import (
	"context"
	"errors"
	"flag"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	app        *App
	collection string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the ledger" }
func (*txCmd) Usage() string {
	return `budget tx [-c <collection>]

  Lists the transactions, debt payments or investments of the ledger, with
  their S No as used by 'budget rm'. Without -c, lists all of them.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.collection, "c", "", "Collection to list: tx, debt or invest.")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	collections := budget.Collections
	if c.collection != "" {
		col, err := budget.ParseCollection(c.collection)
		if err != nil {
			return c.app.usage("%v", err)
		}
		collections = []budget.Collection{col}
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	var b strings.Builder
	for _, col := range collections {
		b.WriteString(renderer.RenderLedger(s, col))
		b.WriteString("\n")
	}
	c.app.printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type rmCmd struct {
	app *App
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a ledger record" }
func (*rmCmd) Usage() string {
	return `budget rm <collection> <sno>

  Deletes a transaction (tx), debt payment (debt) or investment (invest) by
  its S No. The following records of the collection are renumbered.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return c.app.usage("expected a collection and a S No")
	}
	col, err := budget.ParseCollection(f.Arg(0))
	if err != nil {
		return c.app.usage("%v", err)
	}
	sno, err := strconv.Atoi(f.Arg(1))
	if err != nil {
		return c.app.usage("invalid S No %q", f.Arg(1))
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	next, err := s.WithoutEntry(col, sno)
	if err != nil {
		return c.app.fail(err)
	}
	if err := c.app.save(ctx, next, budget.DatasetOf(col)); err != nil {
		return c.app.fail(err)
	}
	c.app.success("%s #%d deleted", col, sno)
	return subcommands.ExitSuccess
}

// entryFlags are the flags shared by the add commands.
type entryFlags struct {
	date   string
	amount string
}

func (e *entryFlags) set(f *flag.FlagSet) {
	f.StringVar(&e.date, "date", "0d", "Date of the record, e.g. 15-Jan-2025, 2025-01-15 or -1d.")
	f.StringVar(&e.amount, "amount", "", "Amount, positive.")
}

func (e *entryFlags) parse() (budget.Date, budget.Money, error) {
	d, err := budget.ParseDate(e.date)
	if err != nil {
		return d, budget.Money{}, err
	}
	if e.amount == "" {
		return d, budget.Money{}, errors.New("-amount is required")
	}
	m, err := budget.ParseMoney(e.amount, "")
	return d, m, err
}

// addEntry adds e to the ledger and saves its dataset.
func (a *App) addEntry(ctx context.Context, s *budget.Snapshot, e budget.Entry) subcommands.ExitStatus {
	if p, err := s.Period(); err == nil && !p.Contains(e.When()) {
		a.warn("%s is outside the planning period %s", e.When(), p)
	}
	next, err := s.WithEntry(e)
	if err != nil {
		return a.fail(err)
	}
	if err := a.save(ctx, next, budget.DatasetOf(e.Collection())); err != nil {
		return a.fail(err)
	}
	a.success("%s #%d added", e.Collection(), next.Ledger().Len(e.Collection()))
	return subcommands.ExitSuccess
}

// checkAccount warns when name is neither an account nor a debt account.
func (a *App) checkAccount(s *budget.Snapshot, name string) {
	c := s.Categories()
	if name != "" && !c.Contains(budget.AccountsGroup, name) && !c.Contains(budget.DebtPayOffGroup, name) {
		a.warn("%q is not a known account", name)
	}
}

type addTxCmd struct {
	app *App
	entryFlags
	typ         string
	sub         string
	account     string
	description string
	interactive bool
}

func (*addTxCmd) Name() string     { return "add-tx" }
func (*addTxCmd) Synopsis() string { return "record an income or an expense" }
func (*addTxCmd) Usage() string {
	return `budget add-tx [-i] -type <Income|Expenses> -amount <amount> -account <account> [-sub <category>] [-date <date>] [-desc <text>]

  Records an actual income or expense. An income to a debt account is stored
  but does not count in the balances. With -i, prompts for every field.

Usage Examples:
$ budget add-tx -type expenses -sub Groceries -account Checking -amount 54.20
$ budget add-tx -i
`
}

func (c *addTxCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.StringVar(&c.typ, "type", "Expenses", "Income or Expenses.")
	f.StringVar(&c.sub, "sub", "", "Income or expense sub-category.")
	f.StringVar(&c.account, "account", "", "Account credited or debited.")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.BoolVar(&c.interactive, "i", false, "Prompt for the fields.")
}

func (c *addTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	if c.interactive {
		if err := c.prompt(ctx, s); err != nil {
			return c.app.fail(err)
		}
	}
	typ, err := budget.ParseTxType(c.typ)
	if err != nil {
		return c.app.usage("%v", err)
	}
	d, m, err := c.entryFlags.parse()
	if err != nil {
		return c.app.usage("%v", err)
	}
	group := budget.ExpensesGroup
	if typ == budget.Income {
		group = budget.IncomeGroup
	}
	if c.sub != "" && !s.Categories().Contains(group, c.sub) {
		c.app.warn("%q is not a known %s category", c.sub, group)
	}
	c.app.checkAccount(s, c.account)
	return c.app.addEntry(ctx, s, budget.NewTransaction(d, typ, c.sub, c.account, m, c.description))
}

// prompt fills the flags from an interactive form, flag values are the defaults.
func (c *addTxCmd) prompt(ctx context.Context, s *budget.Snapshot) error {
	cats := s.Categories()
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(huh.NewOptions(string(budget.Expenses), string(budget.Income))...).
				Value(&c.typ),
			huh.NewInput().
				Title("Date").
				Value(&c.date).
				Validate(func(v string) error { _, err := budget.ParseDate(v); return err }),
			huh.NewInput().
				Title("Amount").
				Value(&c.amount).
				Validate(func(v string) error { _, err := budget.ParseMoney(v, ""); return err }),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sub-category").
				Suggestions(append(cats.Names(budget.ExpensesGroup), cats.Names(budget.IncomeGroup)...)).
				Value(&c.sub),
			huh.NewInput().
				Title("Account").
				Suggestions(append(cats.Names(budget.AccountsGroup), cats.Names(budget.DebtPayOffGroup)...)).
				Value(&c.account),
			huh.NewInput().
				Title("Description").
				Value(&c.description),
		),
	).WithInput(c.app.In).WithOutput(c.app.Out).WithAccessible(c.app.Config.Display.Style == "plain")
	return form.RunWithContext(ctx)
}

type addDebtCmd struct {
	app *App
	entryFlags
	from, to string
}

func (*addDebtCmd) Name() string     { return "add-debt" }
func (*addDebtCmd) Synopsis() string { return "record a debt payment" }
func (*addDebtCmd) Usage() string {
	return `budget add-debt -from <account> -to <debt account> -amount <amount> [-date <date>]

  Records a payment to a debt account. Paid from an asset account it reduces
  the holdings and the outstanding debt, paid from another debt account it
  moves debt between them.
`
}

func (c *addDebtCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.StringVar(&c.from, "from", "", "Account the payment is made from.")
	f.StringVar(&c.to, "to", "", "Debt account paid.")
}

func (c *addDebtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, m, err := c.entryFlags.parse()
	if err != nil {
		return c.app.usage("%v", err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.checkAccount(s, c.from)
	if c.to != "" && !s.Categories().Contains(budget.DebtPayOffGroup, c.to) {
		c.app.warn("%q is not a known debt account, the payment will not reduce the outstanding debt", c.to)
	}
	return c.app.addEntry(ctx, s, budget.NewDebtPayment(d, c.from, c.to, m))
}

type addInvestCmd struct {
	app *App
	entryFlags
	typ, from string
}

func (*addInvestCmd) Name() string     { return "add-invest" }
func (*addInvestCmd) Synopsis() string { return "record an investment" }
func (*addInvestCmd) Usage() string {
	return `budget add-invest -type <investment> -from <account> -amount <amount> [-date <date>]

  Records money moved into an investment. From a debt account, the
  investment is counted as made using debt.
`
}

func (c *addInvestCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f)
	f.StringVar(&c.typ, "type", "", "Investment type, e.g. ETF.")
	f.StringVar(&c.from, "from", "", "Account the money comes from.")
}

func (c *addInvestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, m, err := c.entryFlags.parse()
	if err != nil {
		return c.app.usage("%v", err)
	}
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	if c.typ != "" && !s.Categories().Contains(budget.InvestmentsGroup, c.typ) {
		c.app.warn("%q is not a known investment category", c.typ)
	}
	c.app.checkAccount(s, c.from)
	return c.app.addEntry(ctx, s, budget.NewInvestment(d, c.typ, c.from, m))
}
