package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
)

type categoryCmd struct {
	app *App
}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "list, add, remove or rename categories" }
func (*categoryCmd) Usage() string {
	return `budget category [list]
budget category add <group> <name>
budget category rm <group> <name>
budget category rename <group> <name> <new name>
budget category currency <name> <symbol> <code>

  Manages the category names. Groups: income, expenses, accounts, debt,
  investments, frequencies. A name cannot be both an account and a debt
  account, names are unique in their group, ignoring case.

Usage Examples:
$ budget category add debt "Credit Card"
$ budget category rename expenses Food Groceries
$ budget category currency Euro € EUR
`
}

func (c *categoryCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.load(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	args := f.Args()
	if len(args) == 0 || args[0] == "list" {
		c.list(s.Categories())
		return subcommands.ExitSuccess
	}

	cats := s.Categories()
	action := args[0]
	if action == "currency" {
		if len(args) != 4 {
			return c.app.usage("expected a currency name, symbol and code")
		}
		if cats, err = cats.WithCurrency(budget.CurrencyRecord{Name: args[1], Symbol: args[2], Code: args[3]}); err != nil {
			return c.app.fail(err)
		}
		return c.save(ctx, s, cats, "currency %s added", args[1])
	}

	if len(args) < 3 {
		return c.app.usage("expected a group and a name")
	}
	g, err := budget.ParseGroup(args[1])
	if err != nil {
		return c.app.usage("%v", err)
	}
	name := args[2]
	switch action {
	case "add":
		cats, err = cats.With(g, name)
	case "rm":
		cats, err = cats.Without(g, name)
	case "rename":
		if len(args) != 4 {
			return c.app.usage("expected the new name")
		}
		cats, err = cats.Rename(g, name, args[3])
		name = args[3]
	default:
		return c.app.usage("unknown action %q", action)
	}
	if err != nil {
		return c.app.fail(err)
	}
	return c.save(ctx, s, cats, "%s %q saved", g, name)
}

func (c *categoryCmd) save(ctx context.Context, s *budget.Snapshot, cats budget.Categories, format string, args ...any) subcommands.ExitStatus {
	if err := c.app.save(ctx, s.WithCategories(cats), budget.CategoriesDataset); err != nil {
		return c.app.fail(err)
	}
	c.app.success(format, args...)
	return subcommands.ExitSuccess
}

func (c *categoryCmd) list(cats budget.Categories) {
	var b strings.Builder
	b.WriteString("# Categories\n")
	for _, g := range budget.Groups {
		b.WriteString("\n## " + g.String() + "\n\n")
		names := cats.Names(g)
		if len(names) == 0 {
			b.WriteString("_none_\n")
		}
		for _, n := range names {
			b.WriteString("- " + n + "\n")
		}
	}
	if recs := cats.Currencies(); len(recs) > 0 {
		b.WriteString("\n## Currencies\n\n")
		for _, r := range recs {
			b.WriteString("- " + r.Name + " " + r.Symbol + " " + r.Code + "\n")
		}
	}
	c.app.printMarkdown(b.String())
}
