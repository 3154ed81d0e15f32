package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/store"
	"github.com/google/subcommands"
)

type exportCmd struct {
	app *App
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a backup of the budget" }
func (*exportCmd) Usage() string {
	return `budget export [<file>]

  Writes every dataset in a single JSON backup file, ` + budget.BackupFilename + ` by
  default. "-" writes to the standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := budget.BackupFilename
	if f.NArg() > 0 {
		name = f.Arg(0)
	}
	if name == "-" {
		if err := store.Export(ctx, c.app.Store, c.app.Out); err != nil {
			return c.app.fail(err)
		}
		return subcommands.ExitSuccess
	}

	file, err := os.Create(name)
	if err != nil {
		return c.app.fail(err)
	}
	defer file.Close()
	if err := store.Export(ctx, c.app.Store, file); err != nil {
		return c.app.fail(err)
	}
	if err := file.Close(); err != nil {
		return c.app.fail(err)
	}
	c.app.success("budget exported to %s", name)
	return subcommands.ExitSuccess
}

type importCmd struct {
	app *App
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the budget with a backup" }
func (*importCmd) Usage() string {
	return `budget import [<file>]

  Replaces every dataset with the content of a JSON backup file, ` + budget.BackupFilename + `
  by default. "-" reads the standard input.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := budget.BackupFilename
	if f.NArg() > 0 {
		name = f.Arg(0)
	}
	r := c.app.In
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return c.app.fail(err)
		}
		defer file.Close()
		r = file
	}
	s, err := store.Import(ctx, c.app.Store, r, c.app.Log)
	if err != nil {
		return c.app.fail(err)
	}
	if n := len(s.Malformed()); n > 0 {
		c.app.warn("%d malformed record(s) imported, see 'budget start -n'", n)
	}
	c.app.success("budget imported from %s: %d transaction(s), %d debt payment(s), %d investment(s)", name,
		s.Ledger().Len(budget.Transactions), s.Ledger().Len(budget.DebtPayments), s.Ledger().Len(budget.Investments))
	return subcommands.ExitSuccess
}
