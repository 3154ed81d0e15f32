// Package cmd implements the budget command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/budget"
	"github.com/etnz/budget/config"
	"github.com/etnz/budget/store"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// App holds what the commands share. Commands never open the store themselves, it is given by the
// main package.
type App struct {
	Store  store.Store
	Config config.Config
	Log    logrus.FieldLogger

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewApp creates an App writing to the standard output.
func NewApp(st store.Store, cfg config.Config, log logrus.FieldLogger) *App {
	return &App{Store: st, Config: cfg, Log: log, In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Commands returns the commands bound to a, by group.
func (a *App) Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"reports": {
			&dashboardCmd{app: a},
			&monthlyCmd{app: a},
			&categoriesCmd{app: a},
			&queryCmd{app: a},
		},
		"planner": {
			&plannerCmd{app: a},
			&itemCmd{app: a},
			&startCmd{app: a},
		},
		"ledger": {
			&txCmd{app: a},
			&addTxCmd{app: a},
			&addDebtCmd{app: a},
			&addInvestCmd{app: a},
			&rmCmd{app: a},
		},
		"categories": {
			&categoryCmd{app: a},
		},
		"data": {
			&exportCmd{app: a},
			&importCmd{app: a},
		},
		"help": {
			&topicCmd{app: a},
			&assistCmd{app: a},
		},
	}
}

// Groups lists the command groups in display order.
var Groups = []string{"reports", "planner", "ledger", "categories", "data", "help"}

// Register registers the commands of a.
func Register(c *subcommands.Commander, a *App) {
	cmds := a.Commands()
	for _, g := range Groups {
		for _, cmd := range cmds[g] {
			c.Register(cmd, g)
		}
	}
}

func (a *App) load(ctx context.Context) (*budget.Snapshot, error) {
	s, err := a.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load the budget: %w", err)
	}
	return s, nil
}

func (a *App) save(ctx context.Context, s *budget.Snapshot, datasets ...budget.Dataset) error {
	if err := a.Store.Save(ctx, s, datasets...); err != nil {
		return fmt.Errorf("could not save the budget: %w", err)
	}
	return nil
}

// engine creates the statistics engine, today is "" for the current date.
func (a *App) engine(today string) (*budget.Engine, error) {
	opts := []budget.EngineOption{budget.WithLogger(a.Log)}
	if today != "" {
		d, err := budget.ParseDate(today)
		if err != nil {
			return nil, err
		}
		opts = append(opts, budget.WithClock(func() time.Time { return d.Noon(time.Local) }))
	}
	return budget.NewEngine(opts...), nil
}

// printMarkdown renders markdown to the output, unless the display style is "plain".
func (a *App) printMarkdown(md string) {
	style := a.Config.Display.Style
	if style == "plain" {
		fmt.Fprint(a.Out, md)
		return
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(a.Config.Display.Width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		a.Log.WithError(err).Warn("markdown renderer unavailable")
		fmt.Fprint(a.Out, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		a.Log.WithError(err).Warn("cannot render markdown")
		fmt.Fprint(a.Out, md)
		return
	}
	fmt.Fprint(a.Out, out)
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#879A39")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D14D41")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DA702C"))
)

// success prints a status line.
func (a *App) success(format string, args ...any) {
	fmt.Fprintln(a.Out, okStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintln(a.Err, warnStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// fail prints an error and returns the failure status.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, errStyle.Render("Error:")+" "+err.Error())
	return subcommands.ExitFailure
}

// usage prints a usage error.
func (a *App) usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintln(a.Err, errStyle.Render("Error:")+" "+fmt.Sprintf(format, args...))
	return subcommands.ExitUsageError
}
