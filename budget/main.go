// Command budget plans a personal budget and tracks the actual figures against the plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/etnz/budget/cmd"
	"github.com/etnz/budget/config"
	"github.com/etnz/budget/store"
	"github.com/google/subcommands"
)

var (
	configPath = flag.String("config", "", "Path to the configuration file, "+config.Path()+" by default.")
	dataFolder = flag.String("data", "", "Folder of the budget datasets, overrides the configuration.")
	backend    = flag.String("backend", "", "Storage backend: folder or sqlite, overrides the configuration.")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warning or error, overrides the configuration.")
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Error loading .env:", err)
		return 1
	}

	app := &cmd.App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	var all []subcommands.Command
	for _, g := range cmd.Groups {
		all = append(all, app.Commands()[g]...)
	}
	// exits when invoked by the shell to complete a command line.
	cmd.Completion(flag.CommandLine, all...).Complete("budget")

	commander := subcommands.NewCommander(flag.CommandLine, "budget")
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander, app)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	if *dataFolder != "" {
		cfg.Data.Folder = *dataFolder
	}
	if *backend != "" {
		cfg.Data.Backend = *backend
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		return 1
	}

	log, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	st, err := store.Open(cfg.Data.Backend, cfg.Data.Folder, cfg.SQLitePath(), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer func() {
		if err := store.Close(st); err != nil {
			log.WithError(err).Warn("closing the store")
		}
	}()
	app.Store, app.Config, app.Log = st, cfg, log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return int(commander.Execute(ctx))
}
