package cmd

import (
	"context"
	"errors"
	"flag"
	"strings"

	"github.com/etnz/budget/agent"
	"github.com/etnz/budget/docs"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type topicCmd struct {
	app  *App
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `budget topic [-l] [<topic>...]

  Shows documentation for the given topics, the readme by default.
  "*" shows every topic.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "l", false, "List the available topics.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		topics, err := docs.GetAllTopics()
		if err != nil {
			return c.app.fail(err)
		}
		c.app.printMarkdown("- " + strings.Join(topics, "\n- ") + "\n")
		return subcommands.ExitSuccess
	}
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return c.app.fail(err)
	}
	c.app.printMarkdown(doc)
	return subcommands.ExitSuccess
}

type assistCmd struct {
	app   *App
	model string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `budget assist [-model <model>] [<question>]

  Starts a chat with a Gemini backed assistant that can read the budget and
  explain its figures. The API key is read from GEMINI_API_KEY or from the
  [assistant] section of the configuration.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", "", "Gemini model, the configured one by default.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := c.app.Config.Assistant
	if cfg.APIKey == "" {
		return c.app.fail(errors.New("no API key: set GEMINI_API_KEY or assistant.api_key"))
	}
	model := cfg.Model
	if c.model != "" {
		model = c.model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return c.app.fail(err)
	}
	engine, err := c.app.engine("")
	if err != nil {
		return c.app.fail(err)
	}
	analyst, err := agent.NewAnalyst(ctx, model, c.app.Store, engine)
	if err != nil {
		return c.app.fail(err)
	}
	advisor := agent.NewAdvisor(model)
	analyst.Log, advisor.Log = c.app.Log, c.app.Log

	a := agent.New(c.app.Out, c.app.In, model, analyst, advisor)
	a.Facilitator.Log = c.app.Log
	a.Print = c.app.printMarkdown

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := a.Run(ctx, client, prompts...); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
