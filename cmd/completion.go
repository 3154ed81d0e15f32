package cmd

import (
	"flag"
	"io"
	"strings"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors are the flag values known in advance, by flag name.
var flagPredictors = map[string]complete.Predictor{
	"section": predict.Set{"holding", "outstanding", "income", "expenses", "investments"},
	"c":       predict.Set{"tx", "debt", "invest"},
	"freq":    predict.Set(lowerNames(budget.Frequencies)),
	"html":    predict.Files("*.html"),
	"config":  predict.Files("*.toml"),
	"data":    predict.Dirs("*"),
	"backend": predict.Set{"folder", "sqlite"},
}

// argPredictors complete the positional arguments, by command name.
var argPredictors = map[string]complete.Predictor{
	"rm":       predict.Set{"tx", "debt", "invest"},
	"item":     predict.Set{"add", "rm"},
	"category": predict.Set{"list", "add", "rm", "rename", "currency"},
	"export":   predict.Files("*.json"),
	"import":   predict.Files("*.json"),
	"topic":    predict.Set{"readme", "dates", "frequencies", "planning", "balances", "storage"},
}

func lowerNames[T interface{ String() string }](values []T) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.ToLower(v.String()))
	}
	return out
}

// Completion describes the commands and their flags for shell completion. global are the flags of
// the main command.
func Completion(global *flag.FlagSet, cmds ...subcommands.Command) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(global),
	}
	for _, c := range cmds {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{
			Flags: predictors(fs),
			Args:  argPredictors[c.Name()],
		}
	}
	return root
}

func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		p, ok := flagPredictors[f.Name]
		if !ok {
			p = predict.Something
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			p = predict.Nothing
		}
		flags[f.Name] = p
	})
	return flags
}
