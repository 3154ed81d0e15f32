package cmd

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/budget"
	"github.com/etnz/budget/config"
	"github.com/etnz/budget/store"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type testApp struct {
	*App
	mem      *store.Memory
	out, err *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.DefaultConfig()
	cfg.Display.Style = "plain"

	mem := store.NewMemory(log)
	a := &testApp{App: NewApp(mem, cfg, log), mem: mem, out: new(bytes.Buffer), err: new(bytes.Buffer)}
	a.In = strings.NewReader("")
	a.Out, a.Err = a.out, a.err
	return a
}

// run executes a command line and returns its status. Output buffers are reset first.
func (a *testApp) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	a.out.Reset()
	a.err.Reset()
	fs := flag.NewFlagSet("budget", flag.ContinueOnError)
	c := subcommands.NewCommander(fs, "budget")
	c.Output, c.Error = io.Discard, io.Discard
	Register(c, a.App)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return c.Execute(context.Background())
}

// must runs a command line that must succeed.
func (a *testApp) must(t *testing.T, args ...string) string {
	t.Helper()
	if got := a.run(t, args...); got != subcommands.ExitSuccess {
		t.Fatalf("budget %s = %v, stderr:\n%s", strings.Join(args, " "), got, a.err)
	}
	return a.out.String()
}

func (a *testApp) snapshot(t *testing.T) *budget.Snapshot {
	t.Helper()
	s, err := a.mem.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// seed creates a budget starting on 1-Jan-2025 with an account and a debt account.
func seed(t *testing.T) *testApp {
	t.Helper()
	a := newTestApp(t)
	a.must(t, "start", "-currency", "€", "1-Jan-2025")
	a.must(t, "category", "currency", "Euro", "€", "EUR")
	a.must(t, "category", "add", "accounts", "Checking")
	a.must(t, "category", "add", "debt", "Visa")
	a.must(t, "category", "add", "income", "Salary")
	return a
}

func TestStart(t *testing.T) {
	a := seed(t)
	s := a.snapshot(t)
	if got, want := s.Planner().Start(), budget.NewDate(2025, 1, 1); got != want {
		t.Errorf("Start() = %v, want %v", got, want)
	}
	if got := s.Currency(); got != "EUR" {
		t.Errorf("Currency() = %q, want EUR", got)
	}

	a.must(t, "add-tx", "-type", "income", "-sub", "Salary", "-account", "Checking", "-amount", "2000", "-date", "2025-01-10")
	if got := a.run(t, "start", "1-Mar-2025"); got != subcommands.ExitFailure {
		t.Fatalf("start on a conflicting date = %v, want failure", got)
	}
	if out := a.out.String(); !strings.Contains(out, "Transaction #1 (10-Jan-2025)") {
		t.Errorf("conflicts not listed:\n%s", out)
	}
	if got := a.snapshot(t).Planner().Start(); got != budget.NewDate(2025, 1, 1) {
		t.Errorf("rejected start date was saved: %v", got)
	}

	out := a.must(t, "start", "-n")
	if !strings.Contains(out, "every record fits") {
		t.Errorf("start -n = %q", out)
	}
}

func TestLedger(t *testing.T) {
	a := seed(t)
	a.must(t, "add-tx", "-type", "income", "-sub", "Salary", "-account", "Checking", "-amount", "2000", "-date", "2025-01-10")
	a.must(t, "add-tx", "-type", "expenses", "-sub", "Rent", "-account", "Checking", "-amount", "800", "-date", "2025-01-12", "-desc", "january")
	if !strings.Contains(a.err.String(), `"Rent" is not a known Expenses category`) {
		t.Errorf("missing unknown category warning, stderr:\n%s", a.err)
	}
	a.must(t, "add-debt", "-from", "Checking", "-to", "Visa", "-amount", "100", "-date", "2025-01-15")
	a.must(t, "add-invest", "-type", "ETF", "-from", "Checking", "-amount", "300", "-date", "2025-01-20")

	l := a.snapshot(t).Ledger()
	for c, want := range map[budget.Collection]int{budget.Transactions: 2, budget.DebtPayments: 1, budget.Investments: 1} {
		if got := l.Len(c); got != want {
			t.Errorf("Len(%v) = %d, want %d", c, got, want)
		}
	}

	out := a.must(t, "tx", "-c", "tx")
	if !strings.Contains(out, "| 2 | 12-Jan-2025 | Expenses | Rent | Checking |") {
		t.Errorf("tx -c tx =\n%s", out)
	}

	a.must(t, "rm", "tx", "1")
	txs := a.snapshot(t).Ledger().Transactions()
	if len(txs) != 1 || txs[0].SNo != 1 || txs[0].SubCategory != "Rent" {
		t.Errorf("after rm, transactions = %+v", txs)
	}
	if got := a.run(t, "rm", "tx", "5"); got != subcommands.ExitFailure {
		t.Errorf("rm of a missing record = %v, want failure", got)
	}
}

func TestLedger_Invalid(t *testing.T) {
	a := seed(t)
	tests := []struct {
		args []string
		want subcommands.ExitStatus
	}{
		{[]string{"add-tx", "-type", "gift", "-account", "Checking", "-amount", "1"}, subcommands.ExitUsageError},
		{[]string{"add-tx", "-account", "Checking"}, subcommands.ExitUsageError},
		{[]string{"add-tx", "-account", "Checking", "-amount", "1", "-date", "31-Feb-2025"}, subcommands.ExitUsageError},
		{[]string{"add-tx", "-amount", "1"}, subcommands.ExitFailure}, // no account
		{[]string{"add-debt", "-from", "Checking", "-amount", "-5"}, subcommands.ExitFailure},
		{[]string{"rm", "tx"}, subcommands.ExitUsageError},
		{[]string{"rm", "bonds", "1"}, subcommands.ExitUsageError},
		{[]string{"tx", "-c", "bonds"}, subcommands.ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if got := a.run(t, tt.args...); got != tt.want {
				t.Errorf("status = %v, want %v, stderr:\n%s", got, tt.want, a.err)
			}
			if !strings.Contains(a.err.String(), "Error:") {
				t.Errorf("stderr = %q, want an error", a.err)
			}
		})
	}
	if n := a.snapshot(t).Ledger().Len(budget.Transactions); n != 0 {
		t.Errorf("invalid records were saved: %d", n)
	}
}

func TestItem(t *testing.T) {
	a := seed(t)
	a.must(t, "item", "add", "-section", "holding", "-account", "Checking", "-amount", "1000")
	a.must(t, "item", "add", "-section", "income", "-sub", "Salary", "-freq", "monthly", "-amount", "2000")
	a.must(t, "item", "add", "-section", "expenses", "-sub", "Rent", "-amount", "800", "-start", "1-Feb-2025", "-end", "31-Dec-2025")

	p := a.snapshot(t).Planner()
	items := p.Items(budget.ExpectedIncome)
	if len(items) != 1 {
		t.Fatalf("income items = %d, want 1", len(items))
	}
	if got, want := items[0].End, budget.NewDate(2025, 12, 31); got != want {
		t.Errorf("default end = %v, want %v", got, want)
	}
	if got := p.Items(budget.PlannedExpenses)[0].Start; got != budget.NewDate(2025, 2, 1) {
		t.Errorf("start = %v", got)
	}

	out := a.must(t, "planner", "-section", "income")
	if !strings.Contains(out, "# Expected Income") || !strings.Contains(out, "€24,000.00") {
		t.Errorf("planner -section income =\n%s", out)
	}

	a.must(t, "item", "rm", "-section", "expenses", "1")
	if n := a.snapshot(t).Planner().Len(budget.PlannedExpenses); n != 0 {
		t.Errorf("expenses after rm = %d, want 0", n)
	}

	for _, args := range [][]string{
		{"item", "add"},
		{"item", "add", "-section", "savings", "-amount", "1"},
		{"item", "move", "-section", "income"},
		{"item", "rm", "-section", "income", "one"},
	} {
		if got := a.run(t, args...); got != subcommands.ExitUsageError {
			t.Errorf("budget %s = %v, want usage error", strings.Join(args, " "), got)
		}
	}
	if got := a.run(t, "item", "add", "-section", "income", "-sub", "Salary", "-amount", "10", "-start", "1-Dec-2025", "-end", "1-Jan-2025"); got != subcommands.ExitFailure {
		t.Errorf("reversed dates = %v, want failure", got)
	}
}

func TestReports(t *testing.T) {
	a := seed(t)
	a.must(t, "item", "add", "-section", "holding", "-account", "Checking", "-amount", "1000")
	a.must(t, "item", "add", "-section", "income", "-sub", "Salary", "-amount", "2000")
	a.must(t, "add-tx", "-type", "income", "-sub", "Salary", "-account", "Checking", "-amount", "2000", "-date", "2025-01-10")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"dashboard", "-today", "31-Jan-2025"}, "# Budget Dashboard"},
		{[]string{"dashboard", "-today", "31-Jan-2025", "-no-monthly"}, "## Balances"},
		{[]string{"monthly", "-today", "31-Jan-2025"}, "Jan"},
		{[]string{"categories"}, "Salary"},
		{[]string{"query", "-today", "31-Jan-2025", "$.balances.netWorth"}, "3000"},
		{[]string{"query", "currency"}, `"EUR"`},
		{[]string{"category"}, "- Checking"},
		{[]string{"topic", "dates"}, "#"},
		{[]string{"topic", "-l"}, "- readme"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if out := a.must(t, tt.args...); !strings.Contains(out, tt.want) {
				t.Errorf("output does not contain %q:\n%s", tt.want, out)
			}
		})
	}

	if out := a.must(t, "dashboard", "-today", "31-Jan-2025", "-no-monthly"); strings.Contains(out, "## Monthly") {
		t.Errorf("-no-monthly rendered the monthly section:\n%s", out)
	}
	if got := a.run(t, "query"); got != subcommands.ExitUsageError {
		t.Errorf("query without expression = %v", got)
	}
	if got := a.run(t, "dashboard", "-today", "someday"); got != subcommands.ExitUsageError {
		t.Errorf("dashboard -today someday = %v", got)
	}
	if got := a.run(t, "topic", "nope"); got != subcommands.ExitFailure {
		t.Errorf("topic nope = %v", got)
	}
}

func TestDashboard_HTML(t *testing.T) {
	a := seed(t)
	file := filepath.Join(t.TempDir(), "dashboard.html")
	a.must(t, "dashboard", "-html", file)
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<h1>Budget Dashboard</h1>") {
		t.Errorf("dashboard.html =\n%s", data)
	}
}

func TestCategory(t *testing.T) {
	a := seed(t)
	if got := a.run(t, "category", "add", "debt", "checking"); got != subcommands.ExitFailure {
		t.Errorf("account added as a debt = %v, want failure", got)
	}
	if got := a.run(t, "category", "add", "accounts", "CHECKING"); got != subcommands.ExitFailure {
		t.Errorf("duplicate account = %v, want failure", got)
	}
	a.must(t, "category", "rename", "accounts", "Checking", "Current")
	a.must(t, "category", "rm", "income", "Salary")

	c := a.snapshot(t).Categories()
	if !c.Contains(budget.AccountsGroup, "Current") || c.Contains(budget.AccountsGroup, "Checking") {
		t.Errorf("accounts = %v", c.Names(budget.AccountsGroup))
	}
	if c.Contains(budget.IncomeGroup, "Salary") {
		t.Errorf("income = %v", c.Names(budget.IncomeGroup))
	}
	if got := a.run(t, "category", "add", "pets", "Cat"); got != subcommands.ExitUsageError {
		t.Errorf("unknown group = %v, want usage error", got)
	}
}

func TestExportImport(t *testing.T) {
	a := seed(t)
	a.must(t, "add-tx", "-type", "income", "-account", "Checking", "-amount", "2000", "-date", "2025-01-10")
	file := filepath.Join(t.TempDir(), budget.BackupFilename)
	a.must(t, "export", file)

	b := newTestApp(t)
	out := b.must(t, "import", file)
	if !strings.Contains(out, "1 transaction(s)") {
		t.Errorf("import = %q", out)
	}
	want, err := budget.EncodeSnapshot(a.snapshot(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range budget.Datasets {
		if got := b.mem.Document(d); !bytes.Equal(got, want[d]) {
			t.Errorf("%s differs:\n%s\n!=\n%s", d, got, want[d])
		}
	}

	out = a.must(t, "export", "-")
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("export - =\n%s", out)
	}
	if got := b.run(t, "import", filepath.Join(t.TempDir(), "missing.json")); got != subcommands.ExitFailure {
		t.Errorf("import of a missing file = %v", got)
	}
}

func TestAssist_NoKey(t *testing.T) {
	a := newTestApp(t)
	a.Config.Assistant.APIKey = ""
	if got := a.run(t, "assist"); got != subcommands.ExitFailure {
		t.Errorf("assist without key = %v, want failure", got)
	}
}

func TestCompletion(t *testing.T) {
	a := newTestApp(t)
	global := flag.NewFlagSet("budget", flag.ContinueOnError)
	global.String("backend", "", "")
	var all []subcommands.Command
	for _, g := range Groups {
		all = append(all, a.Commands()[g]...)
	}
	c := Completion(global, all...)

	if len(c.Sub) != len(all) {
		t.Errorf("Sub = %d commands, want %d", len(c.Sub), len(all))
	}
	if _, ok := c.Flags["backend"]; !ok {
		t.Error("global flag backend is not completed")
	}
	item, ok := c.Sub["item"]
	if !ok {
		t.Fatal("item is not completed")
	}
	if _, ok := item.Flags["section"]; !ok {
		t.Error("item -section is not completed")
	}
	if item.Args == nil {
		t.Error("item arguments are not completed")
	}
	if got := c.Sub["add-tx"].Flags["i"].Predict(""); len(got) != 0 {
		t.Errorf("boolean flag predicts %v", got)
	}
}
