// Package renderer renders budget statistics, planner sections and ledgers as markdown.
//
// Every report is a text/template assembled from a main template and its partials, all embedded
// in the binary. The markdown can be displayed in a terminal or converted to HTML.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/budget"
)

//go:embed *.md
var templates embed.FS

var funcs = template.FuncMap{
	"signed": func(m budget.Money) string { return m.SignedString() },
	"inc":    func(i int) int { return i + 1 },
	"cell":   cell,
}

// cell escapes a free-text value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return s
}

// DashboardOptions holds configuration for rendering the dashboard.
type DashboardOptions struct {
	TopCategories int  // number of categories listed, all of them when 0 or less
	SkipMonthly   bool // Do not render the monthly section.
}

// RenderDashboard renders the statistics as the main dashboard.
func RenderDashboard(st *budget.Statistics, opts DashboardOptions) string {
	partials := map[string]string{
		"dashboard_title":    "dashboard_title.md",
		"dashboard_balances": "dashboard_balances.md",
		"dashboard_period":   "dashboard_period.md",
		"dashboard_health":   "dashboard_health.md",
		"categories_table":   "categories_table.md",
		"monthly_table":      "monthly_table.md",
	}
	view := struct {
		*budget.Statistics
		Top         []budget.CategoryStats
		SkipMonthly bool
	}{st, st.TopCategories(opts.TopCategories), opts.SkipMonthly}
	return renderTemplate("dashboard", "dashboard.md", partials, view)
}

// RenderMonthly renders the month by month breakdown of the planning period.
func RenderMonthly(st *budget.Statistics) string {
	partials := map[string]string{
		"monthly_table": "monthly_table.md",
	}
	return renderTemplate("monthly", "monthly.md", partials, st)
}

// RenderCategories renders the top n categories by absolute net amount, all of them if n <= 0.
func RenderCategories(st *budget.Statistics, n int) string {
	partials := map[string]string{
		"categories_table": "categories_table.md",
	}
	view := struct {
		*budget.Statistics
		Top []budget.CategoryStats
	}{st, st.TopCategories(n)}
	return renderTemplate("categories", "categories.md", partials, view)
}

// RenderPlanner renders one section of the planner of s.
func RenderPlanner(s *budget.Snapshot, section budget.Section) string {
	partials := map[string]string{
		"planner_title": "planner_title.md",
	}
	if section.IsRecurring() {
		partials["planner_rows"] = "planner_items.md"
	} else {
		partials["planner_rows"] = "planner_balances.md"
	}
	return renderTemplate("planner", "planner.md", partials, NewPlannerSection(s, section))
}

// RenderLedger renders one ledger collection of s.
func RenderLedger(s *budget.Snapshot, c budget.Collection) string {
	partials := map[string]string{}
	switch c {
	case budget.Transactions:
		partials["ledger_rows"] = "ledger_transactions.md"
	case budget.DebtPayments:
		partials["ledger_rows"] = "ledger_debts.md"
	case budget.Investments:
		partials["ledger_rows"] = "ledger_investments.md"
	}
	return renderTemplate("ledger", "ledger.md", partials, NewLedgerView(s, c))
}

// RenderConflicts renders the records preventing a start date change.
func RenderConflicts(err *budget.StartDateConflictError) string {
	return renderTemplate("conflicts", "conflicts.md", nil, err)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
