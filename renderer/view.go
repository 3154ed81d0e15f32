package renderer

import (
	"github.com/etnz/budget"
)

// PlannedItem is a recurring item valued over the planning period.
type PlannedItem struct {
	budget.RecurringItem
	Index       int // 1-based position in its section
	Monthly     budget.Money
	Occurrences int
	PeriodTotal budget.Money
}

// PlannerSection is the view of one planner section.
type PlannerSection struct {
	Section  budget.Section
	Currency string
	Period   *budget.PlanningPeriod

	Balances []budget.Balance // CurrentHolding and CurrentOutstanding
	Total    budget.Money

	Items   []PlannedItem // recurring sections
	Summary budget.SectionSummary
}

// NewPlannerSection values the rows of a planner section in the currency of s.
func NewPlannerSection(s *budget.Snapshot, section budget.Section) PlannerSection {
	cur := s.Currency()
	ps := PlannerSection{Section: section, Currency: cur}
	if p, err := s.Period(); err == nil {
		ps.Period = &p
	}
	p := s.Planner()
	if !section.IsRecurring() {
		for _, b := range p.Balances(section) {
			b.Amount = b.Amount.In(cur)
			ps.Balances = append(ps.Balances, b)
		}
		ps.Total = p.Total(section).In(cur)
		return ps
	}

	items := p.Items(section)
	for i := range items {
		items[i].Amount = items[i].Amount.In(cur)
	}
	for i, it := range items {
		pi := PlannedItem{
			RecurringItem: it,
			Index:         i + 1,
			Monthly:       budget.MonthlyEquivalent(it),
			PeriodTotal:   budget.M(0, cur),
		}
		if ps.Period != nil {
			pi.Occurrences, pi.PeriodTotal = budget.ItemOccurrences(it, *ps.Period)
		}
		ps.Items = append(ps.Items, pi)
	}
	ps.Summary = budget.SummarizeSection(items, ps.Period)
	ps.Total = ps.Summary.Total
	return ps
}

// LedgerView is the view of one ledger collection.
type LedgerView struct {
	Collection   budget.Collection
	Currency     string
	Transactions []budget.Transaction
	DebtPayments []budget.DebtPayment
	Investments  []budget.Investment
	Count        int
	Total        budget.Money
}

// NewLedgerView lists a ledger collection of s in the currency of s.
func NewLedgerView(s *budget.Snapshot, c budget.Collection) LedgerView {
	cur := s.Currency()
	v := LedgerView{Collection: c, Currency: cur, Total: budget.M(0, cur)}
	l := s.Ledger()
	switch c {
	case budget.Transactions:
		for _, tx := range l.Transactions() {
			tx.Amount = tx.Amount.In(cur)
			v.Transactions = append(v.Transactions, tx)
		}
	case budget.DebtPayments:
		for _, d := range l.DebtPayments() {
			d.Amount = d.Amount.In(cur)
			v.DebtPayments = append(v.DebtPayments, d)
		}
	case budget.Investments:
		for _, i := range l.Investments() {
			i.Amount = i.Amount.In(cur)
			v.Investments = append(v.Investments, i)
		}
	}
	for e := range l.Entries(c) {
		v.Count++
		v.Total = v.Total.Add(e.Value().In(cur))
	}
	return v
}
