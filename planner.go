package budget

import (
	"fmt"
	"slices"
	"strings"
)

// Section is a part of the planner.
type Section int

const (
	CurrentHolding Section = iota
	CurrentOutstanding
	ExpectedIncome
	PlannedExpenses
	PlannedInvestments
)

// Sections lists all planner sections, in store order.
var Sections = []Section{CurrentHolding, CurrentOutstanding, ExpectedIncome, PlannedExpenses, PlannedInvestments}

// RecurringSections lists the sections made of recurring items.
var RecurringSections = []Section{ExpectedIncome, PlannedExpenses, PlannedInvestments}

// String returns the section name as persisted, e.g. "Expected Income".
func (s Section) String() string {
	switch s {
	case CurrentHolding:
		return "Current Holding"
	case CurrentOutstanding:
		return "Current Outstanding"
	case ExpectedIncome:
		return "Expected Income"
	case PlannedExpenses:
		return "Planned Expenses"
	case PlannedInvestments:
		return "Planned Investments"
	default:
		return "Unknown"
	}
}

// IsRecurring reports whether the section holds recurring items rather than balances.
func (s Section) IsRecurring() bool { return s >= ExpectedIncome }

// ParseSection parses a section name, ignoring case, spaces and dashes. Short forms like
// "income", "expenses", "investments", "holding" and "outstanding" are accepted.
func ParseSection(str string) (Section, error) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(str))
	for _, s := range Sections {
		full := strings.ReplaceAll(strings.ToLower(s.String()), " ", "")
		short := strings.ToLower(s.String()[strings.LastIndex(s.String(), " ")+1:])
		if key == full || key == short {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown planner section %q", str)
}

// Balance is an opening balance of an account.
type Balance struct {
	Account string
	Amount  Money
}

// Planner holds the plan: the start of the planning period, the opening balances and the
// recurring items.
//
// A Planner is a value: every edit returns a new Planner.
type Planner struct {
	start    Date // zero when not set
	currency string
	balances map[Section][]Balance
	items    map[Section][]RecurringItem
}

// NewPlanner creates a planner. A zero start means the planning period is not set yet.
func NewPlanner(start Date, currency string) Planner {
	return Planner{start: start, currency: currency}
}

// Start returns the planning start date, zero if not set.
func (p Planner) Start() Date { return p.start }

// Currency returns the planner currency, a symbol or an ISO code.
func (p Planner) Currency() string { return p.currency }

// Period returns the planning period, or ErrMissingPlanningPeriod.
func (p Planner) Period() (PlanningPeriod, error) {
	if p.start.IsZero() {
		return PlanningPeriod{}, ErrMissingPlanningPeriod
	}
	return PlanningWindow(p.start), nil
}

// Balances returns a copy of the balances of CurrentHolding or CurrentOutstanding.
func (p Planner) Balances(s Section) []Balance { return slices.Clone(p.balances[s]) }

// Items returns a copy of the recurring items of a recurring section.
func (p Planner) Items(s Section) []RecurringItem { return slices.Clone(p.items[s]) }

// Len returns the number of rows in a section.
func (p Planner) Len(s Section) int {
	if s.IsRecurring() {
		return len(p.items[s])
	}
	return len(p.balances[s])
}

// Total returns the sum of a balance section.
func (p Planner) Total(s Section) Money {
	var total Money
	for _, b := range p.balances[s] {
		total = total.Add(b.Amount)
	}
	return total
}

// WithStart returns the planner starting on d. It does not check existing records,
// see Snapshot.WithStartDate.
func (p Planner) WithStart(d Date) Planner {
	p = p.clone()
	p.start = d
	return p
}

// WithCurrency returns the planner with another currency symbol.
func (p Planner) WithCurrency(currency string) Planner {
	p = p.clone()
	p.currency = currency
	return p
}

// WithBalance returns the planner with a balance appended to CurrentHolding or CurrentOutstanding.
func (p Planner) WithBalance(s Section, b Balance) (Planner, error) {
	if s.IsRecurring() {
		return p, fmt.Errorf("%s does not hold balances", s)
	}
	if strings.TrimSpace(b.Account) == "" {
		return p, fmt.Errorf("%s: account is required", s)
	}
	p = p.clone()
	p.balances[s] = append(p.balances[s], b)
	return p, nil
}

// WithItem returns the planner with a recurring item appended to a recurring section.
func (p Planner) WithItem(s Section, it RecurringItem) (Planner, error) {
	if !s.IsRecurring() {
		return p, fmt.Errorf("%s does not hold recurring items", s)
	}
	if err := it.Validate(); err != nil {
		return p, fmt.Errorf("invalid %s item: %w", s, err)
	}
	p = p.clone()
	p.items[s] = append(p.items[s], it)
	return p, nil
}

// ReplaceItem returns the planner with the i-th (0-based) item of a section replaced.
func (p Planner) ReplaceItem(s Section, i int, it RecurringItem) (Planner, error) {
	if i < 0 || i >= len(p.items[s]) {
		return p, fmt.Errorf("%s #%d: %w", s, i+1, ErrNotFound)
	}
	if err := it.Validate(); err != nil {
		return p, fmt.Errorf("invalid %s item: %w", s, err)
	}
	p = p.clone()
	p.items[s][i] = it
	return p, nil
}

// Without returns the planner without the i-th (0-based) row of a section.
func (p Planner) Without(s Section, i int) (Planner, error) {
	if i < 0 || i >= p.Len(s) {
		return p, fmt.Errorf("%s #%d: %w", s, i+1, ErrNotFound)
	}
	p = p.clone()
	if s.IsRecurring() {
		p.items[s] = slices.Delete(p.items[s], i, i+1)
	} else {
		p.balances[s] = slices.Delete(p.balances[s], i, i+1)
	}
	return p, nil
}

// clone deep copies the sections so that the copy can be edited.
func (p Planner) clone() Planner {
	out := Planner{start: p.start, currency: p.currency,
		balances: make(map[Section][]Balance), items: make(map[Section][]RecurringItem)}
	for s, l := range p.balances {
		out.balances[s] = slices.Clone(l)
	}
	for s, l := range p.items {
		out.items[s] = slices.Clone(l)
	}
	return out
}
