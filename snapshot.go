package budget

import (
	"fmt"
	"slices"
)

// Snapshot is the complete state of a budget: categories, planner and ledger.
//
// A Snapshot is immutable. Edits return a new Snapshot and never alias the receiver's data, so
// statistics computed on a Snapshot stay valid whatever happens next.
type Snapshot struct {
	categories Categories
	planner    Planner
	ledger     Ledger
	malformed  []Malformed
}

// NewSnapshot assembles a snapshot.
func NewSnapshot(c Categories, p Planner, l Ledger, malformed ...Malformed) *Snapshot {
	return &Snapshot{categories: c, planner: p, ledger: l, malformed: malformed}
}

// Categories returns the categories.
func (s *Snapshot) Categories() Categories { return s.categories }

// Planner returns the planner.
func (s *Snapshot) Planner() Planner { return s.planner }

// Ledger returns the ledger.
func (s *Snapshot) Ledger() Ledger { return s.ledger }

// Malformed returns the records that could not be decoded.
func (s *Snapshot) Malformed() []Malformed { return append([]Malformed(nil), s.malformed...) }

// Currency returns the currency of all amounts, resolved to an ISO code when the Currencies
// categories know the planner symbol.
func (s *Snapshot) Currency() string { return s.categories.CurrencyCode(s.planner.Currency()) }

// Period returns the planning period, or ErrMissingPlanningPeriod.
func (s *Snapshot) Period() (PlanningPeriod, error) { return s.planner.Period() }

// WithCategories returns a snapshot with other categories.
func (s *Snapshot) WithCategories(c Categories) *Snapshot {
	x := *s
	x.categories = c
	return &x
}

// WithPlanner returns a snapshot with another planner. Use WithStartDate to change the start.
func (s *Snapshot) WithPlanner(p Planner) *Snapshot {
	x := *s
	x.planner = p
	return &x
}

// WithLedger returns a snapshot with another ledger.
func (s *Snapshot) WithLedger(l Ledger) *Snapshot {
	x := *s
	x.ledger = l
	return &x
}

// WithStartDate validates and applies a new planning start date. It replaces a malformed one.
//
// On conflict it returns a *StartDateConflictError and no snapshot.
func (s *Snapshot) WithStartDate(d Date) (*Snapshot, error) {
	if err := ValidateStartDateChange(d, s); err != nil {
		return nil, err
	}
	x := s.WithPlanner(s.planner.WithStart(d))
	x.malformed = slices.DeleteFunc(slices.Clone(s.malformed), Malformed.isPlannerStart)
	return x, nil
}

// WithEntry adds a ledger entry, numbering it after the last one of its collection, malformed
// rows included.
func (s *Snapshot) WithEntry(e Entry) (*Snapshot, error) {
	var (
		l   Ledger
		err error
	)
	switch e := e.(type) {
	case Transaction:
		l, err = s.ledger.AddTransaction(e)
	case DebtPayment:
		l, err = s.ledger.AddDebtPayment(e)
	case Investment:
		l, err = s.ledger.AddInvestment(e)
	default:
		err = fmt.Errorf("unsupported entry %T", e)
	}
	if err != nil {
		return nil, err
	}
	c := e.Collection()
	top := 0
	for _, i := range held(s.malformed, DatasetOf(c), 0) {
		top = max(top, s.malformed[i].Serial)
	}
	if serials := l.serials(c); serials[len(serials)-1] <= top {
		serials[len(serials)-1] = top + 1
		l = l.renumber(c, serials)
	}
	return s.WithLedger(l), nil
}

// WithoutEntry deletes a ledger entry, or a malformed row, and renumbers its collection in stored
// order.
func (s *Snapshot) WithoutEntry(c Collection, sno int) (*Snapshot, error) {
	idx := held(s.malformed, DatasetOf(c), 0)
	if len(idx) == 0 {
		l, err := s.ledger.Delete(c, sno)
		if err != nil {
			return nil, err
		}
		return s.WithLedger(l), nil
	}

	rows := make([]Malformed, len(idx))
	for k, i := range idx {
		rows[k] = s.malformed[i]
	}
	serials := s.ledger.serials(c)
	order := storedOrder(len(serials), rows)
	at := slices.IndexFunc(order, func(i int) bool {
		if i < 0 {
			return rows[^i].Serial == sno
		}
		return serials[i] == sno
	})
	if at < 0 {
		return nil, fmt.Errorf("%s #%d: %w", c, sno, ErrNotFound)
	}
	removed := order[at]
	l := s.ledger
	if removed >= 0 {
		var err error
		if l, err = l.Delete(c, sno); err != nil {
			return nil, err
		}
	}

	order = slices.Delete(order, at, at+1)
	next := make([]int, 0, len(serials))
	for pos, i := range order {
		if i < 0 {
			rows[^i].renumber(c, pos, pos+1)
			continue
		}
		next = append(next, pos+1)
	}

	malformed := slices.Clone(s.malformed)
	for k, i := range idx {
		malformed[i] = rows[k]
	}
	if removed < 0 {
		i := idx[^removed]
		malformed = slices.Delete(malformed, i, i+1)
	}
	x := s.WithLedger(l.renumber(c, next))
	x.malformed = malformed
	return x, nil
}

// WithCategory adds a category name to a group, enforcing the category constraints.
func (s *Snapshot) WithCategory(g Group, name string) (*Snapshot, error) {
	c, err := s.categories.With(g, name)
	if err != nil {
		return nil, err
	}
	return s.WithCategories(c), nil
}
