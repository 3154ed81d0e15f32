package budget

import (
	"cmp"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine computes Statistics from a Snapshot.
//
// It holds no state besides its clock and logger: Compute can be called after each change and
// always returns fresh statistics.
type Engine struct {
	now func() time.Time
	log logrus.FieldLogger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used to compute "to date" figures.
func WithClock(now func() time.Time) EngineOption { return func(e *Engine) { e.now = now } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) EngineOption { return func(e *Engine) { e.log = l } }

// NewEngine creates an engine using the local time and the standard logger by default.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{now: time.Now, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Balances are the holdings, outstanding debt and net worth derived from the opening balances and
// the ledger.
type Balances struct {
	BaseHoldings          Money `json:"baseHoldings"`
	IncomeToAssets        Money `json:"incomeToAssets"`
	ExpensesFromAssets    Money `json:"expensesFromAssets"`
	DebtPayoffFromAssets  Money `json:"debtPayoffFromAssets"`
	InvestmentsFromAssets Money `json:"investmentsFromAssets"`
	CurrentHoldings       Money `json:"currentHoldings"`

	BaseOutstanding      Money `json:"baseOutstanding"`
	ExpensesUsingDebt    Money `json:"expensesUsingDebt"`
	InvestmentsUsingDebt Money `json:"investmentsUsingDebt"`
	DebtPayoffUsingDebt  Money `json:"debtPayoffUsingDebt"`
	CurrentOutstanding   Money `json:"currentOutstanding"`

	TotalInvested Money `json:"totalInvested"`
	NetWorth      Money `json:"netWorth"`
}

// MonthStats are the figures of one calendar month of the planning period.
type MonthStats struct {
	Key                string `json:"key"`  // 2025-01
	Name               string `json:"name"` // Jan 2025
	Month              Range  `json:"-"`
	ActualIncome       Money  `json:"actualIncome"`
	ActualExpenses     Money  `json:"actualExpenses"`
	PlannedIncome      Money  `json:"plannedIncome"`
	PlannedExpenses    Money  `json:"plannedExpenses"`
	NetActual          Money  `json:"netActual"`
	NetPlanned         Money  `json:"netPlanned"`
	ActualInvestments  Money  `json:"actualInvestments"`
	PlannedInvestments Money  `json:"plannedInvestments"`
	DebtPayments       Money  `json:"debtPayments"`
	Balance            Money  `json:"balance"` // base holdings plus the cumulated net actual
}

// CategoryStats are the actual income and expenses of a sub-category.
type CategoryStats struct {
	Name     string `json:"name"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
	Net      Money  `json:"net"`
}

// Statistics are derived from a Snapshot, they are never persisted.
type Statistics struct {
	Currency  string          `json:"currency"`
	Today     Date            `json:"today"`
	Period    *PlanningPeriod `json:"period,omitempty"` // nil when the planning period is not set
	ToDate    *Range          `json:"toDate,omitempty"`
	Malformed int             `json:"malformed"` // records excluded from computations

	Balances       Balances `json:"balances"`
	BalancesToDate Balances `json:"balancesToDate"`

	PlannedIncome      Money `json:"plannedIncome"`
	PlannedExpenses    Money `json:"plannedExpenses"`
	PlannedInvestments Money `json:"plannedInvestments"`
	ActualIncome       Money `json:"actualIncome"`
	ActualExpenses     Money `json:"actualExpenses"`
	NetPlanned         Money `json:"netPlanned"`
	NetActual          Money `json:"netActual"`
	DebtPayments       Money `json:"debtPayments"`

	PlannedIncomeToDate        Money `json:"plannedIncomeToDate"`
	PlannedExpensesToDate      Money `json:"plannedExpensesToDate"`
	ActualIncomeToDate         Money `json:"actualIncomeToDate"`
	ActualExpensesToDate       Money `json:"actualExpensesToDate"`
	NetPlannedToDate           Money `json:"netPlannedToDate"`
	NetActualToDate            Money `json:"netActualToDate"`
	DebtPaymentsToDate         Money `json:"debtPaymentsToDate"`
	InvestmentsUsingDebtToDate Money `json:"investmentsUsingDebtToDate"`

	SavingsRate           Percent `json:"savingsRate"`
	DebtToIncome          Percent `json:"debtToIncome"`
	SavingsRateToDate     Percent `json:"savingsRateToDate"`
	DebtToIncomeToDate    Percent `json:"debtToIncomeToDate"`
	IncomeProgressToDate  Percent `json:"incomeProgressToDate"`  // actual over planned income to date
	ExpenseProgressToDate Percent `json:"expenseProgressToDate"` // actual over planned expenses to date

	Monthly    []MonthStats    `json:"monthly"`
	Categories []CategoryStats `json:"categories"` // sorted by decreasing absolute net
}

// Compute derives the statistics of s.
//
// Balances use the whole ledger. Period figures are zero and the monthly breakdown empty when the
// planning period is not set.
func (e *Engine) Compute(s *Snapshot) *Statistics {
	cur := s.Currency()
	zero := M(0, cur)
	debts := s.categories.DebtAccounts()
	today := Normalize(e.now())

	st := &Statistics{
		Currency:  cur,
		Today:     today,
		Malformed: len(s.malformed),
	}
	if st.Malformed > 0 {
		e.log.WithField("count", st.Malformed).Warn("malformed records excluded from statistics")
	}

	all := func(Date) bool { return true }
	st.Balances = computeBalances(s, debts, all, cur)

	txs := s.ledger.transactions
	st.ActualIncome, st.ActualExpenses = incomeExpenses(txs, all, cur)
	st.NetActual = st.ActualIncome.Sub(st.ActualExpenses)
	st.DebtPayments = sumEntries(s.ledger.debts, all, cur)
	st.SavingsRate = Ratio(st.NetActual, st.ActualIncome)
	st.DebtToIncome = Ratio(st.DebtPayments, st.ActualIncome)
	st.Categories = categoryBreakdown(txs, cur)

	// period dependent figures, zero when the period is not set.
	st.PlannedIncome, st.PlannedExpenses, st.PlannedInvestments = zero, zero, zero
	st.NetPlanned = zero
	st.PlannedIncomeToDate, st.PlannedExpensesToDate = zero, zero
	st.ActualIncomeToDate, st.ActualExpensesToDate = zero, zero
	st.NetPlannedToDate, st.NetActualToDate = zero, zero
	st.DebtPaymentsToDate, st.InvestmentsUsingDebtToDate = zero, zero
	st.BalancesToDate = computeBalances(s, debts, func(Date) bool { return false }, cur)
	st.SavingsRateToDate, st.DebtToIncomeToDate = NotApplicable, NotApplicable
	st.IncomeProgressToDate, st.ExpenseProgressToDate = NotApplicable, NotApplicable

	period, err := s.Period()
	if err != nil {
		e.log.WithError(err).Debug("statistics computed without planning period")
		return st
	}
	st.Period = &period
	toDate := period.ToDate(today)
	st.ToDate = &toDate
	// entries count at noon, in the zone of the clock.
	loc := e.now().Location()
	inToDate := func(d Date) bool { return toDate.ContainsInstant(d.Noon(loc)) }

	income := s.planner.items[ExpectedIncome]
	expenses := s.planner.items[PlannedExpenses]
	investments := s.planner.items[PlannedInvestments]

	st.PlannedIncome = PeriodPlannedTotal(income, period.Range()).In(cur)
	st.PlannedExpenses = PeriodPlannedTotal(expenses, period.Range()).In(cur)
	st.PlannedInvestments = PeriodPlannedTotal(investments, period.Range()).In(cur)
	st.NetPlanned = st.PlannedIncome.Sub(st.PlannedExpenses)

	if !toDate.IsEmpty() {
		st.PlannedIncomeToDate = PeriodPlannedTotal(income, toDate).In(cur)
		st.PlannedExpensesToDate = PeriodPlannedTotal(expenses, toDate).In(cur)
	}
	st.NetPlannedToDate = st.PlannedIncomeToDate.Sub(st.PlannedExpensesToDate)
	st.ActualIncomeToDate, st.ActualExpensesToDate = incomeExpenses(txs, inToDate, cur)
	st.NetActualToDate = st.ActualIncomeToDate.Sub(st.ActualExpensesToDate)
	st.DebtPaymentsToDate = sumEntries(s.ledger.debts, inToDate, cur)
	st.BalancesToDate = computeBalances(s, debts, inToDate, cur)
	st.InvestmentsUsingDebtToDate = st.BalancesToDate.InvestmentsUsingDebt

	st.SavingsRateToDate = Ratio(st.NetActualToDate, st.ActualIncomeToDate)
	st.DebtToIncomeToDate = Ratio(st.DebtPaymentsToDate, st.ActualIncomeToDate)
	st.IncomeProgressToDate = Ratio(st.ActualIncomeToDate, st.PlannedIncomeToDate)
	st.ExpenseProgressToDate = Ratio(st.ActualExpensesToDate, st.PlannedExpensesToDate)

	st.Monthly = monthlyBreakdown(s, period, st.Balances.BaseHoldings, cur)

	e.log.WithFields(logrus.Fields{
		"period":       period.String(),
		"transactions": len(txs),
		"months":       len(st.Monthly),
	}).Debug("statistics computed")
	return st
}

// computeBalances applies the holdings and outstanding formulas to the entries dated in keep.
// Opening balances are always included.
func computeBalances(s *Snapshot, debts AccountSet, keep func(Date) bool, cur string) Balances {
	zero := M(0, cur)
	b := Balances{
		BaseHoldings:          s.planner.Total(CurrentHolding).In(cur),
		BaseOutstanding:       s.planner.Total(CurrentOutstanding).In(cur),
		IncomeToAssets:        zero,
		ExpensesFromAssets:    zero,
		DebtPayoffFromAssets:  zero,
		InvestmentsFromAssets: zero,
		ExpensesUsingDebt:     zero,
		InvestmentsUsingDebt:  zero,
		DebtPayoffUsingDebt:   zero,
		TotalInvested:         zero,
	}

	for e := range s.ledger.Entries() {
		if !keep(e.When()) {
			continue
		}
		amount := e.Value().In(cur)
		c := Classify(e, debts)
		switch e := e.(type) {
		case Transaction:
			switch {
			case e.Type == Income && c.Source == AssetAccount:
				b.IncomeToAssets = b.IncomeToAssets.Add(amount)
			case e.Type == Expenses && c.Source == AssetAccount:
				b.ExpensesFromAssets = b.ExpensesFromAssets.Add(amount)
			case e.Type == Expenses && c.Source == DebtAccount:
				b.ExpensesUsingDebt = b.ExpensesUsingDebt.Add(amount)
			}
		case DebtPayment:
			if c.Source == DebtAccount {
				b.DebtPayoffUsingDebt = b.DebtPayoffUsingDebt.Add(amount)
			} else {
				b.DebtPayoffFromAssets = b.DebtPayoffFromAssets.Add(amount)
			}
		case Investment:
			b.TotalInvested = b.TotalInvested.Add(amount)
			if c.Source == DebtAccount {
				b.InvestmentsUsingDebt = b.InvestmentsUsingDebt.Add(amount)
			} else {
				b.InvestmentsFromAssets = b.InvestmentsFromAssets.Add(amount)
			}
		}
	}

	b.CurrentHoldings = b.BaseHoldings.
		Add(b.IncomeToAssets).
		Sub(b.ExpensesFromAssets).
		Sub(b.DebtPayoffFromAssets).
		Sub(b.InvestmentsFromAssets)
	b.CurrentOutstanding = b.BaseOutstanding.
		Add(b.ExpensesUsingDebt).
		Add(b.InvestmentsUsingDebt).
		Add(b.DebtPayoffUsingDebt).
		Sub(b.DebtPayoffFromAssets)
	b.NetWorth = b.CurrentHoldings.Add(b.TotalInvested).Sub(b.CurrentOutstanding)
	return b
}

// incomeExpenses sums income and expenses transactions dated in keep, whatever their account.
func incomeExpenses(txs []Transaction, keep func(Date) bool, cur string) (income, expenses Money) {
	income, expenses = M(0, cur), M(0, cur)
	for _, tx := range txs {
		if !keep(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			income = income.Add(tx.Amount.In(cur))
		case Expenses:
			expenses = expenses.Add(tx.Amount.In(cur))
		}
	}
	return income, expenses
}

func sumEntries[E Entry](entries []E, keep func(Date) bool, cur string) Money {
	total := M(0, cur)
	for _, e := range entries {
		if keep(e.When()) {
			total = total.Add(e.Value().In(cur))
		}
	}
	return total
}

// monthlyBreakdown computes the figures of each calendar month of the period.
func monthlyBreakdown(s *Snapshot, period PlanningPeriod, base Money, cur string) []MonthStats {
	income := s.planner.items[ExpectedIncome]
	expenses := s.planner.items[PlannedExpenses]
	investments := s.planner.items[PlannedInvestments]

	var months []MonthStats
	balance := base
	for month := range period.Range().Months() {
		m := MonthStats{
			Key:   month.From.MonthKey(),
			Name:  month.From.Format("Jan 2006"),
			Month: month,
		}
		m.ActualIncome, m.ActualExpenses = incomeExpenses(s.ledger.transactions, month.Contains, cur)
		m.PlannedIncome = ProratedTotalForMonth(income, month.From).In(cur)
		m.PlannedExpenses = ProratedTotalForMonth(expenses, month.From).In(cur)
		m.PlannedInvestments = ProratedTotalForMonth(investments, month.From).In(cur)
		m.ActualInvestments = sumEntries(s.ledger.investments, month.Contains, cur)
		m.DebtPayments = sumEntries(s.ledger.debts, month.Contains, cur)
		m.NetActual = m.ActualIncome.Sub(m.ActualExpenses)
		m.NetPlanned = m.PlannedIncome.Sub(m.PlannedExpenses)
		balance = balance.Add(m.NetActual)
		m.Balance = balance
		months = append(months, m)
	}
	return months
}

// categoryBreakdown groups transactions by sub-category.
func categoryBreakdown(txs []Transaction, cur string) []CategoryStats {
	index := make(map[string]int)
	var out []CategoryStats
	for _, tx := range txs {
		name := tx.Category()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryStats{Name: name, Income: M(0, cur), Expenses: M(0, cur)})
		}
		switch tx.Type {
		case Income:
			out[i].Income = out[i].Income.Add(tx.Amount.In(cur))
		case Expenses:
			out[i].Expenses = out[i].Expenses.Add(tx.Amount.In(cur))
		}
		out[i].Net = out[i].Income.Sub(out[i].Expenses)
	}
	slices.SortStableFunc(out, func(a, b CategoryStats) int {
		return cmp.Compare(0, a.Net.Decimal().Abs().Cmp(b.Net.Decimal().Abs()))
	})
	return out
}

// TopCategories returns the n categories with the largest absolute net.
func (st *Statistics) TopCategories(n int) []CategoryStats {
	if n <= 0 || n >= len(st.Categories) {
		return slices.Clone(st.Categories)
	}
	return slices.Clone(st.Categories[:n])
}

// Month returns the statistics of the month containing d.
func (st *Statistics) Month(d Date) (MonthStats, bool) {
	i := slices.IndexFunc(st.Monthly, func(m MonthStats) bool { return m.Month.Contains(d) })
	if i < 0 {
		return MonthStats{}, false
	}
	return st.Monthly[i], true
}

// DebtPaidRatio returns how much of the opening debt the asset funded payments covered.
func (st *Statistics) DebtPaidRatio() Percent {
	return Ratio(st.Balances.DebtPayoffFromAssets, st.Balances.BaseOutstanding)
}
