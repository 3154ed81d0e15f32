package budget

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// quietEngine returns an engine with a fixed clock and a discarded log.
func quietEngine(today Date) *Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewEngine(
		WithClock(func() time.Time { return today.Noon(time.Local) }),
		WithLogger(log),
	)
}

func sampleCategories() Categories {
	return NewCategories(map[Group][]string{
		IncomeGroup:     {"Salary", "Refund"},
		ExpensesGroup:   {"Groceries", "Travel", "Rent"},
		AccountsGroup:   {"Checking"},
		DebtPayOffGroup: {"Credit-Card-1", "Loan"},
	}, nil)
}

func samplePlanner(t *testing.T) Planner {
	t.Helper()
	p := NewPlanner(NewDate(2025, time.January, 15), "EUR")
	var err error
	steps := []func() error{
		func() error { p, err = p.WithBalance(CurrentHolding, Balance{"Checking", M(5000, "")}); return err },
		func() error {
			p, err = p.WithBalance(CurrentOutstanding, Balance{"Credit-Card-1", M(2000, "")})
			return err
		},
		func() error {
			p, err = p.WithItem(ExpectedIncome, NewRecurringItem("Salary", "Monthly", M(3000, ""),
				NewDate(2025, time.January, 15), NewDate(2025, time.December, 31), ""))
			return err
		},
		func() error {
			p, err = p.WithItem(PlannedExpenses, NewRecurringItem("Rent", "Monthly", M(1000, ""),
				NewDate(2025, time.January, 15), NewDate(2025, time.December, 31), ""))
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("planner setup: %v", err)
		}
	}
	return p
}

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	d := func(m time.Month, day int) Date { return NewDate(2025, m, day) }
	txs := []Transaction{
		NewTransaction(d(time.January, 20), Income, "Salary", "Checking", M(3000, ""), "january pay"),
		NewTransaction(d(time.January, 22), Expenses, "Groceries", "Checking", M(200, ""), ""),
		NewTransaction(d(time.February, 5), Expenses, "Travel", "credit-card-1", M(500, ""), "plane"),
		NewTransaction(d(time.February, 10), Income, "Refund", "Credit-Card-1", M(50, ""), ""),
	}
	debts := []DebtPayment{
		NewDebtPayment(d(time.March, 1), "Checking", "Credit-Card-1", M(450, "")),
		NewDebtPayment(d(time.March, 2), "Loan", "Credit-Card-1", M(100, "")),
	}
	invs := []Investment{
		NewInvestment(d(time.February, 15), "Stocks", "Checking", M(1000, "")),
		NewInvestment(d(time.February, 16), "Crypto", "Credit-Card-1", M(300, "")),
	}
	var l Ledger
	var err error
	for _, tx := range txs {
		if l, err = l.AddTransaction(tx); err != nil {
			t.Fatal(err)
		}
	}
	for _, dp := range debts {
		if l, err = l.AddDebtPayment(dp); err != nil {
			t.Fatal(err)
		}
	}
	for _, inv := range invs {
		if l, err = l.AddInvestment(inv); err != nil {
			t.Fatal(err)
		}
	}
	return NewSnapshot(sampleCategories(), samplePlanner(t), l)
}

func assertMoney(t *testing.T, name string, got Money, want float64) {
	t.Helper()
	if w := M(want, "EUR"); !got.Equal(w) {
		t.Errorf("%s = %v (%q), want %v", name, got, got.Currency(), w)
	}
}

func TestEngine_DebtPaymentFromAsset(t *testing.T) {
	p := NewPlanner(NewDate(2025, time.January, 15), "EUR")
	p, _ = p.WithBalance(CurrentHolding, Balance{"checking", M(5000, "")})
	p, _ = p.WithBalance(CurrentOutstanding, Balance{"credit-card-1", M(2000, "")})
	l, err := Ledger{}.AddDebtPayment(NewDebtPayment(NewDate(2025, time.March, 1), "checking", "credit-card-1", M(450, "")))
	if err != nil {
		t.Fatal(err)
	}
	c := NewCategories(map[Group][]string{AccountsGroup: {"checking"}, DebtPayOffGroup: {"credit-card-1"}}, nil)
	s := NewSnapshot(c, p, l)

	got := Classify(l.DebtPayments()[0], c.DebtAccounts())
	if got.Effect != DebtAffecting {
		t.Errorf("debt payment effect = %v, want %v", got.Effect, DebtAffecting)
	}

	st := quietEngine(NewDate(2025, time.June, 1)).Compute(s)
	assertMoney(t, "CurrentOutstanding", st.Balances.CurrentOutstanding, 1550)
	assertMoney(t, "CurrentHoldings", st.Balances.CurrentHoldings, 4550)
	assertMoney(t, "DebtPayoffUsingDebt", st.Balances.DebtPayoffUsingDebt, 0)
	assertMoney(t, "NetWorth", st.Balances.NetWorth, 3000)
}

func TestEngine_Balances(t *testing.T) {
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(sampleSnapshot(t))
	b := st.Balances

	assertMoney(t, "BaseHoldings", b.BaseHoldings, 5000)
	assertMoney(t, "IncomeToAssets", b.IncomeToAssets, 3000)
	assertMoney(t, "ExpensesFromAssets", b.ExpensesFromAssets, 200)
	assertMoney(t, "DebtPayoffFromAssets", b.DebtPayoffFromAssets, 450)
	assertMoney(t, "InvestmentsFromAssets", b.InvestmentsFromAssets, 1000)
	assertMoney(t, "CurrentHoldings", b.CurrentHoldings, 6350)

	assertMoney(t, "BaseOutstanding", b.BaseOutstanding, 2000)
	assertMoney(t, "ExpensesUsingDebt", b.ExpensesUsingDebt, 500)
	assertMoney(t, "InvestmentsUsingDebt", b.InvestmentsUsingDebt, 300)
	assertMoney(t, "DebtPayoffUsingDebt", b.DebtPayoffUsingDebt, 100)
	assertMoney(t, "CurrentOutstanding", b.CurrentOutstanding, 2450)

	assertMoney(t, "TotalInvested", b.TotalInvested, 1300)
	assertMoney(t, "NetWorth", b.NetWorth, 5200)
}

func TestEngine_Actuals(t *testing.T) {
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(sampleSnapshot(t))

	assertMoney(t, "ActualIncome", st.ActualIncome, 3050)
	assertMoney(t, "ActualExpenses", st.ActualExpenses, 700)
	assertMoney(t, "NetActual", st.NetActual, 2350)
	assertMoney(t, "DebtPayments", st.DebtPayments, 550)
	if want := Pct(2350.0 / 3050 * 100); !st.SavingsRate.Equal(want) {
		t.Errorf("SavingsRate = %v, want %v", st.SavingsRate, want)
	}
	if want := Pct(550.0 / 3050 * 100); !st.DebtToIncome.Equal(want) {
		t.Errorf("DebtToIncome = %v, want %v", st.DebtToIncome, want)
	}

	// the debt payments of March are after today.
	assertMoney(t, "ActualIncomeToDate", st.ActualIncomeToDate, 3050)
	assertMoney(t, "ActualExpensesToDate", st.ActualExpensesToDate, 700)
	assertMoney(t, "DebtPaymentsToDate", st.DebtPaymentsToDate, 0)
	assertMoney(t, "InvestmentsUsingDebtToDate", st.InvestmentsUsingDebtToDate, 300)
	assertMoney(t, "CurrentHoldings to date", st.BalancesToDate.CurrentHoldings, 6800)
	if want := Pct(0); !st.DebtToIncomeToDate.Equal(want) {
		t.Errorf("DebtToIncomeToDate = %v, want %v", st.DebtToIncomeToDate, want)
	}
}

func TestEngine_Planned(t *testing.T) {
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(sampleSnapshot(t))

	if st.Period == nil || st.Period.End != NewDate(2026, time.January, 14) {
		t.Fatalf("Period = %v, want 15-Jan-2025..14-Jan-2026", st.Period)
	}
	assertMoney(t, "PlannedIncome", st.PlannedIncome, 36000)
	assertMoney(t, "PlannedExpenses", st.PlannedExpenses, 12000)
	assertMoney(t, "PlannedInvestments", st.PlannedInvestments, 0)
	assertMoney(t, "NetPlanned", st.NetPlanned, 24000)

	assertMoney(t, "PlannedIncomeToDate", st.PlannedIncomeToDate, 3000)
	assertMoney(t, "PlannedExpensesToDate", st.PlannedExpensesToDate, 1000)
	assertMoney(t, "NetPlannedToDate", st.NetPlannedToDate, 2000)
	if want := Pct(3050.0 / 3000 * 100); !st.IncomeProgressToDate.Equal(want) {
		t.Errorf("IncomeProgressToDate = %v, want %v", st.IncomeProgressToDate, want)
	}
}

func TestEngine_Monthly(t *testing.T) {
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(sampleSnapshot(t))

	if got := len(st.Monthly); got != 13 {
		t.Fatalf("len(Monthly) = %d, want 13", got)
	}
	jan, feb, mar := st.Monthly[0], st.Monthly[1], st.Monthly[2]
	if jan.Key != "2025-01" || jan.Name != "Jan 2025" {
		t.Errorf("first month = %q %q, want 2025-01 Jan 2025", jan.Key, jan.Name)
	}
	if last := st.Monthly[12]; last.Key != "2026-01" {
		t.Errorf("last month = %q, want 2026-01", last.Key)
	}
	assertMoney(t, "Jan ActualIncome", jan.ActualIncome, 3000)
	assertMoney(t, "Jan ActualExpenses", jan.ActualExpenses, 200)
	assertMoney(t, "Jan Balance", jan.Balance, 7800)
	// the plan starts on the 15th: 17 days out of 31.
	if got, want := jan.PlannedIncome.Round(), M(1645.16, "EUR"); !got.Equal(want) {
		t.Errorf("Jan PlannedIncome = %v, want %v", got, want)
	}
	if got, want := jan.PlannedExpenses.Round(), M(548.39, "EUR"); !got.Equal(want) {
		t.Errorf("Jan PlannedExpenses = %v, want %v", got, want)
	}
	assertMoney(t, "Mar PlannedExpenses", mar.PlannedExpenses, 1000)

	assertMoney(t, "Feb NetActual", feb.NetActual, -450)
	assertMoney(t, "Feb Balance", feb.Balance, 7350)
	assertMoney(t, "Feb ActualInvestments", feb.ActualInvestments, 1300)
	assertMoney(t, "Mar DebtPayments", mar.DebtPayments, 550)
	assertMoney(t, "Mar Balance", mar.Balance, 7350)

	if m, ok := st.Month(NewDate(2025, time.February, 14)); !ok || m.Key != "2025-02" {
		t.Errorf("Month(14-Feb-2025) = %q, %v, want 2025-02", m.Key, ok)
	}
}

func TestEngine_Categories(t *testing.T) {
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(sampleSnapshot(t))

	var names []string
	for _, c := range st.Categories {
		names = append(names, c.Name)
	}
	want := []string{"Salary", "Travel", "Groceries", "Refund"}
	if len(names) != len(want) {
		t.Fatalf("categories = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("categories = %v, want %v", names, want)
			break
		}
	}
	assertMoney(t, "Travel net", st.Categories[1].Net, -500)
	if got := st.TopCategories(2); len(got) != 2 || got[0].Name != "Salary" {
		t.Errorf("TopCategories(2) = %v", got)
	}
}

func TestEngine_OtherCategory(t *testing.T) {
	l, _ := Ledger{}.AddTransaction(NewTransaction(NewDate(2025, time.March, 3), Expenses, "", "Checking", M(12, ""), ""))
	s := NewSnapshot(sampleCategories(), samplePlanner(t), l)
	st := quietEngine(NewDate(2025, time.March, 31)).Compute(s)
	if len(st.Categories) != 1 || st.Categories[0].Name != "Other" {
		t.Errorf("categories = %v, want [Other]", st.Categories)
	}
}

func TestEngine_NoPlanningPeriod(t *testing.T) {
	s := sampleSnapshot(t)
	s = s.WithPlanner(s.Planner().WithStart(Date{}))
	if _, err := s.Period(); !errors.Is(err, ErrMissingPlanningPeriod) {
		t.Fatalf("Period() error = %v, want ErrMissingPlanningPeriod", err)
	}

	st := quietEngine(NewDate(2025, time.February, 28)).Compute(s)
	if st.Period != nil || st.ToDate != nil {
		t.Errorf("Period = %v, ToDate = %v, want nil", st.Period, st.ToDate)
	}
	if len(st.Monthly) != 0 {
		t.Errorf("len(Monthly) = %d, want 0", len(st.Monthly))
	}
	assertMoney(t, "PlannedIncome", st.PlannedIncome, 0)
	assertMoney(t, "ActualIncomeToDate", st.ActualIncomeToDate, 0)
	if st.SavingsRateToDate.IsApplicable() {
		t.Errorf("SavingsRateToDate = %v, want N/A", st.SavingsRateToDate)
	}
	// balances do not depend on the period.
	assertMoney(t, "NetWorth", st.Balances.NetWorth, 5200)
}

func TestEngine_EmptySnapshot(t *testing.T) {
	s := NewSnapshot(Categories{}, NewPlanner(Date{}, ""), Ledger{})
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(s)
	if st.SavingsRate.IsApplicable() || st.DebtToIncome.IsApplicable() {
		t.Errorf("ratios = %v, %v, want N/A", st.SavingsRate, st.DebtToIncome)
	}
	if !st.Balances.NetWorth.IsZero() {
		t.Errorf("NetWorth = %v, want 0", st.Balances.NetWorth)
	}
	if st.DebtPaidRatio().IsApplicable() {
		t.Errorf("DebtPaidRatio = %v, want N/A", st.DebtPaidRatio())
	}
}

func TestEngine_BeforePeriodStart(t *testing.T) {
	st := quietEngine(NewDate(2025, time.January, 1)).Compute(sampleSnapshot(t))
	if st.ToDate == nil || !st.ToDate.IsEmpty() {
		t.Fatalf("ToDate = %v, want an empty range", st.ToDate)
	}
	assertMoney(t, "PlannedIncomeToDate", st.PlannedIncomeToDate, 0)
	if st.IncomeProgressToDate.IsApplicable() {
		t.Errorf("IncomeProgressToDate = %v, want N/A", st.IncomeProgressToDate)
	}
}

// today is the last day counted, whatever the zone of the clock.
func TestEngine_ToDateBoundary(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	for _, loc := range []*time.Location{time.UTC, time.FixedZone("UTC+14", 14*3600), time.FixedZone("UTC-11", -11*3600)} {
		e := NewEngine(
			WithClock(func() time.Time { return time.Date(2025, time.January, 20, 23, 30, 0, 0, loc) }),
			WithLogger(log),
		)
		st := e.Compute(sampleSnapshot(t))
		if st.Today != NewDate(2025, time.January, 20) {
			t.Errorf("%s: Today = %v", loc, st.Today)
		}
		// the salary of the 20th is in, the groceries of the 22nd are not.
		assertMoney(t, loc.String()+" ActualIncomeToDate", st.ActualIncomeToDate, 3000)
		assertMoney(t, loc.String()+" ActualExpensesToDate", st.ActualExpensesToDate, 0)
	}
}

func TestEngine_MalformedExcluded(t *testing.T) {
	s := sampleSnapshot(t)
	bad := Malformed{Record: "Transaction #9", Field: "Date", Raw: "31-Foo-2025", Err: ErrInvalidDate}
	s = NewSnapshot(s.Categories(), s.Planner(), s.Ledger(), bad)
	st := quietEngine(NewDate(2025, time.February, 28)).Compute(s)
	if st.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", st.Malformed)
	}
	assertMoney(t, "ActualIncome", st.ActualIncome, 3050)
}

func TestEngine_Idempotent(t *testing.T) {
	s := sampleSnapshot(t)
	e := quietEngine(NewDate(2025, time.February, 28))
	a, b := e.Compute(s), e.Compute(s)
	if !a.Balances.NetWorth.Equal(b.Balances.NetWorth) || len(a.Monthly) != len(b.Monthly) {
		t.Errorf("Compute is not idempotent: %v != %v", a.Balances.NetWorth, b.Balances.NetWorth)
	}
}
