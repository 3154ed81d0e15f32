package budget

import (
	"errors"
	"testing"
	"time"
)

func newTestLedger(t *testing.T, amounts ...int) Ledger {
	t.Helper()
	var l Ledger
	for i, a := range amounts {
		tx := NewTransaction(NewDate(2025, time.March, i+1), Expenses, "groceries", "checking", M(a, ""), "")
		var err error
		if l, err = l.AddTransaction(tx); err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}
	return l
}

func serials(l Ledger) []int {
	var out []int
	for e := range l.Entries(Transactions) {
		out = append(out, e.Serial())
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLedger_AddNumbers(t *testing.T) {
	l := newTestLedger(t, 10, 20, 30)
	if got, want := serials(l), []int{1, 2, 3}; !equalInts(got, want) {
		t.Errorf("serials = %v, want %v", got, want)
	}
}

func TestLedger_AddInvalid(t *testing.T) {
	var l Ledger
	_, err := l.AddTransaction(NewTransaction(Date{}, "Transfer", "", "", M(-1, ""), ""))
	if err == nil {
		t.Fatal("AddTransaction() accepted an invalid transaction")
	}
	if l.Len(Transactions) != 0 {
		t.Errorf("ledger was modified")
	}
}

func TestLedger_Delete(t *testing.T) {
	l := newTestLedger(t, 10, 20, 30)
	after, err := l.Delete(Transactions, 2)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, want := serials(after), []int{1, 2}; !equalInts(got, want) {
		t.Errorf("serials after delete = %v, want %v", got, want)
	}
	if got := after.Transactions()[1].Amount; !got.Equal(M(30, "")) {
		t.Errorf("second transaction amount = %v, want 30", got)
	}
	// the receiver is untouched.
	if got, want := serials(l), []int{1, 2, 3}; !equalInts(got, want) {
		t.Errorf("original serials = %v, want %v", got, want)
	}
	if _, err := l.Delete(Transactions, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(9) error = %v, want ErrNotFound", err)
	}
}

func TestLedger_Replace(t *testing.T) {
	l := newTestLedger(t, 10, 20, 30)
	repl := NewTransaction(NewDate(2025, time.April, 1), Income, "refund", "checking", M(5, ""), "")
	after, err := l.ReplaceTransaction(2, repl)
	if err != nil {
		t.Fatalf("ReplaceTransaction() error = %v", err)
	}
	got := after.Transactions()[1]
	if got.SNo != 2 || got.Type != Income || !got.Amount.Equal(M(5, "")) {
		t.Errorf("replaced transaction = %+v", got)
	}
	if l.Transactions()[1].Type != Expenses {
		t.Errorf("receiver was modified")
	}
	if _, err := l.ReplaceTransaction(7, repl); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceTransaction(7) error = %v, want ErrNotFound", err)
	}
}

func TestLedger_AddAfterDelete(t *testing.T) {
	l := newTestLedger(t, 10, 20, 30)
	l, _ = l.Delete(Transactions, 1)
	l, err := l.AddTransaction(NewTransaction(NewDate(2025, time.May, 1), Expenses, "", "checking", M(1, ""), ""))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := serials(l), []int{1, 2, 3}; !equalInts(got, want) {
		t.Errorf("serials = %v, want %v", got, want)
	}
}

func TestLedger_Entries(t *testing.T) {
	l := newTestLedger(t, 10)
	l, _ = l.AddDebtPayment(NewDebtPayment(NewDate(2025, time.March, 2), "checking", "card", M(5, "")))
	l, _ = l.AddInvestment(NewInvestment(NewDate(2025, time.March, 3), "ETF", "checking", M(7, "")))

	var labels []string
	for e := range l.Entries() {
		labels = append(labels, e.Label())
	}
	want := []string{"Transaction #1", "Debt Payment #1", "Investment #1"}
	if len(labels) != len(want) {
		t.Fatalf("Entries() = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Entries()[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
	n := 0
	for range l.Entries(Investments) {
		n++
	}
	if n != 1 {
		t.Errorf("Entries(Investments) yielded %d entries, want 1", n)
	}
}
