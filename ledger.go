package budget

import (
	"fmt"
	"iter"
	"slices"
)

// Ledger holds the actual activity: transactions, debt payments and investments.
//
// A Ledger is a value: every edit returns a new Ledger and leaves the receiver untouched.
// In each collection the "S No" of the entries are 1..n in insertion order.
type Ledger struct {
	transactions []Transaction
	debts        []DebtPayment
	investments  []Investment
}

// NewLedger creates a ledger from existing collections, keeping their S No.
func NewLedger(txs []Transaction, debts []DebtPayment, investments []Investment) Ledger {
	return Ledger{
		transactions: slices.Clone(txs),
		debts:        slices.Clone(debts),
		investments:  slices.Clone(investments),
	}
}

// Transactions returns a copy of the transactions.
func (l Ledger) Transactions() []Transaction { return slices.Clone(l.transactions) }

// DebtPayments returns a copy of the debt payments.
func (l Ledger) DebtPayments() []DebtPayment { return slices.Clone(l.debts) }

// Investments returns a copy of the investments.
func (l Ledger) Investments() []Investment { return slices.Clone(l.investments) }

// Len returns the number of entries in the collection.
func (l Ledger) Len(c Collection) int {
	switch c {
	case Transactions:
		return len(l.transactions)
	case DebtPayments:
		return len(l.debts)
	case Investments:
		return len(l.investments)
	}
	return 0
}

// Entries iterates over the entries of the given collections, all of them if none is given.
func (l Ledger) Entries(collections ...Collection) iter.Seq[Entry] {
	if len(collections) == 0 {
		collections = Collections
	}
	return func(yield func(Entry) bool) {
		for _, c := range collections {
			switch c {
			case Transactions:
				for _, e := range l.transactions {
					if !yield(e) {
						return
					}
				}
			case DebtPayments:
				for _, e := range l.debts {
					if !yield(e) {
						return
					}
				}
			case Investments:
				for _, e := range l.investments {
					if !yield(e) {
						return
					}
				}
			}
		}
	}
}

// AddTransaction validates tx and appends it with the next S No.
func (l Ledger) AddTransaction(tx Transaction) (Ledger, error) {
	if err := tx.Validate(); err != nil {
		return l, fmt.Errorf("invalid transaction: %w", err)
	}
	l.transactions = appendSerial(l.transactions, tx)
	return l, nil
}

// AddDebtPayment validates d and appends it with the next S No.
func (l Ledger) AddDebtPayment(d DebtPayment) (Ledger, error) {
	if err := d.Validate(); err != nil {
		return l, fmt.Errorf("invalid debt payment: %w", err)
	}
	l.debts = appendSerial(l.debts, d)
	return l, nil
}

// AddInvestment validates i and appends it with the next S No.
func (l Ledger) AddInvestment(i Investment) (Ledger, error) {
	if err := i.Validate(); err != nil {
		return l, fmt.Errorf("invalid investment: %w", err)
	}
	l.investments = appendSerial(l.investments, i)
	return l, nil
}

// ReplaceTransaction replaces the transaction with the given S No, keeping that S No.
func (l Ledger) ReplaceTransaction(sno int, tx Transaction) (Ledger, error) {
	if err := tx.Validate(); err != nil {
		return l, fmt.Errorf("invalid transaction: %w", err)
	}
	txs, err := replaceSerial(l.transactions, sno, tx)
	if err != nil {
		return l, fmt.Errorf("%s #%d: %w", Transactions, sno, err)
	}
	l.transactions = txs
	return l, nil
}

// ReplaceDebtPayment replaces the debt payment with the given S No, keeping that S No.
func (l Ledger) ReplaceDebtPayment(sno int, d DebtPayment) (Ledger, error) {
	if err := d.Validate(); err != nil {
		return l, fmt.Errorf("invalid debt payment: %w", err)
	}
	debts, err := replaceSerial(l.debts, sno, d)
	if err != nil {
		return l, fmt.Errorf("%s #%d: %w", DebtPayments, sno, err)
	}
	l.debts = debts
	return l, nil
}

// ReplaceInvestment replaces the investment with the given S No, keeping that S No.
func (l Ledger) ReplaceInvestment(sno int, i Investment) (Ledger, error) {
	if err := i.Validate(); err != nil {
		return l, fmt.Errorf("invalid investment: %w", err)
	}
	invs, err := replaceSerial(l.investments, sno, i)
	if err != nil {
		return l, fmt.Errorf("%s #%d: %w", Investments, sno, err)
	}
	l.investments = invs
	return l, nil
}

// Delete removes the entry with the given S No from a collection and renumbers the others 1..n.
func (l Ledger) Delete(c Collection, sno int) (Ledger, error) {
	var err error
	switch c {
	case Transactions:
		l.transactions, err = deleteSerial(l.transactions, sno)
	case DebtPayments:
		l.debts, err = deleteSerial(l.debts, sno)
	case Investments:
		l.investments, err = deleteSerial(l.investments, sno)
	default:
		err = fmt.Errorf("unknown collection %d", c)
	}
	if err != nil {
		return l, fmt.Errorf("%s #%d: %w", c, sno, err)
	}
	return l, nil
}

// serialEntry is the pointer constraint giving access to the S No of an entry.
type serialEntry[E any] interface {
	*E
	serial() int
	setSerial(int)
}

// appendSerial returns a copy of list with e appended, numbered max+1.
func appendSerial[E any, P serialEntry[E]](list []E, e E) []E {
	next := 0
	for i := range list {
		next = max(next, P(&list[i]).serial())
	}
	P(&e).setSerial(next + 1)
	return append(slices.Clip(list), e)
}

// replaceSerial returns a copy of list where the entry numbered sno is replaced by e.
func replaceSerial[E any, P serialEntry[E]](list []E, sno int, e E) ([]E, error) {
	i := slices.IndexFunc(list, func(x E) bool { return P(&x).serial() == sno })
	if i < 0 {
		return list, ErrNotFound
	}
	out := slices.Clone(list)
	P(&e).setSerial(sno)
	out[i] = e
	return out, nil
}

// deleteSerial returns a copy of list without the entry numbered sno, renumbered 1..n.
func deleteSerial[E any, P serialEntry[E]](list []E, sno int) ([]E, error) {
	i := slices.IndexFunc(list, func(x E) bool { return P(&x).serial() == sno })
	if i < 0 {
		return list, ErrNotFound
	}
	out := slices.Delete(slices.Clone(list), i, i+1)
	for j := range out {
		P(&out[j]).setSerial(j + 1)
	}
	return out, nil
}

// serials returns the S No of the entries of a collection, in order.
func (l Ledger) serials(c Collection) []int {
	var out []int
	for e := range l.Entries(c) {
		out = append(out, e.Serial())
	}
	return out
}

// renumber returns a copy of l where the entries of c are numbered serials, in order.
func (l Ledger) renumber(c Collection, serials []int) Ledger {
	switch c {
	case Transactions:
		l.transactions = setSerials(l.transactions, serials)
	case DebtPayments:
		l.debts = setSerials(l.debts, serials)
	case Investments:
		l.investments = setSerials(l.investments, serials)
	}
	return l
}

func setSerials[E any, P serialEntry[E]](list []E, serials []int) []E {
	out := slices.Clone(list)
	for i := range out {
		P(&out[i]).setSerial(serials[i])
	}
	return out
}
