package budget

import "strings"

// AccountSet is a case-insensitive set of account names.
type AccountSet map[string]struct{}

// NewAccountSet creates a set from account names.
func NewAccountSet(names []string) AccountSet {
	s := make(AccountSet, len(names))
	for _, n := range names {
		s[accountKey(n)] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set, ignoring case and surrounding spaces.
func (s AccountSet) Contains(name string) bool {
	_, ok := s[accountKey(name)]
	return ok
}

func accountKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// IsDebtAccount reports whether account is one of the Debt Pay-Off categories.
func IsDebtAccount(account string, debtCategories []string) bool {
	return NewAccountSet(debtCategories).Contains(account)
}

// AccountClass is the class of an account: asset unless listed as a debt.
type AccountClass int

const (
	AssetAccount AccountClass = iota
	DebtAccount
)

func (c AccountClass) String() string {
	if c == DebtAccount {
		return "debt"
	}
	return "asset"
}

// Effect is what an entry changes: holdings or outstanding debt.
type Effect int

const (
	AssetAffecting Effect = iota
	DebtAffecting
)

func (e Effect) String() string {
	if e == DebtAffecting {
		return "debt-affecting"
	}
	return "asset-affecting"
}

// Classification of a ledger entry.
type Classification struct {
	Effect Effect
	// Source is the class of the account the entry is posted to (transactions) or paid from
	// (debt payments, investments).
	Source AccountClass
}

// Classify tells whether an entry affects assets or debts.
//
//   - Transactions are classified by their account. Income posted to a debt account is
//     debt-affecting but has no effect on balances.
//   - Investments are classified by the account they are paid from.
//   - Debt payments always affect debt. Paid from an asset account they reduce the outstanding
//     debt, paid from a debt account they are a transfer increasing it.
func Classify(e Entry, debts AccountSet) Classification {
	switch e := e.(type) {
	case Transaction:
		return byAccount(e.Account, debts)
	case Investment:
		return byAccount(e.From, debts)
	case DebtPayment:
		c := byAccount(e.From, debts)
		c.Effect = DebtAffecting
		return c
	default:
		return Classification{Effect: AssetAffecting, Source: AssetAccount}
	}
}

func byAccount(account string, debts AccountSet) Classification {
	if debts.Contains(account) {
		return Classification{Effect: DebtAffecting, Source: DebtAccount}
	}
	return Classification{Effect: AssetAffecting, Source: AssetAccount}
}
