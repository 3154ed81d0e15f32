package budget

import (
	"fmt"
	"slices"
	"strings"
)

// Group is a category group.
type Group int

const (
	IncomeGroup Group = iota
	ExpensesGroup
	AccountsGroup
	DebtPayOffGroup
	InvestmentsGroup
	FrequenciesGroup
	CurrenciesGroup
)

// Groups lists the groups holding plain names, in store order. Currencies are separate records.
var Groups = []Group{IncomeGroup, ExpensesGroup, AccountsGroup, DebtPayOffGroup, InvestmentsGroup, FrequenciesGroup}

// String returns the group name as persisted, e.g. "Debt Pay-Off".
func (g Group) String() string {
	switch g {
	case IncomeGroup:
		return "Income"
	case ExpensesGroup:
		return "Expenses"
	case AccountsGroup:
		return "Accounts"
	case DebtPayOffGroup:
		return "Debt Pay-Off"
	case InvestmentsGroup:
		return "Investments"
	case FrequenciesGroup:
		return "Frequencies"
	case CurrenciesGroup:
		return "Currencies"
	default:
		return "Unknown"
	}
}

// itemName is the singular used in messages: "Account", "Debt Pay-Off".
func (g Group) itemName() string {
	if g == AccountsGroup {
		return "Account"
	}
	return g.String()
}

// ParseGroup parses a group name, ignoring case, spaces and dashes ("debt-payoff", "Debt Pay-Off").
func ParseGroup(s string) (Group, error) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	for _, g := range slices.Concat(Groups, []Group{CurrenciesGroup}) {
		if key == strings.NewReplacer(" ", "", "-", "").Replace(strings.ToLower(g.String())) {
			return g, nil
		}
	}
	switch key {
	case "account":
		return AccountsGroup, nil
	case "debt", "debts":
		return DebtPayOffGroup, nil
	}
	return 0, fmt.Errorf("unknown category group %q", s)
}

// CurrencyRecord is an entry of the Currencies group.
type CurrencyRecord struct {
	Name   string `json:"Currency"`
	Symbol string `json:"Symbol"`
	Code   string `json:"Currency Code"`
}

// Categories are the user defined names, per group.
//
// Categories is a value, every edit returns a new Categories.
type Categories struct {
	names      map[Group][]string
	currencies []CurrencyRecord
}

// NewCategories creates categories from a map of names. It does not check cross group constraints,
// use With to add names one at a time with all the checks.
func NewCategories(names map[Group][]string, currencies []CurrencyRecord) Categories {
	c := Categories{names: make(map[Group][]string), currencies: slices.Clone(currencies)}
	for g, list := range names {
		c.names[g] = slices.Clone(list)
	}
	return c
}

// Names returns a copy of the names of a group.
func (c Categories) Names(g Group) []string { return slices.Clone(c.names[g]) }

// Currencies returns a copy of the currency records.
func (c Categories) Currencies() []CurrencyRecord { return slices.Clone(c.currencies) }

// DebtAccounts returns the set of debt accounts.
func (c Categories) DebtAccounts() AccountSet { return NewAccountSet(c.names[DebtPayOffGroup]) }

// Contains reports whether name is in the group, ignoring case.
func (c Categories) Contains(g Group, name string) bool {
	return indexFold(c.names[g], name) >= 0
}

// With returns the categories with name added to the group.
//
// It fails on empty or duplicate names and with a *CrossCategoryConflictError if the name would be
// both an asset account and a debt account.
func (c Categories) With(g Group, name string) (Categories, error) {
	name = strings.TrimSpace(name)
	if err := c.check(g, name, ""); err != nil {
		return c, err
	}
	return c.edit(g, func(list []string) []string { return append(list, name) }), nil
}

// Rename returns the categories with old renamed to name in the group.
func (c Categories) Rename(g Group, old, name string) (Categories, error) {
	name = strings.TrimSpace(name)
	i := indexFold(c.names[g], old)
	if i < 0 {
		return c, fmt.Errorf("%s %q: %w", g, old, ErrNotFound)
	}
	if err := c.check(g, name, old); err != nil {
		return c, err
	}
	return c.edit(g, func(list []string) []string { list[i] = name; return list }), nil
}

// Without returns the categories without name in the group.
func (c Categories) Without(g Group, name string) (Categories, error) {
	i := indexFold(c.names[g], name)
	if i < 0 {
		return c, fmt.Errorf("%s %q: %w", g, name, ErrNotFound)
	}
	return c.edit(g, func(list []string) []string { return slices.Delete(list, i, i+1) }), nil
}

// WithCurrency returns the categories with a currency record added.
func (c Categories) WithCurrency(r CurrencyRecord) (Categories, error) {
	if strings.TrimSpace(r.Symbol) == "" && strings.TrimSpace(r.Code) == "" {
		return c, fmt.Errorf("currency %q needs a symbol or a code", r.Name)
	}
	for _, x := range c.currencies {
		if strings.EqualFold(x.Code, r.Code) && strings.EqualFold(x.Symbol, r.Symbol) {
			return c, fmt.Errorf("currency %q: %w", r.Name, ErrDuplicateCategory)
		}
	}
	out := NewCategories(c.names, c.currencies)
	out.currencies = append(out.currencies, r)
	return out, nil
}

// check validates name before it is saved in g. except is the name being replaced, if any.
func (c Categories) check(g Group, name, except string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", g.itemName())
	}
	if i := indexFold(c.names[g], name); i >= 0 && !strings.EqualFold(name, except) {
		return fmt.Errorf("%s %q: %w", g, name, ErrDuplicateCategory)
	}
	var other Group
	switch g {
	case AccountsGroup:
		other = DebtPayOffGroup
	case DebtPayOffGroup:
		other = AccountsGroup
	default:
		return nil
	}
	if c.Contains(other, name) {
		return &CrossCategoryConflictError{Name: name, Group: g, Existing: other}
	}
	return nil
}

// edit returns a copy of c where g's names are transformed by f, f gets a private copy.
func (c Categories) edit(g Group, f func([]string) []string) Categories {
	out := NewCategories(c.names, c.currencies)
	out.names[g] = f(slices.Clone(c.names[g]))
	return out
}

// CurrencyCode resolves a planner currency (symbol or code) to its ISO code using the Currencies
// records. It returns the input unchanged when there is no matching record.
func (c Categories) CurrencyCode(currency string) string {
	for _, r := range c.currencies {
		if r.Code != "" && (r.Symbol == currency || strings.EqualFold(r.Code, currency)) {
			return strings.ToUpper(r.Code)
		}
	}
	return currency
}

func indexFold(list []string, name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(list, func(s string) bool { return strings.EqualFold(strings.TrimSpace(s), name) })
}
