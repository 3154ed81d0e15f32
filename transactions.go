package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Collection identifies one of the three ledger collections.
type Collection int

const (
	Transactions Collection = iota
	DebtPayments
	Investments
)

// Collections lists all ledger collections.
var Collections = []Collection{Transactions, DebtPayments, Investments}

// String returns the name of a record of the collection, e.g. "Debt Payment".
func (c Collection) String() string {
	switch c {
	case Transactions:
		return "Transaction"
	case DebtPayments:
		return "Debt Payment"
	case Investments:
		return "Investment"
	default:
		return "Record"
	}
}

// ParseCollection parses a collection name as used on the command line.
func ParseCollection(s string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tx", "transaction", "transactions":
		return Transactions, nil
	case "debt", "debts", "debt-payment", "debtspayoff":
		return DebtPayments, nil
	case "invest", "investment", "investments":
		return Investments, nil
	default:
		return 0, fmt.Errorf("unknown collection %q, expected tx, debt or invest", s)
	}
}

// TxType is the type of a transaction.
type TxType string

const (
	Income   TxType = "Income"
	Expenses TxType = "Expenses"
)

// ParseTxType parses a transaction type, case-insensitively.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expenses", "expense":
		return Expenses, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q, expected Income or Expenses", s)
	}
}

// Entry is a dated record of the ledger.
type Entry interface {
	Collection() Collection
	Serial() int        // the "S No" of the entry, 1-based and contiguous in its collection
	When() Date         // When returns the date on which the entry occurred.
	Value() Money       // the amount, never negative
	Validate() error    // Validate checks the entry is well-formed.
	Label() string      // e.g. "Transaction #3"
	Accounts() []string // accounts the entry moves money from or to
}

// baseEntry holds the fields common to all entries.
type baseEntry struct {
	SNo    int
	Date   Date
	Amount Money
}

func (e baseEntry) Serial() int       { return e.SNo }
func (e baseEntry) When() Date        { return e.Date }
func (e baseEntry) Value() Money      { return e.Amount }
func (e *baseEntry) serial() int      { return e.SNo }
func (e *baseEntry) setSerial(n int) { e.SNo = n }

func (e baseEntry) validate() []error {
	var errs []error
	if e.Date.IsZero() {
		errs = append(errs, errors.New("date is required"))
	}
	if e.Amount.IsNegative() {
		errs = append(errs, fmt.Errorf("amount must be positive, got %s", e.Amount.Decimal()))
	}
	return errs
}

// MarshalJSON implements the json.Marshaler interface for baseEntry.
func (e baseEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("S No", e.SNo)
	w.Append("Date", e.Date)
	w.Append("Amount", e.Amount)
	return w.MarshalJSON()
}

// Transaction is an actual income or expense posted to an account.
type Transaction struct {
	baseEntry
	Type        TxType
	SubCategory string
	Account     string
	Description string
}

// NewTransaction creates a new transaction. Its S No is assigned when added to a Ledger.
func NewTransaction(date Date, typ TxType, subCategory, account string, amount Money, description string) Transaction {
	return Transaction{
		baseEntry:   baseEntry{Date: date, Amount: amount},
		Type:        typ,
		SubCategory: subCategory,
		Account:     account,
		Description: description,
	}
}

func (t Transaction) Collection() Collection { return Transactions }
func (t Transaction) Label() string          { return fmt.Sprintf("%s #%d", Transactions, t.SNo) }
func (t Transaction) Accounts() []string     { return []string{t.Account} }

// Category returns the sub-category, or "Other" when it is empty.
func (t Transaction) Category() string {
	if strings.TrimSpace(t.SubCategory) == "" {
		return "Other"
	}
	return t.SubCategory
}

func (t Transaction) Validate() error {
	errs := t.baseEntry.validate()
	if t.Type != Income && t.Type != Expenses {
		errs = append(errs, fmt.Errorf("invalid transaction type %q", t.Type))
	}
	if strings.TrimSpace(t.Account) == "" {
		errs = append(errs, errors.New("account is required"))
	}
	return errors.Join(errs...)
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseEntry)
	w.Append("Type", t.Type)
	w.Append("Income/Expenses/SubCategory", t.SubCategory)
	w.Append("Account", t.Account)
	w.Append("Description", t.Description)
	return w.MarshalJSON()
}

// DebtPayment moves money to a debt account, from an asset or another debt account.
type DebtPayment struct {
	baseEntry
	From string
	To   string
}

// NewDebtPayment creates a new debt payment.
func NewDebtPayment(date Date, from, to string, amount Money) DebtPayment {
	return DebtPayment{baseEntry: baseEntry{Date: date, Amount: amount}, From: from, To: to}
}

func (d DebtPayment) Collection() Collection { return DebtPayments }
func (d DebtPayment) Label() string          { return fmt.Sprintf("%s #%d", DebtPayments, d.SNo) }
func (d DebtPayment) Accounts() []string     { return []string{d.From, d.To} }

func (d DebtPayment) Validate() error {
	errs := d.baseEntry.validate()
	if strings.TrimSpace(d.From) == "" {
		errs = append(errs, errors.New("from account is required"))
	}
	if strings.TrimSpace(d.To) == "" {
		errs = append(errs, errors.New("to account is required"))
	}
	return errors.Join(errs...)
}

// MarshalJSON implements the json.Marshaler interface for DebtPayment.
func (d DebtPayment) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(d.baseEntry)
	w.Append("From Account", d.From)
	w.Append("To Account", d.To)
	return w.MarshalJSON()
}

// Investment moves money from an account into an investment.
type Investment struct {
	baseEntry
	InvestmentType string
	From           string
}

// NewInvestment creates a new investment.
func NewInvestment(date Date, investmentType, from string, amount Money) Investment {
	return Investment{baseEntry: baseEntry{Date: date, Amount: amount}, InvestmentType: investmentType, From: from}
}

func (i Investment) Collection() Collection { return Investments }
func (i Investment) Label() string          { return fmt.Sprintf("%s #%d", Investments, i.SNo) }
func (i Investment) Accounts() []string     { return []string{i.From} }

func (i Investment) Validate() error {
	errs := i.baseEntry.validate()
	if strings.TrimSpace(i.From) == "" {
		errs = append(errs, errors.New("from account is required"))
	}
	return errors.Join(errs...)
}

// MarshalJSON implements the json.Marshaler interface for Investment.
func (i Investment) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(i.baseEntry)
	w.Append("Investment Type", i.InvestmentType)
	w.Append("From Account", i.From)
	return w.MarshalJSON()
}

var (
	_ Entry          = Transaction{}
	_ Entry          = DebtPayment{}
	_ Entry          = Investment{}
	_ json.Marshaler = Transaction{}
)
