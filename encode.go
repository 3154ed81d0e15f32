package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// This file contains the codec of the stored documents.
//
// A budget is persisted as five JSON documents, called datasets, each one readable and editable
// by hand. Dates are written DD-MMM-YYYY, amounts are plain numbers in the planner currency.
//
// Decoding is lenient: a row with an invalid date is not fatal, it is reported as Malformed, logged,
// and excluded from the computations. Encoding is canonical: keys are written in a fixed order, and
// malformed rows are written back as they were read.

// Dataset identifies one of the stored documents.
type Dataset int

const (
	CategoriesDataset Dataset = iota
	PlannerDataset
	TransactionsDataset
	DebtsPayoffDataset
	InvestmentsDataset
)

// Datasets lists all datasets in load order.
var Datasets = []Dataset{CategoriesDataset, PlannerDataset, TransactionsDataset, DebtsPayoffDataset, InvestmentsDataset}

// String returns the dataset name as used in file names and backups.
func (d Dataset) String() string {
	switch d {
	case CategoriesDataset:
		return "categories"
	case PlannerDataset:
		return "planner"
	case TransactionsDataset:
		return "transactions"
	case DebtsPayoffDataset:
		return "debtsPayoff"
	case InvestmentsDataset:
		return "investments"
	default:
		return "unknown"
	}
}

// Filename returns the name of the file holding the dataset in a folder.
func (d Dataset) Filename() string { return d.String() + ".json" }

// ParseDataset parses a dataset name, ignoring case.
func ParseDataset(s string) (Dataset, error) {
	for _, d := range Datasets {
		if strings.EqualFold(strings.TrimSuffix(s, ".json"), d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dataset %q", s)
}

// DatasetOf returns the dataset holding a ledger collection.
func DatasetOf(c Collection) Dataset {
	switch c {
	case DebtPayments:
		return DebtsPayoffDataset
	case Investments:
		return InvestmentsDataset
	default:
		return TransactionsDataset
	}
}

// root keys of the ledger documents.
const (
	keyTransactions = "Transactions"
	keyDebtPayOff   = "Debt Pay-Off"
	keyInvestments  = "Investments"
)

// parseStoredDate parses a stored date, DD-MMM-YYYY or, for hand edited files, YYYY-MM-DD.
func parseStoredDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}
	if d, err := parseStorageDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(isoDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not DD-MMM-YYYY", ErrInvalidDate, s)
	}
	return NewDate(t.Date()), nil
}

// serialNumber reads "S No" written as a number or as a string.
type serialNumber int

func (n *serialNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid S No %s", data)
	}
	*n = serialNumber(f)
	return nil
}

// jentry holds the fields common to all ledger rows.
type jentry struct {
	SNo    serialNumber `json:"S No"`
	Date   string       `json:"Date"`
	Amount Money        `json:"Amount"`
}

// decoder accumulates the malformed rows of a decoding.
type decoder struct {
	log       logrus.FieldLogger
	malformed []Malformed
}

func (d *decoder) reject(m Malformed) {
	d.malformed = append(d.malformed, m)
	d.log.WithFields(logrus.Fields{
		"dataset": m.Dataset.String(),
		"row":     m.Record,
		"field":   m.Field,
		"value":   m.Raw,
	}).WithError(m.Err).Warn("skipping malformed row")
}

// rows extracts the array stored under key. A missing document or key is an empty array.
func rows(data []byte, key string) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var doc map[string][]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc[key], nil
}

// entry decodes the common fields of the i-th (0-based) row of a collection. A rejected row is
// returned as a Malformed template, for the caller to reject on its own checks.
func (d *decoder) entry(c Collection, i int, raw json.RawMessage, v any) (baseEntry, Malformed, bool) {
	m := Malformed{Record: fmt.Sprintf("%s #%d", c, i+1), Dataset: DatasetOf(c), Index: i, Row: raw}
	var je jentry
	if err := json.Unmarshal(raw, &je); err != nil {
		m.Raw, m.Err = string(raw), err
		d.reject(m)
		return baseEntry{}, m, false
	}
	if je.SNo > 0 {
		m.Record = fmt.Sprintf("%s #%d", c, je.SNo)
		m.Serial = int(je.SNo)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		m.Raw, m.Err = string(raw), err
		d.reject(m)
		return baseEntry{}, m, false
	}
	date, err := parseStoredDate(je.Date)
	if err != nil {
		m.Field, m.Raw, m.Err = "Date", je.Date, err
		d.reject(m)
		return baseEntry{}, m, false
	}
	return baseEntry{SNo: int(je.SNo), Date: date, Amount: je.Amount}, m, true
}

func (d *decoder) transactions(data []byte) ([]Transaction, error) {
	list, err := rows(data, keyTransactions)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", TransactionsDataset, err)
	}
	var txs []Transaction
	for i, raw := range list {
		var temp struct {
			Type        string `json:"Type"`
			SubCategory string `json:"Income/Expenses/SubCategory"`
			Account     string `json:"Account"`
			Description string `json:"Description"`
		}
		base, m, ok := d.entry(Transactions, i, raw, &temp)
		if !ok {
			continue
		}
		typ, err := ParseTxType(temp.Type)
		if err != nil {
			m.Field, m.Raw, m.Err = "Type", temp.Type, err
			d.reject(m)
			continue
		}
		txs = append(txs, Transaction{
			baseEntry:   base,
			Type:        typ,
			SubCategory: temp.SubCategory,
			Account:     temp.Account,
			Description: temp.Description,
		})
	}
	return txs, nil
}

func (d *decoder) debtPayments(data []byte) ([]DebtPayment, error) {
	list, err := rows(data, keyDebtPayOff)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", DebtsPayoffDataset, err)
	}
	var out []DebtPayment
	for i, raw := range list {
		var temp struct {
			From string `json:"From Account"`
			To   string `json:"To Account"`
		}
		base, _, ok := d.entry(DebtPayments, i, raw, &temp)
		if !ok {
			continue
		}
		out = append(out, DebtPayment{baseEntry: base, From: temp.From, To: temp.To})
	}
	return out, nil
}

func (d *decoder) investments(data []byte) ([]Investment, error) {
	list, err := rows(data, keyInvestments)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", InvestmentsDataset, err)
	}
	var out []Investment
	for i, raw := range list {
		var temp struct {
			Type string `json:"Investment Type"`
			From string `json:"From Account"`
		}
		base, _, ok := d.entry(Investments, i, raw, &temp)
		if !ok {
			continue
		}
		out = append(out, Investment{baseEntry: base, InvestmentType: temp.Type, From: temp.From})
	}
	return out, nil
}

// jbalance is a row of "Current Holding" or "Current Outstanding".
type jbalance struct {
	Account string `json:"Account"`
	Amount  Money  `json:"Amount"`
}

// jitem is a row of a recurring section of the planner.
type jitem struct {
	SubCategory string `json:"Sub Category"`
	Frequency   string `json:"Frequency"`
	Amount      Money  `json:"Amount"`
	Start       string `json:"Start Date"`
	End         string `json:"End Date"`
	Notes       string `json:"Notes"`
}

func (d *decoder) planner(data []byte) (Planner, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewPlanner(Date{}, ""), nil
	}
	var doc struct {
		Start    string `json:"Start Date"`
		Currency string `json:"Currency"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Planner{}, fmt.Errorf("cannot decode %s: %w", PlannerDataset, err)
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return Planner{}, fmt.Errorf("cannot decode %s: %w", PlannerDataset, err)
	}

	var start Date
	if strings.TrimSpace(doc.Start) != "" {
		var err error
		if start, err = parseStoredDate(doc.Start); err != nil {
			// the period is then unset, which is not fatal.
			row, _ := json.Marshal(doc.Start)
			d.reject(Malformed{Record: plannerRecord, Field: "Start Date", Raw: doc.Start, Err: err, Dataset: PlannerDataset, Row: row})
		}
	}
	p := NewPlanner(start, doc.Currency)

	for _, section := range Sections {
		raw, exists := sections[section.String()]
		if !exists || string(raw) == "null" {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return Planner{}, fmt.Errorf("cannot decode %s %q: %w", PlannerDataset, section, err)
		}
		for i, row := range list {
			m := Malformed{Record: fmt.Sprintf("%s #%d", section, i+1), Dataset: PlannerDataset, Section: section, Index: i, Row: row}
			if !section.IsRecurring() {
				var b jbalance
				if err := json.Unmarshal(row, &b); err != nil {
					m.Raw, m.Err = string(row), err
					d.reject(m)
					continue
				}
				next, err := p.WithBalance(section, Balance{Account: b.Account, Amount: b.Amount})
				if err != nil {
					m.Field, m.Raw, m.Err = "Account", b.Account, err
					d.reject(m)
					continue
				}
				p = next
				continue
			}

			var ji jitem
			if err := json.Unmarshal(row, &ji); err != nil {
				m.Raw, m.Err = string(row), err
				d.reject(m)
				continue
			}
			start, err := parseStoredDate(ji.Start)
			if err != nil {
				m.Field, m.Raw, m.Err = "Start Date", ji.Start, err
				d.reject(m)
				continue
			}
			end, err := parseStoredDate(ji.End)
			if err != nil {
				m.Field, m.Raw, m.Err = "End Date", ji.End, err
				d.reject(m)
				continue
			}
			next, err := p.WithItem(section, NewRecurringItem(ji.SubCategory, ji.Frequency, ji.Amount, start, end, ji.Notes))
			if err != nil {
				m.Err = err
				d.reject(m)
				continue
			}
			p = next
		}
	}
	return p, nil
}

// jcategories is the categories document.
type jcategories struct {
	Income      []string         `json:"Income"`
	Expenses    []string         `json:"Expenses"`
	Accounts    []string         `json:"Accounts"`
	DebtPayOff  []string         `json:"Debt Pay-Off"`
	Investments []string         `json:"Investments"`
	Frequencies []string         `json:"Frequencies"`
	Currencies  []CurrencyRecord `json:"Currencies"`
}

func decodeCategories(data []byte) (Categories, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewCategories(nil, nil), nil
	}
	var jc jcategories
	if err := json.Unmarshal(data, &jc); err != nil {
		return Categories{}, fmt.Errorf("cannot decode %s: %w", CategoriesDataset, err)
	}
	return NewCategories(map[Group][]string{
		IncomeGroup:      jc.Income,
		ExpensesGroup:    jc.Expenses,
		AccountsGroup:    jc.Accounts,
		DebtPayOffGroup:  jc.DebtPayOff,
		InvestmentsGroup: jc.Investments,
		FrequenciesGroup: jc.Frequencies,
	}, jc.Currencies), nil
}

// DecodeSnapshot decodes the datasets of a budget. Missing datasets are empty.
//
// Rows that cannot be decoded are logged, excluded, and reported by Snapshot.Malformed. Only
// documents that are not valid JSON are errors.
func DecodeSnapshot(docs map[Dataset][]byte, log logrus.FieldLogger) (*Snapshot, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &decoder{log: log}

	categories, err := decodeCategories(docs[CategoriesDataset])
	if err != nil {
		return nil, err
	}
	planner, err := d.planner(docs[PlannerDataset])
	if err != nil {
		return nil, err
	}
	txs, err := d.transactions(docs[TransactionsDataset])
	if err != nil {
		return nil, err
	}
	debts, err := d.debtPayments(docs[DebtsPayoffDataset])
	if err != nil {
		return nil, err
	}
	invs, err := d.investments(docs[InvestmentsDataset])
	if err != nil {
		return nil, err
	}
	return NewSnapshot(categories, planner, NewLedger(txs, debts, invs), d.malformed...), nil
}

// EncodeDataset writes one dataset of s, indented.
//
// Malformed rows of the dataset are written back at their position.
func EncodeDataset(w io.Writer, s *Snapshot, d Dataset) error {
	var (
		v   any
		err error
	)
	switch d {
	case CategoriesDataset:
		c := s.categories
		v = jcategories{
			Income:      nonNil(c.names[IncomeGroup]),
			Expenses:    nonNil(c.names[ExpensesGroup]),
			Accounts:    nonNil(c.names[AccountsGroup]),
			DebtPayOff:  nonNil(c.names[DebtPayOffGroup]),
			Investments: nonNil(c.names[InvestmentsGroup]),
			Frequencies: nonNil(c.names[FrequenciesGroup]),
			Currencies:  nonNil(c.currencies),
		}
	case PlannerDataset:
		v = plannerJSON{p: s.planner, malformed: s.malformed}
	case TransactionsDataset:
		v, err = ledgerRows(keyTransactions, s.ledger.transactions, heldRows(s.malformed, d, 0))
	case DebtsPayoffDataset:
		v, err = ledgerRows(keyDebtPayOff, s.ledger.debts, heldRows(s.malformed, d, 0))
	case InvestmentsDataset:
		v, err = ledgerRows(keyInvestments, s.ledger.investments, heldRows(s.malformed, d, 0))
	default:
		return fmt.Errorf("unknown dataset %d", d)
	}
	if err != nil {
		return fmt.Errorf("cannot encode %s: %w", d, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("cannot encode %s: %w", d, err)
	}
	return nil
}

// ledgerRows is the document of a ledger collection.
func ledgerRows[E any](key string, list []E, kept []Malformed) (map[string][]json.RawMessage, error) {
	rows, err := storedRows(list, kept)
	if err != nil {
		return nil, err
	}
	return map[string][]json.RawMessage{key: rows}, nil
}

// EncodeSnapshot encodes the given datasets of s, all of them if none is given.
func EncodeSnapshot(s *Snapshot, datasets ...Dataset) (map[Dataset][]byte, error) {
	if len(datasets) == 0 {
		datasets = Datasets
	}
	docs := make(map[Dataset][]byte, len(datasets))
	for _, d := range datasets {
		var buf bytes.Buffer
		if err := EncodeDataset(&buf, s, d); err != nil {
			return nil, err
		}
		docs[d] = buf.Bytes()
	}
	return docs, nil
}

// plannerJSON writes the planner document with its keys in store order.
type plannerJSON struct {
	p         Planner
	malformed []Malformed
}

func (j plannerJSON) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	start := any(j.p.start)
	if j.p.start.IsZero() {
		if i := slices.IndexFunc(j.malformed, Malformed.isPlannerStart); i >= 0 && len(j.malformed[i].Row) > 0 {
			start = j.malformed[i].Row
		}
	}
	w.Append("Start Date", start)
	w.Append("Currency", j.p.currency)
	for _, section := range Sections {
		var (
			rows []json.RawMessage
			err  error
		)
		if section.IsRecurring() {
			list := make([]storedItem, 0, len(j.p.items[section]))
			for _, it := range j.p.items[section] {
				list = append(list, storedItem(it))
			}
			rows, err = storedRows(list, heldRows(j.malformed, PlannerDataset, section))
		} else {
			list := make([]jbalance, 0, len(j.p.balances[section]))
			for _, b := range j.p.balances[section] {
				list = append(list, jbalance{Account: b.Account, Amount: b.Amount})
			}
			rows, err = storedRows(list, heldRows(j.malformed, PlannerDataset, section))
		}
		if err != nil {
			return nil, err
		}
		w.Append(section.String(), rows)
	}
	return w.MarshalJSON()
}

// storedItem writes a recurring item with its keys in store order.
type storedItem RecurringItem

func (it storedItem) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("Sub Category", it.SubCategory)
	w.Append("Frequency", RecurringItem(it).FrequencyLabel())
	w.Append("Amount", it.Amount)
	w.Append("Start Date", it.Start)
	w.Append("End Date", it.End)
	w.Append("Notes", it.Notes)
	return w.MarshalJSON()
}

// BackupFilename is the default name of a backup bundle.
const BackupFilename = "financial_data_backup.json"

// EncodeBundle writes all the datasets of s in a single document keyed by dataset name.
func EncodeBundle(w io.Writer, s *Snapshot) error {
	docs, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	var bw jsonObjectWriter
	for _, d := range Datasets {
		bw.Append(d.String(), json.RawMessage(docs[d]))
	}
	bundle, err := bw.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bundle, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}

// DecodeBundle reads a document written by EncodeBundle. Datasets missing from the bundle are empty.
func DecodeBundle(r io.Reader, log logrus.FieldLogger) (*Snapshot, error) {
	var bundle map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("cannot decode backup: %w", err)
	}
	docs := make(map[Dataset][]byte)
	for name, raw := range bundle {
		d, err := ParseDataset(name)
		if err != nil {
			return nil, fmt.Errorf("cannot decode backup: %w", err)
		}
		docs[d] = raw
	}
	return DecodeSnapshot(docs, log)
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
