package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Malformed is a stored record that could not be decoded, usually because of an invalid date.
//
// It is excluded from every computation but kept so that it can be reported, and so that saving
// the snapshot writes it back unchanged: a typo in a hand edited file never loses the row.
type Malformed struct {
	Record string // e.g. "Transaction #3", "Planned Expenses #2"
	Field  string // the offending field, e.g. "Date" or "End Date"
	Raw    string // the offending value
	Err    error

	Dataset Dataset         // the dataset holding the row
	Section Section         // the planner section of a planner row
	Index   int             // position of the row in its stored list
	Serial  int             // "S No" of a ledger row, 0 if unknown
	Row     json.RawMessage // the row as stored
}

func (m Malformed) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", m.Record, m.Field, m.Raw, m.Err)
}

func (m Malformed) Unwrap() error { return m.Err }

// plannerRecord is the Record of a malformed planner start date.
const plannerRecord = "Planner"

func (m Malformed) isPlannerStart() bool { return m.Record == plannerRecord && m.Field == "Start Date" }

// holds reports whether m is a row of the given list: a ledger dataset, or a planner section.
func (m Malformed) holds(d Dataset, section Section) bool {
	if m.Dataset != d || len(m.Row) == 0 {
		return false
	}
	return d != PlannerDataset || (!m.isPlannerStart() && m.Section == section)
}

// renumber moves m at position index of a ledger collection, numbered sno.
func (m *Malformed) renumber(c Collection, index, sno int) {
	m.Index = index
	m.Serial = sno
	m.Record = fmt.Sprintf("%s #%d", c, sno)
	m.Row = withSerial(m.Row, sno)
}

// held returns the positions in malformed of the rows of a list, ordered by Index.
func held(malformed []Malformed, d Dataset, section Section) []int {
	var idx []int
	for i, m := range malformed {
		if m.holds(d, section) {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int { return malformed[a].Index - malformed[b].Index })
	return idx
}

// heldRows returns the malformed rows of a list, ordered by Index.
func heldRows(malformed []Malformed, d Dataset, section Section) []Malformed {
	idx := held(malformed, d, section)
	rows := make([]Malformed, len(idx))
	for k, i := range idx {
		rows[k] = malformed[i]
	}
	return rows
}

// storedOrder merges n decoded rows with the held rows of the same list, sorted by Index, in the
// order they are stored. Decoded rows are 0..n-1, the k-th held row is ^k.
func storedOrder(n int, kept []Malformed) []int {
	order := make([]int, n, n+len(kept))
	for i := range order {
		order[i] = i
	}
	for k, m := range kept {
		at := min(max(m.Index, 0), len(order))
		order = slices.Insert(order, at, ^k)
	}
	return order
}

// storedRows encodes list and writes the held rows back at their position.
func storedRows[E any](list []E, kept []Malformed) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0, len(list)+len(kept))
	for _, i := range storedOrder(len(list), kept) {
		if i < 0 {
			rows = append(rows, kept[^i].Row)
			continue
		}
		raw, err := json.Marshal(list[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

// withSerial rewrites the "S No" of a stored row, keeping its other keys in order.
// A row that is not a JSON object is returned unchanged.
func withSerial(row json.RawMessage, sno int) json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(row))
	if t, err := dec.Token(); err != nil || t != json.Delim('{') {
		return row
	}
	var w jsonObjectWriter
	found := false
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return row
		}
		key, _ := t.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return row
		}
		if key == "S No" {
			found = true
			w.Append(key, sno)
			continue
		}
		w.Append(key, v)
	}
	if !found {
		return row
	}
	out, err := w.MarshalJSON()
	if err != nil {
		return row
	}
	return out
}
