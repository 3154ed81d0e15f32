package budget

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
//
// The currency is either an ISO code known to go-money ("EUR") or a bare symbol ("$") as
// stored in the planner. There is no conversion: all amounts of a planner share its currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M is a convenient factory for Money.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses an amount like "1,250.50" in the given currency.
func ParseMoney(s, currency string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return Money{cur: currency}, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: v, cur: currency}, nil
}

// formatter returns the go-money formatter for this currency.
// Unknown currencies are treated as a symbol with two decimals.
func (m Money) formatter() (*money.Formatter, int) {
	if c := money.GetCurrency(strings.ToUpper(m.cur)); c != nil {
		return c.Formatter(), c.Fraction
	}
	return money.NewFormatter(2, ".", ",", m.cur, "$1"), 2
}

// String returns the string representation of the money value, e.g. "$1,250.50".
func (m Money) String() string {
	f, fraction := m.formatter()
	return f.Format(m.value.Round(int32(fraction)).Shift(int32(fraction)).IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }

// In returns the same amount expressed in currency.
func (m Money) In(currency string) Money { return Money{value: m.value, cur: currency} }

// Mul multiplies by an exact factor.
func (m Money) Mul(f decimal.Decimal) Money { return Money{value: m.value.Mul(f), cur: m.cur} }

// Div divides by an exact factor.
func (m Money) Div(f decimal.Decimal) Money { return Money{value: m.value.Div(f), cur: m.cur} }

// Round rounds to the currency fraction (2 for unknown currencies).
func (m Money) Round() Money {
	_, fraction := m.formatter()
	return Money{value: m.value.Round(int32(fraction)), cur: m.cur}
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// MarshalJSON persists the amount as a plain JSON number, the currency being held by the planner.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null (zero).
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		m.value = decimal.Zero
	case float64:
		// re-read the literal to avoid float rounding.
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return err
		}
		m.value = d
	case string:
		p, err := ParseMoney(v, m.cur)
		if err != nil {
			return err
		}
		m.value = p.value
	default:
		return fmt.Errorf("invalid amount %s", data)
	}
	return nil
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}
