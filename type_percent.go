package budget

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent. A Percent computed with a zero denominator is
// not applicable, which is distinct from 0%.
type Percent struct {
	value decimal.Decimal
	valid bool
}

// NotApplicable is the Percent of a ratio over zero.
var NotApplicable = Percent{}

var hundred = decimal.NewFromInt(100)

// Ratio returns num/den in percent, or NotApplicable if den is zero.
func Ratio(num, den Money) Percent {
	if den.IsZero() {
		return NotApplicable
	}
	return Percent{value: num.value.Mul(hundred).Div(den.value), valid: true}
}

// Pct builds a Percent from a value already in percent.
func Pct(v float64) Percent { return Percent{value: decimal.NewFromFloat(v), valid: true} }

// IsApplicable returns false for the ratio of a zero denominator.
func (p Percent) IsApplicable() bool { return p.valid }

// Float returns the value in percent, 0 when not applicable.
func (p Percent) Float() float64 { return p.value.InexactFloat64() }

// Equal compares two percents with a 0.0001 precision.
func (p Percent) Equal(q Percent) bool {
	if p.valid != q.valid {
		return false
	}
	const precision = 0.0001
	return p.value.Sub(q.value).Abs().LessThan(decimal.NewFromFloat(precision))
}

func (p Percent) String() string {
	if !p.valid {
		return "N/A"
	}
	return p.value.StringFixed(2) + "%"
}

// MarshalJSON writes the value in percent rounded to 2 decimals, or null when not applicable.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.value.Round(2).InexactFloat64())
}
