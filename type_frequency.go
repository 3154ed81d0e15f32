package budget

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring item occurs.
type Frequency int

const (
	Monthly Frequency = iota // default for unknown labels
	Weekly
	BiWeekly
	Quarterly
	Yearly // also one-time items
)

// Frequencies lists all frequencies, in display order.
var Frequencies = []Frequency{Weekly, BiWeekly, Monthly, Quarterly, Yearly}

func (f Frequency) String() string {
	switch f {
	case Weekly:
		return "Weekly"
	case BiWeekly:
		return "Bi-Weekly"
	case Monthly:
		return "Monthly"
	case Quarterly:
		return "Quarterly"
	case Yearly:
		return "Yearly"
	default:
		return "Monthly"
	}
}

// ParseFrequency resolves a free-text frequency label.
//
// Matching is a case-insensitive substring test, ignoring white spaces, with bi-weekly
// tested before weekly. "one-time" and "annual" labels are Yearly. Unknown labels
// resolve to Monthly and ok is false.
func ParseFrequency(label string) (f Frequency, ok bool) {
	l := strings.Join(strings.Fields(strings.ToLower(label)), "")
	switch {
	case strings.Contains(l, "biweekly"), strings.Contains(l, "bi-weekly"):
		return BiWeekly, true
	case strings.Contains(l, "weekly"):
		return Weekly, true
	case strings.Contains(l, "monthly"):
		return Monthly, true
	case strings.Contains(l, "quarter"):
		return Quarterly, true
	case strings.Contains(l, "year"), strings.Contains(l, "annual"),
		strings.Contains(l, "one-time"), strings.Contains(l, "onetime"):
		return Yearly, true
	default:
		return Monthly, false
	}
}

var (
	weeksPerMonth     = decimal.RequireFromString("4.33")
	biWeeksPerMonth   = decimal.RequireFromString("2.17")
	monthsPerQuarter  = decimal.NewFromInt(3)
	monthsPerYear     = decimal.NewFromInt(12)
	monthDistanceDays = 30.0
)

// monthly converts an amount per occurrence into its monthly equivalent.
func (f Frequency) monthly(amount Money) Money {
	switch f {
	case Weekly:
		return amount.Mul(weeksPerMonth)
	case BiWeekly:
		return amount.Mul(biWeeksPerMonth)
	case Quarterly:
		return amount.Div(monthsPerQuarter)
	case Yearly:
		return amount.Div(monthsPerYear)
	default:
		return amount
	}
}

// PerYear returns the number of occurrences in a full year.
func (f Frequency) PerYear() int {
	switch f {
	case Weekly:
		return 52
	case BiWeekly:
		return 26
	case Quarterly:
		return 4
	case Yearly:
		return 1
	default:
		return 12
	}
}

// Occurrences counts the occurrences of f within [from, to].
//
// Counts are approximations based on calendar distance rounded half up:
//   - Monthly: months between the dates, days counting for 1/30th of a month.
//   - Quarterly: the same month distance divided by 3.
//   - Yearly: years between the dates, months counting for 1/12th; never less than 1.
//   - Weekly and BiWeekly: days between the dates divided by 7 or 14.
//
// An empty range has no occurrence.
func (f Frequency) Occurrences(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	dy := float64(to.Year() - from.Year())
	dm := float64(to.Month() - from.Month())
	dd := float64(to.Day() - from.Day())
	months := dy*12 + dm + dd/monthDistanceDays
	days := float64(DaysInclusive(from, to) - 1)

	var n int
	switch f {
	case Weekly:
		n = roundHalfUp(days / 7)
	case BiWeekly:
		n = roundHalfUp(days / 14)
	case Quarterly:
		n = roundHalfUp(months / 3)
	case Yearly:
		n = max(1, roundHalfUp(dy+dm/12))
	default:
		n = roundHalfUp(months)
	}
	return max(0, n)
}

func roundHalfUp(x float64) int { return int(math.Floor(x + 0.5)) }
