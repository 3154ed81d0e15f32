package budget

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the format used to persist dates (e.g. 15-Jan-2025).
const DateFormat = "02-Jan-2006"

const isoDateFormat = "2006-1-2" // Permissive ISO read format (allows single-digit month/day).

// Date represents a calendar date with day-level granularity.
//
// A Date has no time zone, hence no daylight saving time issue: comparing,
// adding days or counting days between two dates is exact.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
//
// Overflowing values are normalized the way time.Date does, so that
// NewDate(2025, time.February, 29) is the 1st of March 2025.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Normalize returns the calendar date of t in t's own location.
func Normalize(t time.Time) Date { return NewDate(t.Date()) }

// Today returns the current date.
func Today() Date { return Normalize(time.Now()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String formats the date as DD-MMM-YYYY.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string { return d.time().Format("2006-01-02") }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool {
	return d.y == 0 && d.m == 0 && d.d == 0
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Noon returns the instant at noon of that day in loc.
func (d Date) Noon(loc *time.Location) time.Time {
	return time.Date(d.y, d.m, d.d, 12, 0, 0, 0, loc)
}

// Format returns a textual representation of the date value formatted according to the layout defined by the argument.
//
//	See the documentation for the [time.Format].
func (d Date) Format(format string) string { return d.time().Format(format) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// AddMonth returns a new Date with the given number of months added.
func (d Date) AddMonth(i int) Date { return NewDate(d.y, d.m+time.Month(i), d.d) }

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date { return NewDate(d.y, d.m, 1) }

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date { return NewDate(d.y, d.m+1, 0) }

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int { return d.EndOfMonth().d }

// MonthKey returns a sortable key for d's month, e.g. "2025-01".
func (d Date) MonthKey() string { return d.time().Format("2006-01") }

// DaysInclusive counts the days from a to b, both included. It is 0 when b is before a.
func DaysInclusive(a, b Date) int {
	if b.Before(a) {
		return 0
	}
	return int(b.time().Sub(a.time())/(24*time.Hour)) + 1
}

var (
	relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmqy])$`)
)

// ParseDate parses a Date from a string.
//
// The persisted format DD-MMM-YYYY is accepted (month name is case-insensitive), as well as
// a permissive ISO format (2025-7-1) and relative dates to today (-1d, +2w, -3m, +1q, -1y, 0d).
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Date{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}

	if str == "0d" {
		return Today(), nil
	}

	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			return Date{}, fmt.Errorf("%w: invalid number in relative date %q", ErrInvalidDate, str)
		}
		if match[1] == "-" {
			num = -num
		}
		today := Today()
		switch match[3] {
		case "d":
			return today.Add(num), nil
		case "w":
			return today.Add(num * 7), nil
		case "m":
			return today.AddMonth(num), nil
		case "q":
			return today.AddMonth(num * 3), nil
		case "y":
			return NewDate(today.Year()+num, today.Month(), today.Day()), nil
		}
	}

	if d, err := parseStorageDate(str); err == nil {
		return d, nil
	}

	t, err := time.Parse(isoDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is neither DD-MMM-YYYY nor YYYY-MM-DD", ErrInvalidDate, str)
	}
	return NewDate(t.Date()), nil
}

// parseStorageDate parses strictly the persisted DD-MMM-YYYY format.
func parseStorageDate(str string) (Date, error) {
	parts := strings.Split(str, "-")
	if len(parts) != 3 || len(parts[1]) != 3 {
		return Date{}, fmt.Errorf("%w: %q is not DD-MMM-YYYY", ErrInvalidDate, str)
	}
	// time.Parse wants "Jan", users and spreadsheets write "JAN" or "jan".
	mon := strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
	t, err := time.Parse("2-Jan-2006", parts[0]+"-"+mon+"-"+parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not DD-MMM-YYYY", ErrInvalidDate, str)
	}
	return NewDate(t.Date()), nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The empty string decodes to the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	val, err := parseStorageDate(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = val
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
