package budget

import (
	"fmt"
	"iter"
	"time"
)

// Range represents a closed range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// String formats the range as "from..to".
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

// IsEmpty reports whether the range contains no day at all.
func (r Range) IsEmpty() bool { return r.To.Before(r.From) }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range, boundaries included.
func (r Range) Days() int { return DaysInclusive(r.From, r.To) }

// Intersect returns the overlap of r and o, and false if they do not overlap.
func (r Range) Intersect(o Range) (Range, bool) {
	x := Range{From: r.From, To: r.To}
	if o.From.After(x.From) {
		x.From = o.From
	}
	if o.To.Before(x.To) {
		x.To = o.To
	}
	if x.IsEmpty() {
		return Range{}, false
	}
	return x, true
}

// Bounds returns the first and last instants of the range in loc:
// 00:00:00.000 on the first day, 23:59:59.999 on the last one.
func (r Range) Bounds(loc *time.Location) (start, end time.Time) {
	start = time.Date(r.From.y, r.From.m, r.From.d, 0, 0, 0, 0, loc)
	end = time.Date(r.To.y, r.To.m, r.To.d, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// ContainsInstant reports whether t falls within the day bounds of the range, in t's location.
func (r Range) ContainsInstant(t time.Time) bool {
	start, end := r.Bounds(t.Location())
	return !t.Before(start) && !t.After(end)
}

// Months returns an iterator over each calendar month touching the range.
// Each yielded Range is the full month, not clipped to r.
func (r Range) Months() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for current := r.From.StartOfMonth(); !current.After(r.To); current = current.AddMonth(1) {
			if !yield(Range{From: current, To: current.EndOfMonth()}) {
				return
			}
		}
	}
}

// PlanningPeriod is the rolling 12-month window starting on the planner start date.
type PlanningPeriod struct{ Start, End Date }

// PlanningWindow returns the planning period starting on start.
//
// The end is one year later minus one day. A start on the 29th of February ends on the
// 28th of February of the next year.
func PlanningWindow(start Date) PlanningPeriod {
	return PlanningPeriod{
		Start: start,
		End:   NewDate(start.Year()+1, start.Month(), start.Day()).Add(-1),
	}
}

// ParsePlanningWindow parses the start date and returns its planning period.
func ParsePlanningWindow(start string) (PlanningPeriod, error) {
	d, err := ParseDate(start)
	if err != nil {
		return PlanningPeriod{}, fmt.Errorf("invalid planning start: %w", err)
	}
	return PlanningWindow(d), nil
}

// Range returns the period as a Range.
func (p PlanningPeriod) Range() Range { return Range{From: p.Start, To: p.End} }

// Contains reports whether d is in the period.
func (p PlanningPeriod) Contains(d Date) bool { return p.Range().Contains(d) }

// ToDate returns the part of the period already elapsed: from the start to today, or to
// the end if the period is over. It is empty if the period has not started yet.
func (p PlanningPeriod) ToDate(today Date) Range {
	r := p.Range()
	if today.Before(r.To) {
		r.To = today
	}
	return r
}

// String formats the period as "start..end".
func (p PlanningPeriod) String() string { return p.Range().String() }
