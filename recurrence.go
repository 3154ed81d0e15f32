package budget

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// RecurringItem is a planner entry: an expected income, a planned expense or a planned investment.
type RecurringItem struct {
	SubCategory string
	Frequency   Frequency
	Label       string // frequency as written by the user, kept for round trip
	Amount      Money
	Start, End  Date
	Notes       string
}

// NewRecurringItem creates a recurring item, resolving its frequency from the free-text label.
func NewRecurringItem(subCategory, frequency string, amount Money, start, end Date, notes string) RecurringItem {
	f, _ := ParseFrequency(frequency)
	return RecurringItem{
		SubCategory: subCategory,
		Frequency:   f,
		Label:       frequency,
		Amount:      amount,
		Start:       start,
		End:         end,
		Notes:       notes,
	}
}

// Span returns the item's own date range.
func (it RecurringItem) Span() Range { return Range{From: it.Start, To: it.End} }

// FrequencyLabel returns the label as written by the user, or the canonical name.
func (it RecurringItem) FrequencyLabel() string {
	if it.Label != "" {
		return it.Label
	}
	return it.Frequency.String()
}

// Validate checks the item is well-formed.
func (it RecurringItem) Validate() error {
	var errs []error
	if it.Start.IsZero() {
		errs = append(errs, fmt.Errorf("start date is required"))
	}
	if it.End.IsZero() {
		errs = append(errs, fmt.Errorf("end date is required"))
	}
	if !it.Start.IsZero() && !it.End.IsZero() && it.End.Before(it.Start) {
		errs = append(errs, fmt.Errorf("end date %s is before start date %s", it.End, it.Start))
	}
	if it.Amount.IsNegative() {
		errs = append(errs, fmt.Errorf("amount must be positive, got %v", it.Amount))
	}
	return errors.Join(errs...)
}

// MonthlyEquivalent returns the item amount converted to a monthly amount, regardless of its dates.
func MonthlyEquivalent(it RecurringItem) Money { return it.Frequency.monthly(it.Amount) }

// ProratedTotalForMonth sums the monthly equivalent of each item, prorated by the number of days
// the item overlaps the calendar month containing anchor.
func ProratedTotalForMonth(items []RecurringItem, anchor Date) Money {
	month := Range{From: anchor.StartOfMonth(), To: anchor.EndOfMonth()}
	daysInMonth := decimal.NewFromInt(int64(month.Days()))
	var total Money
	for _, it := range items {
		overlap, ok := it.Span().Intersect(month)
		if !ok {
			continue
		}
		days := decimal.NewFromInt(int64(overlap.Days()))
		total = total.Add(MonthlyEquivalent(it).Mul(days).Div(daysInMonth))
	}
	return total
}

// OccurrenceCount counts the occurrences of a free-text frequency within [from, to].
func OccurrenceCount(frequency string, from, to Date) int {
	f, _ := ParseFrequency(frequency)
	return f.Occurrences(from, to)
}

// PeriodPlannedTotal sums, for each item overlapping r, the number of occurrences in the
// overlap multiplied by the item amount.
func PeriodPlannedTotal(items []RecurringItem, r Range) Money {
	var total Money
	for _, it := range items {
		total = total.Add(periodPlanned(it, r))
	}
	return total
}

func periodPlanned(it RecurringItem, r Range) Money {
	overlap, ok := it.Span().Intersect(r)
	if !ok {
		return Money{cur: it.Amount.cur}
	}
	n := it.Frequency.Occurrences(overlap.From, overlap.To)
	return it.Amount.Mul(decimal.NewFromInt(int64(n)))
}

// ItemOccurrences returns the number of occurrences of the item within the planning period and
// the amount they total.
func ItemOccurrences(it RecurringItem, p PlanningPeriod) (int, Money) {
	overlap, ok := it.Span().Intersect(p.Range())
	if !ok {
		return 0, Money{cur: it.Amount.cur}
	}
	n := it.Frequency.Occurrences(overlap.From, overlap.To)
	return n, it.Amount.Mul(decimal.NewFromInt(int64(n)))
}

// FrequencySummary is the part of a planner section with one frequency.
type FrequencySummary struct {
	Frequency Frequency
	Count     int
	Total     Money // planned over the period
}

// SectionSummary summarizes the items of a planner section over a planning period.
type SectionSummary struct {
	Count        int
	Total        Money // planned over the period, by occurrences
	Monthly      Money // sum of monthly equivalents
	Annual       Money // sum of amounts times occurrences per year
	ByFrequency  []FrequencySummary
	PeriodIsOpen bool // false when there is no planning period, totals are then zero
}

// SummarizeSection computes the summary of recurring items over p. A nil p means the planning
// period is not set.
func SummarizeSection(items []RecurringItem, p *PlanningPeriod) SectionSummary {
	s := SectionSummary{Count: len(items), PeriodIsOpen: p != nil}
	byFreq := make(map[Frequency]*FrequencySummary)
	for _, it := range items {
		s.Monthly = s.Monthly.Add(MonthlyEquivalent(it))
		s.Annual = s.Annual.Add(it.Amount.Mul(decimal.NewFromInt(int64(it.Frequency.PerYear()))))
		fs, ok := byFreq[it.Frequency]
		if !ok {
			fs = &FrequencySummary{Frequency: it.Frequency}
			byFreq[it.Frequency] = fs
		}
		fs.Count++
		if p != nil {
			t := periodPlanned(it, p.Range())
			fs.Total = fs.Total.Add(t)
			s.Total = s.Total.Add(t)
		}
	}
	for _, f := range Frequencies {
		if fs, ok := byFreq[f]; ok {
			s.ByFrequency = append(s.ByFrequency, *fs)
		}
	}
	slices.SortStableFunc(s.ByFrequency, func(a, b FrequencySummary) int { return b.Count - a.Count })
	return s
}
