package budget

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		label  string
		want   Frequency
		wantOK bool
	}{
		{"Weekly", Weekly, true},
		{"weekly", Weekly, true},
		{"Bi-Weekly", BiWeekly, true},
		{"BIWEEKLY", BiWeekly, true},
		{"bi weekly", BiWeekly, true},
		{"Monthly", Monthly, true},
		{"Bi-Monthly", Monthly, true},
		{"Quarterly", Quarterly, true},
		{"every quarter", Quarterly, true},
		{"Yearly", Yearly, true},
		{"Annually", Yearly, true},
		{"One-Time", Yearly, true},
		{"one time", Yearly, true},
		{"", Monthly, false},
		{"fortnightly", Monthly, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseFrequency(tt.label)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseFrequency(%q) = %v, %v, want %v, %v", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Weekly", "433"},
		{"Bi-Weekly", "217"},
		{"Monthly", "100"},
		{"Quarterly", "33.33"},
		{"Yearly", "8.33"},
		{"whenever", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			it := NewRecurringItem("x", tt.label, M(100, "EUR"), NewDate(2025, 1, 1), NewDate(2025, 12, 31), "")
			if got, want := MonthlyEquivalent(it).Round(), M(decimal.RequireFromString(tt.want), "EUR"); !got.Equal(want) {
				t.Errorf("MonthlyEquivalent(%s) = %v, want %v", tt.label, got, want)
			}
		})
	}
}

func TestOccurrenceCount(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		from, to Date
		want     int
	}{
		{"monthly full year", "Monthly", NewDate(2025, 1, 15), NewDate(2026, 1, 14), 12},
		{"monthly partial", "Monthly", NewDate(2025, 1, 15), NewDate(2025, 12, 31), 12},
		{"monthly half month rounds up", "Monthly", NewDate(2025, 1, 1), NewDate(2025, 1, 16), 1},
		{"monthly few days", "Monthly", NewDate(2025, 1, 1), NewDate(2025, 1, 10), 0},
		{"quarterly full year", "Quarterly", NewDate(2025, 1, 1), NewDate(2025, 12, 31), 4},
		{"quarterly one month", "Quarterly", NewDate(2025, 1, 1), NewDate(2025, 1, 31), 0},
		{"yearly full year", "Yearly", NewDate(2025, 1, 1), NewDate(2025, 12, 31), 1},
		{"yearly single day", "Yearly", NewDate(2025, 6, 1), NewDate(2025, 6, 1), 1},
		{"one-time", "One-Time", NewDate(2025, 6, 1), NewDate(2025, 6, 2), 1},
		{"yearly two years", "Yearly", NewDate(2025, 1, 1), NewDate(2026, 12, 31), 2},
		{"weekly full year", "Weekly", NewDate(2025, 1, 1), NewDate(2025, 12, 31), 52},
		{"weekly four days", "Weekly", NewDate(2025, 1, 1), NewDate(2025, 1, 5), 1},
		{"bi-weekly full year", "Bi-Weekly", NewDate(2025, 1, 1), NewDate(2025, 12, 31), 26},
		{"unknown is monthly", "sometimes", NewDate(2025, 1, 1), NewDate(2025, 12, 31), 12},
		{"reversed", "Monthly", NewDate(2025, 12, 31), NewDate(2025, 1, 1), 0},
		{"reversed yearly", "Yearly", NewDate(2025, 12, 31), NewDate(2025, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OccurrenceCount(tt.label, tt.from, tt.to); got != tt.want {
				t.Errorf("OccurrenceCount(%q, %v, %v) = %d, want %d", tt.label, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// TestOccurrenceCount_Monotonic checks counts never decrease as the range end moves forward.
func TestOccurrenceCount_Monotonic(t *testing.T) {
	starts := []Date{NewDate(2025, 1, 1), NewDate(2025, 1, 15), NewDate(2025, 1, 31), NewDate(2024, 2, 29)}
	for _, f := range Frequencies {
		for _, start := range starts {
			prev := 0
			for end := start; end.Before(start.Add(800)); end = end.Add(1) {
				n := f.Occurrences(start, end)
				if n < prev {
					t.Fatalf("%v.Occurrences(%v, %v) = %d, less than %d the day before", f, start, end, n, prev)
				}
				prev = n
			}
		}
	}
}

// TestOccurrenceCount_YearlyAtLeastOnce checks a yearly item touching a range is counted.
func TestOccurrenceCount_YearlyAtLeastOnce(t *testing.T) {
	p := PlanningWindow(NewDate(2025, 1, 15))
	for d := p.Start.Add(-30); d.Before(p.End.Add(30)); d = d.Add(1) {
		it := NewRecurringItem("insurance", "Yearly", M(600, "$"), d, d, "")
		n, _ := ItemOccurrences(it, p)
		if p.Contains(d) && n < 1 {
			t.Fatalf("ItemOccurrences(yearly on %v) = %d, want at least 1", d, n)
		}
		if !p.Contains(d) && n != 0 {
			t.Fatalf("ItemOccurrences(yearly on %v) = %d, want 0 outside the period", d, n)
		}
	}
}

func TestPeriodPlannedTotal(t *testing.T) {
	p := PlanningWindow(NewDate(2025, 1, 15))
	rent := NewRecurringItem("rent", "Monthly", M(1000, "$"), NewDate(2025, 1, 1), NewDate(2025, 12, 31), "")
	full := NewRecurringItem("salary", "Monthly", M(3000, "$"), p.Start, p.End, "")
	before := NewRecurringItem("old", "Monthly", M(50, "$"), NewDate(2024, 1, 1), NewDate(2024, 12, 31), "")
	gym := NewRecurringItem("gym", "Weekly", M(10, "$"), NewDate(2025, 1, 15), NewDate(2025, 2, 11), "")

	tests := []struct {
		name  string
		items []RecurringItem
		want  Money
	}{
		{"rent", []RecurringItem{rent}, M(12000, "$")},
		{"full period", []RecurringItem{full}, M(36000, "$")},
		{"no overlap", []RecurringItem{before}, Money{}},
		{"weekly", []RecurringItem{gym}, M(40, "$")},
		{"sum", []RecurringItem{rent, before, gym}, M(12040, "$")},
		{"empty", nil, Money{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PeriodPlannedTotal(tt.items, p.Range())
			if !got.Decimal().Equal(tt.want.Decimal()) {
				t.Errorf("PeriodPlannedTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProratedTotalForMonth(t *testing.T) {
	rent := NewRecurringItem("rent", "Monthly", M(1000, "$"), NewDate(2025, 1, 1), NewDate(2025, 12, 31), "")
	late := NewRecurringItem("late", "Monthly", M(310, "$"), NewDate(2025, 1, 22), NewDate(2025, 12, 31), "")
	weekly := NewRecurringItem("food", "Weekly", M(100, "$"), NewDate(2025, 1, 1), NewDate(2025, 12, 31), "")

	tests := []struct {
		name   string
		items  []RecurringItem
		anchor Date
		want   string
	}{
		{"full month", []RecurringItem{rent}, NewDate(2025, 3, 17), "1000"},
		{"partial month", []RecurringItem{late}, NewDate(2025, 1, 1), "100"},
		{"weekly", []RecurringItem{weekly}, NewDate(2025, 2, 28), "433"},
		{"outside", []RecurringItem{rent}, NewDate(2026, 1, 1), "0"},
		{"sum", []RecurringItem{rent, late}, NewDate(2025, 1, 31), "1100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProratedTotalForMonth(tt.items, tt.anchor).Round()
			if want := decimal.RequireFromString(tt.want); !got.Decimal().Equal(want) {
				t.Errorf("ProratedTotalForMonth(%v) = %v, want %v", tt.anchor, got, want)
			}
		})
	}
}

func TestSummarizeSection(t *testing.T) {
	p := PlanningWindow(NewDate(2025, 1, 1))
	items := []RecurringItem{
		NewRecurringItem("rent", "Monthly", M(1000, "$"), p.Start, p.End, ""),
		NewRecurringItem("phone", "Monthly", M(20, "$"), p.Start, p.End, ""),
		NewRecurringItem("tax", "Yearly", M(1200, "$"), p.Start, p.End, ""),
	}
	s := SummarizeSection(items, &p)
	if s.Count != 3 {
		t.Errorf("SummarizeSection().Count = %d, want 3", s.Count)
	}
	if got, want := s.Total.Decimal(), decimal.NewFromInt(13440); !got.Equal(want) {
		t.Errorf("SummarizeSection().Total = %v, want %v", got, want)
	}
	if got, want := s.Monthly.Decimal(), decimal.NewFromInt(1120); !got.Equal(want) {
		t.Errorf("SummarizeSection().Monthly = %v, want %v", got, want)
	}
	if len(s.ByFrequency) != 2 || s.ByFrequency[0].Frequency != Monthly || s.ByFrequency[0].Count != 2 {
		t.Errorf("SummarizeSection().ByFrequency = %v, want Monthly(2) first", s.ByFrequency)
	}

	s = SummarizeSection(items, nil)
	if !s.Total.IsZero() || s.PeriodIsOpen {
		t.Errorf("SummarizeSection(no period) = %v, want zero total", s.Total)
	}
}

func TestRecurringItem_Validate(t *testing.T) {
	ok := NewRecurringItem("rent", "Monthly", M(1, "$"), NewDate(2025, 1, 1), NewDate(2025, 1, 1), "")
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	bad := NewRecurringItem("rent", "Monthly", M(-1, "$"), NewDate(2025, 2, 1), NewDate(2025, 1, 1), "")
	if err := bad.Validate(); err == nil {
		t.Errorf("Validate() expected an error for %v", bad)
	}
}
