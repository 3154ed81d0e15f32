package budget

import (
	"fmt"
)

// ValidateStartDateChange checks that every dated record fits in the planning period starting on
// newStart.
//
// It scans transactions, debt payments, investments, and the start and end dates of the recurring
// planner items. It returns nil, or a *StartDateConflictError listing every record outside the new
// period. Malformed records have no date to check and are left out, Snapshot.Malformed reports
// them. It has no side effect: applying the change is up to the caller.
func ValidateStartDateChange(newStart Date, s *Snapshot) error {
	if newStart.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidDate)
	}
	p := PlanningWindow(newStart)
	var conflicts []Conflict

	for e := range s.ledger.Entries() {
		if !p.Contains(e.When()) {
			conflicts = append(conflicts, Conflict{Record: e.Label(), Date: e.When()})
		}
	}

	for _, section := range RecurringSections {
		for i, it := range s.planner.items[section] {
			record := fmt.Sprintf("%s #%d", section, i+1)
			if !p.Contains(it.Start) {
				conflicts = append(conflicts, Conflict{Record: record, Field: "Start Date", Date: it.Start})
			}
			if !p.Contains(it.End) {
				conflicts = append(conflicts, Conflict{Record: record, Field: "End Date", Date: it.End})
			}
		}
	}

	if len(conflicts) > 0 {
		return &StartDateConflictError{Period: p, Conflicts: conflicts}
	}
	return nil
}

// ValidateStartDate parses a proposed start date and validates it, see ValidateStartDateChange.
func ValidateStartDate(start string, s *Snapshot) (Date, error) {
	d, err := ParseDate(start)
	if err != nil {
		return Date{}, err
	}
	return d, ValidateStartDateChange(d, s)
}
