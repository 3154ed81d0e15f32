package budget

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrMissingPlanningPeriod is returned when the planner has no start date yet.
	ErrMissingPlanningPeriod = errors.New("planning period is not set")
	// ErrStartDateConflict matches every *StartDateConflictError.
	ErrStartDateConflict = errors.New("start date conflicts with existing records")
	// ErrCrossCategoryConflict matches every *CrossCategoryConflictError.
	ErrCrossCategoryConflict = errors.New("account cannot be both an asset and a debt")
	// ErrDuplicateCategory is returned when a name already exists in its group.
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrNotFound is returned when a record or a category does not exist.
	ErrNotFound = errors.New("not found")
)

// Conflict is a dated record that would fall outside a proposed planning period.
type Conflict struct {
	Record string // e.g. "Transaction #3" or "Expected Income #1"
	Field  string // "Start Date", "End Date" or "" for ledger entries
	Date   Date
}

// String formats the conflict the way it is presented to the user,
// e.g. "Expected Income #1 Start Date (01-Jan-2024)".
func (c Conflict) String() string {
	label := c.Record
	if c.Field != "" {
		label += " " + c.Field
	}
	return fmt.Sprintf("%s (%s)", label, c.Date)
}

// StartDateConflictError reports every record outside a proposed planning period.
type StartDateConflictError struct {
	Period    PlanningPeriod
	Conflicts []Conflict
}

func (e *StartDateConflictError) Error() string {
	items := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		items[i] = c.String()
	}
	return fmt.Sprintf("cannot start the planning period on %s: %d record(s) outside %s: %s",
		e.Period.Start, len(e.Conflicts), e.Period, strings.Join(items, ", "))
}

func (e *StartDateConflictError) Is(target error) bool { return target == ErrStartDateConflict }

// CrossCategoryConflictError reports an account name present in both Accounts and Debt Pay-Off.
type CrossCategoryConflictError struct {
	Name     string
	Group    Group // the group the name was being saved into
	Existing Group // the group the name already belongs to
}

func (e *CrossCategoryConflictError) Error() string {
	return fmt.Sprintf("cannot save %q as %s because it already exists as %s item: items cannot exist in both Accounts and Debt Pay-Off categories simultaneously",
		e.Name, e.Group.itemName(), e.Existing)
}

func (e *CrossCategoryConflictError) Is(target error) bool { return target == ErrCrossCategoryConflict }
