// Package budget provides the computation engine of a personal budget planner.
// It is local-first: all the state is a handful of JSON documents, loaded into an
// immutable [Snapshot] and never modified in place.
//
// The core functionalities include:
//   - Planning Window: a rolling 12-month period starting on a user chosen date,
//     see [PlanningWindow].
//   - Recurring Items: expected income, planned expenses and planned investments
//     with a free-text frequency, valued either by occurrences over a range
//     ([PeriodPlannedTotal]) or prorated per calendar month
//     ([ProratedTotalForMonth]).
//   - Ledger: actual transactions, debt payments and investments, classified as
//     affecting assets or debts depending on the accounts they use ([Classify]).
//   - Statistics: a stateless [Engine] deriving holdings, outstanding debt, net
//     worth, monthly and category breakdowns from a Snapshot.
//   - Start Date Validation: a proposed planning start is checked against every
//     dated record before it is applied ([ValidateStartDateChange]).
//
// This package serves as the foundational logic for the `budget` command-line
// tool.
package budget
