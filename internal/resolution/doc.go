// Package resolution reconciles the persons and facts of an obituary
// against the external Gramps store. Each person mentioned in the fact
// set is fuzzy-matched against the person pool and lands in one of
// three states: matched to an existing record, pending human review
// with scored candidates, or marked for creation. Facts are then
// compared against the matched records and assigned an add, update, or
// skip action; updates that contradict existing data are flagged as
// conflicts. Re-running resolution never clobbers a decision a human
// has already made.
package resolution
