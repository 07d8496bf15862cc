// Package commit pushes an obituary's approved reconciliation results
// into the external Gramps store. A commit run creates the persons
// marked for creation, applies matched and approved facts as events,
// gender updates, and attributes, then builds family records from the
// relationship facts, deduplicating spouse pairs and reusing families
// that already exist. Every run is tracked as a batch and the whole
// operation can be re-run to completion after a partial failure
// without duplicating external records.
package commit
