// Package store persists the reconciliation working state in SQLite.
//
// The Store manages database connections, schema initialization, and the
// rows that drive the pipeline: obituaries, extracted facts, person and
// fact resolutions, commit batches, and external record mappings. Status
// transitions stamp updated_at so the CLI can show review age; the
// record_mappings unique key is what makes repeated commits idempotent.
//
// Schema changes bump the version in schema.go; users delete the database
// to adopt the new schema.
package store
