// Package services defines shared utilities consumed by the pipeline
// stages and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp obituary IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent resolution statuses (failed vs pending review).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
