package logging

import (
	"context"
	"log/slog"

	"lineage/internal/services"
)

const (
	// FieldObituaryID is the structured logging key for obituary identifiers.
	FieldObituaryID = "obituary_id"
	// FieldStage is the structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts the pipeline attributes recorded on a context.
// Both handlers fold these into every record logged through the context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ObituaryIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldObituaryID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}
