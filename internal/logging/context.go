package logging

import (
	"context"
	"log/slog"

	"loom/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventID is the standardized structured logging key for intake event identifiers.
	FieldEventID = "event_id"
	// FieldTenantID is the standardized structured logging key for tenant identifiers.
	FieldTenantID = "tenant_id"
	// FieldSectionID is the standardized structured logging key for interview section identifiers.
	FieldSectionID = "section_id"
	// FieldSessionID is the standardized structured logging key for session record identifiers.
	FieldSessionID = "session_id"
	// FieldJobID is the standardized structured logging key for transcoding job identifiers.
	FieldJobID = "job_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.EventIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldEventID, id))
	}
	if tenant, ok := services.TenantIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTenantID, tenant))
	}
	if section, ok := services.SectionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSectionID, section))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
