package services

import "context"

type contextKey string

const (
	eventIDKey   contextKey = "event_id"
	tenantIDKey  contextKey = "tenant_id"
	sectionIDKey contextKey = "section_id"
	requestIDKey contextKey = "request_id"
)

// WithEventID annotates context with the intake event identifier.
func WithEventID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, eventIDKey, id)
}

// EventIDFromContext extracts the intake event identifier if present.
func EventIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(eventIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithTenantID annotates context with the owning tenant identifier.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext returns the tenant identifier if present.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(tenantIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSectionID annotates context with the section being assembled.
func WithSectionID(ctx context.Context, sectionID string) context.Context {
	if sectionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sectionIDKey, sectionID)
}

// SectionIDFromContext returns the section identifier if present.
func SectionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sectionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
