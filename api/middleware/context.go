package middleware

import "context"

type contextKey string

const (
	ctxStoreID   contextKey = "store_id"
	ctxStoreType contextKey = "store_type"
)

func StoreIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStoreID).(string); ok {
		return v
	}
	return ""
}

// StoreTypeFromContext returns the tenant store type (vendor, buyer or admin).
func StoreTypeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStoreType).(string); ok {
		return v
	}
	return ""
}

// WithStoreID injects the store identifier into the context for downstream handlers.
func WithStoreID(ctx context.Context, storeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, storeID)
}

func WithStoreType(ctx context.Context, storeType string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreType, storeType)
}
