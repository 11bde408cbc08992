package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-ops/api/responses"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
)

const (
	StoreIDHeader   = "X-Store-Id"
	StoreTypeHeader = "X-Store-Type"

	StoreTypeAdmin = string(enums.StoreTypeAdmin)
)

// StoreHeaders copies the gateway-provided tenant headers into the request context.
func StoreHeaders(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			storeType := strings.ToLower(strings.TrimSpace(r.Header.Get(StoreTypeHeader)))
			storeID := strings.TrimSpace(r.Header.Get(StoreIDHeader))

			if storeID != "" {
				if _, err := uuid.Parse(storeID); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid store id").WithDetails(map[string]any{"header": StoreIDHeader}))
					return
				}
				ctx = WithStoreID(ctx, storeID)
				if logg != nil {
					ctx = logg.WithStoreID(ctx, storeID)
				}
			}
			if storeType != "" {
				ctx = WithStoreType(ctx, storeType)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreContext rejects requests that carry neither a store nor the admin type.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if StoreIDFromContext(ctx) == "" && StoreTypeFromContext(ctx) != StoreTypeAdmin {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
