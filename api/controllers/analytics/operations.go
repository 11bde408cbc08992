package analytics

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-ops/api/middleware"
	"github.com/angelmondragon/packfinderz-ops/api/responses"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics"
	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	"github.com/angelmondragon/packfinderz-ops/pkg/config"
	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
	"github.com/angelmondragon/packfinderz-ops/pkg/logger"
)

// OperationsReport serves GET /api/v1/analytics/operations for the store in the request context.
func OperationsReport(service analytics.Service, cfg config.ReportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		storeID := middleware.StoreIDFromContext(ctx)

		scope, ok := resolveScope(storeID, middleware.StoreTypeFromContext(ctx))
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context required"))
			return
		}

		query, err := parseOperationsQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		start, end, err := query.resolveRange(timeNowUTC(), cfg.DefaultWindow)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		req := types.ReportRequest{
			StoreID:        storeID,
			Scope:          scope,
			Start:          start,
			End:            end,
			TrendDays:      query.TrendDays,
			SLATargetHours: query.SLATargetHours,
		}

		report, err := service.Operations(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

func resolveScope(storeID, storeType string) (types.Scope, bool) {
	st, err := enums.ParseStoreType(storeType)
	if err != nil {
		return "", false
	}
	if st.IsAdmin() {
		return types.ScopeAdmin, true
	}
	if storeID == "" {
		return "", false
	}
	return types.ScopeFromStoreType(st), true
}
