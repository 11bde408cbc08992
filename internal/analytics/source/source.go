// Package source loads the raw record batch an operations report is built from.
//
// Sources only fetch and reshape rows. They never interpret statuses or amounts; that
// belongs to the normalizer, so a source hands malformed values through untouched.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-ops/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/packfinderz-ops/pkg/errors"
)

// Source fetches every record a report window needs.
type Source interface {
	Load(ctx context.Context, q types.Query) (types.Batch, error)
}

func validateQuery(q types.Query) error {
	if !q.Scope.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid report scope")
	}
	if q.Scope != types.ScopeAdmin && strings.TrimSpace(q.StoreID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if q.End.Before(q.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	return nil
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	value := t.UTC().Format(time.RFC3339Nano)
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
