package types

import (
	"time"

	"github.com/angelmondragon/packfinderz-ops/pkg/enums"
)

// Scope selects whose records a report covers.
type Scope string

const (
	ScopeVendor Scope = "vendor"
	ScopeBuyer  Scope = "buyer"
	ScopeAdmin  Scope = "admin"
)

// IsValid reports whether the value is a known Scope.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeVendor, ScopeBuyer, ScopeAdmin:
		return true
	}
	return false
}

// ScopeFromStoreType maps a tenant store type onto a report scope.
func ScopeFromStoreType(storeType enums.StoreType) Scope {
	if storeType == enums.StoreTypeBuyer {
		return ScopeBuyer
	}
	return ScopeVendor
}

// ReportRequest carries the input parameters for an operations report.
type ReportRequest struct {
	StoreID        string
	Scope          Scope
	Start          time.Time
	End            time.Time
	TrendDays      int
	SLATargetHours int
}

// Query is what a record source needs to fetch one batch.
type Query struct {
	StoreID string
	Scope   Scope
	Start   time.Time
	End     time.Time
}
