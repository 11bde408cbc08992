package enums

import (
	"fmt"
	"strings"
)

// StoreType mirrors the store_type enum in Postgres. Admin is a request-only
// scope sent by the gateway and is never persisted.
type StoreType string

const (
	StoreTypeBuyer  StoreType = "buyer"
	StoreTypeVendor StoreType = "vendor"
	StoreTypeAdmin  StoreType = "admin"
)

var persistedStoreTypes = map[StoreType]struct{}{
	StoreTypeBuyer:  {},
	StoreTypeVendor: {},
}

func (s StoreType) String() string {
	return string(s)
}

// IsValid reports whether the value can be stored in stores.type.
func (s StoreType) IsValid() bool {
	_, ok := persistedStoreTypes[s]
	return ok
}

func (s StoreType) IsAdmin() bool {
	return s == StoreTypeAdmin
}

// ParseStoreType accepts buyer, vendor and admin in any case.
func ParseStoreType(value string) (StoreType, error) {
	st := StoreType(strings.ToLower(strings.TrimSpace(value)))
	if st.IsValid() || st.IsAdmin() {
		return st, nil
	}
	return "", fmt.Errorf("invalid store type %q", value)
}
