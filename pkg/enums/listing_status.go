package enums

import "fmt"

// ListingStatus is the derived health state of a listing in the operations report.
type ListingStatus string

const (
	ListingStatusError     ListingStatus = "error"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusPaused    ListingStatus = "paused"
	ListingStatusPublished ListingStatus = "published"
	ListingStatusDraft     ListingStatus = "draft"
)

var validListingStatuses = []ListingStatus{
	ListingStatusError,
	ListingStatusPending,
	ListingStatusPaused,
	ListingStatusPublished,
	ListingStatusDraft,
}

// String implements fmt.Stringer.
func (l ListingStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingStatus.
func (l ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
