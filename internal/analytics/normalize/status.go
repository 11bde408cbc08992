package normalize

import "github.com/angelmondragon/packfinderz-ops/pkg/enums"

var orderStatusAliases = map[string]enums.OrderStatus{
	"pending":            enums.OrderStatusPending,
	"created":            enums.OrderStatusPending,
	"created_pending":    enums.OrderStatusPending,
	"awaiting_payment":   enums.OrderStatusPending,
	"new":                enums.OrderStatusPending,
	"processing":         enums.OrderStatusProcessing,
	"accepted":           enums.OrderStatusProcessing,
	"partially_accepted": enums.OrderStatusProcessing,
	"fulfilled":          enums.OrderStatusProcessing,
	"ready_for_dispatch": enums.OrderStatusProcessing,
	"hold":               enums.OrderStatusProcessing,
	"hold_for_pickup":    enums.OrderStatusProcessing,
	"shipped":            enums.OrderStatusShipped,
	"in_transit":         enums.OrderStatusShipped,
	"dispatched":         enums.OrderStatusShipped,
	"delivered":          enums.OrderStatusDelivered,
	"completed":          enums.OrderStatusDelivered,
	"closed":             enums.OrderStatusDelivered,
	"cancelled":          enums.OrderStatusCancelled,
	"canceled":           enums.OrderStatusCancelled,
	"rejected":           enums.OrderStatusCancelled,
	"expired":            enums.OrderStatusCancelled,
	"refunded":           enums.OrderStatusCancelled,
}

var settlementStatusAliases = map[string]enums.SettlementStatus{
	"pending":      enums.SettlementStatusPending,
	"processing":   enums.SettlementStatusPending,
	"in_progress":  enums.SettlementStatusPending,
	"unreconciled": enums.SettlementStatusPending,
	"complete":     enums.SettlementStatusComplete,
	"completed":    enums.SettlementStatusComplete,
	"reconciled":   enums.SettlementStatusComplete,
	"settled":      enums.SettlementStatusComplete,
	"paid":         enums.SettlementStatusComplete,
	"failed":       enums.SettlementStatusFailed,
	"error":        enums.SettlementStatusFailed,
	"rejected":     enums.SettlementStatusFailed,
	"disputed":     enums.SettlementStatusFailed,
	"mismatch":     enums.SettlementStatusFailed,
}

var printJobStatusAliases = map[string]enums.PrintJobStatus{
	"queued":      enums.PrintJobStatusQueued,
	"pending":     enums.PrintJobStatusQueued,
	"waiting":     enums.PrintJobStatusQueued,
	"printing":    enums.PrintJobStatusPrinting,
	"in_progress": enums.PrintJobStatusPrinting,
	"completed":   enums.PrintJobStatusCompleted,
	"complete":    enums.PrintJobStatusCompleted,
	"printed":     enums.PrintJobStatusCompleted,
	"done":        enums.PrintJobStatusCompleted,
	"failed":      enums.PrintJobStatusFailed,
	"error":       enums.PrintJobStatusFailed,
	"jammed":      enums.PrintJobStatusFailed,
}

var productStatusAliases = map[string]enums.ProductStatus{
	"draft":     enums.ProductStatusDraft,
	"published": enums.ProductStatusPublished,
	"active":    enums.ProductStatusPublished,
	"live":      enums.ProductStatusPublished,
	"paused":    enums.ProductStatusPaused,
	"inactive":  enums.ProductStatusPaused,
	"hidden":    enums.ProductStatusPaused,
	"archived":  enums.ProductStatusArchived,
	"deleted":   enums.ProductStatusArchived,
}

// OrderStatus maps upstream vocabulary onto the canonical order lifecycle; unknown values become processing.
func OrderStatus(value string) Field[enums.OrderStatus] {
	return lookup(orderStatusAliases, value, enums.OrderStatusProcessing)
}

// SettlementStatus defaults to pending.
func SettlementStatus(value string) Field[enums.SettlementStatus] {
	return lookup(settlementStatusAliases, value, enums.SettlementStatusPending)
}

// PrintJobStatus defaults to queued.
func PrintJobStatus(value string) Field[enums.PrintJobStatus] {
	return lookup(printJobStatusAliases, value, enums.PrintJobStatusQueued)
}

// ProductStatus defaults to draft.
func ProductStatus(value string) Field[enums.ProductStatus] {
	return lookup(productStatusAliases, value, enums.ProductStatusDraft)
}

func lookup[T any](aliases map[string]T, value string, fallback T) Field[T] {
	if status, ok := aliases[enumToken(value)]; ok {
		return Field[T]{Value: status}
	}
	return Field[T]{Value: fallback, Defaulted: true}
}
