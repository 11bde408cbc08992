package pagination

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the keyset page size used when none is configured.
	DefaultLimit = 100
	// MaxLimit bounds one page so a single source query stays cheap.
	MaxLimit = 500

	keysetClause = "created_at > ? OR (created_at = ? AND id > ?)"
)

// Cursor is the (created_at, id) position of the last row read.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// After returns the WHERE clause and args that select rows strictly after c.
func (c Cursor) After() (string, []any) {
	return keysetClause, []any{c.CreatedAt, c.CreatedAt, c.ID}
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks for one extra row so SplitPage can tell whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// SplitPage trims a page fetched with LimitWithBuffer(limit) back to limit rows.
func SplitPage[T any](rows []T, limit int) ([]T, bool) {
	limit = NormalizeLimit(limit)
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// EncodeCursor renders c as an opaque token for resume hints in logs.
func EncodeCursor(c Cursor) string {
	payload := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID.String())
	return base64.StdEncoding.EncodeToString([]byte(payload))
}
