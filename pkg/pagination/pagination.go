// Package pagination implements keyset paging over (timestamp, id) ordered
// rows with opaque cursors.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last row of a page. Rows sort by Timestamp descending
// with ID breaking ties.
type Cursor struct {
	Timestamp time.Time
	ID        uuid.UUID
}

type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NormalizeLimit clamps limit to [1, MaxLimit], using DefaultLimit for
// non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// LimitWithBuffer is the row count to fetch so Build can tell whether a
// further page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Trim drops the look-ahead row and reports whether it was present.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, false
	}
	return rows[:limit], true
}

// Build turns rows fetched with LimitWithBuffer into a page, converting
// each row with toItem and deriving the next cursor from the last kept row.
func Build[R, T any](rows []R, limit int, toItem func(*R) T, cursorOf func(*R) Cursor) *Page[T] {
	kept, more := Trim(rows, limit)
	page := &Page[T]{Items: make([]T, 0, len(kept))}
	for i := range kept {
		page.Items = append(page.Items, toItem(&kept[i]))
	}
	if more && len(kept) > 0 {
		page.NextCursor = EncodeCursor(cursorOf(&kept[len(kept)-1]))
	}
	return page
}

// EncodeCursor packs the cursor as 8 bytes of unix nanoseconds followed by
// the 16 id bytes, base64url encoded.
func EncodeCursor(c Cursor) string {
	buf := make([]byte, 0, 24)
	nanos := uint64(c.Timestamp.UnixNano())
	for shift := 56; shift >= 0; shift -= 8 {
		buf = append(buf, byte(nanos>>shift))
	}
	buf = append(buf, c.ID[:]...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// ParseCursor returns nil for a blank value and ErrInvalidCursor for
// anything EncodeCursor could not have produced.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) != 24 {
		return nil, ErrInvalidCursor
	}
	var nanos uint64
	for _, b := range raw[:8] {
		nanos = nanos<<8 | uint64(b)
	}
	id, err := uuid.FromBytes(raw[8:])
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{Timestamp: time.Unix(0, int64(nanos)).UTC(), ID: id}, nil
}
