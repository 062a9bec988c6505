// Package pagination implements forward-only cursor pages over records ordered
// by creation time descending, id descending as tie-break.
//
// Two cursor encodings are in use: "<createdAt>_<id>" for order listings and a
// bare id for visit listings. Two hasNextPage strategies are in use as well;
// see HasNextMode.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTake = 10
	MaxTake     = 500

	// cursorTimeLayout matches the millisecond ISO-8601 form stored timestamps round-trip through.
	cursorTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Key is the position of a record in page order.
type Key struct {
	CreatedAt time.Time
	ID        string
}

// Before reports whether k is listed before o: newer first, then higher id.
func (k Key) Before(o Key) bool {
	if !k.CreatedAt.Equal(o.CreatedAt) {
		return k.CreatedAt.After(o.CreatedAt)
	}
	return k.ID > o.ID
}

// FirstPage reports whether cursor denotes the first page.
func FirstPage(cursor string) bool {
	c := strings.TrimSpace(cursor)
	return c == "" || c == "0" || c == "null"
}

// EncodeTimeCursor renders k as "<createdAt ISO-8601>_<id>".
func EncodeTimeCursor(k Key) string {
	return k.CreatedAt.UTC().Format(cursorTimeLayout) + "_" + k.ID
}

// DecodeTimeCursor parses a cursor produced by EncodeTimeCursor.
func DecodeTimeCursor(cursor string) (Key, error) {
	ts, id, ok := strings.Cut(strings.TrimSpace(cursor), "_")
	if !ok || id == "" {
		return Key{}, fmt.Errorf("cursor %q: expected <createdAt>_<id>", cursor)
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Key{}, fmt.Errorf("cursor %q: %w", cursor, err)
	}
	return Key{CreatedAt: t.UTC(), ID: id}, nil
}

// ParseTake reads a page size, falling back to DefaultTake when raw is not a
// positive integer and clamping to MaxTake.
func ParseTake(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultTake
	}
	if n > MaxTake {
		return MaxTake
	}
	return n
}

// HasNextMode selects how hasNextPage is determined.
type HasNextMode int

const (
	// Lookahead reads one record past the page; hasNextPage is exact.
	Lookahead HasNextMode = iota
	// FullPage declares a next page whenever the page is full. A final page of
	// exactly take records is reported as having more.
	FullPage
)

// Limit is the number of records a repository should read for a page of take.
func (m HasNextMode) Limit(take int) int64 {
	if m == Lookahead {
		return int64(take) + 1
	}
	return int64(take)
}

// Trim cuts fetched (read with m.Limit(take)) down to the page and reports
// whether a next page exists.
func Trim[T any](fetched []T, take int, m HasNextMode) ([]T, bool) {
	if m == Lookahead {
		if len(fetched) > take {
			return fetched[:take], true
		}
		return fetched, false
	}
	return fetched, take > 0 && len(fetched) >= take
}

// Page is one page of results.
type Page[T any] struct {
	Items       []T
	LastCursor  string // empty when the page is empty
	HasNextPage bool
	TotalCount  int64
}
