package pagination

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeCursor_RoundTrip(t *testing.T) {
	k := Key{CreatedAt: time.Date(2025, 5, 24, 10, 30, 15, 123_000_000, time.UTC), ID: "665f1c2ab0d3e1a2b3c4d5e6"}

	enc := EncodeTimeCursor(k)
	assert.Equal(t, "2025-05-24T10:30:15.123Z_665f1c2ab0d3e1a2b3c4d5e6", enc)

	got, err := DecodeTimeCursor(enc)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(k.CreatedAt))
	assert.Equal(t, k.ID, got.ID)
}

func TestDecodeTimeCursor_Rejects(t *testing.T) {
	for _, c := range []string{"abc", "2025-05-24T10:30:15.123Z_", "yesterday_123"} {
		_, err := DecodeTimeCursor(c)
		assert.Error(t, err, c)
	}
}

func TestFirstPage(t *testing.T) {
	assert.True(t, FirstPage(""))
	assert.True(t, FirstPage("0"))
	assert.True(t, FirstPage(" null "))
	assert.False(t, FirstPage("665f1c2ab0d3e1a2b3c4d5e6"))
}

func TestParseTake(t *testing.T) {
	assert.Equal(t, 25, ParseTake("25"))
	assert.Equal(t, DefaultTake, ParseTake("abc"))
	assert.Equal(t, DefaultTake, ParseTake("-3"))
	assert.Equal(t, MaxTake, ParseTake("100000"))
}

func TestTrim(t *testing.T) {
	items := []int{1, 2, 3}

	page, more := Trim(items, 2, Lookahead)
	assert.Equal(t, []int{1, 2}, page)
	assert.True(t, more)

	page, more = Trim(items[:2], 2, Lookahead)
	assert.Equal(t, []int{1, 2}, page)
	assert.False(t, more)

	// The full-page heuristic misreports a final page of exactly take records.
	page, more = Trim(items[:2], 2, FullPage)
	assert.Equal(t, []int{1, 2}, page)
	assert.True(t, more)

	_, more = Trim(items[:1], 2, FullPage)
	assert.False(t, more)
}

// readAfter simulates a repository read: records strictly after cursor in page
// order, limited to limit.
func readAfter(sorted []Key, cursor *Key, limit int64) []Key {
	var out []Key
	for _, k := range sorted {
		if cursor != nil && !cursor.Before(k) {
			continue
		}
		out = append(out, k)
		if int64(len(out)) == limit {
			break
		}
	}
	return out
}

func TestCursorWalk_NoGapsNoDuplicates(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var keys []Key
	for i := 0; i < 23; i++ {
		// Groups of three share a timestamp to exercise the id tie-break.
		keys = append(keys, Key{CreatedAt: base.Add(time.Duration(i/3) * time.Minute), ID: fmt.Sprintf("id-%02d", i)})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	for _, mode := range []HasNextMode{Lookahead, FullPage} {
		var seen []Key
		var cursor *Key
		for pages := 0; pages < 50; pages++ {
			page, more := Trim(readAfter(keys, cursor, mode.Limit(5)), 5, mode)
			if len(page) > 0 && len(seen) > 0 {
				assert.True(t, seen[len(seen)-1].Before(page[0]), "page must start strictly after the cursor")
			}
			seen = append(seen, page...)
			if len(page) == 0 || !more {
				break
			}
			decoded, err := DecodeTimeCursor(EncodeTimeCursor(page[len(page)-1]))
			require.NoError(t, err)
			cursor = &decoded
		}
		assert.Equal(t, keys, seen)
	}
}
