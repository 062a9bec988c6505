package report

import (
	"fmt"
	"strings"
	"unicode"
)

// StatusBucket is one column of the visit status tally.
type StatusBucket int

const (
	BucketComplete StatusBucket = iota
	BucketAdHoc
	BucketPending
	BucketCancel
)

var statusSynonyms = map[string]StatusBucket{
	"completed": BucketComplete,
	"complete":  BucketComplete,
	"adhoc":     BucketAdHoc,
	"pending":   BucketPending,
	"cancel":    BucketCancel,
	"canceled":  BucketCancel,
	"cancelled": BucketCancel,
	"cancle":    BucketCancel,
}

// NormalizeStatus lowercases s and strips every non-letter, so "AD_HOC",
// "ad-hoc" and " Ad Hoc " all become "adhoc".
func NormalizeStatus(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, s)
}

// ClassifyStatus maps a stored status to its bucket. Unknown statuses report false.
func ClassifyStatus(s string) (StatusBucket, bool) {
	b, ok := statusSynonyms[NormalizeStatus(s)]
	return b, ok
}

// StatusTally counts visits per status bucket.
type StatusTally struct {
	Complete int `json:"complete"`
	AdHoc    int `json:"adHoc"`
	Pending  int `json:"pending"`
	Cancel   int `json:"cancel"`
}

// Add counts status; unrecognised statuses are dropped.
func (t *StatusTally) Add(status string) {
	b, ok := ClassifyStatus(status)
	if !ok {
		return
	}
	switch b {
	case BucketComplete:
		t.Complete++
	case BucketAdHoc:
		t.AdHoc++
	case BucketPending:
		t.Pending++
	case BucketCancel:
		t.Cancel++
	}
}

// Text renders the human-readable summary line.
func (t StatusTally) Text() string {
	return fmt.Sprintf("Summary: %d completed, %d ad-hoc, %d pending, %d cancel", t.Complete, t.AdHoc, t.Pending, t.Cancel)
}
