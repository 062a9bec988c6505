package report

import (
	"strings"
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/query"
)

const dateOnlyLen = len("2006-01-02")

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts ISO-8601 timestamps and YYYY-MM-DD dates. Values without a
// zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// EndOfDay returns the last millisecond of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	d := domain.DateOnly(t)
	return d.Add(24*time.Hour - time.Millisecond)
}

// Range is an optional inclusive creation-time window. Zero bounds are open.
type Range struct {
	Start    time.Time
	End      time.Time
	RawStart string
	RawEnd   string
}

// ParseRange validates optional start and end parameters. A date-only end is
// widened to the end of that day.
func ParseRange(start, end string) (Range, error) {
	r := Range{RawStart: strings.TrimSpace(start), RawEnd: strings.TrimSpace(end)}

	if r.RawStart != "" {
		t, ok := ParseDate(r.RawStart)
		if !ok {
			return Range{}, domain.Invalid("Invalid start date format. Please use ISO 8601 format (YYYY-MM-DD or YYYY-MM-DDTHH:mm:ss.sssZ)")
		}
		r.Start = t
	}

	if r.RawEnd != "" {
		t, ok := ParseDate(r.RawEnd)
		if !ok {
			return Range{}, domain.Invalid("Invalid end date format. Please use ISO 8601 format (YYYY-MM-DD or YYYY-MM-DDTHH:mm:ss.sssZ)")
		}
		if len(r.RawEnd) == dateOnlyLen {
			t = EndOfDay(t)
		}
		r.End = t
	}

	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return Range{}, domain.Invalid("Start date cannot be after end date")
	}
	return r, nil
}

// IsSet reports whether either bound was supplied.
func (r Range) IsSet() bool { return r.RawStart != "" || r.RawEnd != "" }

// Apply restricts p to the window on field.
func (r Range) Apply(p query.Predicate, field string) query.Predicate {
	return p.Between(field, r.Start, r.End)
}

// Describe renders the window for response messages.
func (r Range) Describe() string {
	switch {
	case r.RawStart != "" && r.RawEnd != "":
		return "from " + r.RawStart + " to " + r.RawEnd
	case r.RawStart != "":
		return "from " + r.RawStart + " onwards"
	case r.RawEnd != "":
		return "up to " + r.RawEnd
	}
	return ""
}

// RangeMeta is the dateRange block of report metadata.
type RangeMeta struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Meta returns the raw bounds, null when absent.
func (r Range) Meta() RangeMeta {
	var m RangeMeta
	if r.RawStart != "" {
		s := r.RawStart
		m.Start = &s
	}
	if r.RawEnd != "" {
		e := r.RawEnd
		m.End = &e
	}
	return m
}
