package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
)

// Period is the bucket width of the product trend report.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts week, month or year.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", domain.Invalid("Invalid period. Use 'week', 'month', or 'year'.")
}

// BucketKey renders t's bucket for p: "2025" for year, "2025-01" for month,
// "2025-W3" for week. The week number is ceil((d + w + 1) / 7), where d is the
// zero-based day of the year and w the weekday of January 1st (Sunday = 0).
// Buckets are computed in UTC.
func BucketKey(t time.Time, p Period) string {
	t = t.UTC()
	switch p {
	case PeriodYear:
		return strconv.Itoa(t.Year())
	case PeriodMonth:
		return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
	case PeriodWeek:
		jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		days := int(t.Sub(jan1) / (24 * time.Hour))
		week := (days + int(jan1.Weekday()) + 1 + 6) / 7
		return fmt.Sprintf("%d-W%d", t.Year(), week)
	}
	return ""
}
