package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/hapl/fieldsales/internal/core/domain"
)

const unknownLabel = "unknown"

// ProductBucket counts one salesperson's samples per product within a period.
type ProductBucket struct {
	Period       string
	Salesperson  string
	TotalSamples int
	products     []string
	counts       map[string]int
}

// Count returns the number of samples of product in the bucket.
func (b *ProductBucket) Count(product string) int { return b.counts[product] }

// Products returns the bucket's products in first-seen order.
func (b *ProductBucket) Products() []string { return append([]string{}, b.products...) }

func (b *ProductBucket) add(product string) {
	if _, ok := b.counts[product]; !ok {
		b.products = append(b.products, product)
	}
	b.counts[product]++
	b.TotalSamples++
}

type bucketKey struct {
	salesperson string
	period      string
}

// ProductBuckets groups samples by (salesperson, period bucket). When
// salesperson is set every bucket carries that label; otherwise each sample's
// own salesperson id is used, or "unknown" when blank. The result is sorted by
// period ascending, ties in first-seen order.
func ProductBuckets(samples []domain.Sample, period Period, salesperson string) []*ProductBucket {
	label := func(s domain.Sample) string {
		switch {
		case salesperson != "":
			return salesperson
		case s.SalesPersonID != "":
			return s.SalesPersonID
		}
		return unknownLabel
	}

	out := Summarize(samples, Spec[domain.Sample, bucketKey, ProductBucket]{
		Key: func(s domain.Sample) bucketKey {
			return bucketKey{salesperson: label(s), period: BucketKey(s.CreatedAt, period)}
		},
		New: func(s domain.Sample) *ProductBucket {
			return &ProductBucket{
				Period:      BucketKey(s.CreatedAt, period),
				Salesperson: label(s),
				counts:      make(map[string]int),
			}
		},
		Add: func(b *ProductBucket, s domain.Sample) {
			product := s.Product
			if product == "" {
				product = unknownLabel
			}
			b.add(product)
		},
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// ProductTrend is one row of the product summary report.
type ProductTrend struct {
	Period      string         `json:"period"`
	Salesperson string         `json:"salesperson"`
	Summary     TrendSummary   `json:"summary"`
	Products    []ProductDelta `json:"products"`
}

// TrendSummary compares a bucket's total against the previous one.
type TrendSummary struct {
	TotalSamples int    `json:"totalSamples"`
	TotalChange  string `json:"totalChange"`
}

// ProductDelta compares one product's count against the previous bucket.
type ProductDelta struct {
	Name   string `json:"name"`
	Trend  string `json:"trend"`
	Change string `json:"change"`
}

// Trends annotates period-sorted buckets with the change against the most
// recent earlier bucket of the same salesperson.
func Trends(buckets []*ProductBucket, period Period) []ProductTrend {
	out := make([]ProductTrend, 0, len(buckets))
	for i, cur := range buckets {
		var prev *ProductBucket
		for j := i - 1; j >= 0; j-- {
			if buckets[j].Salesperson == cur.Salesperson {
				prev = buckets[j]
				break
			}
		}

		row := ProductTrend{
			Period:      cur.Period,
			Salesperson: cur.Salesperson,
			Summary:     TrendSummary{TotalSamples: cur.TotalSamples, TotalChange: totalChange(prev, cur, period)},
		}

		var names orderedSet
		if prev != nil {
			for _, p := range prev.products {
				names.add(p)
			}
		}
		for _, p := range cur.products {
			names.add(p)
		}
		for _, name := range names.values() {
			row.Products = append(row.Products, productDelta(prev, cur, name))
		}
		out = append(out, row)
	}
	return out
}

func totalChange(prev, cur *ProductBucket, period Period) string {
	if prev == nil {
		return fmt.Sprintf("No previous %s data", period)
	}
	diff := cur.TotalSamples - prev.TotalSamples
	pct := 100
	if prev.TotalSamples != 0 {
		pct = percent(diff, prev.TotalSamples)
	}
	return fmt.Sprintf("%s%d%% compared to previous %s (%d → %d)", sign(diff), abs(pct), period, prev.TotalSamples, cur.TotalSamples)
}

func productDelta(prev, cur *ProductBucket, name string) ProductDelta {
	curCount := cur.counts[name]
	if prev == nil {
		return ProductDelta{
			Name:   name,
			Trend:  fmt.Sprintf("%s = %d (first entry)", cur.Period, curCount),
			Change: "No previous data",
		}
	}

	prevCount := prev.counts[name]
	change := "0% (no change)"
	switch {
	case prevCount > 0:
		diff := curCount - prevCount
		change = fmt.Sprintf("%s%d%%", sign(diff), abs(percent(diff, prevCount)))
	case curCount > 0:
		change = "+100% (new orders)"
	}
	return ProductDelta{
		Name:   name,
		Trend:  fmt.Sprintf("%s = %d → %s = %d", prev.Period, prevCount, cur.Period, curCount),
		Change: change,
	}
}

// percent rounds half up, so -2.5 becomes -2.
func percent(diff, base int) int {
	return int(math.Floor(float64(diff)/float64(base)*100 + 0.5))
}

func sign(diff int) string {
	if diff >= 0 {
		return "+"
	}
	return "-"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
