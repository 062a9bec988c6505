package ports

import (
	"context"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/query"
)

// SampleRepository reads lab samples.
type SampleRepository interface {
	Find(ctx context.Context, where query.Predicate) ([]domain.Sample, error)
	// CountBySite counts samples per (customer id, customer name).
	CountBySite(ctx context.Context, where query.Predicate) ([]domain.SiteOrders, error)
}

// OrderRepository reads lab orders.
type OrderRepository interface {
	Count(ctx context.Context, where query.Predicate) (int64, error)
	Find(ctx context.Context, where query.Predicate, w Window) ([]domain.Order, error)
}
