package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/query"
)

type OrderService struct {
	orders  ports.OrderRepository
	samples ports.SampleRepository
	log     zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, samples ports.SampleRepository, log zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, samples: samples, log: log}
}

// List returns one page of orders newest first. A full page always reports a
// next page, so the final page of exactly take orders is followed by an empty one.
func (s *OrderService) List(ctx context.Context, in ports.ListOrdersInput) (*pagination.Page[domain.Order], error) {
	take := in.Take
	if take <= 0 {
		take = pagination.DefaultTake
	}

	where := in.Range.Apply(query.All(), domain.FieldCreatedAt)
	if search := strings.TrimSpace(in.Search); search != "" && search != "null" {
		where = where.AnyContains(search,
			domain.FieldOrderID,
			domain.FieldOrderProductName,
			domain.FieldOrderStatus,
			domain.FieldOrderCustomerFirst,
			domain.FieldOrderCustomerLast,
		)
	}

	window := ports.Window{Limit: pagination.FullPage.Limit(take)}
	if !pagination.FirstPage(in.Cursor) {
		key, err := pagination.DecodeTimeCursor(in.Cursor)
		if err != nil {
			return nil, domain.Invalid("Invalid cursor")
		}
		window.After = &key
	}

	total, err := s.orders.Count(ctx, where)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count orders")
		return nil, fmt.Errorf("list orders: %w", err)
	}
	fetched, err := s.orders.Find(ctx, where, window)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("list orders: %w", err)
	}

	items, hasNext := pagination.Trim(fetched, take, pagination.FullPage)
	page := &pagination.Page[domain.Order]{
		Items:       items,
		HasNextPage: hasNext,
		TotalCount:  total,
	}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.LastCursor = pagination.EncodeTimeCursor(pagination.Key{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// SiteOrders counts samples registered in the range per customer site.
func (s *OrderService) SiteOrders(ctx context.Context, in ports.SiteOrdersInput) ([]domain.SiteOrders, error) {
	where := in.Range.Apply(query.All(), domain.FieldSampleRegisteredAt)
	if productID, ok := siteFilter(in.ProductID); ok {
		where = where.Eq(domain.FieldSampleProductID, productID)
	}
	if city, ok := siteFilter(in.City); ok {
		where = where.Eq(domain.FieldSampleCity, capitalizeFirst(city))
	}

	rows, err := s.samples.CountBySite(ctx, where)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count site orders")
		return nil, fmt.Errorf("site orders: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoData
	}
	return rows, nil
}

// siteFilter reports whether a path filter value constrains the result.
func siteFilter(v string) (string, bool) {
	v = strings.TrimSpace(v)
	switch v {
	case "", "undefined", "default":
		return "", false
	}
	return v, true
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
