package ports

import (
	"context"
	"time"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/query"
)

// Window positions a read in page order (created_at desc, id desc). The zero
// value reads everything from the start.
type Window struct {
	After *pagination.Key // read strictly after this key
	Limit int64           // 0 = unlimited
}

// VisitRepository defines persistence operations for visits.
type VisitRepository interface {
	Create(ctx context.Context, v *domain.Visit) error
	FindByHaplID(ctx context.Context, haplID string) (*domain.Visit, error)
	// ReplaceByHaplID overwrites the stored visit, keeping its id, business key
	// and creation time.
	ReplaceByHaplID(ctx context.Context, haplID string, v *domain.Visit) (*domain.Visit, error)
	DeleteByHaplID(ctx context.Context, haplID string) (*domain.Visit, error)
	// CountCapturedOn counts visits whose captured date is day.
	CountCapturedOn(ctx context.Context, day time.Time) (int64, error)
	Count(ctx context.Context, where query.Predicate) (int64, error)
	Find(ctx context.Context, where query.Predicate, w Window) ([]domain.Visit, error)
	// KeyOf returns the page-order key of the visit with the given id.
	KeyOf(ctx context.Context, id string) (pagination.Key, error)
	// ReportingManagers returns distinct non-empty reporting manager names, ascending.
	ReportingManagers(ctx context.Context, limit int64) ([]string, error)
}
