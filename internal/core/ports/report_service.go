package ports

import (
	"context"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/report"
)

// ActivityResult is the doctor activity report with its totals.
type ActivityResult struct {
	Doctors      []*report.DoctorActivity
	TotalVisits  int
	TotalDoctors int
	TotalSamples int
}

// SalesVisitsResult lists a salesperson's visits with their status tally.
type SalesVisitsResult struct {
	Visits []report.VisitRow
	Tally  report.StatusTally
}

// ReportService runs the aggregation reports. Identity-scoped reports are
// narrowed by the visibility filter; email-scoped ones are not.
type ReportService interface {
	AllVisits(ctx context.Context, id *domain.Identity) ([]domain.Visit, error)
	VisitedHospitals(ctx context.Context, id *domain.Identity) ([]*report.HospitalSummary, error)
	VisitedDoctors(ctx context.Context, id *domain.Identity) ([]*report.DoctorSummary, error)

	SalesVisits(ctx context.Context, email string, r report.Range) (*SalesVisitsResult, error)
	SalesHospitals(ctx context.Context, email string, r report.Range) ([]*report.LatestVisit, error)
	SalesDoctors(ctx context.Context, email string, r report.Range) ([]*report.DoctorVisit, error)
	SalesSamples(ctx context.Context, email string, r report.Range) ([]*report.DoctorMonth, error)
	SalesSummary(ctx context.Context, email string, r report.Range) (*ActivityResult, error)
	DoctorsSummary(ctx context.Context, r report.Range) (*ActivityResult, error)

	// ProductsSummary returns trend rows and the number of samples read.
	ProductsSummary(ctx context.Context, salesperson string, p report.Period, r report.Range) ([]report.ProductTrend, int, error)
}

// ListOrdersInput carries the parameters of the paginated order listing.
type ListOrdersInput struct {
	Take   int
	Cursor string // "<createdAt>_<id>"; "", "0" or "null" for the first page
	Search string
	Range  report.Range
}

// SiteOrdersInput filters the per-site sample count.
type SiteOrdersInput struct {
	Range     report.Range
	ProductID string // "undefined" and "default" mean no filter
	City      string // same; capitalized before matching
}

// OrderService lists orders and counts samples per site.
type OrderService interface {
	List(ctx context.Context, in ListOrdersInput) (*pagination.Page[domain.Order], error)
	SiteOrders(ctx context.Context, in SiteOrdersInput) ([]domain.SiteOrders, error)
}
