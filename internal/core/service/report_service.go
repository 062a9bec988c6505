package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/query"
	"github.com/hapl/fieldsales/internal/core/report"
	"github.com/hapl/fieldsales/internal/core/visibility"
)

type reportService struct {
	visits     ports.VisitRepository
	samples    ports.SampleRepository
	visibility *visibility.Filter
	log        zerolog.Logger
}

// NewReportService returns a ReportService implementation.
func NewReportService(
	visits ports.VisitRepository,
	samples ports.SampleRepository,
	filter *visibility.Filter,
	log zerolog.Logger,
) ports.ReportService {
	return &reportService{
		visits:     visits,
		samples:    samples,
		visibility: filter,
		log:        log,
	}
}

func (s *reportService) AllVisits(ctx context.Context, id *domain.Identity) ([]domain.Visit, error) {
	where := query.All().NotNull(domain.FieldVisitStatus)
	return s.findVisits(ctx, "all visits", s.visibility.Narrow(ctx, id, where, visibility.KindVisit))
}

func (s *reportService) VisitedHospitals(ctx context.Context, id *domain.Identity) ([]*report.HospitalSummary, error) {
	visits, err := s.reportableVisits(ctx, id, "visited hospitals")
	if err != nil {
		return nil, err
	}
	return report.Hospitals(visits), nil
}

func (s *reportService) VisitedDoctors(ctx context.Context, id *domain.Identity) ([]*report.DoctorSummary, error) {
	visits, err := s.reportableVisits(ctx, id, "visited doctors")
	if err != nil {
		return nil, err
	}
	return report.Doctors(visits), nil
}

func (s *reportService) reportableVisits(ctx context.Context, id *domain.Identity, name string) ([]domain.Visit, error) {
	where := query.All().In(domain.FieldVisitStatus, domain.ReportableStatuses...)
	return s.findVisits(ctx, name, s.visibility.Narrow(ctx, id, where, visibility.KindVisit))
}

func (s *reportService) SalesVisits(ctx context.Context, email string, r report.Range) (*ports.SalesVisitsResult, error) {
	where := r.Apply(query.All().Eq(domain.FieldVisitEmail, email).NotNull(domain.FieldVisitStatus), domain.FieldCreatedAt)
	visits, err := s.findVisits(ctx, "sales visits", where)
	if err != nil {
		return nil, err
	}
	rows, tally := report.SalesVisits(visits)
	return &ports.SalesVisitsResult{Visits: rows, Tally: tally}, nil
}

func (s *reportService) SalesHospitals(ctx context.Context, email string, r report.Range) ([]*report.LatestVisit, error) {
	visits, err := s.salespersonVisits(ctx, "sales hospitals", email, r)
	if err != nil {
		return nil, err
	}
	return report.SalesHospitals(visits), nil
}

func (s *reportService) SalesDoctors(ctx context.Context, email string, r report.Range) ([]*report.DoctorVisit, error) {
	visits, err := s.salespersonVisits(ctx, "sales doctors", email, r)
	if err != nil {
		return nil, err
	}
	return report.SalesDoctors(visits), nil
}

func (s *reportService) salespersonVisits(ctx context.Context, name, email string, r report.Range) ([]domain.Visit, error) {
	where := query.All().
		Eq(domain.FieldVisitEmail, email).
		In(domain.FieldVisitStatus, domain.ReportableStatuses...)
	return s.findVisits(ctx, name, r.Apply(where, domain.FieldCreatedAt))
}

func (s *reportService) SalesSamples(ctx context.Context, email string, r report.Range) ([]*report.DoctorMonth, error) {
	where := r.Apply(query.All().Eq(domain.FieldSampleSalesPerson, email), domain.FieldCreatedAt)
	samples, err := s.findSamples(ctx, "sales samples", where)
	if err != nil {
		return nil, err
	}
	return report.DoctorMonths(samples), nil
}

func (s *reportService) SalesSummary(ctx context.Context, email string, r report.Range) (*ports.ActivityResult, error) {
	where := query.All().
		Eq(domain.FieldVisitEmail, email).
		In(domain.FieldVisitStatus, domain.ReportableStatuses...)
	return s.activity(ctx, "sales summary", where, r)
}

func (s *reportService) DoctorsSummary(ctx context.Context, r report.Range) (*ports.ActivityResult, error) {
	where := query.All().In(domain.FieldVisitStatus, domain.ReportableStatuses...)
	return s.activity(ctx, "doctors summary", where, r)
}

// activity merges the visits matching where with the samples referred by the
// visited doctors over the same range. No visits means no sample read.
func (s *reportService) activity(ctx context.Context, name string, where query.Predicate, r report.Range) (*ports.ActivityResult, error) {
	visits, err := s.findVisits(ctx, name, r.Apply(where, domain.FieldCreatedAt))
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return &ports.ActivityResult{Doctors: []*report.DoctorActivity{}}, nil
	}

	doctors := report.DoctorNames(visits)
	samples, err := s.findSamples(ctx, name, r.Apply(query.All().In(domain.FieldSampleDoctorName, doctors...), domain.FieldCreatedAt))
	if err != nil {
		return nil, err
	}

	merged := report.DoctorActivities(visits, samples)
	return &ports.ActivityResult{
		Doctors:      merged,
		TotalVisits:  len(visits),
		TotalDoctors: len(merged),
		TotalSamples: len(samples),
	}, nil
}

func (s *reportService) ProductsSummary(ctx context.Context, salesperson string, p report.Period, r report.Range) ([]report.ProductTrend, int, error) {
	where := r.Apply(query.All(), domain.FieldCreatedAt)
	if salesperson != "" {
		where = where.Eq(domain.FieldSampleSalesPerson, salesperson)
	}
	samples, err := s.findSamples(ctx, "products summary", where)
	if err != nil {
		return nil, 0, err
	}
	if len(samples) == 0 {
		return []report.ProductTrend{}, 0, nil
	}
	return report.Trends(report.ProductBuckets(samples, p, salesperson), p), len(samples), nil
}

func (s *reportService) findVisits(ctx context.Context, name string, where query.Predicate) ([]domain.Visit, error) {
	visits, err := s.visits.Find(ctx, where, ports.Window{})
	if err != nil {
		s.log.Error().Err(err).Str("report", name).Msg("failed to read visits")
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return visits, nil
}

func (s *reportService) findSamples(ctx context.Context, name string, where query.Predicate) ([]domain.Sample, error) {
	samples, err := s.samples.Find(ctx, where)
	if err != nil {
		s.log.Error().Err(err).Str("report", name).Msg("failed to read samples")
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return samples, nil
}
