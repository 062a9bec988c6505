package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/query"
	"github.com/hapl/fieldsales/internal/core/visibility"
)

const reportingManagersLimit = 500

var errInvalidHaplID = domain.Invalid("Invalid visit ID format")

type VisitService struct {
	repo       ports.VisitRepository
	visibility *visibility.Filter
	logger     zerolog.Logger
	now        func() time.Time
}

func NewVisitService(repo ports.VisitRepository, filter *visibility.Filter, logger zerolog.Logger) *VisitService {
	return &VisitService{repo: repo, visibility: filter, logger: logger, now: time.Now}
}

// Create stores a new visit owned by id. The business key is derived from the
// creation instant.
func (s *VisitService) Create(ctx context.Context, id *domain.Identity, in ports.VisitInput) (*domain.Visit, error) {
	if !id.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	now := s.now().UTC()
	today := domain.DateOnly(now)
	count, err := s.todayCount(ctx, in.VisitType, today)
	if err != nil {
		return nil, err
	}

	visit := &domain.Visit{
		HaplID:             domain.HaplIDPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		UserID:             id.ID,
		UserEmail:          id.Email,
		ManagerEmail:       id.ManagerEmail,
		ManagerID:          id.ManagerID,
		TodayVisitCount:    count,
		PlannedInDateTime:  in.OutDateTime,
		PlannedOutDateTime: in.OutDateTime,
		AddressClient:      in.AddressClient,
		OrganizationID:     in.OrganizationID,
		CustomerID:         in.CustomerID,
		CustomerType:       in.CustomerType,
		Status:             in.Status,
		VisitType:          in.VisitType,
		CapturedDate:       today,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	applyVisitInput(visit, in)

	if err := s.repo.Create(ctx, visit); err != nil {
		s.logger.Error().Err(err).Str("user_id", id.ID).Msg("failed to create visit")
		return nil, err
	}

	s.logger.Info().Str("hapl_id", visit.HaplID).Str("user_id", id.ID).Msg("visit created")
	return visit, nil
}

func (s *VisitService) Get(ctx context.Context, haplID string) (*domain.Visit, error) {
	if !domain.ValidHaplID(haplID) {
		return nil, errInvalidHaplID
	}
	return s.repo.FindByHaplID(ctx, haplID)
}

// Update overwrites the editable fields of a visit. Planned times, the client
// address and the customer linkage keep their stored values, as do status and
// visit type when the caller leaves them empty.
func (s *VisitService) Update(ctx context.Context, haplID string, in ports.VisitInput) (*domain.Visit, error) {
	if !domain.ValidHaplID(haplID) {
		return nil, errInvalidHaplID
	}

	existing, err := s.repo.FindByHaplID(ctx, haplID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if in.Status != "" {
		existing.Status = in.Status
	}
	if in.VisitType != "" {
		existing.VisitType = in.VisitType
	}
	count, err := s.todayCount(ctx, existing.VisitType, domain.DateOnly(now))
	if err != nil {
		return nil, err
	}
	existing.TodayVisitCount = count
	existing.UpdatedAt = now
	applyVisitInput(existing, in)

	updated, err := s.repo.ReplaceByHaplID(ctx, haplID, existing)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("hapl_id", haplID).Msg("failed to update visit")
		}
		return nil, err
	}

	s.logger.Info().Str("hapl_id", haplID).Msg("visit updated")
	return updated, nil
}

func (s *VisitService) Delete(ctx context.Context, haplID string) (*domain.Visit, error) {
	if !domain.ValidHaplID(haplID) {
		return nil, errInvalidHaplID
	}
	deleted, err := s.repo.DeleteByHaplID(ctx, haplID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("hapl_id", haplID).Msg("failed to delete visit")
		}
		return nil, err
	}
	s.logger.Info().Str("hapl_id", haplID).Msg("visit deleted")
	return deleted, nil
}

// List returns one page of the visits id may see, created within the input
// window, newest first.
func (s *VisitService) List(ctx context.Context, id *domain.Identity, in ports.ListVisitsInput) (*pagination.Page[domain.Visit], error) {
	take := in.Take
	if take <= 0 {
		take = pagination.DefaultTake
	}

	where := query.All().Between(domain.FieldCreatedAt, in.From, in.To)
	where = s.visibility.Narrow(ctx, id, where, visibility.KindVisit)
	if search := strings.TrimSpace(in.Search); search != "" && search != "null" {
		where = where.AnyContains(search,
			domain.FieldVisitClientName,
			domain.FieldVisitHospitalName,
			domain.FieldVisitDoctorName,
		)
	}

	total, err := s.repo.Count(ctx, where)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count visits")
		return nil, fmt.Errorf("list visits: %w", err)
	}

	window := ports.Window{Limit: pagination.Lookahead.Limit(take)}
	if !pagination.FirstPage(in.Cursor) {
		key, err := s.repo.KeyOf(ctx, strings.TrimSpace(in.Cursor))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Invalid("Invalid cursor")
			}
			return nil, fmt.Errorf("list visits: %w", err)
		}
		window.After = &key
	}

	fetched, err := s.repo.Find(ctx, where, window)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list visits")
		return nil, fmt.Errorf("list visits: %w", err)
	}

	items, hasNext := pagination.Trim(fetched, take, pagination.Lookahead)
	page := &pagination.Page[domain.Visit]{
		Items:       items,
		HasNextPage: hasNext,
		TotalCount:  total,
	}
	if len(items) > 0 {
		page.LastCursor = items[len(items)-1].ID
	}
	return page, nil
}

func (s *VisitService) ReportingManagers(ctx context.Context) ([]string, error) {
	names, err := s.repo.ReportingManagers(ctx, reportingManagersLimit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list reporting managers")
		return nil, fmt.Errorf("reporting managers: %w", err)
	}
	return names, nil
}

func (s *VisitService) todayCount(ctx context.Context, visitType string, today time.Time) (int, error) {
	if visitType != domain.VisitTypeNewVisit {
		return domain.TodayVisitCount(visitType, 0), nil
	}
	n, err := s.repo.CountCapturedOn(ctx, today)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count today's visits")
		return 0, fmt.Errorf("count today's visits: %w", err)
	}
	return domain.TodayVisitCount(visitType, n), nil
}

// applyVisitInput copies the fields both create and update write.
func applyVisitInput(v *domain.Visit, in ports.VisitInput) {
	v.Email = in.Email
	v.DoctorName = in.DoctorName
	v.HospitalName = in.HospitalName
	v.SalesPersonName = in.SalesPersonName
	v.ReportType = in.ReportType
	v.ClientName = in.ClientName
	v.ReportingManagerName = in.ReportingManagerName
	v.Tags = in.Tags
	v.PincodeClient = in.PincodeClient
	v.ClientEmail = in.ClientEmail
	v.ClientPhone = in.ClientPhone
	v.Client = in.Client
	v.NameOfPersonMet = in.NameOfPersonMet
	v.DesignationOfPerson = in.DesignationOfPerson
	v.QuestionsByClient = in.QuestionsByClient
	v.NextSteps = in.NextSteps
	v.VisitOrCallHighlights = in.VisitOrCallHighlights
	v.InDateTime = in.InDateTime
	v.OutDateTime = in.OutDateTime
	v.InDate = dateOrZero(in.InDateTime)
	v.OutDate = dateOrZero(in.OutDateTime)
	v.InTime = in.InTime
	v.OutTime = in.OutTime
	v.LatLng = in.LatLng
	v.Geolocation = in.LatLng
}

func dateOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return domain.DateOnly(t)
}
