package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/report"
)

// stubReportService records the scope of the last call and returns canned data.
type stubReportService struct {
	identity    *domain.Identity
	email       string
	rng         report.Range
	salesperson string
	period      report.Period
	visits      []domain.Visit
	hospitals   []*report.HospitalSummary
	activity    *ports.ActivityResult
	trends      []report.ProductTrend
	err         error
}

func (s *stubReportService) AllVisits(_ context.Context, id *domain.Identity) ([]domain.Visit, error) {
	s.identity = id
	return s.visits, s.err
}

func (s *stubReportService) VisitedHospitals(_ context.Context, id *domain.Identity) ([]*report.HospitalSummary, error) {
	s.identity = id
	return s.hospitals, s.err
}

func (s *stubReportService) VisitedDoctors(_ context.Context, id *domain.Identity) ([]*report.DoctorSummary, error) {
	s.identity = id
	return report.Doctors(s.visits), s.err
}

func (s *stubReportService) SalesVisits(_ context.Context, email string, r report.Range) (*ports.SalesVisitsResult, error) {
	s.email, s.rng = email, r
	rows, tally := report.SalesVisits(s.visits)
	return &ports.SalesVisitsResult{Visits: rows, Tally: tally}, s.err
}

func (s *stubReportService) SalesHospitals(_ context.Context, email string, r report.Range) ([]*report.LatestVisit, error) {
	s.email, s.rng = email, r
	return report.SalesHospitals(s.visits), s.err
}

func (s *stubReportService) SalesDoctors(_ context.Context, email string, r report.Range) ([]*report.DoctorVisit, error) {
	s.email, s.rng = email, r
	return report.SalesDoctors(s.visits), s.err
}

func (s *stubReportService) SalesSamples(_ context.Context, email string, r report.Range) ([]*report.DoctorMonth, error) {
	s.email, s.rng = email, r
	return nil, s.err
}

func (s *stubReportService) SalesSummary(_ context.Context, email string, r report.Range) (*ports.ActivityResult, error) {
	s.email, s.rng = email, r
	return s.activity, s.err
}

func (s *stubReportService) DoctorsSummary(_ context.Context, r report.Range) (*ports.ActivityResult, error) {
	s.rng = r
	return s.activity, s.err
}

func (s *stubReportService) ProductsSummary(_ context.Context, salesperson string, p report.Period, r report.Range) ([]report.ProductTrend, int, error) {
	s.salesperson, s.period, s.rng = salesperson, p, r
	return s.trends, 7, s.err
}

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestReportHandler(stub *stubReportService) *ReportHandler {
	h := NewReportHandler(stub)
	h.now = func() time.Time { return fixedNow }
	return h
}

func reportVisits() []domain.Visit {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []domain.Visit{
		{ID: "v1", HaplID: "HAPL-1", Email: "asha@hapl.in", Status: "COMPLETED", HospitalName: "City Hospital", DoctorName: "Dr. Rao", CreatedAt: at},
		{ID: "v2", HaplID: "HAPL-2", Email: "asha@hapl.in", Status: "PENDING", HospitalName: "Apollo", DoctorName: "Dr. Iyer", CreatedAt: at.Add(time.Hour)},
	}
}

func TestReportHandler_AllVisits_PassesCallerIdentity(t *testing.T) {
	stub := &stubReportService{visits: reportVisits()}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/visit/all", "")
	withIdentity(c, salesCaller)
	require.NoError(t, handler.AllVisits(c))

	assert.Equal(t, salesCaller, stub.identity)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Visit information retrieved successfully. Total records: 2", resp["message"])
	meta := resp["data"].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, float64(2), meta["totalCount"])
	assert.Equal(t, "2025-03-15T12:00:00Z", meta["fetchedAt"])
}

func TestReportHandler_VisitedHospitals(t *testing.T) {
	stub := &stubReportService{hospitals: report.Hospitals(reportVisits())}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/visit/hospitals", "")
	withIdentity(c, salesCaller)
	require.NoError(t, handler.VisitedHospitals(c))

	assert.Equal(t, salesCaller, stub.identity)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Visited hospitals retrieved successfully. Found 2 unique hospitals.", resp["message"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, []any{"Apollo", "City Hospital"}, data["hospitalNames"])
	meta := data["metadata"].(map[string]any)
	assert.Equal(t, float64(2), meta["totalUniqueHospitals"])
	assert.Equal(t, float64(2), meta["totalVisits"])
}

func TestReportHandler_VisitedHospitals_NamesInByteOrder(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	visits := []domain.Visit{
		{ID: "v1", Email: "asha@hapl.in", Status: "COMPLETED", HospitalName: "apollo", CreatedAt: at},
		{ID: "v2", Email: "asha@hapl.in", Status: "COMPLETED", HospitalName: "City Hospital", CreatedAt: at},
	}
	stub := &stubReportService{hospitals: report.Hospitals(visits)}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/visit/hospitals", "")
	withIdentity(c, salesCaller)
	require.NoError(t, handler.VisitedHospitals(c))

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, []any{"City Hospital", "apollo"}, data["hospitalNames"])
	hospitals := data["hospitals"].([]any)
	require.Len(t, hospitals, 2)
	assert.Equal(t, "apollo", hospitals[0].(map[string]any)["hospitalName"])
}

func TestReportHandler_VisitedDoctors_Empty(t *testing.T) {
	handler := newTestReportHandler(&stubReportService{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/visit/doctors", "")
	withIdentity(c, salesCaller)
	require.NoError(t, handler.VisitedDoctors(c))

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, []any{}, data["doctors"])
	assert.Equal(t, []any{}, data["doctorNames"])
}

func TestReportHandler_SalesVisits(t *testing.T) {
	stub := &stubReportService{visits: reportVisits()}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/sales/visits/asha@hapl.in?start=2025-03-01&end=2025-03-31", "")
	c.SetParamNames("email")
	c.SetParamValues("asha@hapl.in")
	require.NoError(t, handler.SalesVisits(c))

	assert.Equal(t, "asha@hapl.in", stub.email)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), stub.rng.End)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t,
		"Visit information for asha@hapl.in retrieved successfully. Total records: 2 (filtered from 2025-03-01 to 2025-03-31)",
		resp["message"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, "Summary: 1 completed, 0 ad-hoc, 1 pending, 0 cancel", data["summaryText"])
	meta := data["metadata"].(map[string]any)
	assert.Equal(t, map[string]any{"start": "2025-03-01", "end": "2025-03-31"}, meta["dateRange"])
}

func TestReportHandler_SalesVisits_DecodesEscapedEmail(t *testing.T) {
	stub := &stubReportService{visits: reportVisits()}
	handler := newTestReportHandler(stub)

	e := echo.New()
	e.GET("/api/v1/sales/visits/:email", handler.SalesVisits)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sales/visits/john%40example.com", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "john@example.com", stub.email)
}

func TestReportHandler_SalesParams_RejectsBadEscape(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/v1/sales/visits/john%40x", "")
	c.Request().URL.RawPath = "/api/v1/sales/visits/john%zz"
	c.SetParamNames("email")
	c.SetParamValues("john%zz")

	_, _, err := salesParams(c)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReportHandler_SalesHospitals_NoRange(t *testing.T) {
	stub := &stubReportService{visits: reportVisits()}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/sales/hospitals/asha@hapl.in", "")
	c.SetParamNames("email")
	c.SetParamValues("asha@hapl.in")
	require.NoError(t, handler.SalesHospitals(c))

	resp := decodeEnvelope(t, rec)
	assert.False(t, strings.Contains(resp["message"].(string), "filtered"))
	meta := resp["data"].(map[string]any)["metadata"].(map[string]any)
	assert.NotContains(t, meta, "dateRange")
	assert.Equal(t, float64(2), meta["totalCount"])
}

func TestReportHandler_SalesSamples_AlwaysReportsRange(t *testing.T) {
	handler := newTestReportHandler(&stubReportService{})

	c, rec := newTestContext(http.MethodGet, "/api/v1/sales/samples/asha@hapl.in", "")
	c.SetParamNames("email")
	c.SetParamValues("asha@hapl.in")
	require.NoError(t, handler.SalesSamples(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "Doctor sample data for asha@hapl.in retrieved successfully. Total records: 0", resp["message"])
	meta := resp["data"].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, map[string]any{"start": nil, "end": nil}, meta["dateRange"])
}

func TestReportHandler_SalesRangeValidation(t *testing.T) {
	handler := newTestReportHandler(&stubReportService{})

	c, _ := newTestContext(http.MethodGet, "/api/v1/sales/doctors/asha@hapl.in?start=2025-04-01&end=2025-03-01", "")
	c.SetParamNames("email")
	c.SetParamValues("asha@hapl.in")
	err := handler.SalesDoctors(c)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Start date cannot be after end date", ve.Message)
}

func TestReportHandler_SalesSummary(t *testing.T) {
	stub := &stubReportService{activity: &ports.ActivityResult{
		Doctors:      []*report.DoctorActivity{{DoctorName: "Dr. Rao", TotalVisits: 1, TotalSamples: 3}},
		TotalVisits:  1,
		TotalDoctors: 1,
		TotalSamples: 3,
	}}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/sales/summary/asha@hapl.in?start=2025-03-01", "")
	c.SetParamNames("email")
	c.SetParamValues("asha@hapl.in")
	require.NoError(t, handler.SalesSummary(c))

	resp := decodeEnvelope(t, rec)
	assert.Len(t, resp["data"], 1)
	meta := resp["metadata"].(map[string]any)
	assert.Equal(t, "asha@hapl.in", meta["salesperson"])
	assert.Equal(t, float64(3), meta["totalSamples"])
	assert.Equal(t, map[string]any{"start": "2025-03-01", "end": nil}, meta["dateRange"])
}

func TestReportHandler_DoctorsSummary_OmitsSalesperson(t *testing.T) {
	handler := newTestReportHandler(&stubReportService{activity: &ports.ActivityResult{}})

	c, rec := newTestContext(http.MethodGet, "/api/v1/doctors/summary", "")
	require.NoError(t, handler.DoctorsSummary(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, []any{}, resp["data"])
	assert.NotContains(t, resp["metadata"].(map[string]any), "salesperson")
}

func TestReportHandler_ProductsSummary(t *testing.T) {
	stub := &stubReportService{trends: []report.ProductTrend{{Period: "2025-03", Salesperson: "ALL"}}}
	handler := newTestReportHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/v1/salesperson/products-summary?period=month", "")
	require.NoError(t, handler.ProductsSummary(c))

	assert.Equal(t, report.PeriodMonth, stub.period)
	assert.Equal(t, "", stub.salesperson)
	resp := decodeEnvelope(t, rec)
	meta := resp["metadata"].(map[string]any)
	assert.Equal(t, "ALL", meta["salesperson"])
	assert.Equal(t, float64(7), meta["totalSamples"])
	assert.Equal(t, float64(1), meta["totalPeriods"])
	assert.Equal(t, "month", meta["period"])
}

func TestReportHandler_ProductsSummary_InvalidPeriod(t *testing.T) {
	handler := newTestReportHandler(&stubReportService{})

	c, _ := newTestContext(http.MethodGet, "/api/v1/salesperson/products-summary?period=day", "")
	err := handler.ProductsSummary(c)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportHandler_ServiceError(t *testing.T) {
	boom := errors.New("boom")
	handler := newTestReportHandler(&stubReportService{err: boom})

	c, _ := newTestContext(http.MethodGet, "/api/v1/visit/all", "")
	withIdentity(c, salesCaller)
	require.ErrorIs(t, handler.AllVisits(c), boom)
}

func TestReportHandler_IdentityReportsRejectAnonymous(t *testing.T) {
	stub := &stubReportService{}
	handler := newTestReportHandler(stub)

	for name, fn := range map[string]func(echo.Context) error{
		"all":       handler.AllVisits,
		"hospitals": handler.VisitedHospitals,
		"doctors":   handler.VisitedDoctors,
	} {
		c, _ := newTestContext(http.MethodGet, "/api/v1/visit/"+name, "")
		assert.ErrorIs(t, fn(c), domain.ErrUnauthorized, name)
	}
	assert.Nil(t, stub.identity)
}
