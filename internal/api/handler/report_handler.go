package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hapl/fieldsales/internal/api/metrics"
	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/report"
)

// ReportHandler serves the aggregation reports.
type ReportHandler struct {
	reports ports.ReportService
	now     func() time.Time
}

func NewReportHandler(reports ports.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

type fetchedMeta struct {
	TotalCount int       `json:"totalCount"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

type allVisitsResponse struct {
	Visits   []domain.Visit `json:"visits"`
	Metadata fetchedMeta    `json:"metadata"`
}

type hospitalsMeta struct {
	TotalUniqueHospitals int       `json:"totalUniqueHospitals"`
	TotalVisits          int       `json:"totalVisits"`
	FetchedAt            time.Time `json:"fetchedAt"`
}

type hospitalsResponse struct {
	Hospitals     []*report.HospitalSummary `json:"hospitals"`
	HospitalNames []string                  `json:"hospitalNames"`
	Metadata      hospitalsMeta             `json:"metadata"`
}

type doctorsMeta struct {
	TotalUniqueDoctors int       `json:"totalUniqueDoctors"`
	TotalVisits        int       `json:"totalVisits"`
	FetchedAt          time.Time `json:"fetchedAt"`
}

type doctorsResponse struct {
	Doctors     []*report.DoctorSummary `json:"doctors"`
	DoctorNames []string                `json:"doctorNames"`
	Metadata    doctorsMeta             `json:"metadata"`
}

// salesMeta describes a report scoped to one salesperson.
type salesMeta struct {
	TotalCount       int               `json:"totalCount"`
	SalesPersonEmail string            `json:"salesPersonEmail"`
	FetchedAt        time.Time         `json:"fetchedAt"`
	DateRange        *report.RangeMeta `json:"dateRange,omitempty"`
}

type salesVisitsResponse struct {
	Visits      []report.VisitRow  `json:"visits"`
	Metadata    salesMeta          `json:"metadata"`
	Summary     report.StatusTally `json:"summary"`
	SummaryText string             `json:"summaryText"`
}

type salesHospitalsResponse struct {
	Hospitals []*report.LatestVisit `json:"hospitals"`
	Metadata  salesMeta             `json:"metadata"`
}

type salesDoctorsResponse struct {
	Doctors  []*report.DoctorVisit `json:"doctors"`
	Metadata salesMeta             `json:"metadata"`
}

type salesSamplesResponse struct {
	Doctors  []*report.DoctorMonth `json:"doctors"`
	Metadata salesMeta             `json:"metadata"`
}

type activityMeta struct {
	Salesperson  string           `json:"salesperson,omitempty"`
	TotalVisits  int              `json:"totalVisits"`
	TotalDoctors int              `json:"totalDoctors"`
	TotalSamples int              `json:"totalSamples"`
	DateRange    report.RangeMeta `json:"dateRange"`
}

type productsMeta struct {
	Salesperson  string           `json:"salesperson"`
	TotalSamples int              `json:"totalSamples"`
	TotalPeriods int              `json:"totalPeriods"`
	Period       report.Period    `json:"period"`
	DateRange    report.RangeMeta `json:"dateRange"`
}

// AllVisits lists every visit the caller may see.
//
// @Summary      All visits
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=allVisitsResponse}
// @Router       /api/v1/visit/all [get]
func (h *ReportHandler) AllVisits(c echo.Context) error {
	defer observe("all_visits")()

	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	visits, err := h.reports.AllVisits(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if visits == nil {
		visits = []domain.Visit{}
	}
	return respond(c, http.StatusOK,
		fmt.Sprintf("Visit information retrieved successfully. Total records: %d", len(visits)),
		allVisitsResponse{Visits: visits, Metadata: fetchedMeta{TotalCount: len(visits), FetchedAt: h.now().UTC()}})
}

// VisitedHospitals groups completed and ad-hoc visits by hospital.
//
// @Summary      Visited hospitals
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=hospitalsResponse}
// @Router       /api/v1/visit/hospitals [get]
func (h *ReportHandler) VisitedHospitals(c echo.Context) error {
	defer observe("visited_hospitals")()

	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	hospitals, err := h.reports.VisitedHospitals(c.Request().Context(), id)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(hospitals))
	total := 0
	for _, hs := range hospitals {
		names = append(names, hs.HospitalName)
		total += hs.TotalVisits
	}
	sort.Strings(names)
	return respond(c, http.StatusOK,
		fmt.Sprintf("Visited hospitals retrieved successfully. Found %d unique hospitals.", len(hospitals)),
		hospitalsResponse{
			Hospitals:     nonNil(hospitals),
			HospitalNames: names,
			Metadata: hospitalsMeta{
				TotalUniqueHospitals: len(hospitals),
				TotalVisits:          total,
				FetchedAt:            h.now().UTC(),
			},
		})
}

// VisitedDoctors groups completed and ad-hoc visits by doctor.
//
// @Summary      Visited doctors
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=doctorsResponse}
// @Router       /api/v1/visit/doctors [get]
func (h *ReportHandler) VisitedDoctors(c echo.Context) error {
	defer observe("visited_doctors")()

	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	doctors, err := h.reports.VisitedDoctors(c.Request().Context(), id)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(doctors))
	total := 0
	for _, d := range doctors {
		names = append(names, d.DoctorName)
		total += d.TotalVisits
	}
	sort.Strings(names)
	return respond(c, http.StatusOK,
		fmt.Sprintf("Visited doctors retrieved successfully. Found %d unique doctors.", len(doctors)),
		doctorsResponse{
			Doctors:     nonNil(doctors),
			DoctorNames: names,
			Metadata: doctorsMeta{
				TotalUniqueDoctors: len(doctors),
				TotalVisits:        total,
				FetchedAt:          h.now().UTC(),
			},
		})
}

// SalesVisits lists one salesperson's visits with a status tally.
//
// @Summary      Salesperson visits
// @Tags         reports
// @Produce      json
// @Param        email  path      string  true   "Salesperson email"
// @Param        start  query     string  false  "Start date"
// @Param        end    query     string  false  "End date"
// @Success      200    {object}  Envelope{data=salesVisitsResponse}
// @Failure      400    {object}  Envelope
// @Router       /api/v1/sales/visits/{email} [get]
func (h *ReportHandler) SalesVisits(c echo.Context) error {
	defer observe("sales_visits")()

	email, r, err := salesParams(c)
	if err != nil {
		return err
	}
	res, err := h.reports.SalesVisits(c.Request().Context(), email, r)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK,
		withRange(fmt.Sprintf("Visit information for %s retrieved successfully. Total records: %d", email, len(res.Visits)), r),
		salesVisitsResponse{
			Visits:      nonNil(res.Visits),
			Metadata:    h.salesMeta(email, len(res.Visits), r),
			Summary:     res.Tally,
			SummaryText: res.Tally.Text(),
		})
}

// SalesHospitals tracks the latest visit per hospital for one salesperson.
//
// @Summary      Salesperson hospitals
// @Tags         reports
// @Produce      json
// @Param        email  path      string  true   "Salesperson email"
// @Param        start  query     string  false  "Start date"
// @Param        end    query     string  false  "End date"
// @Success      200    {object}  Envelope{data=salesHospitalsResponse}
// @Failure      400    {object}  Envelope
// @Router       /api/v1/sales/hospitals/{email} [get]
func (h *ReportHandler) SalesHospitals(c echo.Context) error {
	defer observe("sales_hospitals")()

	email, r, err := salesParams(c)
	if err != nil {
		return err
	}
	hospitals, err := h.reports.SalesHospitals(c.Request().Context(), email, r)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK,
		withRange(fmt.Sprintf("Hospital information for %s retrieved successfully. Total hospitals: %d", email, len(hospitals)), r),
		salesHospitalsResponse{Hospitals: nonNil(hospitals), Metadata: h.salesMeta(email, len(hospitals), r)})
}

// SalesDoctors tracks the latest visit per doctor and hospital for one salesperson.
//
// @Summary      Salesperson doctors
// @Tags         reports
// @Produce      json
// @Param        email  path      string  true   "Salesperson email"
// @Param        start  query     string  false  "Start date"
// @Param        end    query     string  false  "End date"
// @Success      200    {object}  Envelope{data=salesDoctorsResponse}
// @Failure      400    {object}  Envelope
// @Router       /api/v1/sales/doctors/{email} [get]
func (h *ReportHandler) SalesDoctors(c echo.Context) error {
	defer observe("sales_doctors")()

	email, r, err := salesParams(c)
	if err != nil {
		return err
	}
	doctors, err := h.reports.SalesDoctors(c.Request().Context(), email, r)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK,
		withRange(fmt.Sprintf("Doctor information for %s retrieved successfully. Total doctors: %d", email, len(doctors)), r),
		salesDoctorsResponse{Doctors: nonNil(doctors), Metadata: h.salesMeta(email, len(doctors), r)})
}

// SalesSamples groups one salesperson's samples by doctor and month.
//
// @Summary      Salesperson samples
// @Tags         reports
// @Produce      json
// @Param        email  path      string  true   "Salesperson email"
// @Param        start  query     string  false  "Start date"
// @Param        end    query     string  false  "End date"
// @Success      200    {object}  Envelope{data=salesSamplesResponse}
// @Failure      400    {object}  Envelope
// @Router       /api/v1/sales/samples/{email} [get]
func (h *ReportHandler) SalesSamples(c echo.Context) error {
	defer observe("sales_samples")()

	email, r, err := salesParams(c)
	if err != nil {
		return err
	}
	doctors, err := h.reports.SalesSamples(c.Request().Context(), email, r)
	if err != nil {
		return err
	}

	meta := h.salesMeta(email, len(doctors), r)
	rm := r.Meta()
	meta.DateRange = &rm
	return respond(c, http.StatusOK,
		fmt.Sprintf("Doctor sample data for %s retrieved successfully. Total records: %d", email, len(doctors)),
		salesSamplesResponse{Doctors: nonNil(doctors), Metadata: meta})
}

// SalesSummary merges one salesperson's visits with the samples of the doctors visited.
//
// @Summary      Salesperson activity summary
// @Tags         reports
// @Produce      json
// @Param        email  path      string  true   "Salesperson email"
// @Param        start  query     string  false  "Start date"
// @Param        end    query     string  false  "End date"
// @Success      200    {object}  Envelope{data=[]report.DoctorActivity}
// @Failure      400    {object}  Envelope
// @Router       /api/v1/sales/summary/{email} [get]
func (h *ReportHandler) SalesSummary(c echo.Context) error {
	defer observe("sales_summary")()

	email, r, err := salesParams(c)
	if err != nil {
		return err
	}
	res, err := h.reports.SalesSummary(c.Request().Context(), email, r)
	if err != nil {
		return err
	}
	return respondActivity(c, email, res, r)
}

// DoctorsSummary merges visits with samples per doctor across all salespeople.
//
// @Summary      Doctors activity summary
// @Tags         reports
// @Produce      json
// @Param        start  query     string  false  "Start date"
// @Param        end    query     string  false  "End date"
// @Success      200    {object}  Envelope{data=[]report.DoctorActivity}
// @Failure      400    {object}  Envelope
// @Router       /api/v1/doctors/summary [get]
func (h *ReportHandler) DoctorsSummary(c echo.Context) error {
	defer observe("doctors_summary")()

	r, err := report.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return err
	}
	res, err := h.reports.DoctorsSummary(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return respondActivity(c, "", res, r)
}

// ProductsSummary reports per-period product trends.
//
// @Summary      Product trends
// @Tags         reports
// @Produce      json
// @Param        salesperson  query     string  false  "Salesperson id"
// @Param        period       query     string  true   "week, month or year"
// @Param        start        query     string  false  "Start date"
// @Param        end          query     string  false  "End date"
// @Success      200          {object}  Envelope{data=[]report.ProductTrend}
// @Failure      400          {object}  Envelope
// @Router       /api/v1/salesperson/products-summary [get]
func (h *ReportHandler) ProductsSummary(c echo.Context) error {
	defer observe("products_summary")()

	period, err := report.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return err
	}
	r, err := report.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return err
	}
	salesperson := strings.TrimSpace(c.QueryParam("salesperson"))

	trends, samples, err := h.reports.ProductsSummary(c.Request().Context(), salesperson, period, r)
	if err != nil {
		return err
	}

	label := salesperson
	if label == "" {
		label = "ALL"
	}
	return respondWithMeta(c, http.StatusOK, "Salesperson product summary fetched successfully", nonNil(trends),
		productsMeta{
			Salesperson:  label,
			TotalSamples: samples,
			TotalPeriods: len(trends),
			Period:       period,
			DateRange:    r.Meta(),
		})
}

func (h *ReportHandler) salesMeta(email string, n int, r report.Range) salesMeta {
	m := salesMeta{TotalCount: n, SalesPersonEmail: email, FetchedAt: h.now().UTC()}
	if r.IsSet() {
		rm := r.Meta()
		m.DateRange = &rm
	}
	return m
}

func respondActivity(c echo.Context, salesperson string, res *ports.ActivityResult, r report.Range) error {
	return respondWithMeta(c, http.StatusOK, "", nonNil(res.Doctors), activityMeta{
		Salesperson:  salesperson,
		TotalVisits:  res.TotalVisits,
		TotalDoctors: res.TotalDoctors,
		TotalSamples: res.TotalSamples,
		DateRange:    r.Meta(),
	})
}

// salesParams reads the :email path parameter and the optional start/end query.
func salesParams(c echo.Context) (string, report.Range, error) {
	email, err := pathParam(c, "email")
	if err != nil {
		return "", report.Range{}, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", report.Range{}, domain.Invalid("Salesperson email is required")
	}
	r, err := report.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return "", report.Range{}, err
	}
	return email, r, nil
}

func withRange(msg string, r report.Range) string {
	if !r.IsSet() {
		return msg
	}
	return msg + " (filtered " + r.Describe() + ")"
}

// observe starts a report timer; call the returned func when the report is done.
func observe(name string) func() {
	timer := prometheus.NewTimer(metrics.ReportDuration.WithLabelValues(name))
	return func() { timer.ObserveDuration() }
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
