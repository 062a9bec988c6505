package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hapl/fieldsales/internal/api/metrics"
	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/report"
)

type VisitHandler struct {
	visitService ports.VisitService
}

func NewVisitHandler(visitService ports.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

type visitListResponse struct {
	Visits   []domain.Visit `json:"visits"`
	Metadata listMeta       `json:"metadata"`
}

// Create records a visit for the caller.
//
// @Summary      Create visit
// @Tags         visits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      visitRequest  true  "Visit"
// @Success      201   {object}  Envelope{data=domain.Visit}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /api/v1/visit/create [post]
func (h *VisitHandler) Create(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	in, err := bindVisit(c)
	if err != nil {
		return err
	}

	v, err := h.visitService.Create(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	metrics.VisitsWrittenTotal.WithLabelValues("create").Inc()
	return respond(c, http.StatusCreated, "Visit info added successfully", v)
}

// Get returns a visit by its HAPL id.
//
// @Summary      Get visit
// @Tags         visits
// @Produce      json
// @Param        haplid  path      string  true  "HAPL id"
// @Success      200     {object}  Envelope{data=domain.Visit}
// @Failure      400     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /api/v1/visit/{haplid} [get]
func (h *VisitHandler) Get(c echo.Context) error {
	haplID, err := pathParam(c, "haplid")
	if err != nil {
		return err
	}
	v, err := h.visitService.Get(c.Request().Context(), haplID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Visit retrieved successfully", v)
}

// Update overwrites a visit's editable fields.
//
// @Summary      Update visit
// @Tags         visits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        haplid  path      string        true  "HAPL id"
// @Param        body    body      visitRequest  true  "Visit"
// @Success      200     {object}  Envelope{data=domain.Visit}
// @Failure      400     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /api/v1/visit/{haplid} [put]
func (h *VisitHandler) Update(c echo.Context) error {
	haplID, err := pathParam(c, "haplid")
	if err != nil {
		return err
	}
	in, err := bindVisit(c)
	if err != nil {
		return err
	}

	v, err := h.visitService.Update(c.Request().Context(), haplID, in)
	if err != nil {
		return err
	}
	metrics.VisitsWrittenTotal.WithLabelValues("update").Inc()
	return respond(c, http.StatusOK, "Visit info updated successfully", v)
}

// Delete removes a visit by its HAPL id.
//
// @Summary      Delete visit
// @Tags         visits
// @Produce      json
// @Security     BearerAuth
// @Param        param  path      string  true  "HAPL id"
// @Success      200    {object}  Envelope{data=domain.Visit}
// @Failure      404    {object}  Envelope
// @Router       /api/v1/visit/delete/{param} [delete]
func (h *VisitHandler) Delete(c echo.Context) error {
	haplID, err := pathParam(c, "param")
	if err != nil {
		return err
	}
	v, err := h.visitService.Delete(c.Request().Context(), haplID)
	if err != nil {
		return err
	}
	metrics.VisitsWrittenTotal.WithLabelValues("delete").Inc()
	return respond(c, http.StatusOK, "Visit deleted successfully", v)
}

// ReadAll pages through the visits the caller may see.
//
// @Summary      List visits
// @Tags         visits
// @Produce      json
// @Security     BearerAuth
// @Param        take        path      int     true  "Page size"
// @Param        lastCursor  path      string  true  "Last visit id, 0 for the first page"
// @Param        search      path      string  true  "Search text, null for none"
// @Param        start       path      string  true  "Start date"
// @Param        end         path      string  true  "End date"
// @Success      200         {object}  Envelope{data=visitListResponse}
// @Failure      400         {object}  Envelope
// @Failure      401         {object}  Envelope
// @Router       /api/v1/visit/readAll/{take}/{lastCursor}/{search}/{start}/{end} [get]
func (h *VisitHandler) ReadAll(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}

	p, err := pathParams(c, "take", "lastCursor", "search", "start", "end")
	if err != nil {
		return err
	}
	take, cursor, search := p[0], p[1], p[2]

	from, ok := report.ParseDate(p[3])
	if !ok {
		return domain.Invalid("Invalid start date")
	}
	to, ok := report.ParseDate(p[4])
	if !ok {
		return domain.Invalid("Invalid end date")
	}

	page, err := h.visitService.List(c.Request().Context(), id, ports.ListVisitsInput{
		Take:   pagination.ParseTake(take),
		Cursor: cursor,
		Search: search,
		From:   from,
		To:     report.EndOfDay(to),
	})
	if err != nil {
		return err
	}

	res := toPageResponse(page)
	return respond(c, http.StatusOK, "Visit information retrieved successfully",
		visitListResponse{Visits: res.Data, Metadata: res.MetaData})
}

// ReportingManagers lists the distinct reporting manager names.
//
// @Summary      Reporting managers
// @Tags         visits
// @Produce      json
// @Success      200  {object}  Envelope{data=[]string}
// @Router       /api/v1/visit/getUniqueReportingManagers [get]
func (h *VisitHandler) ReportingManagers(c echo.Context) error {
	names, err := h.visitService.ReportingManagers(c.Request().Context())
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	return respondWithMeta(c, http.StatusOK, "Reporting managers retrieved successfully", names,
		map[string]any{"totalCount": len(names), "fetchedAt": time.Now().UTC()})
}

func bindVisit(c echo.Context) (ports.VisitInput, error) {
	var req visitRequest
	if err := c.Bind(&req); err != nil {
		return ports.VisitInput{}, domain.Invalid("Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.VisitInput{}, err
	}
	return toVisitInput(req)
}
