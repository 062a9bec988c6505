package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/report"
)

type OrderHandler struct {
	orderService ports.OrderService
}

func NewOrderHandler(orderService ports.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// MyOrders pages through orders created in the requested window.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        take         query     int     false  "Page size"
// @Param        lastCursor   query     string  false  "Cursor from the previous page"
// @Param        searchParam  query     string  false  "Search text"
// @Param        fromDt       query     string  false  "Start date"
// @Param        toDt         query     string  false  "End date"
// @Success      200          {object}  Envelope{data=pageResponse[domain.Order]}
// @Failure      400          {object}  Envelope
// @Router       /api/v1/order/my-orders/accounts [get]
func (h *OrderHandler) MyOrders(c echo.Context) error {
	r, err := report.ParseRange(c.QueryParam("fromDt"), c.QueryParam("toDt"))
	if err != nil {
		return err
	}

	page, err := h.orderService.List(c.Request().Context(), ports.ListOrdersInput{
		Take:   pagination.ParseTake(c.QueryParam("take")),
		Cursor: c.QueryParam("lastCursor"),
		Search: c.QueryParam("searchParam"),
		Range:  r,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Orders retrieved successfully", toPageResponse(page))
}

// SiteOrders counts samples per site.
//
// @Summary      Orders per site
// @Tags         orders
// @Produce      json
// @Param        start      path      string  true  "Start date"
// @Param        end        path      string  true  "End date"
// @Param        productId  path      string  true  "Product id, default for all"
// @Param        city       path      string  true  "City, default for all"
// @Success      200        {object}  Envelope{data=[]domain.SiteOrders}
// @Failure      400        {object}  Envelope
// @Failure      404        {object}  Envelope
// @Router       /api/v1/site/orders-count/{start}/{end}/{productId}/{city} [get]
func (h *OrderHandler) SiteOrders(c echo.Context) error {
	p, err := pathParams(c, "start", "end", "productId", "city")
	if err != nil {
		return err
	}
	r, err := report.ParseRange(p[0], p[1])
	if err != nil {
		return err
	}

	sites, err := h.orderService.SiteOrders(c.Request().Context(), ports.SiteOrdersInput{
		Range:     r,
		ProductID: p[2],
		City:      p[3],
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Site orders retrieved successfully", nonNil[domain.SiteOrders](sites))
}
