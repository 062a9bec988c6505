package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/hapl/fieldsales/internal/api/handler"
	"github.com/hapl/fieldsales/internal/api/middleware"
	"github.com/hapl/fieldsales/internal/core/ports"
)

// Services are the use cases the router exposes.
type Services struct {
	Auth    ports.AuthService
	Visits  ports.VisitService
	Reports ports.ReportService
	Orders  ports.OrderService
}

// Options configures the router's ambient middleware.
type Options struct {
	Logger zerolog.Logger
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check
	// Registerer and Gatherer back the HTTP metrics and /metrics. Both default
	// to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// AllowOrigins lists the CORS origins; empty allows any origin.
	AllowOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "fieldsales",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Identity(svc.Auth))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	visitHandler := handler.NewVisitHandler(svc.Visits)
	reportHandler := handler.NewReportHandler(svc.Reports)
	orderHandler := handler.NewOrderHandler(svc.Orders)
	healthHandler := handler.NewHealthHandler(opts.Checks)
	requireIdentity := middleware.RequireIdentity()

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/logout", authHandler.Logout, requireIdentity)

	// --- Visit routes ---
	visits := v1.Group("/visit")
	visits.POST("/create", visitHandler.Create, requireIdentity)
	visits.GET("/readAll/:take/:lastCursor/:search/:start/:end", visitHandler.ReadAll, requireIdentity)
	visits.GET("/getUniqueReportingManagers", visitHandler.ReportingManagers)
	visits.DELETE("/delete/:param", visitHandler.Delete, requireIdentity)

	// Identity-scoped reports, narrowed by the visibility filter.
	visits.GET("/all", reportHandler.AllVisits, requireIdentity)
	visits.GET("/hospitals", reportHandler.VisitedHospitals, requireIdentity)
	visits.GET("/doctors", reportHandler.VisitedDoctors, requireIdentity)

	visits.GET("/:haplid", visitHandler.Get)
	visits.PUT("/:haplid", visitHandler.Update, requireIdentity)

	// --- Salesperson reports ---
	sales := v1.Group("/sales")
	sales.GET("/visits/:email", reportHandler.SalesVisits)
	sales.GET("/hospitals/:email", reportHandler.SalesHospitals)
	sales.GET("/doctors/:email", reportHandler.SalesDoctors)
	sales.GET("/samples/:email", reportHandler.SalesSamples)
	sales.GET("/summary/:email", reportHandler.SalesSummary)
	v1.GET("/doctors/summary", reportHandler.DoctorsSummary)
	v1.GET("/salesperson/products-summary", reportHandler.ProductsSummary)

	// --- Order routes ---
	v1.GET("/order/my-orders/accounts", orderHandler.MyOrders)
	v1.GET("/site/orders-count/:start/:end/:productId/:city", orderHandler.SiteOrders)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
