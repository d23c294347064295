package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmehdipour/wifi-billing/internal/billing"
	"github.com/jmehdipour/wifi-billing/internal/cache"
	"github.com/jmehdipour/wifi-billing/internal/config"
	"github.com/jmehdipour/wifi-billing/internal/http/middleware"
	"github.com/jmehdipour/wifi-billing/internal/logger"
	"github.com/jmehdipour/wifi-billing/internal/metrics"
	"github.com/jmehdipour/wifi-billing/internal/repository"
	"github.com/jmehdipour/wifi-billing/internal/service/customer"
	"github.com/jmehdipour/wifi-billing/internal/service/invoice"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct{ e *echo.Echo }

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct{ v *validator.Validate }

func (r requestValidator) Validate(i any) error { return r.v.Struct(i) }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) (*Server, error) {
	loc, err := cfg.Billing.Location()
	if err != nil {
		return nil, err
	}
	clock := billing.SystemClock{Location: loc}

	// repos (MySQL)
	customersRepo := repository.NewCustomersRepository(mysqlDB)
	paymentsRepo := repository.NewPaymentsRepository(mysqlDB)
	invoicesRepo := repository.NewInvoicesRepository(mysqlDB)
	profilesRepo := repository.NewProfilesRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	chPaymentsRepo := repository.NewCHPaymentsRepository(clickhouseDB)

	var dashboard cache.Dashboard = cache.Nop{}
	if rds != nil {
		dashboard = cache.NewRedisDashboard(rds, cfg.Cache.DashboardTTL)
	}

	// services
	customerSvc := customer.New(mysqlDB, customersRepo, paymentsRepo, profilesRepo, outboxRepo, dashboard, clock)
	invoiceSvc := invoice.New(mysqlDB, customersRepo, invoicesRepo, outboxRepo, clock)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e := newEcho(&API{
		Customers: customerSvc,
		Invoices:  invoiceSvc,
		Revenue:   chPaymentsRepo,
		Clock:     clock,
	}, middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:ip:",
		Window:         time.Second,
		RetryAfterHint: true,
	}))
	if logger.ParseLevel(cfg.Log.Level) == zap.DebugLevel {
		e.Logger.SetLevel(log.DEBUG)
	}

	return &Server{e: e}, nil
}

// newEcho builds the router. extra middlewares apply to /v1 only.
func newEcho(api *API, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = requestValidator{v: validator.New()}
	e.Use(echoMid.Recover(), middleware.RequestLogger())
	e.Logger.SetLevel(log.WARN)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// routes
	v1 := e.Group("/v1", extra...)
	api.register(v1)

	return e
}

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
