package httpserver

import (
	"net/http"

	"github.com/yndnr/forkmesh-go/internal/core/service"
	"github.com/yndnr/forkmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/forkmesh-go/internal/telemetry/logger"
	"github.com/yndnr/forkmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// ForkService is the fork store every handler works on.
	ForkService *service.ForkService

	// Remote is probed by /ready. Nil means always ready.
	Remote handler.HealthChecker

	// Metrics serves /metrics and records request metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger logger.Logger

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// GlobalRateLimit is the rate limit per client IP (requests/second).
	// Zero disables it.
	GlobalRateLimit float64

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	opts := []handler.Option{handler.WithRemoteHealth(cfg.Remote)}
	if cfg.Metrics != nil {
		opts = append(opts, handler.WithRPCObserver(cfg.Metrics))
	}
	h := handler.New(cfg.ForkService, log, opts...)

	// Order: Recover -> RequestID -> Metrics -> CORS -> RateLimit -> Audit -> Handler
	common := []Middleware{Recover(log), RequestID()}
	if cfg.Metrics != nil {
		common = append(common, Metrics(cfg.Metrics))
	}

	business := append([]Middleware{}, common...)
	business = append(business, CORS(cfg.CORSAllowedOrigins))
	if cfg.GlobalRateLimit > 0 {
		business = append(business, RateLimit(cfg.GlobalRateLimit))
	}
	if cfg.EnableAudit {
		business = append(business, Audit(log))
	}

	mux := http.NewServeMux()

	// Health endpoints skip CORS and rate limiting
	health := Chain(h, common...)
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", health)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), common...))
	}

	api := Chain(h, business...)
	for _, pattern := range handler.Routes {
		if pattern == "GET /health" || pattern == "GET /ready" {
			continue
		}
		mux.Handle(pattern, api)
	}
	// Preflight requests for the fork API
	mux.Handle("OPTIONS /fork/", api)

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		GlobalRateLimit: 200,
		EnableAudit:     true,
	}
}
