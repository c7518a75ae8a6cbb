package httpserver

import (
	"net/http"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/server/httpserver/handler"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
	"github.com/yndnr/gymdesk-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the API routes.
	Handler *handler.Handler

	// Metrics records request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger logger.Logger

	// CORSOrigins is the list of allowed CORS origins (empty = CORS off).
	CORSOrigins []string

	// RateLimit is the per-IP rate limit in requests/second (0 = off).
	RateLimit float64
	RateBurst int

	// MetricsAllowList is the IP/CIDR allowlist for /metrics (empty = no restriction).
	MetricsAllowList []string

	// TrustedProxies are the IPs/CIDRs whose forwarding headers are believed
	// (empty = always use the peer address).
	TrustedProxies []string
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
//
// Each route gets its own chain so that the token check can read path
// values and metrics are labelled with the route pattern. The rate limiter
// is shared by all routes, so the budget is per client IP.
// Order: RequestID -> RealIP -> Recover -> Logging -> Metrics -> CORS -> RateLimit -> Auth -> Handler
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	sessions := cfg.Handler.Sessions()

	realIP := RealIP(cfg.TrustedProxies, log)
	var rateLimit Middleware
	if cfg.RateLimit > 0 {
		rateLimit = RateLimit(cfg.RateLimit, cfg.RateBurst)
	}

	common := func(route string) []Middleware {
		mws := []Middleware{
			RequestID(log),
			realIP,
			Recover(),
			Logging(),
			Metrics(cfg.Metrics, route),
		}
		if len(cfg.CORSOrigins) > 0 {
			mws = append(mws, CORS(cfg.CORSOrigins))
		}
		if rateLimit != nil {
			mws = append(mws, rateLimit)
		}
		return mws
	}

	mux := http.NewServeMux()
	for _, route := range cfg.Handler.Routes() {
		mws := append(common(route.Pattern), RequireToken(sessions, route.Auth))
		mux.Handle(route.Method+" "+route.Pattern, Chain(route.Handler, mws...))
	}

	// Preflight requests match no method-specific pattern.
	if len(cfg.CORSOrigins) > 0 {
		mux.Handle("OPTIONS /", Chain(http.NotFoundHandler(), RequestID(log), realIP, CORS(cfg.CORSOrigins)))
	}

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(),
			RequestID(log),
			realIP,
			Recover(),
			NetworkACL(cfg.MetricsAllowList, log),
		))
	}

	// Unmatched paths get the JSON envelope instead of the plain-text 404.
	mux.Handle("/", Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, r, domain.ErrNotFound)
	}), RequestID(log), realIP, Logging()))

	return mux
}
