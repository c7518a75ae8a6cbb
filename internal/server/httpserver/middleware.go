package httpserver

import (
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
	"github.com/yndnr/gymdesk-go/internal/server/httpserver/handler"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
	"github.com/yndnr/gymdesk-go/internal/telemetry/metric"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is
// the outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request and attaches log to
// the request context.
func RequestID(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check for existing request ID in header
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.NewString()
			}

			// Add to response header
			w.Header().Set(HeaderRequestID, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = logger.WithLogger(ctx, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireToken enforces the token check selected by mode.
//
// AuthToken accepts any live token. AuthPathUser additionally requires the
// token to be bound to the {username} path value.
func RequireToken(sessions *service.SessionService, mode handler.AuthMode) Middleware {
	return func(next http.Handler) http.Handler {
		if mode == handler.AuthNone {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tok := r.Header.Get(handler.HeaderAuthToken)

			var ok bool
			switch mode {
			case handler.AuthToken:
				ok = sessions.IsValid(ctx, tok)
			case handler.AuthPathUser:
				ok = sessions.IsValidFor(ctx, r.PathValue("username"), tok)
			}
			if !ok {
				handler.WriteError(w, r, domain.ErrUnauthenticated)
				return
			}

			if username, found := sessions.ResolveUsername(ctx, tok); found {
				ctx = logger.WithUsername(ctx, username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit applies per-IP rate limiting with a token bucket per client.
func RateLimit(requestsPerSecond float64, burst int) Middleware {
	limiters := service.NewRateLimiterRegistry(rate.Limit(requestsPerSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.Allow(handler.ClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				handler.WriteError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs one line per request, at a level chosen by status class.
func Logging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", handler.ClientIP(r),
			}

			log := logger.L(r.Context())
			switch {
			case wrapped.statusCode >= 500:
				log.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// Metrics records request count and latency under the route pattern.
func Metrics(reg *metric.Registry, route string) Middleware {
	return func(next http.Handler) http.Handler {
		if reg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			reg.ObserveRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.L(r.Context()).Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
					)
					handler.WriteError(w, r, domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORS adds Cross-Origin Resource Sharing headers. Preflight requests are
// answered directly.
func CORS(allowedOrigins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-Token, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Error-Code")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.Header().Add("Vary", "Origin")
			}

			// Handle preflight
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NetworkACL restricts access to clients in allowList. Entries are single
// IPs or CIDR blocks; invalid entries are logged and skipped. An empty
// list allows everyone.
func NetworkACL(allowList []string, log logger.Logger) Middleware {
	acl := parseIPList(allowList, log)

	return func(next http.Handler) http.Handler {
		if len(allowList) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := handler.ClientIP(r)
			if acl.contains(clientIP) {
				next.ServeHTTP(w, r)
				return
			}

			logger.L(r.Context()).Warn("request denied by network ACL",
				"client_ip", clientIP,
				"path", r.URL.Path,
			)
			handler.WriteError(w, r, domain.ErrForbidden)
		})
	}
}

// RealIP resolves the client address once per request and stores it for
// handler.ClientIP. X-Forwarded-For and X-Real-IP are honoured only when
// the connecting peer is a trusted proxy. The forwarded chain is walked
// right to left and the first hop that is not a trusted proxy is the
// client. With no trusted proxies the peer address is always used.
func RealIP(trustedProxies []string, log logger.Logger) Middleware {
	proxies := parseIPList(trustedProxies, log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := handler.RemoteHost(r)
			if proxies.contains(ip) {
				ip = forwardedClient(r, proxies, ip)
			}
			next.ServeHTTP(w, r.WithContext(handler.WithClientIP(r.Context(), ip)))
		})
	}
}

// forwardedClient picks the client address out of the forwarding headers
// of a request received from a trusted proxy at peer.
func forwardedClient(r *http.Request, proxies ipList, peer string) string {
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = addr.Unmap().String()
			if !proxies.containsAddr(addr) {
				break
			}
		}
		return client
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return peer
}

// ipList matches addresses against single IPs and CIDR blocks.
type ipList []netip.Prefix

// parseIPList parses IP and CIDR entries. Invalid entries are logged and
// skipped.
func parseIPList(entries []string, log logger.Logger) ipList {
	var list ipList
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				log.Warn("invalid CIDR in IP list", "entry", entry, "error", err)
				continue
			}
			list = append(list, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn("invalid IP in IP list", "entry", entry, "error", err)
			continue
		}
		addr = addr.Unmap()
		list = append(list, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return list
}

func (l ipList) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return l.containsAddr(addr)
}

func (l ipList) containsAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range l {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
