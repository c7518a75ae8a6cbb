package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/yndnr/gymdesk-go/internal/server/config"
	"github.com/yndnr/gymdesk-go/internal/telemetry/logger"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	certFile   string
	keyFile    string
	logger     logger.Logger
}

// New creates a new HTTP server. TLS is enabled when both certificate
// and key files are configured.
func New(cfg config.HTTPConfig, handler http.Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(log.Slog().Handler(), slog.LevelWarn),
	}
	if cfg.TLSEnabled() {
		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &Server{
		httpServer: srv,
		handler:    handler,
		certFile:   cfg.TLSCertFile,
		keyFile:    cfg.TLSKeyFile,
		logger:     log,
	}
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after a graceful
// shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening",
		"addr", ln.Addr().String(),
		"tls", s.httpServer.TLSConfig != nil,
	)

	var err error
	if s.httpServer.TLSConfig != nil {
		err = s.httpServer.ServeTLS(ln, s.certFile, s.keyFile)
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
