package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"LLMBridge/internal/config"
	"LLMBridge/pkg/httpmiddleware"
	"LLMBridge/pkg/logger"
	"LLMBridge/pkg/ratelimiter"
)

// Server is a custom HTTP server that wraps the standard http.Server
// and provides built-in support for middleware.
type Server struct {
	httpServer *http.Server
	keyFunc    httpmiddleware.KeyFunc
	log        *logger.Logger
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithKeyFunc sets how clients are identified for rate limiting.
func WithKeyFunc(fn httpmiddleware.KeyFunc) ServerOption {
	return func(s *Server) {
		s.keyFunc = fn
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer creates and configures a new Server instance based on the provided AppConfig and options.
// The handler is wrapped with security headers, CORS, a body size cap and, outside development,
// the general per-client rate limit for /api.
func NewServer(cfg *config.AppConfig, handler http.Handler, opts ...ServerOption) (*Server, error) {
	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
		keyFunc: httpmiddleware.RemoteIP,
		log:     logger.New("http-server"),
	}

	// Apply all the options
	for _, opt := range opts {
		opt(srv)
	}

	middlewares := []httpmiddleware.Middleware{
		httpmiddleware.SecurityHeaders,
		httpmiddleware.CORS(cfg.Server.CORSOrigins),
	}

	rl := cfg.Middleware.RateLimiter
	if rl.Enabled && !cfg.IsDevelopment() {
		window, err := time.ParseDuration(rl.General.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid general rate limit window: %w", err)
		}
		factory, err := ratelimiter.NewFactory(rl.Algorithm, rl.General.Limit, window, rl.NumBuckets)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		srv.log.WithField("algorithm", rl.Algorithm).Info("Enabling per-client rate limiter middleware")
		middlewares = append(middlewares,
			httpmiddleware.RateLimitByKey(ratelimiter.NewKeyed(factory, window, 0), srv.keyFunc, "/api"))
	}

	if cfg.Server.MaxUploadBytes > 0 {
		middlewares = append(middlewares, httpmiddleware.BodyLimit(cfg.Server.MaxRequestBytes()))
	}

	srv.httpServer.Handler = httpmiddleware.Chain(handler, middlewares...)
	return srv, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	if s.httpServer.Addr == "" {
		return fmt.Errorf("server address is not set")
	}
	s.log.WithField("addr", s.httpServer.Addr).Info("Starting server")
	return s.httpServer.ListenAndServe()
}

// Start runs the server until it is shut down. A graceful shutdown is not an error.
func (s *Server) Start(_ context.Context) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
