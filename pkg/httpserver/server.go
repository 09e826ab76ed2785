package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	port         int
	logger       *zap.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
	accessLog    bool
}

// WithPort sets the listening port; 0 picks a free port.
func WithPort(port int) Option {
	return func(o *Options) { o.port = port }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) { o.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) { o.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(o *Options) { o.idleTimeout = d }
}

// WithAccessLog wraps the handler in LoggingMiddleware.
func WithAccessLog(enabled bool) Option {
	return func(o *Options) { o.accessLog = enabled }
}

type Server struct {
	httpServer *http.Server
	lis        net.Listener
	logger     *zap.Logger
}

// New binds the listener immediately so Addr is valid before Start.
func New(handler http.Handler, opts ...Option) (*Server, error) {
	options := &Options{
		port:         8000,
		logger:       zap.NewNop(),
		readTimeout:  5 * time.Second,
		writeTimeout: 60 * time.Second,
		idleTimeout:  2 * time.Minute,
	}

	for _, opt := range opts {
		opt(options)
	}

	if handler == nil {
		return nil, errors.New("http handler cannot be nil")
	}
	if options.port < 0 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http-server")

	if options.accessLog {
		handler = LoggingMiddleware(logger)(handler)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadTimeout:       options.readTimeout,
			ReadHeaderTimeout: options.readTimeout,
			WriteTimeout:      options.writeTimeout,
			IdleTimeout:       options.idleTimeout,
			ErrorLog:          zap.NewStdLog(logger),
		},
		lis:    lis,
		logger: logger,
	}, nil
}

// Start serves in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight requests until ctx expires, then closes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout", zap.Error(err))
		_ = s.httpServer.Close()
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
