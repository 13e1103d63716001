// Package httpserver wraps net/http.Server with graceful shutdown and
// bind-conflict recovery: when the configured port is busy the server
// increments the port and retries, bounded by MaxPortRetries.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"
)

type config struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	maxPortRetries  int
	logger          *slog.Logger
}

func defaultConfig() *config {
	return &config{
		addr:            ":8080",
		shutdownTimeout: 5 * time.Second,
		maxPortRetries:  10,
	}
}

// Server wraps http.Server with graceful shutdown and port retry.
type Server struct {
	cfg  *config
	srv  *http.Server
	mu   sync.Mutex
	once sync.Once
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg}
}

// Run starts the HTTP server and blocks until ctx is cancelled, a
// SIGINT/SIGTERM arrives, or the server fails. If the configured port
// is already bound, the next port is tried, up to MaxPortRetries times.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	ln, addr, err := s.listen()
	if err != nil {
		return errors.Join(ErrStart, err)
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.readTimeout,
		WriteTimeout: s.cfg.writeTimeout,
		IdleTimeout:  s.cfg.idleTimeout,
	}
	srv := s.srv
	s.mu.Unlock()

	s.cfg.logger.Info("http server listening", slog.String("addr", addr))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-ctx.Done():
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case <-stop:
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// listen binds the configured address, walking forward through ports
// on EADDRINUSE.
func (s *Server) listen() (net.Listener, string, error) {
	host, portStr, err := net.SplitHostPort(s.cfg.addr)
	if err != nil {
		return nil, "", fmt.Errorf("invalid listen address %q: %w", s.cfg.addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, "", fmt.Errorf("invalid listen port %q: %w", portStr, err)
	}

	for attempt := 0; attempt <= s.cfg.maxPortRetries; attempt++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port+attempt))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, addr, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, "", err
		}
		s.cfg.logger.Warn("port is busy, trying next",
			slog.String("addr", addr),
			slog.Int("next_port", port+attempt+1),
		)
	}

	return nil, "", fmt.Errorf("%w after %d attempts starting at port %d", ErrNoFreePort, s.cfg.maxPortRetries+1, port)
}

// Shutdown stops the server gracefully. Safe for repeated calls.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
