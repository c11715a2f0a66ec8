package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ErrShutdownTimeout is returned when connections are still being released
// once ShutdownTimeout has elapsed.
var ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

type Config struct {
	// Address is the listen address (host:port)
	Address string

	// ShutdownTimeout bounds the wait for connection handlers to finish their
	// cleanup once the server context is cancelled.
	ShutdownTimeout time.Duration
}

// Server accepts chat connections and runs one handler goroutine per client.
// It implements the worker contract so the supervisor can own it.
type Server struct {
	config   Config
	log      *slog.Logger
	handler  *Handler
	listener net.Listener
	wg       sync.WaitGroup
}

func NewServer(cfg Config, log *slog.Logger, handler *Handler) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Server{config: cfg, log: log, handler: handler}
}

// Listen binds the configured address ahead of Run, so that a busy port is
// reported at startup rather than retried by the supervisor.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener
	return nil
}

// Run serves until ctx is cancelled, binding the address first if Listen
// wasn't called. A restarted Run binds again.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	listener := s.listener
	s.listener = nil
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then closes
// the listener and waits for the active connections to be released.
// Cancelling ctx also closes every client connection.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.log.Info("Chat server started", "address", listener.Addr().String())

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					// Expected error during shutdown
					return
				}
				s.log.Error("Failed to accept connection", "error", err)
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				if err := s.handler.Handle(ctx, conn); err != nil {
					s.log.Debug("Connection ended with error",
						"remote", conn.RemoteAddr().String(),
						"error", err)
				}
			}()
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutdown signal received, closing listener")
	case <-acceptDone:
		s.log.Warn("Accept loop stopped unexpectedly")
	}

	if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Error("Error closing listener", "error", err)
	}
	<-acceptDone

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("All connections closed gracefully")
	case <-time.After(s.config.ShutdownTimeout):
		s.log.Warn("Shutdown timeout exceeded, connections still draining")
		return ErrShutdownTimeout
	}
	if ctx.Err() == nil {
		return fmt.Errorf("listener %s closed", listener.Addr())
	}
	return nil
}
