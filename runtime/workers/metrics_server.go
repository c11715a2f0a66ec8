package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsShutdownTimeout = 3 * time.Second

// MetricsServerWorker serves the Prometheus exposition and a liveness probe.
type MetricsServerWorker struct {
	log      *slog.Logger
	address  string
	gatherer prometheus.Gatherer
}

func NewMetricsServerWorker(log *slog.Logger, address string, gatherer prometheus.Gatherer) *MetricsServerWorker {
	return &MetricsServerWorker{log: log, address: address, gatherer: gatherer}
}

func (w *MetricsServerWorker) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(w.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	return r
}

func (w *MetricsServerWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.address, err)
	}
	return w.Serve(ctx, listener)
}

// Serve blocks until ctx is cancelled or the HTTP server fails.
func (w *MetricsServerWorker) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           w.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		w.log.Info("Metrics endpoint started", "address", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		w.log.Info("Metrics endpoint stopped")
		return nil
	}
}
