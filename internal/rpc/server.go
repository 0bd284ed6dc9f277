package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tasklistd/internal/config"
	"tasklistd/internal/provider"
	"tasklistd/internal/reminder"
)

const DefaultAddr = "127.0.0.1:8990"

const shutdownTimeout = 5 * time.Second

// Server binds the provider to HTTP: JSON-RPC on POST /rpc, server-sent
// events on GET /rpc/stream, plus health and metrics endpoints. Business
// failures never surface as transport faults; the JSON-RPC error object is
// reserved for malformed requests.
type Server struct {
	httpServer *http.Server
	provider   *provider.Service
	notifier   *reminder.Notifier
	logger     *zap.Logger
	limiter    *clientLimiter
	metrics    *serverMetrics
}

type Options struct {
	RateLimit config.RateLimitConfig
	// Notifier enables watch_reminders; nil disables it.
	Notifier *reminder.Notifier
	Logger   *zap.Logger
}

func NewServer(addr string, svc *provider.Service, opts Options) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}

	dropped := func() float64 { return 0 }
	if opts.Notifier != nil {
		notifier := opts.Notifier
		dropped = func() float64 { return float64(notifier.Dropped()) }
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		provider: svc,
		notifier: opts.Notifier,
		logger:   logger,
		limiter:  newClientLimiter(opts.RateLimit),
		metrics:  newServerMetrics(dropped),
	}
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/rpc/stream", s.handleStream)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", s.metrics.handler())
	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then drains with a bounded shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()
	s.logger.Info("rpc server listening", zap.String("addr", s.httpServer.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "store": "ok"}
	code := http.StatusOK
	if err := s.provider.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["store"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
