package contactstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	charmlog "github.com/charmbracelet/log"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/huangsam/contacts/internal/contract"
)

var buckets = metrics.ExponentialBuckets(1e-3, 5, 6)

// Server serves a store over HTTP along with liveness and Prometheus endpoints.
type Server struct {
	store  *Inmem
	mux    *http.ServeMux
	set    *metrics.Set
	logger *charmlog.Logger
}

// NewServer builds the handler tree for store. A nil logger discards output.
func NewServer(store *Inmem, logger *charmlog.Logger, version string) *Server {
	if logger == nil {
		logger = contract.NewDiscardLogger()
	}
	s := &Server{
		store:  store,
		mux:    http.NewServeMux(),
		set:    metrics.NewSet(),
		logger: logger,
	}

	s.mux.HandleFunc("/liveness", func(http.ResponseWriter, *http.Request) {})
	s.mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) { s.set.WritePrometheus(w) })

	api := humago.New(s.mux, huma.DefaultConfig("Contacts Store", version))
	api.UseMiddleware(s.observe)

	h := &Contacts{
		Store: store,
		ErrorHandler: func(_ context.Context, err error) {
			s.logger.Debug("request failed", "err", err)
		},
	}
	h.Register(api)
	return s
}

func (s *Server) observe(ctx huma.Context, next func(huma.Context)) {
	op, start := ctx.Operation(), time.Now()
	next(ctx)
	labels := fmt.Sprintf(`{method="%s",path="%s",status="%d"}`, op.Method, op.Path, ctx.Status())
	s.set.GetOrCreatePrometheusHistogramExt(`http_request_duration_seconds`+labels, buckets).UpdateDuration(start)
	s.set.GetOrCreateCounter(`http_requests_total` + labels).Inc()
	s.set.GetOrCreateCounter(requestsName(op.Method, op.Path)).Inc()
	s.logger.Info("request", "method", op.Method, "path", op.Path, "status", ctx.Status(),
		"remote", ctx.RemoteAddr(), "took", time.Since(start))
}

func requestsName(method, path string) string {
	return fmt.Sprintf(`contacts_store_requests{method="%s",path="%s"}`, method, path)
}

// Requests returns how many requests hit the route registered as method and path,
// e.g. Requests("GET", "/contacts").
func (s *Server) Requests(method, path string) uint64 {
	return s.set.GetOrCreateCounter(requestsName(method, path)).Get()
}

// Store returns the backing store.
func (s *Server) Store() *Inmem {
	return s.store
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "contacts", s.store.Len())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
