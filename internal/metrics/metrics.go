package metrics

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adamavenir/auradm/internal/api"
)

// Metrics holds the client's poll and request instruments.
type Metrics struct {
	registry *prometheus.Registry

	PassesTotal    *prometheus.CounterVec
	PassDuration   prometheus.Histogram
	DiscardsTotal  *prometheus.CounterVec
	RequestsTotal  *prometheus.CounterVec
	CommentRenders *prometheus.CounterVec
}

// New registers the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		PassesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auradm_passes_total",
				Help: "Reconciliation passes by outcome",
			},
			[]string{"outcome"},
		),
		PassDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "auradm_pass_duration_seconds",
				Help:    "Time from pass start until its last stage was applied",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		DiscardsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auradm_discarded_results_total",
				Help: "Fetch results dropped instead of applied",
			},
			[]string{"reason"}, // stale, switched, suppressed
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auradm_requests_total",
				Help: "API requests by endpoint and status",
			},
			[]string{"method", "path", "status"},
		),
		CommentRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auradm_comment_renders_total",
				Help: "Comment poll results by render decision",
			},
			[]string{"result"}, // rendered, skipped
		),
	}
}

// ObservePass implements reconcile.Recorder.
func (m *Metrics) ObservePass(d time.Duration, kind api.ErrorKind) {
	outcome := "ok"
	if kind != api.KindNone {
		outcome = kind.String()
	}
	m.PassesTotal.WithLabelValues(outcome).Inc()
	m.PassDuration.Observe(d.Seconds())
}

// ObserveDiscard implements reconcile.Recorder.
func (m *Metrics) ObserveDiscard(reason string) {
	m.DiscardsTotal.WithLabelValues(reason).Inc()
}

// ObserveCommentRender counts a comment poll that did or did not re-render.
func (m *Metrics) ObserveCommentRender(rendered bool) {
	result := "skipped"
	if rendered {
		result = "rendered"
	}
	m.CommentRenders.WithLabelValues(result).Inc()
}

var idSegment = regexp.MustCompile(`/\d+/`)

// ObserveRequest is an api.WithObserver callback.
func (m *Metrics) ObserveRequest(method, path string, status int, err error) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, idSegment.ReplaceAllString(path, "/{id}/"), label).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
