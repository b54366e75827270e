// Package metrics instruments a store.Gateway with Prometheus counters and
// latency histograms and serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

const namespace = "userdir"

// Call results recorded in the result label.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics holds the gateway collectors.
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	users   prometheus.Gauge
}

// New registers the gateway collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Gateway calls by operation and result.",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Gateway call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetched_users",
			Help:      "Number of users returned by the last successful FetchAll.",
		}),
	}
	reg.MustRegister(m.calls, m.latency, m.users)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors
// already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.calls.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, store.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Instrument wraps gw so every call is counted and timed.  The wrapper
// closes gw on Close when gw implements io.Closer.
func (m *Metrics) Instrument(gw store.Gateway) *Gateway {
	return &Gateway{next: gw, m: m}
}

// Gateway is an instrumented store.Gateway.
type Gateway struct {
	next store.Gateway
	m    *Metrics
}

var _ store.Gateway = (*Gateway)(nil)

func (g *Gateway) Add(ctx context.Context, fields store.Fields) (string, error) {
	start := time.Now()
	id, err := g.next.Add(ctx, fields)
	g.m.observe(store.OpAdd, start, err)
	return id, err
}

func (g *Gateway) FetchAll(ctx context.Context) ([]store.User, error) {
	start := time.Now()
	users, err := g.next.FetchAll(ctx)
	g.m.observe(store.OpFetchAll, start, err)
	if err == nil {
		g.m.users.Set(float64(len(users)))
	}
	return users, err
}

func (g *Gateway) RangeQuery(ctx context.Context, field, lower, upper string) ([]store.User, error) {
	start := time.Now()
	users, err := g.next.RangeQuery(ctx, field, lower, upper)
	g.m.observe(store.OpRangeQuery, start, err)
	return users, err
}

func (g *Gateway) UpdateByID(ctx context.Context, id string, patch store.Patch) error {
	start := time.Now()
	err := g.next.UpdateByID(ctx, id, patch)
	g.m.observe(store.OpUpdate, start, err)
	return err
}

func (g *Gateway) DeleteByID(ctx context.Context, id string) error {
	start := time.Now()
	err := g.next.DeleteByID(ctx, id)
	g.m.observe(store.OpDelete, start, err)
	return err
}

func (g *Gateway) Get(ctx context.Context, id string) (store.User, error) {
	start := time.Now()
	u, err := g.next.Get(ctx, id)
	g.m.observe(store.OpGet, start, err)
	return u, err
}

func (g *Gateway) Close() error {
	if c, ok := g.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
