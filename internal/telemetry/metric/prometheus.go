package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/forkmesh-go/internal/core/service"
)

const namespace = "forkmesh"

// Registry holds all application metrics on a private prometheus.Registry.
type Registry struct {
	reg *prometheus.Registry

	// Fork metrics
	forksActive  prometheus.Gauge
	forksCreated prometheus.Counter
	forksRemoved *prometheus.CounterVec

	// Remote ledger metrics
	remoteFetches       *prometheus.CounterVec
	remoteFetchDuration prometheus.Histogram

	// Engine metrics
	transactions *prometheus.CounterVec

	// Request metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rpcCalls            *prometheus.CounterVec
}

var _ service.Recorder = (*Registry)(nil)

// NewRegistry creates and registers every series, plus the Go runtime and
// process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		forksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forks_active",
			Help:      "Number of live forks",
		}),
		forksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forks_created_total",
			Help:      "Total forks created",
		}),
		forksRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forks_removed_total",
			Help:      "Total forks removed, by reason",
		}, []string{"reason"}),
		remoteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetch_total",
			Help:      "Remote ledger account fetches, by result",
		}, []string{"result"}),
		remoteFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_fetch_duration_seconds",
			Help:      "Remote ledger account fetch latency",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions submitted to fork engines, by result",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "JSON-RPC calls, by method and status",
		}, []string{"method", "status"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.forksActive,
		r.forksCreated,
		r.forksRemoved,
		r.remoteFetches,
		r.remoteFetchDuration,
		r.transactions,
		r.httpRequests,
		r.httpRequestDuration,
		r.rpcCalls,
	)
	return r
}

// Register adds extra collectors, such as a ShardCollector.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gatherer exposes the underlying registry for tests and custom handlers.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns the /metrics handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ForkCreated implements service.Recorder.
func (r *Registry) ForkCreated() {
	r.forksCreated.Inc()
}

// ForksRemoved implements service.Recorder.
func (r *Registry) ForksRemoved(reason string, n int) {
	r.forksRemoved.WithLabelValues(reason).Add(float64(n))
}

// ActiveForks implements service.Recorder.
func (r *Registry) ActiveForks(n int) {
	r.forksActive.Set(float64(n))
}

// RemoteFetch implements service.Recorder.
func (r *Registry) RemoteFetch(result string, elapsed time.Duration) {
	r.remoteFetches.WithLabelValues(result).Inc()
	r.remoteFetchDuration.Observe(elapsed.Seconds())
}

// Transaction implements service.Recorder.
func (r *Registry) Transaction(success bool) {
	result := "failed"
	if success {
		result = "success"
	}
	r.transactions.WithLabelValues(result).Inc()
}

// ObserveHTTP records one HTTP request. path must be a route pattern, not
// the raw URL, to keep label cardinality bounded.
func (r *Registry) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveRPC records one JSON-RPC call. Unknown methods should be folded
// into a single label value by the caller.
func (r *Registry) ObserveRPC(method, status string) {
	r.rpcCalls.WithLabelValues(method, status).Inc()
}
