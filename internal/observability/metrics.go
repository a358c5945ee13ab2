package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "process_raci"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	diagrams        *prometheus.CounterVec
	raciBuilds      prometheus.Counter
	raciIssues      *prometheus.GaugeVec
	draftsCreated   *prometheus.CounterVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		diagrams: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagrams_compiled_total",
			Help:      "Flowchart requests by cache outcome.",
		}, []string{"cache"}),
		raciBuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raci_builds_total",
			Help:      "RACI matrix aggregations.",
		}),
		raciIssues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "raci_flagged_rows",
			Help:      "Flagged RACI rows per department at last aggregation.",
		}, []string{"department"}),
		draftsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_entities_materialized_total",
			Help:      "Draft departments and roles persisted on save.",
		}, []string{"kind"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordDiagram counts a compiled or cached flowchart.
func (m *Metrics) RecordDiagram(cacheHit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.diagrams.WithLabelValues(outcome).Inc()
}

// RecordRaciBuild counts an aggregation and publishes flagged rows per department.
func (m *Metrics) RecordRaciBuild(issuesByDepartment map[string]int) {
	if m == nil {
		return
	}
	m.raciBuilds.Inc()
	for dept, n := range issuesByDepartment {
		m.raciIssues.WithLabelValues(dept).Set(float64(n))
	}
}

// RecordDrafts counts materialized draft departments and roles.
func (m *Metrics) RecordDrafts(departments, roles int) {
	if m == nil {
		return
	}
	m.draftsCreated.WithLabelValues("department").Add(float64(departments))
	m.draftsCreated.WithLabelValues("role").Add(float64(roles))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
