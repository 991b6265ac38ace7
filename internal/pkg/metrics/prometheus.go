package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder backed by Prometheus.
// Collectors are registered lazily on first use.
type PrometheusRecorder struct {
	reg       prometheus.Registerer
	gatherer  prometheus.Gatherer
	namespace string
	once      sync.Once

	draftsGenerated  prometheus.Counter
	draftClassCount  prometheus.Histogram
	placements       *prometheus.CounterVec
	transfers        *prometheus.CounterVec
	imports          *prometheus.CounterVec
	finalizeLatency  prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpRequestTimes *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheus creates a recorder on reg. A nil reg uses a fresh registry;
// an empty namespace defaults to "spmb".
func NewPrometheus(reg *prometheus.Registry, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "spmb"
	}
	return &PrometheusRecorder{reg: reg, gatherer: reg, namespace: namespace}
}

func (p *PrometheusRecorder) ensureRegistered() {
	p.once.Do(func() {
		p.draftsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "distribution",
			Name:      "drafts_generated_total",
			Help:      "Number of distribution drafts generated.",
		})
		p.draftClassCount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "distribution",
			Name:      "draft_class_count",
			Help:      "Class count of generated drafts after clamping.",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 13, 26},
		})
		p.placements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "placement",
			Name:      "commits_total",
			Help:      "Per-candidate placement commits by result.",
		}, []string{"result"})
		p.transfers = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "transfers_total",
			Help:      "Per-candidate roster transfers by result.",
		}, []string{"result"})
		p.imports = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "candidates",
			Name:      "imported_total",
			Help:      "CSV import rows by result.",
		}, []string{"result"})
		p.finalizeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "distribution",
			Name:      "finalize_duration_seconds",
			Help:      "Duration of draft finalization including identifier generation and commit.",
			Buckets:   prometheus.DefBuckets,
		})
		p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"})
		p.httpRequestTimes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})

		p.reg.MustRegister(p.draftsGenerated)
		p.reg.MustRegister(p.draftClassCount)
		p.reg.MustRegister(p.placements)
		p.reg.MustRegister(p.transfers)
		p.reg.MustRegister(p.imports)
		p.reg.MustRegister(p.finalizeLatency)
		p.reg.MustRegister(p.httpRequests)
		p.reg.MustRegister(p.httpRequestTimes)
	})
}

// RecordDraftGenerated counts a generated draft and its class count.
func (p *PrometheusRecorder) RecordDraftGenerated(classCount int) {
	p.ensureRegistered()
	p.draftsGenerated.Inc()
	p.draftClassCount.Observe(float64(classCount))
}

// RecordPlacements adds the outcome of one commit batch.
func (p *PrometheusRecorder) RecordPlacements(succeeded, failed int) {
	p.ensureRegistered()
	addResults(p.placements, succeeded, failed)
}

// RecordTransfers adds the outcome of one roster transfer batch.
func (p *PrometheusRecorder) RecordTransfers(succeeded, failed int) {
	p.ensureRegistered()
	addResults(p.transfers, succeeded, failed)
}

// RecordImport adds the outcome of one CSV import.
func (p *PrometheusRecorder) RecordImport(succeeded, failed int) {
	p.ensureRegistered()
	addResults(p.imports, succeeded, failed)
}

// ObserveFinalizeLatency observes one finalize duration.
func (p *PrometheusRecorder) ObserveFinalizeLatency(seconds float64) {
	p.ensureRegistered()
	p.finalizeLatency.Observe(seconds)
}

// RecordHTTPRequest counts one served request.
func (p *PrometheusRecorder) RecordHTTPRequest(method, route string, status int, seconds float64) {
	p.ensureRegistered()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpRequestTimes.WithLabelValues(method, route).Observe(seconds)
}

// Handler exposes the recorder's registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	p.ensureRegistered()
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func addResults(vec *prometheus.CounterVec, succeeded, failed int) {
	if succeeded > 0 {
		vec.WithLabelValues(ResultSuccess).Add(float64(succeeded))
	}
	if failed > 0 {
		vec.WithLabelValues(ResultFailure).Add(float64(failed))
	}
}
