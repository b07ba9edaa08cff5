package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry             *prometheus.Registry
	handler              http.Handler
	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	complianceEvaluation *prometheus.CounterVec
	obligationIssues     *prometheus.CounterVec
	recordTransitions    *prometheus.CounterVec
	dbQueryDuration      *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	complianceEvaluation := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_evaluations_total",
		Help: "Facility compliance evaluations by verdict",
	}, []string{"result"})

	obligationIssues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_obligation_issues_total",
		Help: "Unsatisfied obligations observed during evaluations",
	}, []string{"kind"})

	recordTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinical_record_transitions_total",
		Help: "Clinical record transitions by action and outcome",
	}, []string{"action", "outcome"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, complianceEvaluation, obligationIssues, recordTransitions, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		complianceEvaluation: complianceEvaluation,
		obligationIssues:     obligationIssues,
		recordTransitions:    recordTransitions,
		dbQueryDuration:      dbQueryDuration,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveCompliance records the verdict of one facility evaluation.
func (m *MetricsService) ObserveCompliance(status models.ComplianceStatus) {
	if m == nil {
		return
	}
	result := "non_compliant"
	if status.InCompliance {
		result = "compliant"
	}
	m.complianceEvaluation.WithLabelValues(result).Inc()
	for _, kind := range status.ObligationIssues {
		m.obligationIssues.WithLabelValues(string(kind)).Inc()
	}
}

// ObserveTransition records a lifecycle transition attempt; outcome is an error code or "committed".
func (m *MetricsService) ObserveTransition(action models.RecordAction, outcome string) {
	if m == nil {
		return
	}
	m.recordTransitions.WithLabelValues(string(action), outcome).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
