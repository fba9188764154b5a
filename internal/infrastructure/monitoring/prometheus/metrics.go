package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every cdforge metric family.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec
	RateLimitedTotal    CounterVec

	// Generation pipeline
	GenerationsTotal     CounterVec
	GenerationDuration   HistogramVec
	UnitsBuiltTotal      CounterVec
	AssemblyWaitDuration HistogramVec

	// Minimization
	MinimizationsTotal   CounterVec
	MinimizationDuration HistogramVec

	// Workspaces
	WorkspacesActive        GaugeVec
	WorkspaceEvictionsTotal CounterVec

	// Side channels
	ArchiveUploadsTotal  CounterVec
	EventsPublishedTotal CounterVec

	// Health
	HealthCheckStatus GaugeVec
}

// Buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120, 180, 300}
	DefaultPipelineDurationBuckets = []float64{1, 5, 10, 20, 30, 60, 90, 120, 180, 240, 300}
)

// NewAppMetrics registers all metrics with collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")
	m.RateLimitedTotal = collector.RegisterCounter("http_rate_limited_total", "Requests rejected by the rate limiter")

	m.GenerationsTotal = collector.RegisterCounter("generations_total", "Structure generations by outcome", "outcome")
	m.GenerationDuration = collector.RegisterHistogram("generation_duration_seconds", "Structure generation duration", DefaultPipelineDurationBuckets, "outcome")
	m.UnitsBuiltTotal = collector.RegisterCounter("units_built_total", "Unit PDB files written")
	m.AssemblyWaitDuration = collector.RegisterHistogram("assembly_wait_seconds", "Time spent waiting for assembly output", DefaultPipelineDurationBuckets, "result")

	m.MinimizationsTotal = collector.RegisterCounter("minimizations_total", "Geometry minimizations by outcome", "outcome")
	m.MinimizationDuration = collector.RegisterHistogram("minimization_duration_seconds", "Geometry minimization duration", DefaultPipelineDurationBuckets, "outcome")

	m.WorkspacesActive = collector.RegisterGauge("workspaces_active", "Workspace directories on disk")
	m.WorkspaceEvictionsTotal = collector.RegisterCounter("workspace_evictions_total", "Workspaces removed", "reason")

	m.ArchiveUploadsTotal = collector.RegisterCounter("archive_uploads_total", "Artifact uploads to object storage", "status")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Structure events published", "type", "status")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

// NewNoopAppMetrics returns metrics that record nothing.
func NewNoopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:       noopCounterVec{},
		HTTPRequestDuration:     noopHistogramVec{},
		HTTPActiveRequests:      noopGaugeVec{},
		RateLimitedTotal:        noopCounterVec{},
		GenerationsTotal:        noopCounterVec{},
		GenerationDuration:      noopHistogramVec{},
		UnitsBuiltTotal:         noopCounterVec{},
		AssemblyWaitDuration:    noopHistogramVec{},
		MinimizationsTotal:      noopCounterVec{},
		MinimizationDuration:    noopHistogramVec{},
		WorkspacesActive:        noopGaugeVec{},
		WorkspaceEvictionsTotal: noopCounterVec{},
		ArchiveUploadsTotal:     noopCounterVec{},
		EventsPublishedTotal:    noopCounterVec{},
		HealthCheckStatus:       noopGaugeVec{},
	}
}

// Outcome labels.
const (
	OutcomeSuccess = "success"
)

// Helpers

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGeneration counts one finished generation; outcome is "success" or an error code.
func RecordGeneration(m *AppMetrics, outcome string, duration time.Duration) {
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
	m.GenerationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordAssemblyWait(m *AppMetrics, result string, duration time.Duration) {
	m.AssemblyWaitDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func RecordMinimization(m *AppMetrics, outcome string, duration time.Duration) {
	m.MinimizationsTotal.WithLabelValues(outcome).Inc()
	m.MinimizationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordEviction(m *AppMetrics, reason string) {
	m.WorkspaceEvictionsTotal.WithLabelValues(reason).Inc()
}

func RecordHealth(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
