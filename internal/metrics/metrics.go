package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks directory and submission activity.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	submissions      *prometheus.CounterVec
	filterDuration   prometheus.Histogram
	snapshotVersion  prometheus.Gauge
	snapshotProjects prometheus.Gauge
	fetchErrors      prometheus.Counter
	orphans          prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer, serviceName string) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "directory_submissions_total",
			Help:        "Project submissions by final workflow state",
			ConstLabels: labels,
		}, []string{"outcome"}),
		filterDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:        "directory_filter_duration_seconds",
			Help:        "Time spent filtering the directory snapshot",
			ConstLabels: labels,
			Buckets:     []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		}),
		snapshotVersion: f.NewGauge(prometheus.GaugeOpts{
			Name:        "directory_snapshot_version",
			Help:        "Version of the currently published directory snapshot",
			ConstLabels: labels,
		}),
		snapshotProjects: f.NewGauge(prometheus.GaugeOpts{
			Name:        "directory_snapshot_projects",
			Help:        "Number of projects in the current snapshot",
			ConstLabels: labels,
		}),
		fetchErrors: f.NewCounter(prometheus.CounterOpts{
			Name:        "directory_fetch_errors_total",
			Help:        "Failed directory loads",
			ConstLabels: labels,
		}),
		orphans: f.NewGauge(prometheus.GaugeOpts{
			Name:        "directory_orphan_projects",
			Help:        "Projects without founders found by the last reconcile run",
			ConstLabels: labels,
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests processed",
			ConstLabels: labels,
		}, []string{"method", "endpoint", "status_code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFilter(d time.Duration) {
	if m == nil {
		return
	}
	m.filterDuration.Observe(d.Seconds())
}

func (m *Metrics) SetSnapshot(version uint64, projects int) {
	if m == nil {
		return
	}
	m.snapshotVersion.Set(float64(version))
	m.snapshotProjects.Set(float64(projects))
}

func (m *Metrics) ObserveFetchError() {
	if m == nil {
		return
	}
	m.fetchErrors.Inc()
}

func (m *Metrics) SetOrphans(n int) {
	if m == nil {
		return
	}
	m.orphans.Set(float64(n))
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
