package metrics

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	divisor = 100

	// otherCity is the label for any city that is not tracked by name.
	otherCity = "other"
)

// Metrics holds Prometheus metric vectors for the dashboard.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP server metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	DashboardRequestsTotal *prometheus.CounterVec
	DashboardErrorsTotal   *prometheus.CounterVec
	RefreshRuns            prometheus.Counter
	RefreshFailures        *prometheus.CounterVec

	// lowercased city -> label; anything else is counted as otherCity
	cities map[string]string
}

// NewMetrics constructs and registers all dashboard metrics on a fresh registry.
// Only the given cities get their own city label; request paths are client
// controlled, so every other city shares the "other" series.
func NewMetrics(serviceName string, cities ...string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		cities:   make(map[string]string, len(cities)),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests received",
			},
			[]string{"method", "endpoint", "status_class"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: serviceName,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		DashboardRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "environment_requests_total",
				Help:      "Total number of environment data requests",
			},
			[]string{"city"},
		),

		DashboardErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "environment_errors_total",
				Help:      "Total number of environment data errors",
			},
			[]string{"city", "error_type"},
		),

		RefreshRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "refresh_runs_total",
				Help:      "Total number of scheduled refresh runs",
			},
		),

		RefreshFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "refresh_failures_total",
				Help:      "Refresh failures per city and stage",
			},
			[]string{"city", "stage"},
		),
	}

	for _, city := range cities {
		if city != "" {
			m.cities[strings.ToLower(city)] = city
		}
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DashboardRequestsTotal,
		m.DashboardErrorsTotal,
		m.RefreshRuns,
		m.RefreshFailures,
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(
				collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/sched/latencies:seconds")},
			),
		),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// HTTPMiddleware returns a Gin middleware to instrument HTTP endpoints.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)

		status := c.Writer.Status()
		statusClass := getStatusClass(status)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.With(prometheus.Labels{
			"method":       c.Request.Method,
			"endpoint":     endpoint,
			"status_class": statusClass,
		}).Inc()
		m.HTTPRequestDuration.With(prometheus.Labels{
			"method":   c.Request.Method,
			"endpoint": endpoint,
		}).Observe(d.Seconds())

		// domain metrics
		city := c.Param("city")
		if city == "" {
			return
		}
		city = m.cityLabel(city)
		m.DashboardRequestsTotal.WithLabelValues(city).Inc()
		if statusClass == "5xx" {
			m.DashboardErrorsTotal.WithLabelValues(city, "server_error").Inc()
		}
		if statusClass == "4xx" {
			m.DashboardErrorsTotal.WithLabelValues(city, "client_error").Inc()
		}
	}
}

func (m *Metrics) ObserveRefreshRun() {
	m.RefreshRuns.Inc()
}

func (m *Metrics) ObserveRefreshFailure(city, stage string) {
	m.RefreshFailures.WithLabelValues(m.cityLabel(city), stage).Inc()
}

func (m *Metrics) cityLabel(city string) string {
	if label, ok := m.cities[strings.ToLower(city)]; ok {
		return label
	}
	return otherCity
}

func getStatusClass(code int) string {
	return fmt.Sprintf("%dxx", code/divisor)
}
