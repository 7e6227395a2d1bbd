// Package metrics exposes the process Prometheus collectors and batch run pushes
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"djnic/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the collectors shared by the API and batch jobs
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	WebhookUpdates *prometheus.CounterVec
	Deliveries     *prometheus.CounterVec
	Events         *prometheus.CounterVec
}

// New registers every collector on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "djnic_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "djnic_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
		WebhookUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "djnic_telegram_updates_total",
			Help: "Telegram webhook updates by outcome",
		}, []string{"outcome"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "djnic_channel_deliveries_total",
			Help: "Notification delivery attempts by channel and status",
		}, []string{"channel", "status"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "djnic_events_total",
			Help: "Derived events by kind and subject",
		}, []string{"kind", "subject"}),
	}
}

var (
	defOnce sync.Once
	def     *Metrics
)

// Default returns the collectors registered on the global registry
func Default() *Metrics {
	defOnce.Do(func() { def = New(prometheus.DefaultRegisterer) })
	return def
}

// IncWebhook counts one webhook update
func (m *Metrics) IncWebhook(outcome string) {
	if m != nil {
		m.WebhookUpdates.WithLabelValues(outcome).Inc()
	}
}

// IncDelivery counts one delivery attempt
func (m *Metrics) IncDelivery(channel, status string) {
	if m != nil {
		m.Deliveries.WithLabelValues(channel, status).Inc()
	}
}

// IncEvent counts one derived event
func (m *Metrics) IncEvent(kind, subject string) {
	if m != nil {
		m.Events.WithLabelValues(kind, subject).Inc()
	}
}

// Instrument records request counts and latency under the matched chi route pattern
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &middleware.StatusWriter{ResponseWriter: w, Status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.Status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the global registry
func Handler() http.Handler { return promhttp.Handler() }

// RunSummary is what a batch job reports after one invocation
type RunSummary struct {
	Job      string
	Counts   map[string]int
	Duration time.Duration
	Failed   bool
}

// Push sends s to a Pushgateway at url under the job name
func Push(ctx context.Context, url string, s RunSummary) error {
	items := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "djnic_job_items",
		Help: "Items handled by the last job run, by kind",
	}, []string{"kind"})
	for k, v := range s.Counts {
		items.WithLabelValues(k).Set(float64(v))
	}
	dur := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "djnic_job_duration_seconds",
		Help: "Wall time of the last job run",
	})
	dur.Set(s.Duration.Seconds())
	last := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "djnic_job_last_run_timestamp_seconds",
		Help: "Unix time the last job run finished",
	})
	last.SetToCurrentTime()
	failed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "djnic_job_failed",
		Help: "1 when the last job run ended in error",
	})
	if s.Failed {
		failed.Set(1)
	}

	return push.New(url, s.Job).
		Collector(items).
		Collector(dur).
		Collector(last).
		Collector(failed).
		PushContext(ctx)
}
