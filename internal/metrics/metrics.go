package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/you/staysvc/domain"
)

// Metrics holds the service's Prometheus collectors on a dedicated registry
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	EventsPublished   *prometheus.CounterVec
	BookingsConfirmed prometheus.Counter
	BookingNights     prometheus.Histogram
	BookingRevenue    prometheus.Counter
	CacheLookups      *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "staysvc_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staysvc_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "staysvc_events_published_total",
			Help: "Total number of domain events published by type and outcome",
		}, []string{"type", "outcome"}),

		BookingsConfirmed: f.NewCounter(prometheus.CounterOpts{
			Name: "staysvc_bookings_confirmed_total",
			Help: "Total number of confirmed bookings",
		}),

		BookingNights: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "staysvc_booking_nights",
			Help:    "Length of confirmed stays in nights",
			Buckets: []float64{1, 2, 3, 5, 7, 14, 28},
		}),

		BookingRevenue: f.NewCounter(prometheus.CounterOpts{
			Name: "staysvc_booking_revenue_total",
			Help: "Sum of confirmed booking totals",
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "staysvc_search_cache_lookups_total",
			Help: "Listing search cache lookups by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveCacheLookup records a search cache outcome
func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// InstrumentPublisher counts published events and derives booking metrics from them
func (m *Metrics) InstrumentPublisher(next domain.EventPublisher) domain.EventPublisher {
	return &instrumentedPublisher{next: next, m: m}
}

type instrumentedPublisher struct {
	next domain.EventPublisher
	m    *Metrics
}

func (p *instrumentedPublisher) Publish(ctx context.Context, event *domain.Event) error {
	if event.Type == domain.BookingConfirmedEvent {
		p.m.BookingsConfirmed.Inc()
		if n, ok := event.Metadata["nights"].(int); ok {
			p.m.BookingNights.Observe(float64(n))
		}
		if total, ok := event.Metadata["total_price"].(float64); ok && total >= 0 {
			p.m.BookingRevenue.Add(total)
		}
	}

	err := p.next.Publish(ctx, event)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.m.EventsPublished.WithLabelValues(string(event.Type), outcome).Inc()
	return err
}
