// Package metrics exposes the service's Prometheus instruments. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pizza"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	authAttempts   *prometheus.CounterVec
	pizzasSold     prometheus.Counter
	revenue        prometheus.Counter
	pizzaFailures  prometheus.Counter
	factoryLatency prometheus.Histogram
}

// New builds the instruments on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by result.",
		}, []string{"result"}),
		pizzasSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sold_total",
			Help:      "Pizzas accepted by the factory.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Sum of prices of fulfilled order items.",
		}),
		pizzaFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "creation_failures_total",
			Help:      "Orders the factory refused or could not be reached for.",
		}),
		factoryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "factory_request_duration_seconds",
			Help:      "Latency of order requests to the pizza factory.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.authAttempts,
		m.pizzasSold,
		m.revenue,
		m.pizzaFailures,
		m.factoryLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) AuthAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.authAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) PizzasSold(count int, revenue float64) {
	if m == nil {
		return
	}
	m.pizzasSold.Add(float64(count))
	m.revenue.Add(revenue)
}

func (m *Metrics) PizzaFailure() {
	if m == nil {
		return
	}
	m.pizzaFailures.Inc()
}

func (m *Metrics) ObserveFactory(d time.Duration) {
	if m == nil {
		return
	}
	m.factoryLatency.Observe(d.Seconds())
}
