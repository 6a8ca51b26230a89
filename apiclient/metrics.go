package apiclient

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure kinds recorded by the collector.
const (
	failureConnectivity = "connectivity"
	failureHTTP         = "http"
	failureParse        = "parse"
)

// Collector records request metrics for the adapter.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	failuresTotal   *prometheus.CounterVec
}

// NewCollector registers the adapter metrics on reg. Metrics already registered under the
// same names, for example by an earlier client in the same process, are shared.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests sent to the case API by method and status class",
		},
		[]string{"method", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Round trip time of case API requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_failures_total",
			Help:      "Failed case API requests by failure kind",
		},
		[]string{"method", "kind"},
	)

	var err error
	c := &Collector{}
	if c.requestsTotal, err = register(reg, requests); err != nil {
		return nil, err
	}
	if c.requestDuration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if c.failuresTotal, err = register(reg, failures); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	err := reg.Register(col)
	if err == nil {
		return col, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("register metrics: %w", err)
}

func (c *Collector) observe(method string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, statusClass(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (c *Collector) failure(method, kind string) {
	if c == nil {
		return
	}
	c.failuresTotal.WithLabelValues(method, kind).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}
