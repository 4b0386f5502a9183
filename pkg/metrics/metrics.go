package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pages_deployer"

var histogramBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry setup.
type Metrics struct {
	deployments          *prometheus.CounterVec
	deploymentDuration   *prometheus.HistogramVec
	notificationAttempts *prometheus.CounterVec
	notifications        *prometheus.CounterVec
	requestTotal         *prometheus.CounterVec
	requestLatency       *prometheus.HistogramVec
	registerer           prometheus.Registerer
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registerer: reg,
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "Deployments by round, template and terminal status",
		}, []string{"round", "template", "status"}),
		deploymentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deployment_duration_seconds",
			Help:      "Time from dequeue to terminal state, notification included",
			Buckets:   histogramBuckets,
		}, []string{"status"}),
		notificationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_attempts_total",
			Help:      "Evaluation callback POST attempts by result",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Evaluation callbacks by final outcome",
		}, []string{"outcome"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.deployments = register(reg, m.deployments)
	m.deploymentDuration = register(reg, m.deploymentDuration)
	m.notificationAttempts = register(reg, m.notificationAttempts)
	m.notifications = register(reg, m.notifications)
	m.requestTotal = register(reg, m.requestTotal)
	m.requestLatency = register(reg, m.requestLatency)
	return m
}

// register returns the already registered collector when one exists, so
// constructing Metrics twice against the default registry is safe.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// RegisterQueueDepth exposes the number of deployments waiting for a worker.
func (m *Metrics) RegisterQueueDepth(depth func() int) {
	if m == nil || m.registerer == nil {
		return
	}
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Deployments queued and not yet picked up by a worker",
	}, func() float64 { return float64(depth()) })
	_ = m.registerer.Register(gauge)
}

func (m *Metrics) ObserveDeployment(round int, template, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.deployments.WithLabelValues(strconv.Itoa(round), template, status).Inc()
	m.deploymentDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveNotificationAttempt(result string) {
	if m == nil {
		return
	}
	m.notificationAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveNotification(delivered bool) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if !delivered {
		outcome = "abandoned"
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(elapsed.Seconds())
}
