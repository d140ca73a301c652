package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collectors shared by the HTTP layer, the DB wrapper and the reservation engine
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge
	DBWaitCount       prometheus.Gauge

	ReservationsAdmitted *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
	TxRetries            prometheus.Counter
	Notifications        *prometheus.CounterVec
	ChannelDowngrades    prometheus.Counter
}

// New creates and registers collectors under namespace
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Open connections in the pool",
		}),
		DBInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Connections currently in use",
		}),
		DBIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_idle_connections",
			Help:      "Idle connections",
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Total number of connections waited for",
		}),

		ReservationsAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_admitted_total",
			Help:      "Reservations that passed validation and were stored",
		}, []string{"operation"}),
		ValidationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Reservation requests rejected by the validation pipeline",
		}, []string{"check"}),
		TxRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serializable_tx_retries_total",
			Help:      "Serializable transactions retried after a serialization failure",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts",
		}, []string{"channel", "result"}),
		ChannelDowngrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_channel_downgrades_total",
			Help:      "Users moved from push to e-mail after a missing subscription",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.ReservationsAdmitted,
		m.ValidationRejections,
		m.TxRetries,
		m.Notifications,
		m.ChannelDowngrades,
	)

	return m
}

// The helpers below accept a nil receiver so callers can run with metrics disabled.

func (m *Metrics) ObserveAdmitted(operation string) {
	if m == nil {
		return
	}
	m.ReservationsAdmitted.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRejected(check string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(check).Inc()
}

func (m *Metrics) ObserveTxRetry() {
	if m == nil {
		return
	}
	m.TxRetries.Inc()
}

func (m *Metrics) ObserveNotification(channel, result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) ObserveDowngrade() {
	if m == nil {
		return
	}
	m.ChannelDowngrades.Inc()
}
