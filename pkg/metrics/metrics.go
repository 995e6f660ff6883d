package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор метрик сервиса
// Каждый экземпляр имеет собственный registry, поэтому New можно вызывать повторно (в тестах)
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBOpenConns     prometheus.Gauge
	DBInUseConns    prometheus.Gauge
	DBIdleConns     prometheus.Gauge
	DBWaitCount     prometheus.Gauge

	TxRetriesTotal    prometheus.Counter
	AdmissionsTotal   *prometheus.CounterVec
	CancellationTotal prometheus.Counter
}

// New создает и регистрирует метрики с константной меткой service
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open connections in the pool",
			ConstLabels: labels,
		}),
		DBInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle connections in the pool",
			ConstLabels: labels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),
		TxRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "db_tx_retries_total",
			Help:        "Transactions retried after a deadlock or serialization failure",
			ConstLabels: labels,
		}),
		AdmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_admissions_total",
			Help:        "Booking admission decisions by result",
			ConstLabels: labels,
		}, []string{"result"}),
		CancellationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_cancellations_total",
			Help:        "Bookings moved from confirmed to cancelled",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConns,
		m.DBInUseConns,
		m.DBIdleConns,
		m.DBWaitCount,
		m.TxRetriesTotal,
		m.AdmissionsTotal,
		m.CancellationTotal,
	)

	return m
}

// Handler возвращает http.Handler для эндпоинта /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает registry (нужен тестам для чтения значений)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveQuery фиксирует запрос к БД
func (m *Metrics) ObserveQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// IncTxRetry увеличивает счётчик повторов транзакций
func (m *Metrics) IncTxRetry() {
	m.TxRetriesTotal.Inc()
}

// IncAdmission фиксирует результат решения о допуске бронирования
func (m *Metrics) IncAdmission(result string) {
	m.AdmissionsTotal.WithLabelValues(result).Inc()
}

// IncCancellation фиксирует фактическую отмену бронирования
func (m *Metrics) IncCancellation() {
	m.CancellationTotal.Inc()
}

// SetPoolStats обновляет метрики пула соединений
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	m.DBOpenConns.Set(float64(stats.OpenConnections))
	m.DBInUseConns.Set(float64(stats.InUse))
	m.DBIdleConns.Set(float64(stats.Idle))
	m.DBWaitCount.Set(float64(stats.WaitCount))
}
