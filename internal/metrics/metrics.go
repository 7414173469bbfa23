package metrics

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wichananm65/misdis-backend/internal/apperror"
)

// Metrics holds the HTTP collectors exposed on /metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge
}

// New registers the HTTP collectors on reg. When db is not nil its pool
// statistics are exported as well.
func New(reg *prometheus.Registry, db *sql.DB) (*Metrics, error) {
	m := &Metrics{
		gatherer: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests currently being served.",
		}),
	}

	cs := []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inflight}
	if db != nil {
		cs = append(cs, collectors.NewDBStatsCollector(db, "misdis"))
	}
	for _, c := range cs {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// Middleware records one observation per request labelled with the matched
// route pattern, so ids never end up in label values.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.inflight.Inc()
		start := time.Now()
		err := c.Next()
		m.inflight.Dec()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperror.FromError(err).HTTPCode
		}
		route := c.Route().Path
		method := c.Method()

		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
