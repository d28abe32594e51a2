// Package metrics expone las métricas Prometheus de sessiond.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once
	core *Core
)

// Core agrupa las métricas del resolver de sesión y del HTTP server.
type Core struct {
	// Resolver
	ResolutionsTotal *prometheus.CounterVec // outcome: profile|fallback|none
	LoginsTotal      *prometheus.CounterVec // result: ok|rejected|error
	LogoutsTotal     prometheus.Counter

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	handler http.Handler
}

// New registra las métricas en el Registerer dado (nil = default) y retorna
// el Core junto con el handler para /metrics. Registro único por proceso.
func New(reg prometheus.Registerer) *Core {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		registry := prometheus.NewRegistry()
		if r, ok := reg.(*prometheus.Registry); ok {
			registry = r
		}

		c := &Core{
			ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sessiond_profile_resolutions_total",
				Help: "Resoluciones de perfil por resultado",
			}, []string{"outcome"}),
			LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "sessiond_logins_total",
				Help: "Intentos de login por resultado",
			}, []string{"result"}),
			LogoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "sessiond_logouts_total",
				Help: "Logouts procesados",
			}),
			HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Número total de requests procesadas",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latencia de los requests HTTP",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),
		}

		registry.MustRegister(
			c.ResolutionsTotal, c.LoginsTotal, c.LogoutsTotal,
			c.HTTPRequestsTotal, c.HTTPRequestDuration,
		)
		c.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		core = c
	})
	return core
}

// Handler retorna el handler HTTP para /metrics.
func (c *Core) Handler() http.Handler {
	if c == nil || c.handler == nil {
		return promhttp.Handler()
	}
	return c.handler
}

// ObserveResolution registra el resultado de una resolución de perfil.
// Nil-safe: el Manager puede correr sin métricas (tests).
func (c *Core) ObserveResolution(outcome string) {
	if c == nil {
		return
	}
	c.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLogin registra el resultado de un login.
func (c *Core) ObserveLogin(result string) {
	if c == nil {
		return
	}
	c.LoginsTotal.WithLabelValues(result).Inc()
}

// ObserveLogout registra un logout.
func (c *Core) ObserveLogout() {
	if c == nil {
		return
	}
	c.LogoutsTotal.Inc()
}

// ObserveHTTP registra un request HTTP terminado.
func (c *Core) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequestsTotal.WithLabelValues(method, path, statusText(status)).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func statusText(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
