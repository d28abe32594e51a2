// Package middlewares contiene los middlewares HTTP de sessiond.
package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/filmlot/sessiond/internal/metrics"
	"github.com/filmlot/sessiond/internal/observability/logger"
)

// statusWriter captura el status code escrito.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// WithRequestID asigna un request id y propaga un logger scoped en el ctx.
func WithRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)

			log := logger.L().With(logger.RequestID(rid))
			ctx := logger.ToContext(r.Context(), log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLogging loguea cada request terminado y alimenta las métricas HTTP.
func WithLogging(core *metrics.Core) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			core.ObserveHTTP(r.Method, r.URL.Path, sw.status, elapsed)

			logger.From(r.Context()).Info("request",
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Status(sw.status),
				logger.Duration(elapsed),
				logger.ClientIP(r.RemoteAddr),
			)
		})
	}
}

// WithRecover convierte panics en 500 sin tumbar el proceso.
func WithRecover() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						logger.Path(r.URL.Path),
						logger.Any("panic", rec),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
