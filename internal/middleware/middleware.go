package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

// LoggingMiddleware пишет в лог каждый запрос к API
func LoggingMiddleware(logger *zap.Logger) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &loggingResponseWriter{ResponseWriter: resp, statusCode: http.StatusOK}

			next.ServeHTTP(lw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", lw.statusCode),
				zap.Int("size", lw.size),
				zap.Duration("duration", time.Since(start)),
			}
			// шаблон маршрута вместо слага, чтобы группировать запросы
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
			}
			if slug := chi.URLParam(r, "slug"); slug != "" {
				fields = append(fields, zap.String("jurisdiction", slug))
			}
			logger.Info("HTTP Request", fields...)
		})
	}
}

func (lw *loggingResponseWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.ResponseWriter.WriteHeader(code)
}

func (lw *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := lw.ResponseWriter.Write(b)
	lw.size += size
	return size, err
}
