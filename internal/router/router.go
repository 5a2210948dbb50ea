package router

import (
	"github.com/Totarae/openelex/internal/handlers"
	"github.com/Totarae/openelex/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор API.
// gatherer отдаёт метрики для /metrics, nil отключает маршрут.
func NewRouter(handler *handlers.Handler, gatherer prometheus.Gatherer, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Get("/ping", handler.Ping)
	r.Route("/api/jurisdictions", func(r chi.Router) {
		r.Get("/", handler.ListJurisdictions)
		r.Get("/{slug}", handler.GetJurisdiction)
		r.Get("/{slug}/results", handler.Results)
	})
	if gatherer != nil {
		// ответ уже сжимает GzipMiddleware
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{DisableCompression: true}))
	}
	return r
}
