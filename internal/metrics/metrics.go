package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics хранит метрики Prometheus сборщика
type Metrics struct {
	Requests       *prometheus.CounterVec
	BytesFetched   prometheus.Counter
	FetchDuration  prometheus.Histogram
	RowsIngested   *prometheus.CounterVec
	IngestFailures *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в reg.
// Отдельный реестр позволяет создавать Metrics в тестах несколько раз.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openelex_portal_requests_total",
			Help: "Total number of requests to the elections portal by outcome",
		}, []string{"outcome"}),
		BytesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "openelex_portal_bytes_total",
			Help: "Total number of bytes downloaded from the elections portal",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "openelex_portal_fetch_duration_seconds",
			Help:    "Duration of portal requests",
			Buckets: prometheus.DefBuckets,
		}),
		RowsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openelex_rows_ingested_total",
			Help: "Total number of precinct result rows ingested per jurisdiction",
		}, []string{"jurisdiction"}),
		IngestFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openelex_ingest_failures_total",
			Help: "Total number of failed jurisdiction ingestions",
		}, []string{"jurisdiction"}),
	}
}

// ObserveFetch учитывает один запрос к порталу
func (m *Metrics) ObserveFetch(outcome string, size int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.BytesFetched.Add(float64(size))
	m.FetchDuration.Observe(d.Seconds())
}

// AddRows учитывает загруженные строки результатов
func (m *Metrics) AddRows(jurisdiction string, n int) {
	if m == nil {
		return
	}
	m.RowsIngested.WithLabelValues(jurisdiction).Add(float64(n))
}

// IncFailures учитывает неудачную загрузку юрисдикции
func (m *Metrics) IncFailures(jurisdiction string) {
	if m == nil {
		return
	}
	m.IngestFailures.WithLabelValues(jurisdiction).Inc()
}
