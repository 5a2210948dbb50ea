package router

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Totarae/openelex/internal/handlers"
	"github.com/Totarae/openelex/internal/metrics"
	"github.com/Totarae/openelex/internal/model"
	"github.com/Totarae/openelex/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct{}

func (stubService) Results(context.Context, string, int) ([]model.ResultRow, error) { return nil, nil }
func (stubService) RowCounts(context.Context) (map[string]int, error) {
	return nil, service.ErrResultsUnavailable
}
func (stubService) Ping(context.Context) error { return nil }

func TestNewRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.AddRows("Kent", 3)

	h := handlers.NewHandler(stubService{}, "https://elections.maryland.gov", zap.NewNop())
	r := NewRouter(h, reg, zap.NewNop())

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/ping", http.StatusOK},
		{"/api/jurisdictions", http.StatusOK},
		{"/api/jurisdictions/Kent", http.StatusOK},
		{"/api/jurisdictions/Kent/results", http.StatusOK},
		{"/api/jurisdictions/Fairfax", http.StatusNotFound},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `jurisdiction="Kent"`)
}

func TestNewRouter_NoMetrics(t *testing.T) {
	h := handlers.NewHandler(stubService{}, "https://elections.maryland.gov", zap.NewNop())
	r := NewRouter(h, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	h := handlers.NewHandler(stubService{}, "https://elections.maryland.gov", zap.NewNop())
	r := NewRouter(h, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/jurisdictions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewRouter_MetricsGzipOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg).AddRows("Cecil", 7)

	h := handlers.NewHandler(stubService{}, "https://elections.maryland.gov", zap.NewNop())
	r := NewRouter(h, reg, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"gzip"}, rec.Header().Values("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	// после одной распаковки должен быть текстовый формат, а не снова gzip
	require.NotEmpty(t, body)
	assert.NotEqual(t, byte(0x1f), body[0])
	assert.Contains(t, string(body), `openelex_rows_ingested_total{jurisdiction="Cecil"} 7`)
}
