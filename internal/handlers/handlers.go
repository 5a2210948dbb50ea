package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Totarae/openelex/internal/jurisdiction"
	"github.com/Totarae/openelex/internal/model"
	"github.com/Totarae/openelex/internal/service"
	"github.com/Totarae/openelex/internal/util"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ResultsService то, что нужно обработчикам от сервиса загрузки.
// *service.IngestService удовлетворяет интерфейсу.
type ResultsService interface {
	Results(ctx context.Context, slug string, year int) ([]model.ResultRow, error)
	RowCounts(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	Service ResultsService
	BaseURL string
	Logger  *zap.Logger
}

func NewHandler(svc ResultsService, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		BaseURL: baseURL,
		Logger:  logger,
	}
}

func (h *Handler) jurisdictionResponse(slug string) model.JurisdictionResponse {
	name, _ := jurisdiction.Name(slug)
	return model.JurisdictionResponse{
		Slug: slug,
		Name: name,
		URL:  util.JurisdictionURL(h.BaseURL, slug),
	}
}

// ListJurisdictions отдаёт все юрисдикции в каноническом порядке.
// В режиме database к каждой добавляется число сохранённых строк результатов.
func (h *Handler) ListJurisdictions(res http.ResponseWriter, req *http.Request) {
	counts, err := h.Service.RowCounts(req.Context())
	if err != nil && !errors.Is(err, service.ErrResultsUnavailable) {
		h.Logger.Error("Failed to count results", zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slugs := jurisdiction.List()
	resp := make([]model.JurisdictionResponse, 0, len(slugs))
	for _, slug := range slugs {
		j := h.jurisdictionResponse(slug)
		if counts != nil {
			n := counts[slug]
			j.Rows = &n
		}
		resp = append(resp, j)
	}
	h.writeJSON(res, http.StatusOK, resp)
}

// GetJurisdiction отдаёт одну юрисдикцию по слагу
func (h *Handler) GetJurisdiction(res http.ResponseWriter, req *http.Request) {
	slug := chi.URLParam(req, "slug")
	if !jurisdiction.Contains(slug) {
		http.NotFound(res, req)
		return
	}
	h.writeJSON(res, http.StatusOK, h.jurisdictionResponse(slug))
}

// Results отдаёт сохранённые строки результатов. Параметр year необязателен.
func (h *Handler) Results(res http.ResponseWriter, req *http.Request) {
	slug := chi.URLParam(req, "slug")
	if !jurisdiction.Contains(slug) {
		http.NotFound(res, req)
		return
	}

	year := 0
	if raw := req.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			http.Error(res, "Invalid year", http.StatusBadRequest)
			return
		}
		year = y
	}

	rows, err := h.Service.Results(req.Context(), slug, year)
	switch {
	case errors.Is(err, service.ErrResultsUnavailable), errors.Is(err, service.ErrUnknownJurisdiction):
		http.Error(res, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		h.Logger.Error("Failed to load results", zap.String("jurisdiction", slug), zap.Error(err))
		http.Error(res, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []model.ResultRow{}
	}
	h.writeJSON(res, http.StatusOK, rows)
}

func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	if err := h.Service.Ping(req.Context()); err != nil {
		h.Logger.Error("Ping failed", zap.Error(err))
		http.Error(res, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

func (h *Handler) writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", zap.Error(err))
	}
}
