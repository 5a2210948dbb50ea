//go:generate mockgen -source=ingest.go -destination=mocks/mock_ingest.go -package=mocks

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/Totarae/openelex/internal/config"
	"github.com/Totarae/openelex/internal/jurisdiction"
	"github.com/Totarae/openelex/internal/metrics"
	"github.com/Totarae/openelex/internal/model"
	"github.com/Totarae/openelex/internal/parser"
	"github.com/Totarae/openelex/internal/storage"
	"github.com/Totarae/openelex/internal/util"
	"go.uber.org/zap"
)

var (
	// ErrUnknownJurisdiction слаг отсутствует в реестре
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	// ErrResultsUnavailable результаты хранятся только в режиме database
	ErrResultsUnavailable = errors.New("results are only available in database mode")
)

// DocumentFetcher скачивает документы портала
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*model.Document, error)
}

// Repository хранилище результатов в режиме database
type Repository interface {
	SaveDocument(ctx context.Context, doc *model.Document) error
	SaveResults(ctx context.Context, documentKey string, year int, rows []model.ResultRow) error
	ResultsByJurisdiction(ctx context.Context, jurisdiction string, year int) ([]model.ResultRow, error)
	CountByJurisdiction(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
}

// Summary итог загрузки одной юрисдикции
type Summary struct {
	Jurisdiction string
	URL          string
	DocumentKey  string
	Rows         int
	Votes        int
}

type IngestService struct {
	Fetcher DocumentFetcher
	Store   storage.Storage
	Repo    Repository
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Mode    string
	BaseURL string
}

func NewIngestService(fetcher DocumentFetcher, store storage.Storage, repo Repository, m *metrics.Metrics, logger *zap.Logger, mode, baseURL string) *IngestService {
	return &IngestService{
		Fetcher: fetcher,
		Store:   store,
		Repo:    repo,
		Metrics: m,
		Logger:  logger,
		Mode:    mode,
		BaseURL: baseURL,
	}
}

// IngestJurisdiction скачивает CSV результатов юрисдикции, сохраняет документ
// и, в режиме database, строки результатов.
func (s *IngestService) IngestJurisdiction(ctx context.Context, e model.Election, slug string) (Summary, error) {
	summary := Summary{Jurisdiction: slug}
	if !jurisdiction.Contains(slug) {
		return summary, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, slug)
	}
	if err := e.Validate(); err != nil {
		return summary, err
	}

	url := util.ResultsFileURL(s.BaseURL, e, slug)
	summary.URL = url

	summary, err := s.ingest(ctx, e, slug, summary)
	if err != nil {
		s.Metrics.IncFailures(slug)
		return summary, err
	}
	s.Metrics.AddRows(slug, summary.Rows)

	s.Logger.Info("Jurisdiction ingested",
		zap.String("jurisdiction", slug),
		zap.String("election", e.String()),
		zap.Int("rows", summary.Rows),
		zap.Int("votes", summary.Votes),
	)
	return summary, nil
}

func (s *IngestService) ingest(ctx context.Context, e model.Election, slug string, summary Summary) (Summary, error) {
	doc, err := s.Fetcher.Fetch(ctx, summary.URL)
	if err != nil {
		return summary, fmt.Errorf("fetch %s: %w", slug, err)
	}
	doc.Jurisdiction = slug
	summary.DocumentKey = doc.Key

	if err := s.Store.Save(ctx, doc); err != nil {
		return summary, fmt.Errorf("store %s: %w", slug, err)
	}

	rows, err := parser.ParseResults(bytes.NewReader(doc.Body), slug)
	if err != nil {
		return summary, fmt.Errorf("parse %s: %w", slug, err)
	}
	for i := range rows {
		rows[i].Year = e.Year
		rows[i].DocumentKey = doc.Key
		summary.Votes += rows[i].Votes
	}
	summary.Rows = len(rows)

	if s.Mode == config.ModeDatabase {
		if err := s.Repo.SaveDocument(ctx, doc); err != nil {
			return summary, err
		}
		if err := s.Repo.SaveResults(ctx, doc.Key, e.Year, rows); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// Discover скачивает страницу с данными выборов за год и группирует
// ссылки на CSV по юрисдикциям.
func (s *IngestService) Discover(ctx context.Context, year int) (map[string][]string, error) {
	url := util.ResultsIndexURL(s.BaseURL, year)
	doc, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	links, err := parser.ExtractLinks(bytes.NewReader(doc.Body), url)
	if err != nil {
		return nil, err
	}
	return parser.ResultFileLinks(links), nil
}

// Results возвращает сохранённые результаты юрисдикции
func (s *IngestService) Results(ctx context.Context, slug string, year int) ([]model.ResultRow, error) {
	if !jurisdiction.Contains(slug) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, slug)
	}
	if s.Mode != config.ModeDatabase || s.Repo == nil {
		return nil, ErrResultsUnavailable
	}
	return s.Repo.ResultsByJurisdiction(ctx, slug, year)
}

// RowCounts возвращает число сохранённых строк по юрисдикциям.
// Юрисдикции без строк в результат не попадают.
func (s *IngestService) RowCounts(ctx context.Context) (map[string]int, error) {
	if s.Mode != config.ModeDatabase || s.Repo == nil {
		return nil, ErrResultsUnavailable
	}
	return s.Repo.CountByJurisdiction(ctx)
}

func (s *IngestService) Ping(ctx context.Context) error {
	if s.Mode != config.ModeDatabase || s.Repo == nil {
		return nil // Ping актуален только для database
	}
	return s.Repo.Ping(ctx)
}
