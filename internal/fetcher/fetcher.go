// Package fetcher скачивает файлы с портала выборов с ограничением частоты запросов.
package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Totarae/openelex/internal/metrics"
	"github.com/Totarae/openelex/internal/model"
	"github.com/Totarae/openelex/internal/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxBodySize ограничивает размер скачиваемого файла
const MaxBodySize = 32 << 20

// ErrUnexpectedStatus возвращается, если портал ответил не 2xx
var ErrUnexpectedStatus = errors.New("unexpected status")

// Cache кэш тел документов. *cache.Cache удовлетворяет интерфейсу.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
}

// Options параметры Fetcher
type Options struct {
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	UserAgent         string
}

// Fetcher выполняет GET-запросы к порталу
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	cache     Cache
	metrics   *metrics.Metrics
	logger    *zap.Logger
	userAgent string
}

// New создаёт Fetcher. cache и m могут быть nil.
func New(opts Options, cache Cache, m *metrics.Metrics, logger *zap.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		cache:     cache,
		metrics:   m,
		logger:    logger,
		userAgent: opts.UserAgent,
	}
}

// Fetch скачивает документ по URL. Перед запросом ждёт токен лимитера,
// поэтому отмена ctx прерывает и ожидание.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*model.Document, error) {
	key := util.DocumentKey(url)

	if entry, ok := f.fromCache(ctx, key); ok {
		f.metrics.ObserveFetch("cache", len(entry.Body), 0)
		return newDocument(key, url, entry.ContentType, entry.Body), nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	body, contentType, err := f.get(ctx, url)
	if err != nil {
		f.metrics.ObserveFetch("error", 0, time.Since(start))
		return nil, err
	}
	f.metrics.ObserveFetch("ok", len(body), time.Since(start))

	f.logger.Debug("Fetched document",
		zap.String("url", url),
		zap.Int("size", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	f.toCache(ctx, key, cacheEntry{ContentType: contentType, Body: body})

	return newDocument(key, url, contentType, body), nil
}

// cacheEntry значение в кэше: тело вместе с Content-Type ответа
type cacheEntry struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

func (f *Fetcher) fromCache(ctx context.Context, key string) (cacheEntry, bool) {
	var entry cacheEntry
	if f.cache == nil {
		return entry, false
	}
	raw, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.logger.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		return entry, false
	}
	if !ok {
		return entry, false
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		// запись старого формата или повреждена, скачиваем заново
		f.logger.Warn("Invalid cache entry", zap.String("key", key), zap.Error(err))
		return entry, false
	}
	return entry, true
}

func (f *Fetcher) toCache(ctx context.Context, key string, entry cacheEntry) {
	if f.cache == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		f.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := f.cache.Set(ctx, key, raw); err != nil {
		f.logger.Warn("Failed to cache document", zap.String("key", key), zap.Error(err))
	}
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("get %s: %w: %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body of %s: %w", url, err)
	}
	if len(body) > MaxBodySize {
		return nil, "", fmt.Errorf("body of %s exceeds %d bytes", url, MaxBodySize)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func newDocument(key, url, contentType string, body []byte) *model.Document {
	sum := sha256.Sum256(body)
	return &model.Document{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Checksum:    hex.EncodeToString(sum[:]),
		Body:        body,
		FetchedAt:   time.Now().UTC(),
	}
}
