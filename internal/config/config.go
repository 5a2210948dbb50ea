package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Режимы хранения
const (
	ModeDatabase = "database"
	ModeFile     = "file"
)

// Config хранит конфигурацию сборщика и HTTP API
type Config struct {
	PortalBaseURL     string        `json:"portal_base_url"`
	ServerAddress     string        `json:"server_address"`
	FileStoragePath   string        `json:"file_storage_path"`
	DatabaseDSN       string        `json:"database_dsn"`
	ApplyMigrations   bool          `json:"apply_migrations"`
	RedisURL          string        `json:"redis_url"`
	CacheTTL          time.Duration `json:"-"`
	S3Bucket          string        `json:"s3_bucket"`
	S3Region          string        `json:"s3_region"`
	S3Endpoint        string        `json:"s3_endpoint"`
	S3Prefix          string        `json:"s3_prefix"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	RequestBurst      int           `json:"request_burst"`
	RequestTimeout    time.Duration `json:"-"`
	Workers           int           `json:"workers"`
	UserAgent         string        `json:"user_agent"`
	Mode              string        `json:"-"`
	Args              []string      `json:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORTAL_BASE_URL", "https://elections.maryland.gov")
	v.SetDefault("SERVER_ADDRESS", "localhost:8080")
	v.SetDefault("FILE_STORAGE_PATH", "documents.json")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("PG_MIGRATIONS", true)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "24h")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_PREFIX", "md/")
	v.SetDefault("REQUESTS_PER_SECOND", 2.0)
	v.SetDefault("REQUEST_BURST", 4)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("WORKERS", 4)
	v.SetDefault("USER_AGENT", "openelex-md/1.0")
}

// NewConfig собирает конфигурацию: значения по умолчанию, переменные окружения,
// .env, JSON-файл и флаги командной строки из args.
// Оставшиеся позиционные аргументы попадают в Config.Args.
func NewConfig(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// .env не переопределяет переменные окружения
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	fs := flag.NewFlagSet("openelex", flag.ContinueOnError)
	baseURL := fs.String("b", "", "portal base URL")
	serverAddress := fs.String("a", "", "HTTP API address")
	fileStoragePath := fs.String("f", "", "file storage path (JSON lines)")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	redisURL := fs.String("r", "", "Redis URL for the fetch cache")
	rps := fs.Float64("rps", 0, "requests per second to the portal")
	workers := fs.Int("w", 0, "number of concurrent jurisdictions")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath == "" {
		*configPath = v.GetString("CONFIG")
	}

	cfg := &Config{
		PortalBaseURL:     v.GetString("PORTAL_BASE_URL"),
		ServerAddress:     v.GetString("SERVER_ADDRESS"),
		FileStoragePath:   v.GetString("FILE_STORAGE_PATH"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		ApplyMigrations:   v.GetBool("PG_MIGRATIONS"),
		RedisURL:          v.GetString("REDIS_URL"),
		CacheTTL:          v.GetDuration("CACHE_TTL"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Region:          v.GetString("S3_REGION"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Prefix:          v.GetString("S3_PREFIX"),
		RequestsPerSecond: v.GetFloat64("REQUESTS_PER_SECOND"),
		RequestBurst:      v.GetInt("REQUEST_BURST"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		Workers:           v.GetInt("WORKERS"),
		UserAgent:         v.GetString("USER_AGENT"),
	}

	// JSON-файл заполняет только то, что не задано в окружении
	if *configPath != "" {
		if err := applyJSON(cfg, *configPath); err != nil {
			return nil, err
		}
	}

	// Флаги имеют высший приоритет
	if *baseURL != "" {
		cfg.PortalBaseURL = *baseURL
	}
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *fileStoragePath != "" {
		cfg.FileStoragePath = *fileStoragePath
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}
	if *redisURL != "" {
		cfg.RedisURL = *redisURL
	}
	if *rps > 0 {
		cfg.RequestsPerSecond = *rps
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	if cfg.DatabaseDSN != "" {
		cfg.Mode = ModeDatabase
	} else {
		cfg.Mode = ModeFile
	}
	cfg.Args = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	type rawJSON Config
	var fileCfg rawJSON
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	fromFile := func(env, val string, target *string) {
		if val != "" && !envSet(env) {
			*target = val
		}
	}
	fromFile("PORTAL_BASE_URL", fileCfg.PortalBaseURL, &cfg.PortalBaseURL)
	fromFile("SERVER_ADDRESS", fileCfg.ServerAddress, &cfg.ServerAddress)
	fromFile("FILE_STORAGE_PATH", fileCfg.FileStoragePath, &cfg.FileStoragePath)
	fromFile("DATABASE_DSN", fileCfg.DatabaseDSN, &cfg.DatabaseDSN)
	fromFile("REDIS_URL", fileCfg.RedisURL, &cfg.RedisURL)
	fromFile("S3_BUCKET", fileCfg.S3Bucket, &cfg.S3Bucket)
	fromFile("S3_REGION", fileCfg.S3Region, &cfg.S3Region)
	fromFile("S3_ENDPOINT", fileCfg.S3Endpoint, &cfg.S3Endpoint)
	fromFile("S3_PREFIX", fileCfg.S3Prefix, &cfg.S3Prefix)
	fromFile("USER_AGENT", fileCfg.UserAgent, &cfg.UserAgent)
	if fileCfg.RequestsPerSecond > 0 && !envSet("REQUESTS_PER_SECOND") {
		cfg.RequestsPerSecond = fileCfg.RequestsPerSecond
	}
	if fileCfg.RequestBurst > 0 && !envSet("REQUEST_BURST") {
		cfg.RequestBurst = fileCfg.RequestBurst
	}
	if fileCfg.Workers > 0 && !envSet("WORKERS") {
		cfg.Workers = fileCfg.Workers
	}
	return nil
}

func envSet(env string) bool {
	_, ok := os.LookupEnv(env)
	return ok
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.PortalBaseURL == "" {
		return fmt.Errorf("portal base URL must not be empty")
	}
	u, err := url.Parse(cfg.PortalBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("portal base URL %q must be an absolute http(s) URL", cfg.PortalBaseURL)
	}
	if cfg.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if cfg.RequestBurst <= 0 {
		return fmt.Errorf("request burst must be positive")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if cfg.Mode == ModeFile && cfg.FileStoragePath == "" {
		return fmt.Errorf("file storage path must not be empty in file mode")
	}
	return nil
}
