package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/yungbote/skilltree-backend/internal/data/db"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/platform/redis"
)

type Config struct {
	Port    int    `env:"PORT" envDefault:"8080"`
	LogMode string `env:"LOG_MODE" envDefault:"development"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"skilltree"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"skilltree.db"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	ResearchCacheTTL time.Duration `env:"RESEARCH_CACHE_TTL" envDefault:"6h"`

	JWTSecretKey   string `env:"JWT_SECRET_KEY"`
	CredentialsKey string `env:"CREDENTIALS_KEY"`

	GenerationTimeout   time.Duration `env:"GENERATION_TIMEOUT" envDefault:"120s"`
	ResearchHTTPTimeout time.Duration `env:"RESEARCH_HTTP_TIMEOUT" envDefault:"20s"`
	AIHTTPTimeout       time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"90s"`
	AIMaxRetries        int           `env:"AI_MAX_RETRIES" envDefault:"2"`
	AgentConfigFile     string        `env:"AGENT_CONFIG_FILE"`
	DefaultAgentType    string        `env:"DEFAULT_AGENT_TYPE" envDefault:"GEMINI"`

	// Upstream overrides, mostly for local stubs.
	ArxivBaseURL     string `env:"ARXIV_BASE_URL"`
	WikipediaBaseURL string `env:"WIKIPEDIA_BASE_URL"`
	WebSearchBaseURL string `env:"WEB_SEARCH_BASE_URL"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:","`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"true"`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"skilltree"`
	OtelEnvironment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelVersion     string  `env:"OTEL_SERVICE_VERSION"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env", "error", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is empty; every /api request will be rejected")
	}
	if cfg.CredentialsKey == "" {
		log.Warn("CREDENTIALS_KEY is empty; agent credentials are stored in plaintext")
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	switch strings.ToLower(c.DBDriver) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, ok := types.ParseAgentType(c.DefaultAgentType); !ok {
		return fmt.Errorf("unknown DEFAULT_AGENT_TYPE %q", c.DefaultAgentType)
	}
	return nil
}

func (c Config) Address() string { return fmt.Sprintf(":%d", c.Port) }

func (c Config) DefaultAgent() types.AgentType {
	t, _ := types.ParseAgentType(c.DefaultAgentType)
	return t
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:      strings.ToLower(c.DBDriver),
		PostgresDSN: db.PostgresDSN(c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresName),
		SQLitePath:  c.SQLitePath,
	}
}

func (c Config) Redis() redis.Config {
	return redis.Config{Addr: strings.TrimSpace(c.RedisAddr), Password: c.RedisPassword, DB: c.RedisDB}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Version:     c.OtelVersion,
		SampleRatio: c.OtelSampleRatio,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
	}
}
