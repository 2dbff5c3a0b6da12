// Package config holds the typed settings of every binary: the served variant
// and its artifact store, the embedding endpoint, the optional Postgres,
// Redis and Kafka dependencies, plus logging, tracing and metrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
}

// EngineConfig selects the dataset/variant pair served by the process and
// where its artifacts live.
type EngineConfig struct {
	Variant      string `yaml:"variant"`
	VariantsFile string `yaml:"variantsFile"`
	ArtifactsDir string `yaml:"artifactsDir"`
	// Backend is "fs" or "badger".
	Backend    string `yaml:"backend"`
	BadgerPath string `yaml:"badgerPath"`
	// CorpusSource is "jsonl" or "postgres".
	CorpusSource string `yaml:"corpusSource"`
	CorpusPath   string `yaml:"corpusPath"`
	TopK         int    `yaml:"topK"`
	SummaryLimit int    `yaml:"summaryLimit"`
	Workers      int    `yaml:"workers"`
}

// EmbedderConfig points at an OpenAI-compatible embeddings endpoint.
type EmbedderConfig struct {
	BaseURL          string        `yaml:"baseUrl"`
	Token            string        `yaml:"token"`
	Models           ModelNames    `yaml:"models"`
	BatchSize        int           `yaml:"batchSize"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// ModelNames maps an embedding family used in variant names to the model
// identifier sent to the endpoint.
type ModelNames map[string]string

// Resolve returns the endpoint model name for family, falling back to the
// family name itself.
func (m ModelNames) Resolve(family string) string {
	if name, ok := m[family]; ok && name != "" {
		return name
	}
	return family
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SearchEvents string `yaml:"searchEvents"`
}

// RedisConfig holds Redis connection and caching parameters. An empty Addr
// disables the result cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// AnalyticsConfig controls search event publishing and the aggregator.
type AnalyticsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Port          int           `yaml:"port"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
	TopQueries    int           `yaml:"topQueries"`
}

// LoggingConfig: level is debug|info|warn|error, format is json|text.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls stage span logging.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate float64 `yaml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load layers an optional YAML file and then SP_* environment variables over
// the built-in defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Engine.Backend {
	case "fs", "badger":
	default:
		return fmt.Errorf("engine.backend must be fs or badger, got %q", c.Engine.Backend)
	}
	switch c.Engine.CorpusSource {
	case "jsonl", "postgres":
	default:
		return fmt.Errorf("engine.corpusSource must be jsonl or postgres, got %q", c.Engine.CorpusSource)
	}
	if c.Engine.TopK <= 0 {
		return fmt.Errorf("engine.topK must be positive, got %d", c.Engine.TopK)
	}
	if c.Engine.SummaryLimit <= 0 {
		return fmt.Errorf("engine.summaryLimit must be positive, got %d", c.Engine.SummaryLimit)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Engine: EngineConfig{
			Variant:      "arxiv-lemm-single-tfidf",
			ArtifactsDir: "data/artifacts",
			Backend:      "fs",
			BadgerPath:   "data/badger",
			CorpusSource: "jsonl",
			CorpusPath:   "data/corpus",
			TopK:         10,
			SummaryLimit: 50,
			Workers:      8,
		},
		Embedder: EmbedderConfig{
			BaseURL: "http://localhost:8000/v1",
			Token:   "none",
			Models: ModelNames{
				"jina":            "jinaai/jina-embeddings-v2-base-en",
				"bert":            "sentence-transformers/all-MiniLM-L6-v2",
				"glove":           "glove-6b-300d",
				"glove-retrained": "glove-retrained-300d",
			},
			BatchSize:        64,
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "abstracts",
			User:            "abstracts",
			Password:        "localdev",
			SSLMode:         "disable",
			Table:           "documents",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "abstract-search-analytics",
			Topics: KafkaTopics{
				SearchEvents: "search-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			Enabled:       false,
			Port:          8083,
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
			TopQueries:    20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			SampleRate: 1.0,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// envBinding ties one SP_* variable to the field it overrides.
type envBinding struct {
	key string
	set func(c *Config, v string) error
}

func str(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func integer(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

var envBindings = []envBinding{
	{"SP_SERVER_PORT", integer(func(c *Config) *int { return &c.Server.Port })},
	{"SP_ENGINE_VARIANT", str(func(c *Config) *string { return &c.Engine.Variant })},
	{"SP_ENGINE_VARIANTS_FILE", str(func(c *Config) *string { return &c.Engine.VariantsFile })},
	{"SP_ENGINE_ARTIFACTS_DIR", str(func(c *Config) *string { return &c.Engine.ArtifactsDir })},
	{"SP_ENGINE_BACKEND", str(func(c *Config) *string { return &c.Engine.Backend })},
	{"SP_ENGINE_BADGER_PATH", str(func(c *Config) *string { return &c.Engine.BadgerPath })},
	{"SP_ENGINE_CORPUS_SOURCE", str(func(c *Config) *string { return &c.Engine.CorpusSource })},
	{"SP_ENGINE_CORPUS_PATH", str(func(c *Config) *string { return &c.Engine.CorpusPath })},
	{"SP_ENGINE_TOP_K", integer(func(c *Config) *int { return &c.Engine.TopK })},
	{"SP_ENGINE_WORKERS", integer(func(c *Config) *int { return &c.Engine.Workers })},
	{"SP_EMBEDDER_BASE_URL", str(func(c *Config) *string { return &c.Embedder.BaseURL })},
	{"SP_EMBEDDER_TOKEN", str(func(c *Config) *string { return &c.Embedder.Token })},
	{"SP_POSTGRES_HOST", str(func(c *Config) *string { return &c.Postgres.Host })},
	{"SP_POSTGRES_PORT", integer(func(c *Config) *int { return &c.Postgres.Port })},
	{"SP_POSTGRES_DATABASE", str(func(c *Config) *string { return &c.Postgres.Database })},
	{"SP_POSTGRES_USER", str(func(c *Config) *string { return &c.Postgres.User })},
	{"SP_POSTGRES_PASSWORD", str(func(c *Config) *string { return &c.Postgres.Password })},
	{"SP_POSTGRES_SSLMODE", str(func(c *Config) *string { return &c.Postgres.SSLMode })},
	{"SP_POSTGRES_TABLE", str(func(c *Config) *string { return &c.Postgres.Table })},
	{"SP_KAFKA_BROKERS", func(c *Config, v string) error {
		c.Kafka.Brokers = strings.Split(v, ",")
		return nil
	}},
	{"SP_REDIS_ADDR", str(func(c *Config) *string { return &c.Redis.Addr })},
	{"SP_REDIS_PASSWORD", str(func(c *Config) *string { return &c.Redis.Password })},
	{"SP_ANALYTICS_ENABLED", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Analytics.Enabled = b
		return nil
	}},
	{"SP_LOGGING_LEVEL", str(func(c *Config) *string { return &c.Logging.Level })},
	{"SP_LOGGING_FORMAT", str(func(c *Config) *string { return &c.Logging.Format })},
}

// applyEnvOverrides copies set SP_* variables over cfg. A value that does not
// parse is reported rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	for _, b := range envBindings {
		v, ok := os.LookupEnv(b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%s=%q: %w", b.key, v, err)
		}
	}
	return nil
}
