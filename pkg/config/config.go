// Package config loads and validates the keyphrase engine configuration from
// YAML files, an optional .env file and KP_* environment overrides. It
// provides typed structs for the extraction core (Extraction, TextRank,
// Corpus) and for the surrounding infrastructure (Redis, Kafka, Postgres,
// Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	TextRank   TextRankConfig   `yaml:"textrank"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Sink       SinkConfig       `yaml:"sink"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ExtractionConfig holds the parameters shared by both scorers.
type ExtractionConfig struct {
	MaxN                int      `yaml:"maxN"`
	TopK                int      `yaml:"topK"`
	RedundancyRemoval   bool     `yaml:"redundancyRemoval"`
	RedundancyThreshold float64  `yaml:"redundancyThreshold"`
	FilterStopwords     bool     `yaml:"filterStopwords"`
	Normalization       string   `yaml:"normalization"`
	Languages           []string `yaml:"languages"`
	AbstractBudget      int      `yaml:"abstractBudget"`
}

// TextRankConfig controls graph construction and the centrality iteration.
type TextRankConfig struct {
	Window        int      `yaml:"window"`
	POS           []string `yaml:"pos"`
	Top           float64  `yaml:"top"`
	Damping       float64  `yaml:"damping"`
	MaxIterations int      `yaml:"maxIterations"`
	Tolerance     float64  `yaml:"tolerance"`
	Normalization string   `yaml:"normalization"`
}

// CorpusConfig locates document-frequency files and controls how they are
// built.
type CorpusConfig struct {
	ModelDir      string `yaml:"modelDir"`
	MaxN          int    `yaml:"maxN"`
	Partitions    int    `yaml:"partitions"`
	Normalization string `yaml:"normalization"`
	Stopwords     bool   `yaml:"stopwords"`
}

// CacheConfig toggles the Redis-backed keyphrase result cache.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings for the streaming worker.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	Documents  string `yaml:"documents"`
	Keyphrases string `yaml:"keyphrases"`
}

// PostgresConfig holds PostgreSQL connection parameters for the result sink.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
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

// SinkConfig selects where results go besides the CSV file.
type SinkConfig struct {
	Postgres      bool          `yaml:"postgres"`
	Kafka         bool          `yaml:"kafka"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
	WriteTimeout  time.Duration `yaml:"writeTimeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a .env file and a YAML config file (both optional) and applies
// environment-variable overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is supplied. The
// extraction values follow the original batch scripts: n=3, k=30, TextRank
// over nouns, proper nouns and adjectives with a window of 3.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MaxN:                3,
			TopK:                30,
			RedundancyRemoval:   false,
			RedundancyThreshold: 0,
			FilterStopwords:     true,
			Normalization:       "stemming",
			AbstractBudget:      100,
		},
		TextRank: TextRankConfig{
			Window:        3,
			POS:           []string{"NOUN", "PROPN", "ADJ"},
			Top:           0.33,
			Damping:       0.85,
			MaxIterations: 100,
			Tolerance:     1e-4,
			Normalization: "lowercase",
		},
		Corpus: CorpusConfig{
			ModelDir:      "tfidf",
			MaxN:          3,
			Partitions:    4,
			Normalization: "stemming",
			Stopwords:     false,
		},
		Cache: CacheConfig{
			Enabled:          false,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "keyphrase-extractor",
			Topics: KafkaTopics{
				Documents:  "patent-documents",
				Keyphrases: "patent-keyphrases",
			},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "keyphrases",
			User:            "keyphrases",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Sink: SinkConfig{
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
			WriteTimeout:  10 * time.Second,
			RetryAttempts: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Extraction.MaxN < 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "extraction.maxN must be >= 1, got %d", c.Extraction.MaxN)
	case c.Extraction.TopK < 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "extraction.topK must be >= 1, got %d", c.Extraction.TopK)
	case c.Extraction.RedundancyThreshold < 0 || c.Extraction.RedundancyThreshold >= 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "extraction.redundancyThreshold must be in [0, 1), got %g", c.Extraction.RedundancyThreshold)
	case c.Extraction.AbstractBudget < 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "extraction.abstractBudget must be >= 1, got %d", c.Extraction.AbstractBudget)
	case c.Corpus.MaxN < 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "corpus.maxN must be >= 1, got %d", c.Corpus.MaxN)
	case c.Corpus.Partitions < 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "corpus.partitions must be >= 1, got %d", c.Corpus.Partitions)
	case c.TextRank.Window < 2:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "textrank.window must be >= 2, got %d", c.TextRank.Window)
	case c.TextRank.Top <= 0 || c.TextRank.Top > 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "textrank.top must be in (0, 1], got %g", c.TextRank.Top)
	case c.TextRank.Damping <= 0 || c.TextRank.Damping >= 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "textrank.damping must be in (0, 1), got %g", c.TextRank.Damping)
	case c.TextRank.MaxIterations < 1:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "textrank.maxIterations must be >= 1, got %d", c.TextRank.MaxIterations)
	case c.TextRank.Tolerance <= 0:
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, "textrank.tolerance must be > 0, got %g", c.TextRank.Tolerance)
	}
	return nil
}

// applyEnvOverrides reads KP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v, ok := envInt("KP_EXTRACTION_MAX_N"); ok {
		cfg.Extraction.MaxN = v
	}
	if v, ok := envInt("KP_EXTRACTION_TOP_K"); ok {
		cfg.Extraction.TopK = v
	}
	if v, ok := envBool("KP_EXTRACTION_REDUNDANCY_REMOVAL"); ok {
		cfg.Extraction.RedundancyRemoval = v
	}
	if v := os.Getenv("KP_EXTRACTION_NORMALIZATION"); v != "" {
		cfg.Extraction.Normalization = v
	}
	if v := os.Getenv("KP_EXTRACTION_LANGUAGES"); v != "" {
		cfg.Extraction.Languages = strings.Split(v, ",")
	}
	if v, ok := envInt("KP_TEXTRANK_WINDOW"); ok {
		cfg.TextRank.Window = v
	}
	if v := os.Getenv("KP_TEXTRANK_POS"); v != "" {
		cfg.TextRank.POS = strings.Split(v, ",")
	}
	if v, ok := envFloat("KP_TEXTRANK_TOP"); ok {
		cfg.TextRank.Top = v
	}
	if v := os.Getenv("KP_CORPUS_MODEL_DIR"); v != "" {
		cfg.Corpus.ModelDir = v
	}
	if v, ok := envInt("KP_CORPUS_PARTITIONS"); ok {
		cfg.Corpus.Partitions = v
	}
	if v, ok := envBool("KP_CACHE_ENABLED"); ok {
		cfg.Cache.Enabled = v
	}
	if v := os.Getenv("KP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KP_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v, ok := envInt("KP_POSTGRES_PORT"); ok {
		cfg.Postgres.Port = v
	}
	if v := os.Getenv("KP_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("KP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("KP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := envBool("KP_METRICS_ENABLED"); ok {
		cfg.Metrics.Enabled = v
	}
	if v, ok := envInt("KP_METRICS_PORT"); ok {
		cfg.Metrics.Port = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
