package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	S3         S3Config
	Batching   BatchingConfig
	Queue      QueueConfig
	Extraction ExtractionConfig
	TaskCtx    TaskCtxConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis settings shared by the dispatch queue and the task
// context store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// S3Config holds AWS S3 settings for vendor document storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// BatchingConfig holds batching engine and scheduler settings.
type BatchingConfig struct {
	MaxBatchSize    int           `mapstructure:"max_batch_size"`
	MinReadyVendors int           `mapstructure:"min_ready_vendors"`
	Cadence         string        `mapstructure:"cadence"`
	StaleAfter      time.Duration `mapstructure:"stale_after"`
	SweepCadence    string        `mapstructure:"sweep_cadence"`
}

// QueueConfig holds dispatch queue and submission worker settings.
type QueueConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	JobTimeout     time.Duration `mapstructure:"job_timeout"`
	SchedulerRetry int           `mapstructure:"scheduler_retry"`
}

// ExtractionConfig holds settings for the external extraction service.
type ExtractionConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	CallbackBaseURL string        `mapstructure:"callback_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// TaskCtxConfig holds task context store settings.
type TaskCtxConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from environment variables with the VENDEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VENDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "vendex")
	v.SetDefault("db.password", "vendex_secret")
	v.SetDefault("db.name", "vendex_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "vendex-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Batching defaults
	v.SetDefault("batching.max_batch_size", 10)
	v.SetDefault("batching.min_ready_vendors", 1)
	v.SetDefault("batching.cadence", "*/5 * * * *")
	v.SetDefault("batching.stale_after", "30m")
	v.SetDefault("batching.sweep_cadence", "*/15 * * * *")

	// Queue defaults. Concurrency matches the extraction service's rate
	// ceiling of 50 concurrent batch jobs.
	v.SetDefault("queue.concurrency", 50)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.rate_limit", 100)
	v.SetDefault("queue.rate_window", "1m")
	v.SetDefault("queue.job_timeout", "10m")
	v.SetDefault("queue.scheduler_retry", 3)

	// Extraction service defaults
	v.SetDefault("extraction.base_url", "http://localhost:8000")
	v.SetDefault("extraction.callback_base_url", "http://localhost:8080")
	v.SetDefault("extraction.timeout", "60s")

	// Task context defaults
	v.SetDefault("taskctx.ttl", "2h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "VENDEX_SERVER_PORT",
		"server.read_timeout":          "VENDEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "VENDEX_SERVER_WRITE_TIMEOUT",
		"server.environment":           "VENDEX_SERVER_ENVIRONMENT",
		"db.host":                      "VENDEX_DB_HOST",
		"db.port":                      "VENDEX_DB_PORT",
		"db.user":                      "VENDEX_DB_USER",
		"db.password":                  "VENDEX_DB_PASSWORD",
		"db.name":                      "VENDEX_DB_NAME",
		"db.sslmode":                   "VENDEX_DB_SSLMODE",
		"db.max_open":                  "VENDEX_DB_MAX_OPEN",
		"db.max_idle":                  "VENDEX_DB_MAX_IDLE",
		"redis.addr":                   "VENDEX_REDIS_ADDR",
		"redis.password":               "VENDEX_REDIS_PASSWORD",
		"redis.db":                     "VENDEX_REDIS_DB",
		"s3.region":                    "VENDEX_S3_REGION",
		"s3.bucket":                    "VENDEX_S3_BUCKET",
		"s3.endpoint":                  "VENDEX_S3_ENDPOINT",
		"s3.access_key":                "VENDEX_S3_ACCESS_KEY",
		"s3.secret_key":                "VENDEX_S3_SECRET_KEY",
		"s3.presign_expiry":            "VENDEX_S3_PRESIGN_EXPIRY",
		"batching.max_batch_size":      "VENDEX_BATCHING_MAX_BATCH_SIZE",
		"batching.min_ready_vendors":   "VENDEX_BATCHING_MIN_READY_VENDORS",
		"batching.cadence":             "VENDEX_BATCHING_CADENCE",
		"batching.stale_after":         "VENDEX_BATCHING_STALE_AFTER",
		"batching.sweep_cadence":       "VENDEX_BATCHING_SWEEP_CADENCE",
		"queue.concurrency":            "VENDEX_QUEUE_CONCURRENCY",
		"queue.max_retries":            "VENDEX_QUEUE_MAX_RETRIES",
		"queue.rate_limit":             "VENDEX_QUEUE_RATE_LIMIT",
		"queue.rate_window":            "VENDEX_QUEUE_RATE_WINDOW",
		"queue.job_timeout":            "VENDEX_QUEUE_JOB_TIMEOUT",
		"queue.scheduler_retry":        "VENDEX_QUEUE_SCHEDULER_RETRY",
		"extraction.base_url":          "VENDEX_EXTRACTION_BASE_URL",
		"extraction.callback_base_url": "VENDEX_EXTRACTION_CALLBACK_BASE_URL",
		"extraction.timeout":           "VENDEX_EXTRACTION_TIMEOUT",
		"taskctx.ttl":                  "VENDEX_TASKCTX_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if VENDEX_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VENDEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Batching = BatchingConfig{
		MaxBatchSize:    v.GetInt("batching.max_batch_size"),
		MinReadyVendors: v.GetInt("batching.min_ready_vendors"),
		Cadence:         v.GetString("batching.cadence"),
		StaleAfter:      v.GetDuration("batching.stale_after"),
		SweepCadence:    v.GetString("batching.sweep_cadence"),
	}
	cfg.Queue = QueueConfig{
		Concurrency:    v.GetInt("queue.concurrency"),
		MaxRetries:     v.GetInt("queue.max_retries"),
		RateLimit:      v.GetInt("queue.rate_limit"),
		RateWindow:     v.GetDuration("queue.rate_window"),
		JobTimeout:     v.GetDuration("queue.job_timeout"),
		SchedulerRetry: v.GetInt("queue.scheduler_retry"),
	}
	cfg.Extraction = ExtractionConfig{
		BaseURL:         v.GetString("extraction.base_url"),
		CallbackBaseURL: v.GetString("extraction.callback_base_url"),
		Timeout:         v.GetDuration("extraction.timeout"),
	}
	cfg.TaskCtx = TaskCtxConfig{
		TTL: v.GetDuration("taskctx.ttl"),
	}

	return cfg, nil
}
