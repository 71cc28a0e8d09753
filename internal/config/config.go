package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PartyProtect/revive-your-hair-website/pkg/generator"
	"github.com/spf13/viper"
)

const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	S3        S3Config
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	TrustedProxies  []string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type StoreConfig struct {
	Driver  string
	Key     string
	Timeout time.Duration
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	Addr         string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

type AnalyticsConfig struct {
	APIKey        string
	IPHashSalt    string
	RetentionDays int
	SweepSchedule string
}

func (a AnalyticsConfig) Retention() time.Duration {
	return time.Duration(a.RetentionDays) * 24 * time.Hour
}

type RateLimitConfig struct {
	IngestMax     int
	IngestWindow  time.Duration
	StatsMax      int
	StatsWindow   time.Duration
	SweepInterval time.Duration
}

// Load reads .env from the working directory, then the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

func LoadFrom(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: %s not loaded, using environment and default values", envFile)
	}

	redisConfig := RedisConfig{
		Host:         v.GetString("REDIS_HOST"),
		Port:         v.GetString("REDIS_PORT"),
		Password:     v.GetString("REDIS_PASSWORD"),
		DB:           v.GetInt("REDIS_DB"),
		PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
		MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
		MaxRetries:   v.GetInt("REDIS_MAX_RETRIES"),
	}
	redisConfig.Addr = fmt.Sprintf("%s:%s", redisConfig.Host, redisConfig.Port)

	dbConfig := DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetString("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSLMODE"),
		MaxConns:        v.GetInt("DB_MAX_CONNS"),
		MinConns:        v.GetInt("DB_MIN_CONNS"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		MaxConnIdleTime: v.GetDuration("DB_MAX_CONN_IDLE_TIME"),
	}
	dbConfig.URL = v.GetString("DATABASE_URL")
	if dbConfig.URL == "" {
		dbConfig.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User,
			dbConfig.Password,
			dbConfig.Host,
			dbConfig.Port,
			dbConfig.Name,
			dbConfig.SSLMode,
		)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  splitList(v.GetString("ALLOWED_ORIGINS")),
			TrustedProxies:  splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT_PATH"),
			MaxSize:    v.GetInt("LOG_MAX_SIZE"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     v.GetInt("LOG_MAX_AGE"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(v.GetString("STORE_DRIVER")),
			Key:     v.GetString("STORE_KEY"),
			Timeout: v.GetDuration("STORE_TIMEOUT"),
		},
		Redis:    redisConfig,
		Database: dbConfig,
		S3: S3Config{
			Bucket:          v.GetString("S3_BUCKET"),
			Prefix:          v.GetString("S3_PREFIX"),
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    v.GetBool("S3_USE_PATH_STYLE"),
		},
		Analytics: AnalyticsConfig{
			APIKey:        v.GetString("ANALYTICS_API_KEY"),
			IPHashSalt:    v.GetString("IP_HASH_SALT"),
			RetentionDays: v.GetInt("ANALYTICS_RETENTION_DAYS"),
			SweepSchedule: v.GetString("ANALYTICS_SWEEP_SCHEDULE"),
		},
		RateLimit: RateLimitConfig{
			IngestMax:     v.GetInt("RATE_LIMIT_INGEST_MAX"),
			IngestWindow:  v.GetDuration("RATE_LIMIT_INGEST_WINDOW"),
			StatsMax:      v.GetInt("RATE_LIMIT_STATS_MAX"),
			StatsWindow:   v.GetDuration("RATE_LIMIT_STATS_WINDOW"),
			SweepInterval: v.GetDuration("RATE_LIMIT_SWEEP_INTERVAL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT_PATH", "")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE", 28)
	v.SetDefault("LOG_COMPRESS", true)

	v.SetDefault("STORE_DRIVER", DriverRedis)
	v.SetDefault("STORE_KEY", "tracking-data")
	v.SetDefault("STORE_TIMEOUT", "3s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_MAX_RETRIES", 3)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "analytics")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_MAX_CONN_IDLE_TIME", "30m")

	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_PREFIX", "analytics/")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_USE_PATH_STYLE", false)

	v.SetDefault("ANALYTICS_API_KEY", "")
	v.SetDefault("IP_HASH_SALT", "")
	v.SetDefault("ANALYTICS_RETENTION_DAYS", 90)
	v.SetDefault("ANALYTICS_SWEEP_SCHEDULE", "@hourly")

	v.SetDefault("RATE_LIMIT_INGEST_MAX", 120)
	v.SetDefault("RATE_LIMIT_INGEST_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_STATS_MAX", 60)
	v.SetDefault("RATE_LIMIT_STATS_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_SWEEP_INTERVAL", "5m")
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Analytics.APIKey) < generator.MinSecretLength {
		errs = append(errs, fmt.Errorf("ANALYTICS_API_KEY must be at least %d characters", generator.MinSecretLength))
	}
	if len(c.Analytics.IPHashSalt) < generator.MinSecretLength {
		errs = append(errs, fmt.Errorf("IP_HASH_SALT must be at least %d characters", generator.MinSecretLength))
	}
	if c.Analytics.RetentionDays <= 0 {
		errs = append(errs, errors.New("ANALYTICS_RETENTION_DAYS must be positive"))
	}

	switch c.Store.Driver {
	case DriverRedis, DriverPostgres:
	case DriverS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 store driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	if c.Store.Key == "" {
		errs = append(errs, errors.New("STORE_KEY must not be empty"))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}

	if c.RateLimit.IngestMax <= 0 || c.RateLimit.IngestWindow <= 0 {
		errs = append(errs, errors.New("ingest rate limit must be positive"))
	}
	if c.RateLimit.StatsMax <= 0 || c.RateLimit.StatsWindow <= 0 {
		errs = append(errs, errors.New("stats rate limit must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
