package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Environment   string
	Name          string
	Version       string
	Timezone      string
	LogLevel      string
	MigrationsDir string
	HTTP          HTTPConfig
	Store         StoreConfig
	Postgres      PostgresConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	JWT           JWTConfig
	S3            S3Config
	RateLimit     RateLimitConfig

	location *time.Location
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxHeaderMB  int
}

type StoreConfig struct {
	Driver string
}

type PostgresConfig struct {
	Host               string
	Port               string
	Username           string
	Password           string
	DBName             string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	MaxLifetime        time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig with an empty Addr disables the directory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	SigningKey     string
	AccessTokenTTL time.Duration
}

// S3Config with an empty Endpoint disables object storage.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	PresignTTL      time.Duration
}

type RateLimitConfig struct {
	BookingRPS   float64
	BookingBurst int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "medslot")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("HTTP_READ_TIMEOUT", "10s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "10s")
	v.SetDefault("HTTP_MAX_HEADER_MB", 1)

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "medslot")
	v.SetDefault("POSTGRES_SSL_MODE", "disable")
	v.SetDefault("POSTGRES_MAX_CONNECTIONS", 10)
	v.SetDefault("POSTGRES_MAX_IDLE_CONNECTIONS", 5)
	v.SetDefault("POSTGRES_MAX_LIFETIME", "5m")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "medslot")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CACHE_TTL", "5m")

	v.SetDefault("JWT_SIGNING_KEY", "your_secret_key")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "15m")

	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "medslot")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_PRESIGN_TTL", "15m")

	v.SetDefault("RATE_LIMIT_BOOKING_RPS", 5)
	v.SetDefault("RATE_LIMIT_BOOKING_BURST", 10)
}

// NewConfig reads an optional .env file and then the process environment.
// Environment variables win over .env values.
func NewConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment:   v.GetString("APP_ENV"),
		Name:          v.GetString("APP_NAME"),
		Version:       v.GetString("APP_VERSION"),
		Timezone:      v.GetString("APP_TIMEZONE"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
		HTTP: HTTPConfig{
			Port:         v.GetString("HTTP_PORT"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
			MaxHeaderMB:  v.GetInt("HTTP_MAX_HEADER_MB"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Postgres: PostgresConfig{
			Host:               v.GetString("POSTGRES_HOST"),
			Port:               v.GetString("POSTGRES_PORT"),
			Username:           v.GetString("POSTGRES_USER"),
			Password:           v.GetString("POSTGRES_PASSWORD"),
			DBName:             v.GetString("POSTGRES_DB"),
			SSLMode:            v.GetString("POSTGRES_SSL_MODE"),
			MaxConnections:     v.GetInt("POSTGRES_MAX_CONNECTIONS"),
			MaxIdleConnections: v.GetInt("POSTGRES_MAX_IDLE_CONNECTIONS"),
			MaxLifetime:        v.GetDuration("POSTGRES_MAX_LIFETIME"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("MONGO_URI"),
			Database:       v.GetString("MONGO_DATABASE"),
			ConnectTimeout: v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("REDIS_CACHE_TTL"),
		},
		JWT: JWTConfig{
			SigningKey:     v.GetString("JWT_SIGNING_KEY"),
			AccessTokenTTL: v.GetDuration("JWT_ACCESS_TOKEN_TTL"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("S3_ENDPOINT"),
			Region:          v.GetString("S3_REGION"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			Bucket:          v.GetString("S3_BUCKET"),
			UseSSL:          v.GetBool("S3_USE_SSL"),
			PresignTTL:      v.GetDuration("S3_PRESIGN_TTL"),
		},
		RateLimit: RateLimitConfig{
			BookingRPS:   v.GetFloat64("RATE_LIMIT_BOOKING_RPS"),
			BookingBurst: v.GetInt("RATE_LIMIT_BOOKING_BURST"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		return fmt.Errorf("неизвестный драйвер хранилища %q", c.Store.Driver)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("некорректный часовой пояс %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.JWT.SigningKey == "" {
		return fmt.Errorf("не задан JWT_SIGNING_KEY")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL должен быть положительным")
	}
	if c.RateLimit.BookingRPS <= 0 || c.RateLimit.BookingBurst <= 0 {
		return fmt.Errorf("параметры ограничения частоты бронирований должны быть положительными")
	}

	return nil
}

// Location is the zone that defines calendar days for search.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
