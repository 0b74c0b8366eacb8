package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	API       APIConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// URL, when set, takes precedence over the discrete connection fields.
	URL                string
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Per client IP
	RequestsPerSecond float64
	BurstSize         int
}

type APIConfig struct {
	Prefix string
	// MaxPageSize caps the limit query parameter on list endpoints.
	MaxPageSize int
}

// Load reads configuration from the environment. envFile, when non-empty,
// names a dotenv file whose values are used for keys the environment lacks;
// a missing file is not an error.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
		},
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:                v.GetString("DATABASE_URL"),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetInt("DB_PORT"),
			Name:               v.GetString("DB_NAME"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime:    v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT"),
		},
		Tracing: TracingConfig{
			Enabled:      v.GetBool("TRACING_ENABLED"),
			ServiceName:  v.GetString("TRACING_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTLP_ENDPOINT"),
			SampleRate:   v.GetFloat64("TRACING_SAMPLE_RATE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getSlice(v, "CORS_ALLOWED_ORIGINS"),
			AllowedMethods: getSlice(v, "CORS_ALLOWED_METHODS"),
			AllowedHeaders: getSlice(v, "CORS_ALLOWED_HEADERS"),
			MaxAge:         v.GetDuration("CORS_MAX_AGE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			BurstSize:         v.GetInt("RATE_LIMIT_BURST"),
		},
		API: APIConfig{
			Prefix:      v.GetString("API_PREFIX"),
			MaxPageSize: v.GetInt("API_MAX_PAGE_SIZE"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"APP_NAME":    "VitalApp Backend",
		"APP_ENV":     "development",
		"APP_VERSION": "1.0.0",

		"SERVER_HOST":             "0.0.0.0",
		"SERVER_PORT":             8000,
		"SERVER_READ_TIMEOUT":     15 * time.Second,
		"SERVER_WRITE_TIMEOUT":    15 * time.Second,
		"SERVER_IDLE_TIMEOUT":     60 * time.Second,
		"SERVER_SHUTDOWN_TIMEOUT": 30 * time.Second,

		"DATABASE_URL":            "",
		"DB_HOST":                 "localhost",
		"DB_PORT":                 5432,
		"DB_NAME":                 "vitalapp",
		"DB_USER":                 "vitalapp",
		"DB_PASSWORD":             "",
		"DB_SSLMODE":              "disable",
		"DB_MAX_OPEN_CONNS":       25,
		"DB_MAX_IDLE_CONNS":       10,
		"DB_CONN_MAX_LIFETIME":    30 * time.Minute,
		"DB_CONN_MAX_IDLE_TIME":   5 * time.Minute,
		"DB_SLOW_QUERY_THRESHOLD": 200 * time.Millisecond,

		"LOG_LEVEL":  "info",
		"LOG_FORMAT": "json",
		"LOG_OUTPUT": "stdout",

		"TRACING_ENABLED":      false,
		"TRACING_SERVICE_NAME": "vitalapp-api",
		"OTLP_ENDPOINT":        "localhost:4318",
		"TRACING_SAMPLE_RATE":  0.1,

		"CORS_ALLOWED_ORIGINS": "*",
		"CORS_ALLOWED_METHODS": "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		"CORS_ALLOWED_HEADERS": "Authorization,Content-Type,X-Request-ID",
		"CORS_MAX_AGE":         12 * time.Hour,

		"RATE_LIMIT_RPS":   100.0,
		"RATE_LIMIT_BURST": 200,

		"API_PREFIX":        "/api/v1",
		"API_MAX_PAGE_SIZE": 1000,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// validate rejects configurations the server must not start with.
func validate(cfg *Config) error {
	var errs []string

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not a valid level", cfg.Log.Level))
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}

	if cfg.Database.URL == "" && cfg.Database.Password == "" && !cfg.App.IsDevelopment() {
		errs = append(errs, "DB_PASSWORD or DATABASE_URL is required in non-development environments")
	}

	if cfg.Database.URL == "" && cfg.Database.SSLMode == "disable" && cfg.App.IsProduction() {
		errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
	}

	if cfg.API.MaxPageSize <= 0 {
		errs = append(errs, "API_MAX_PAGE_SIZE must be positive")
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = append(errs, "TRACING_SAMPLE_RATE must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getSlice(v *viper.Viper, key string) []string {
	parts := strings.Split(v.GetString(key), ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			result = append(result, t)
		}
	}
	return result
}
