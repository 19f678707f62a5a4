package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tair/stock-ledger/pkg/database"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the full runtime configuration of the ledger service
type Config struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	HTTP struct {
		Port       string        `yaml:"port"`
		Timeout    time.Duration `yaml:"timeout"`
		RateLimit  int           `yaml:"rate_limit"`
		RateWindow time.Duration `yaml:"rate_window"`
	} `yaml:"http"`

	GRPC struct {
		Port string `yaml:"port"`
	} `yaml:"grpc"`

	Storage struct {
		Driver string `yaml:"driver"`
	} `yaml:"storage"`

	Database database.Config `yaml:"database"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers         []string `yaml:"brokers"`
		GroupID         string   `yaml:"group_id"`
		ConsumerEnabled bool     `yaml:"consumer_enabled"`
	} `yaml:"kafka"`

	Auth struct {
		JWTSecret     string        `yaml:"jwt_secret"`
		TokenTTL      time.Duration `yaml:"token_ttl"`
		AdminUsername string        `yaml:"admin_username"`
		AdminPassword string        `yaml:"admin_password"`
	} `yaml:"auth"`

	Reports struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"reports"`

	Tracing struct {
		Enabled        bool   `yaml:"enabled"`
		JaegerEndpoint string `yaml:"jaeger_endpoint"`
	} `yaml:"tracing"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg := &Config{
		ServiceName: "stock-ledger",
		Environment: "development",
		LogLevel:    "info",
	}
	cfg.HTTP.Port = "8080"
	cfg.HTTP.Timeout = 30 * time.Second
	cfg.HTTP.RateLimit = 100
	cfg.HTTP.RateWindow = time.Minute
	cfg.GRPC.Port = "9090"
	cfg.Storage.Driver = StoragePostgres
	cfg.Database = database.Config{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		DBName:   "ledgerdb",
		SSLMode:  "disable",
	}
	cfg.Redis.CacheTTL = 5 * time.Minute
	cfg.Kafka.GroupID = "stock-ledger"
	cfg.Auth.TokenTTL = 12 * time.Hour
	cfg.Reports.Timezone = "Local"
	cfg.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	return cfg
}

// Load builds the configuration from defaults, the optional YAML file named by
// LEDGER_CONFIG, then environment variables, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.HTTP.Port = getEnv("HTTP_PORT", c.HTTP.Port)
	c.GRPC.Port = getEnv("GRPC_PORT", c.GRPC.Port)
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	c.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", c.Kafka.GroupID)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.AdminUsername = getEnv("LEDGER_ADMIN_USERNAME", c.Auth.AdminUsername)
	c.Auth.AdminPassword = getEnv("LEDGER_ADMIN_PASSWORD", c.Auth.AdminPassword)

	c.Reports.Timezone = getEnv("REPORT_TIMEZONE", c.Reports.Timezone)
	c.Tracing.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", c.Tracing.JaegerEndpoint)

	var err error
	if c.HTTP.Timeout, err = getDuration("HTTP_TIMEOUT", c.HTTP.Timeout); err != nil {
		return err
	}
	if c.HTTP.RateWindow, err = getDuration("RATE_LIMIT_WINDOW", c.HTTP.RateWindow); err != nil {
		return err
	}
	if c.HTTP.RateLimit, err = getInt("RATE_LIMIT", c.HTTP.RateLimit); err != nil {
		return err
	}
	if c.Redis.CacheTTL, err = getDuration("CACHE_TTL", c.Redis.CacheTTL); err != nil {
		return err
	}
	if c.Auth.TokenTTL, err = getDuration("JWT_TTL", c.Auth.TokenTTL); err != nil {
		return err
	}
	if c.Redis.DB, err = getInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Kafka.ConsumerEnabled, err = getBool("KAFKA_CONSUMER_ENABLED", c.Kafka.ConsumerEnabled); err != nil {
		return err
	}
	if c.Tracing.Enabled, err = getBool("TRACING_ENABLED", c.Tracing.Enabled); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateWindow <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.Storage.Driver != StoragePostgres && c.Storage.Driver != StorageMemory {
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("unknown report timezone %q", c.Reports.Timezone))
	}
	for name, port := range map[string]string{"http": c.HTTP.Port, "grpc": c.GRPC.Port} {
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			errs = append(errs, fmt.Errorf("invalid %s port %q", name, port))
		}
	}
	if c.Kafka.ConsumerEnabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka consumer needs at least one broker"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Location resolves the report timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Reports.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
