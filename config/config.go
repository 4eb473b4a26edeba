package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devJWTSecret = "development-only-secret"

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	// TrustedProxies may set X-Forwarded-For; empty means the socket address is the client
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds database settings. Driver is "postgres" or "sqlite";
// for sqlite, Name is the file path (":memory:" works for local runs).
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the postgres connection URL used by the migrate tool
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig holds Redis settings. URL wins over Host/Port when set.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime"`
}

// StorageConfig holds the recipe image bucket settings
type StorageConfig struct {
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// LLMConfig selects the default provider and holds both provider records
type LLMConfig struct {
	DefaultProvider string         `mapstructure:"default_provider"`
	DeepSeek        ProviderConfig `mapstructure:"deepseek"`
	Gemini          ProviderConfig `mapstructure:"gemini"`
}

// ProviderConfig is the static record for one LLM provider
type ProviderConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Temperature       float64       `mapstructure:"temperature"`
	TopP              float64       `mapstructure:"top_p"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// RateLimitConfig holds per-user generation limits and the per-IP auth limit
type RateLimitConfig struct {
	GenerationsPerHour    int     `mapstructure:"generations_per_hour"`
	ModificationsPerHour  int     `mapstructure:"modifications_per_hour"`
	AuthRequestsPerSecond float64 `mapstructure:"auth_requests_per_second"`
	AuthBurst             int     `mapstructure:"auth_burst"`
}

// LoadConfig reads config.yaml (optional), ALCHEMORSEL_* environment variables and
// Docker secrets, in increasing order of precedence for secrets.
func LoadConfig() (*Config, error) {
	return load("")
}

// LoadConfigFile is LoadConfig with an explicit config file path
func LoadConfigFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/alchemorsel")
	}

	v.SetEnvPrefix("ALCHEMORSEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Environment = GetEnvironment()

	applySecrets(cfg)

	if cfg.Auth.JWTSecret == "" && cfg.Environment.AllowsDevDefaults() {
		cfg.Auth.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8081", "http://localhost:19006"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "alchemorsel")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", "24h")

	v.SetDefault("storage.bucket", "recipe-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.presign_ttl", "1h")
	v.SetDefault("storage.max_upload_bytes", 5<<20)

	v.SetDefault("llm.default_provider", "deepseek")
	v.SetDefault("llm.deepseek.base_url", "https://api.deepseek.com/v1/chat/completions")
	v.SetDefault("llm.deepseek.api_key", "")
	v.SetDefault("llm.deepseek.model", "deepseek-chat")
	v.SetDefault("llm.deepseek.temperature", 0.7)
	v.SetDefault("llm.deepseek.top_p", 0.9)
	v.SetDefault("llm.deepseek.max_tokens", 2048)
	v.SetDefault("llm.deepseek.timeout", "60s")
	v.SetDefault("llm.deepseek.requests_per_minute", 60)
	v.SetDefault("llm.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.gemini.temperature", 0.7)
	v.SetDefault("llm.gemini.top_p", 0.95)
	v.SetDefault("llm.gemini.max_tokens", 2048)
	v.SetDefault("llm.gemini.timeout", "60s")
	v.SetDefault("llm.gemini.requests_per_minute", 60)

	v.SetDefault("rate_limit.generations_per_hour", 20)
	v.SetDefault("rate_limit.modifications_per_hour", 30)
	v.SetDefault("rate_limit.auth_requests_per_second", 1.0)
	v.SetDefault("rate_limit.auth_burst", 5)
}

// applySecrets fills secret fields from Docker secrets when the environment left them empty
func applySecrets(cfg *Config) {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = readSecret(name)
		}
	}
	fill(&cfg.Database.Password, "db_password")
	fill(&cfg.Redis.Password, "redis_password")
	fill(&cfg.Auth.JWTSecret, "jwt_secret")
	fill(&cfg.Storage.SecretAccessKey, "s3_secret_access_key")
	fill(&cfg.LLM.DeepSeek.APIKey, "deepseek_api_key")
	fill(&cfg.LLM.Gemini.APIKey, "gemini_api_key")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
