package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Storage  StorageConfig
	Vision   VisionConfig
	Pipeline PipelineConfig
	Secrets  SecretsConfig
	Tracing  TracingConfig
}

// TracingConfig holds the OTLP trace export settings
type TracingConfig struct {
	Enabled     bool
	Endpoint    string // host:port of the OTLP gRPC collector
	SampleRatio float64
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

// NATSConfig holds the claim submission event subscription settings
type NATSConfig struct {
	URL     string
	Subject string
	Queue   string
	Enabled bool
}

// StorageConfig holds the claim image bucket settings
type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string // For S3-compatible storage (MinIO, Supabase, etc.)
	AccessKey string
	SecretKey string
	BaseURL   string // Public URL prefix the claim image URLs are issued under
}

// VisionConfig holds the damage-assessment model settings
type VisionConfig struct {
	Provider  string // "openai" (OpenAI-compatible, Gemini by default) or "anthropic"
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	// TimeoutSeconds bounds a single model call
	TimeoutSeconds int

	BreakerIntervalSeconds  int
	BreakerTimeoutSeconds   int
	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	RetryMaxAttempts        int
}

// PipelineConfig holds claim pipeline bounds
type PipelineConfig struct {
	TimeoutSeconds        int
	HistoryTimeoutSeconds int
	GuardTTLHours         int
}

// SecretsConfig selects a secret backend and the references resolved from it
// at startup. An empty reference keeps the value read from the environment
type SecretsConfig struct {
	Provider        string // "", "aws" or "kubernetes"
	Region          string
	Endpoint        string
	BasePath        string
	CacheTTLSeconds int

	DBPasswordRef       string
	RedisPasswordRef    string
	VisionAPIKeyRef     string
	StorageSecretKeyRef string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "claimguard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("NATS_CLAIMS_SUBJECT", "claims.submitted"),
			Queue:   getEnv("NATS_CLAIMS_QUEUE", "claim-pipeline"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Storage: StorageConfig{
			Bucket:    getEnv("STORAGE_BUCKET", "claim-images"),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			BaseURL:   getEnv("STORAGE_BASE_URL", ""),
		},
		Vision: VisionConfig{
			Provider:                getEnv("VISION_PROVIDER", "openai"),
			APIKey:                  getEnv("VISION_API_KEY", ""),
			Model:                   getEnv("VISION_MODEL", "gemini-2.0-flash"),
			BaseURL:                 getEnv("VISION_BASE_URL", ""),
			MaxTokens:               getEnvAsInt("VISION_MAX_TOKENS", 1024),
			TimeoutSeconds:          getEnvAsInt("VISION_TIMEOUT_SECONDS", 30),
			BreakerIntervalSeconds:  getEnvAsInt("VISION_BREAKER_INTERVAL_SECONDS", 60),
			BreakerTimeoutSeconds:   getEnvAsInt("VISION_BREAKER_TIMEOUT_SECONDS", 30),
			BreakerFailureThreshold: getEnvAsInt("VISION_BREAKER_FAILURE_THRESHOLD", 5),
			BreakerSuccessThreshold: getEnvAsInt("VISION_BREAKER_SUCCESS_THRESHOLD", 1),
			RetryMaxAttempts:        getEnvAsInt("VISION_RETRY_MAX_ATTEMPTS", 3),
		},
		Pipeline: PipelineConfig{
			TimeoutSeconds:        getEnvAsInt("PIPELINE_TIMEOUT_SECONDS", 120),
			HistoryTimeoutSeconds: getEnvAsInt("HISTORY_TIMEOUT_SECONDS", 5),
			GuardTTLHours:         getEnvAsInt("PIPELINE_GUARD_TTL_HOURS", 24),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("TRACING_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio: getEnvAsFloat("TRACING_SAMPLE_RATIO", 1.0),
		},
		Secrets: SecretsConfig{
			Provider:            getEnv("SECRETS_PROVIDER", ""),
			Region:              getEnv("SECRETS_REGION", getEnv("STORAGE_REGION", "us-east-1")),
			Endpoint:            getEnv("SECRETS_ENDPOINT", ""),
			BasePath:            getEnv("SECRETS_BASE_PATH", ""),
			CacheTTLSeconds:     getEnvAsInt("SECRETS_CACHE_TTL_SECONDS", 300),
			DBPasswordRef:       getEnv("DB_PASSWORD_SECRET", ""),
			RedisPasswordRef:    getEnv("REDIS_PASSWORD_SECRET", ""),
			VisionAPIKeyRef:     getEnv("VISION_API_KEY_SECRET", ""),
			StorageSecretKeyRef: getEnv("STORAGE_SECRET_KEY_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.Vision.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported vision provider %q", c.Vision.Provider)
	}
	if c.Vision.TimeoutSeconds <= 0 {
		return fmt.Errorf("VISION_TIMEOUT_SECONDS must be positive")
	}
	if c.Pipeline.HistoryTimeoutSeconds <= 0 {
		return fmt.Errorf("HISTORY_TIMEOUT_SECONDS must be positive")
	}
	if c.Pipeline.TimeoutSeconds <= 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT_SECONDS must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be within [0, 1]")
	}
	switch c.Secrets.Provider {
	case "", "aws", "kubernetes":
	default:
		return fmt.Errorf("unsupported secrets provider %q", c.Secrets.Provider)
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Timeout returns the per-call vision timeout
func (c *VisionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the whole-pipeline bound
func (c *PipelineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HistoryTimeout returns the claim-history query bound
func (c *PipelineConfig) HistoryTimeout() time.Duration {
	return time.Duration(c.HistoryTimeoutSeconds) * time.Second
}

// GuardTTL returns how long a claim stays locked against re-processing
func (c *PipelineConfig) GuardTTL() time.Duration {
	return time.Duration(c.GuardTTLHours) * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// CacheTTL returns how long resolved secrets are reused
func (c *SecretsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
