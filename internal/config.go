package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Public URL of this service (used to build the OAuth2 redirect URL)
	IngressURL string

	// Environment banner shown to users outside production ("DEV", "PRE-PRODUCTION")
	EnvironmentName string

	// HMPPS Auth (OAuth2 identity provider)
	AuthURL            string // Internal URL used for token exchange
	AuthExternalURL    string // Browser-facing URL used for sign-in and sign-out redirects
	APIClientID        string // Authorization code client
	APIClientSecret    string
	SystemClientID     string // Client credentials client
	SystemClientSecret string

	// Upstream APIs
	PrisonAPIURL      string
	IncentivesAPIURL  string
	ManageUsersAPIURL string
	ComponentAPIURL   string // Optional; built-in header/footer are used when empty
	APITimeout        time.Duration
	APIRetries        int

	// Support ticketing (Zendesk)
	ZendeskURL      string
	ZendeskUsername string
	ZendeskToken    string

	// Sessions
	SessionStore    string // "memory" or "redis"
	SessionTTL      time.Duration
	RedisHost       string
	RedisPort       int
	RedisPassword   string
	RedisTLSEnabled bool

	// Analytics tables
	AnalyticsSource    string // "local" or "s3"
	AnalyticsLocalPath string
	AnalyticsBucket    string
	AnalyticsRegion    string
	AnalyticsEndpoint  string // Optional S3-compatible endpoint override
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Feedback form submissions allowed per client IP per hour
	FeedbackRateLimit int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string

	// Build information reported by /health and /info
	BuildNumber string
	GitRef      string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 3000),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		IngressURL:      strings.TrimSuffix(getEnv("INGRESS_URL", "http://localhost:3000"), "/"),
		EnvironmentName: getEnv("ENVIRONMENT_NAME", ""),

		AuthURL:            strings.TrimSuffix(getEnv("HMPPS_AUTH_URL", "http://localhost:9090/auth"), "/"),
		APIClientID:        getEnv("API_CLIENT_ID", "incentives-ui"),
		APIClientSecret:    getEnv("API_CLIENT_SECRET", ""),
		SystemClientID:     getEnv("SYSTEM_CLIENT_ID", "incentives-ui-system"),
		SystemClientSecret: getEnv("SYSTEM_CLIENT_SECRET", ""),

		PrisonAPIURL:      strings.TrimSuffix(getEnv("PRISON_API_URL", "http://localhost:8080"), "/"),
		IncentivesAPIURL:  strings.TrimSuffix(getEnv("INCENTIVES_API_URL", "http://localhost:2999"), "/"),
		ManageUsersAPIURL: strings.TrimSuffix(getEnv("MANAGE_USERS_API_URL", "http://localhost:9091"), "/"),
		ComponentAPIURL:   strings.TrimSuffix(getEnv("COMPONENT_API_URL", ""), "/"),
		APITimeout:        getEnvDuration("API_TIMEOUT", 10*time.Second),
		APIRetries:        getEnvInt("API_RETRIES", 2),

		ZendeskURL:      strings.TrimSuffix(getEnv("ZENDESK_URL", ""), "/"),
		ZendeskUsername: getEnv("ZENDESK_USERNAME", ""),
		ZendeskToken:    getEnv("ZENDESK_TOKEN", ""),

		// Sessions default to in-memory storage for development
		SessionStore:    getEnv("SESSION_STORE", "memory"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 2*time.Hour),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnvInt("REDIS_PORT", 6379),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLSEnabled: getEnvBool("REDIS_TLS_ENABLED", false),

		// Analytics defaults to local JSON files for development
		AnalyticsSource:    getEnv("ANALYTICS_SOURCE", "local"),
		AnalyticsLocalPath: getEnv("ANALYTICS_LOCAL_PATH", "./analytics"),
		AnalyticsBucket:    getEnv("ANALYTICS_BUCKET", ""),
		AnalyticsRegion:    getEnv("ANALYTICS_REGION", "eu-west-2"),
		AnalyticsEndpoint:  getEnv("ANALYTICS_ENDPOINT", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		FeedbackRateLimit: getEnvInt("FEEDBACK_RATE_LIMIT", 5),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		BuildNumber: getEnv("BUILD_NUMBER", "local"),
		GitRef:      getEnv("GIT_REF", "unknown"),
	}
	cfg.AuthExternalURL = strings.TrimSuffix(getEnv("HMPPS_AUTH_EXTERNAL_URL", cfg.AuthURL), "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	// Client secrets are only optional in development, where a local auth stub is used
	if cfg.Env != "development" {
		if cfg.APIClientSecret == "" {
			return fmt.Errorf("API_CLIENT_SECRET is required")
		}
		if cfg.SystemClientSecret == "" {
			return fmt.Errorf("SYSTEM_CLIENT_SECRET is required")
		}
	}

	switch cfg.SessionStore {
	case "memory":
	case "redis":
		if cfg.RedisHost == "" {
			return fmt.Errorf("REDIS_HOST is required when SESSION_STORE is 'redis'")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be either 'memory' or 'redis', got: %s", cfg.SessionStore)
	}

	switch cfg.AnalyticsSource {
	case "local":
	case "s3":
		if cfg.AnalyticsBucket == "" {
			return fmt.Errorf("ANALYTICS_BUCKET is required when ANALYTICS_SOURCE is 's3'")
		}
	default:
		return fmt.Errorf("ANALYTICS_SOURCE must be either 'local' or 's3', got: %s", cfg.AnalyticsSource)
	}

	if cfg.FeedbackRateLimit < 1 {
		return fmt.Errorf("FEEDBACK_RATE_LIMIT must be at least 1, got: %d", cfg.FeedbackRateLimit)
	}
	return nil
}

// IsSecure reports whether cookies should carry the Secure flag and HSTS should be sent.
func (cfg *Config) IsSecure() bool {
	return cfg.Env != "development"
}

// ZendeskEnabled reports whether feedback can be forwarded as support tickets.
func (cfg *Config) ZendeskEnabled() bool {
	return cfg.ZendeskURL != "" && cfg.ZendeskUsername != "" && cfg.ZendeskToken != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
