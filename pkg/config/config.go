package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	LogLevel         string
	FrontendURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	// FallbackAccessToken is the last-resort provider token (ACCESS_TOKEN).
	FallbackAccessToken string
	CronSecret          string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PurgeInterval time.Duration

	Analysis AnalysisConfig
	Retry    RetryConfig
	Actions  ActionConfig
}

// AnalysisConfig tunes the mailbox analysis pipeline.
type AnalysisConfig struct {
	MaxMessages          int
	PageSize             int64
	BatchSize            int
	BatchDelay           time.Duration
	ExcludeTransactional bool
}

type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
}

type ActionConfig struct {
	BatchSize        int
	BrowseBatchSize  int
	BrowseBatchDelay time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		FrontendURL:      getEnv("FRONTEND_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "mailsweep"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:   getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/auth/callback"),
		FallbackAccessToken: getEnv("ACCESS_TOKEN", ""),
		CronSecret:          getEnv("CRON_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		PurgeInterval: getDuration("PURGE_INTERVAL", 0),

		Analysis: AnalysisConfig{
			MaxMessages:          getInt("ANALYSIS_MAX_MESSAGES", 1000),
			PageSize:             int64(getInt("ANALYSIS_PAGE_SIZE", 100)),
			BatchSize:            getInt("ANALYSIS_BATCH_SIZE", 50),
			BatchDelay:           getDuration("ANALYSIS_BATCH_DELAY", 0),
			ExcludeTransactional: getBool("ANALYSIS_EXCLUDE_TRANSACTIONAL", false),
		},
		Retry: RetryConfig{
			MaxRetries:   getInt("RETRY_MAX_RETRIES", 3),
			InitialDelay: getDuration("RETRY_INITIAL_DELAY", time.Second),
		},
		Actions: ActionConfig{
			BatchSize:        getInt("ACTION_BATCH_SIZE", 100),
			BrowseBatchSize:  getInt("BROWSE_BATCH_SIZE", 5),
			BrowseBatchDelay: getDuration("BROWSE_BATCH_DELAY", 200*time.Millisecond),
		},
	}
}

// DSN builds the postgres connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
