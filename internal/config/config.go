package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	JWTExpiry   time.Duration
	ServerPort  string
	Environment string

	// OAuth identity provider
	OAuthClientID        string
	OAuthClientSecret    string
	OAuthRedirectURL     string
	OAuthAuthURL         string
	OAuthTokenURL        string
	OAuthUserinfoURL     string
	PostLoginRedirectURL string

	// S3-compatible object storage
	StorageEndpoint      string
	StorageAccessKeyID   string
	StorageSecretKey     string
	StorageBucket        string
	StorageRegion        string
	StoragePublicBaseURL string

	// Outbound email notifications
	EmailAPIURL string
	EmailAPIKey string
	EmailTo     string

	// Rate limiting
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	CORSOrigins []string
}

func Load() *Config {
	// Try to load .env file, but don't fail if it doesn't exist
	// (containers use environment variables directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   getEnvAsDuration("JWT_EXPIRY", "168h"),
		ServerPort:  getEnv("SERVER_PORT", ":8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		OAuthClientID:        os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret:    os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthRedirectURL:     os.Getenv("OAUTH_REDIRECT_URL"),
		OAuthAuthURL:         os.Getenv("OAUTH_AUTH_URL"),
		OAuthTokenURL:        os.Getenv("OAUTH_TOKEN_URL"),
		OAuthUserinfoURL:     os.Getenv("OAUTH_USERINFO_URL"),
		PostLoginRedirectURL: getEnv("POST_LOGIN_REDIRECT_URL", "http://localhost:3000"),

		StorageEndpoint:      os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKeyID:   os.Getenv("STORAGE_ACCESS_KEY_ID"),
		StorageSecretKey:     os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		StorageBucket:        os.Getenv("STORAGE_BUCKET"),
		StorageRegion:        getEnv("STORAGE_REGION", "auto"),
		StoragePublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),

		EmailAPIURL: os.Getenv("EMAIL_API_URL"),
		EmailAPIKey: os.Getenv("EMAIL_API_KEY"),
		EmailTo:     os.Getenv("EMAIL_TO"),

		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 30),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),

		CORSOrigins: getEnvAsSlice("CORS_ORIGINS", "http://localhost:3000"),
	}

	return cfg
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsInt retrieves environment variable as int with default value
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %d", key, defaultVal)
		return defaultVal
	}
	return val
}

// getEnvAsDuration retrieves environment variable as duration with default value
func getEnvAsDuration(key string, defaultVal string) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	duration, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %s", key, defaultVal)
		duration, _ = time.ParseDuration(defaultVal)
	}
	return duration
}

// getEnvAsSlice retrieves a comma-separated environment variable
func getEnvAsSlice(key string, defaultVal string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	parts := strings.Split(valStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
