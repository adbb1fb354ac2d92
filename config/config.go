package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string
	AllowedOrigins []string

	// Brand & analysis settings
	OurBrand             string
	VolumeSimilarity     float64 // similar-volume tolerance (±)
	TopBrandsCount       int
	TopVolumeCombos      int
	MainCompetitorsCount int
	ExcellentRating      float64
	GoodRating           float64
	HighEngagementRatio  float64
	GoodEngagementRatio  float64

	// GitHub report store
	GitHubToken      string
	GitHubRepo       string
	GitHubResultsDir string
	GitHubAPIBaseURL string
	ReportKeepFiles  int

	// Redis (optional report cache)
	RedisURL      string
	CacheTTLHours int

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Logging
	LogLevel  string
	LogFormat string

	// Sentry
	SentryDSN         string
	SentryEnvironment string
}

// Load loads configuration from environment variables
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", nil),

		// Brand & analysis
		OurBrand:             getEnv("OUR_BRAND", "서로"),
		VolumeSimilarity:     getEnvAsFloat("VOLUME_SIMILARITY", 0.20),
		TopBrandsCount:       getEnvAsInt("TOP_BRANDS_COUNT", 10),
		TopVolumeCombos:      getEnvAsInt("TOP_VOLUME_COMBINATIONS", 10),
		MainCompetitorsCount: getEnvAsInt("MAIN_COMPETITORS_COUNT", 3),
		ExcellentRating:      getEnvAsFloat("EXCELLENT_RATING", 4.5),
		GoodRating:           getEnvAsFloat("GOOD_RATING", 4.0),
		HighEngagementRatio:  getEnvAsFloat("HIGH_ENGAGEMENT_RATIO", 2.0),
		GoodEngagementRatio:  getEnvAsFloat("GOOD_ENGAGEMENT_RATIO", 1.0),

		// GitHub store
		GitHubToken:      getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:       getEnv("GITHUB_REPO", "coder4052/market_analysis"),
		GitHubResultsDir: getEnv("GITHUB_RESULTS_DIR", "analysis_results"),
		GitHubAPIBaseURL: getEnv("GITHUB_API_BASE_URL", "https://api.github.com"),
		ReportKeepFiles:  getEnvAsInt("REPORT_KEEP_FILES", 3),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		CacheTTLHours: getEnvAsInt("CACHE_TTL_HOURS", 1),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}

	return values
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
