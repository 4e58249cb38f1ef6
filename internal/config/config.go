package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string // sqlite, postgres or mysql
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	StaticFilesPath string
	SessionDuration time.Duration
	RunIdleTimeout  time.Duration

	AppBaseURL           string
	OAuthRedirectBaseURL string
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	AppleClientID        string
	AppleClientSecret    string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	EmailDebug   bool

	CSRFSecret        string
	AdminEmails       []string
	LoginRateLimit    int
	BlockedWordsURL   string
	SeedDefaultTopics bool
	GenerateAudio     bool
}

// Load reads configuration from a .env file (if any) and environment
// variables, with sensible defaults
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	baseURL := getEnv("APP_BASE_URL", "http://localhost:8080")

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./lingvocards.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		RunIdleTimeout:  getDuration("RUN_IDLE_TIMEOUT", 2*time.Hour),

		AppBaseURL:           baseURL,
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", baseURL),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "LingvoCards"),
		EmailDebug:   getBool("EMAIL_DEBUG", false),

		CSRFSecret:        getEnv("CSRF_SECRET", ""),
		AdminEmails:       getList("ADMIN_EMAILS"),
		LoginRateLimit:    getInt("LOGIN_RATE_LIMIT", 10),
		BlockedWordsURL:   getEnv("BLOCKED_WORDS_URL", ""),
		SeedDefaultTopics: getBool("SEED_DEFAULT_TOPICS", true),
		GenerateAudio:     getBool("GENERATE_AUDIO", true),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma separated variable, dropping empty entries
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s: %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
