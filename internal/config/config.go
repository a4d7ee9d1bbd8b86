package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// writeTimeoutMargin leaves room after the relay deadline to encode and
// send the {reply} body.
const writeTimeoutMargin = 30 * time.Second

// maxVisitorHashKeyLen is the BLAKE2b key limit.
const maxVisitorHashKeyLen = 64

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey          string
	GeminiModel           string
	GeminiMaxOutputTokens int
	GeminiTemperature     float64
	GeminiTimeout         time.Duration
	SystemPromptFile      string

	// Database (optional, audit + visitor + lead records)
	DatabaseURL string

	// Redis (optional, log-job queue)
	RedisURL   string
	LogWorkers int

	// Frontend
	StaticDir   string
	FrontendURL string

	// Visitor tracking
	VisitorHashKey string

	// SMTP
	SMTPHost        string
	SMTPPort        string
	SMTPUser        string
	SMTPPass        string
	SMTPFrom        string
	LeadNotifyEmail string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", DefaultGeminiModel),
		GeminiMaxOutputTokens: getEnvAsIntOrDefault("GEMINI_MAX_OUTPUT_TOKENS", 1024),
		GeminiTemperature:     getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.3),
		GeminiTimeout:         time.Duration(getEnvAsIntOrDefault("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		SystemPromptFile:      getEnvOrDefault("SYSTEM_PROMPT_FILE", ""),
		DatabaseURL:           getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		LogWorkers:            getEnvAsIntOrDefault("LOG_WORKERS", 2),
		StaticDir:             getEnvOrDefault("STATIC_DIR", "./dist"),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		VisitorHashKey:        getEnvOrDefault("VISITOR_HASH_KEY", ""),
		SMTPHost:              getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:              getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:              getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:              getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:              getEnvOrDefault("SMTP_FROM", "noreply@sideio.com"),
		LeadNotifyEmail:       getEnvOrDefault("LEAD_NOTIFY_EMAIL", ""),
	}

	if cfg.GeminiTimeout < 0 {
		cfg.GeminiTimeout = 0
	}
	if cfg.LogWorkers < 1 {
		cfg.LogWorkers = 1
	}

	return cfg
}

// Validate reports configuration problems that still let the server run.
// A missing Gemini key is one of them: chat requests are answered with a
// configuration notice instead of crashing the process.
func (c *Config) Validate() []string {
	var warnings []string
	if c.GeminiAPIKey == "" {
		warnings = append(warnings, "GEMINI_API_KEY is missing; chat requests will fail with a configuration error")
	}
	if c.GeminiMaxOutputTokens <= 0 {
		warnings = append(warnings, fmt.Sprintf("GEMINI_MAX_OUTPUT_TOKENS=%d is not positive; provider default applies", c.GeminiMaxOutputTokens))
	}
	if c.DatabaseURL == "" {
		warnings = append(warnings, "DATABASE_URL is not set; audit, visitor and lead records are discarded")
	}
	if c.VisitorHashKey == "" {
		warnings = append(warnings, "VISITOR_HASH_KEY is not set; visitor IPs are hashed without a key")
	} else if len(c.VisitorHashKey) > maxVisitorHashKeyLen {
		warnings = append(warnings, fmt.Sprintf("VISITOR_HASH_KEY is longer than %d bytes; visitor IPs are hashed without a key", maxVisitorHashKeyLen))
	}
	if c.GeminiTimeout == 0 {
		warnings = append(warnings, "GEMINI_TIMEOUT_SECONDS=0 disables the relay timeout; the HTTP write timeout is disabled too")
	}
	return warnings
}

// WriteTimeout is the HTTP server write timeout. It must outlast the relay
// timeout so a slow provider still ends in a {reply} body; with the relay
// timeout disabled there is no write deadline either.
func (c *Config) WriteTimeout() time.Duration {
	if c.GeminiTimeout <= 0 {
		return 0
	}
	return c.GeminiTimeout + writeTimeoutMargin
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
