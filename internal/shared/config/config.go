package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port              string
	CORSAllowOrigin   []string
	Env               string
	LogLevel          string
	LLMProvider       string
	LLMModel          string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	LLMTemperature    float32
	LLMTimeout        time.Duration
	ImageFetchTimeout time.Duration
	ImageMaxBytes     int64
	LocalImageDir     string
	AWSRegion         string
	SessionStore      string
	RedisURL          string
	SessionTTL        time.Duration
	AnalyzePerMinute  float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:               env,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LLMProvider:       provider,
		LLMModel:          getEnv("LLM_MODEL", defaultModel(provider)),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		LLMTemperature:    float32(getFloat("LLM_TEMPERATURE", 0.2)),
		LLMTimeout:        getSeconds("LLM_TIMEOUT_SECONDS", 120),
		ImageFetchTimeout: getSeconds("IMAGE_FETCH_TIMEOUT_SECONDS", 30),
		ImageMaxBytes:     int64(getInt("IMAGE_MAX_BYTES", 20<<20)),
		LocalImageDir:     getEnv("LOCAL_IMAGE_DIR", "./data/images"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		SessionStore:      normalizeSessionStore(getEnv("SESSION_STORE", "memory")),
		RedisURL:          getEnv("REDIS_URL", ""),
		SessionTTL:        time.Duration(getInt("SESSION_TTL_MINUTES", 240)) * time.Minute,
		AnalyzePerMinute:  getFloat("RATE_LIMIT_ANALYZE_PER_MINUTE", 6),
	}

	if env == "production" && cfg.SessionStore == "redis" && cfg.RedisURL == "" {
		log.Printf("REDIS_URL is required when SESSION_STORE=redis")
	}
	return cfg
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func getSeconds(key string, def int) time.Duration {
	return time.Duration(getInt(key, def)) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "placeholder":
		return "none"
	default:
		return "gemini"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "gemini":
		return "gemini-2.5-pro"
	default:
		return ""
	}
}
