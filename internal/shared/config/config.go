package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"docchat-backend/internal/shared/telemetry"
)

const (
	defaultMaxUploadMB     = 50
	defaultMaxTextChars    = 1_000_000
	defaultMinPDFTextChars = 1000
	defaultMaxContextWords = 90_000
	defaultLLMTimeout      = 120 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	ObjectStoreType string
	UploadDir       string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
	Env             string
	LogLevel        string
	JWTSecret       string

	// Extraction pipeline limits.
	MaxUploadBytes  int64
	MaxTextChars    int
	MinPDFTextChars int
	MaxContextWords int

	LLMAPIKey    string
	LLMBaseURL   string
	LLMModel     string
	LLMChatModel string
	LLMTimeout   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url.missing", map[string]any{"env": env})
	}

	logLevel := "debug"
	if env == "production" {
		logLevel = "info"
	}

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_TOKEN")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:     dbURL,
		Env:             env,
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", logLevel)),
		JWTSecret:       getEnv("JWT_ACCESS_SECRET", ""),

		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", defaultMaxUploadMB)) << 20,
		MaxTextChars:    getEnvInt("MAX_TEXT_CHARS", defaultMaxTextChars),
		MinPDFTextChars: getEnvInt("PDF_MIN_TEXT_CHARS", defaultMinPDFTextChars),
		MaxContextWords: getEnvInt("QA_MAX_CONTEXT_WORDS", defaultMaxContextWords),

		LLMAPIKey:    apiKey,
		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:     getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMChatModel: getEnv("LLM_CHAT_MODEL", "openai/gpt-oss-20b"),
		LLMTimeout:   time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", int(defaultLLMTimeout/time.Second))) * time.Second,
	}
}

// WithDefaults fills zero-valued limits so hand-built configs (tests, tools) behave like Load.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "dev"
	}
	if strings.TrimSpace(c.ObjectStoreType) == "" {
		c.ObjectStoreType = "local"
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		c.UploadDir = "./uploads"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadMB << 20
	}
	if c.MaxTextChars <= 0 {
		c.MaxTextChars = defaultMaxTextChars
	}
	if c.MinPDFTextChars <= 0 {
		c.MinPDFTextChars = defaultMinPDFTextChars
	}
	if c.MaxContextWords <= 0 {
		c.MaxContextWords = defaultMaxContextWords
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = defaultLLMTimeout
	}
	if strings.TrimSpace(c.LLMBaseURL) == "" {
		c.LLMBaseURL = "https://api.groq.com/openai/v1"
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		c.LLMModel = "llama-3.3-70b-versatile"
	}
	if strings.TrimSpace(c.LLMChatModel) == "" {
		c.LLMChatModel = "openai/gpt-oss-20b"
	}
	return c
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
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

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
