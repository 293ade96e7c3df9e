package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsPipelineLimits(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("MAX_TEXT_CHARS", "2000")
	t.Setenv("PDF_MIN_TEXT_CHARS", "10")
	t.Setenv("QA_MAX_CONTEXT_WORDS", "300")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_API_TOKEN", "token-fallback")
	t.Setenv("LLM_TIMEOUT_SECONDS", "7")

	cfg := Load()
	require.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	require.Equal(t, 2000, cfg.MaxTextChars)
	require.Equal(t, 10, cfg.MinPDFTextChars)
	require.Equal(t, 300, cfg.MaxContextWords)
	require.Equal(t, "token-fallback", cfg.LLMAPIKey, "GROQ_API_TOKEN fallback")
	require.Equal(t, 7*time.Second, cfg.LLMTimeout)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "lots")
	t.Setenv("MAX_TEXT_CHARS", "-4")

	cfg := Load()
	require.Equal(t, int64(defaultMaxUploadMB<<20), cfg.MaxUploadBytes)
	require.Equal(t, defaultMaxTextChars, cfg.MaxTextChars)
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{}.WithDefaults()
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "local", cfg.ObjectStoreType)
	require.Equal(t, defaultMaxContextWords, cfg.MaxContextWords)
	require.Equal(t, defaultMinPDFTextChars, cfg.MinPDFTextChars)
}
