package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "SESSION_STORE", "LLM_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMModel != "gemini-2.5-pro" {
		t.Fatalf("unexpected default model %q", cfg.LLMModel)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", cfg.LLMTemperature)
	}
	if cfg.SessionStore != "memory" {
		t.Fatalf("expected memory session store, got %q", cfg.SessionStore)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("unexpected llm timeout %v", cfg.LLMTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("IMAGE_FETCH_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "openai" || cfg.LLMModel != "gpt-4o" {
		t.Fatalf("unexpected provider/model %q/%q", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.SessionStore != "redis" {
		t.Fatalf("expected redis store, got %q", cfg.SessionStore)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowOrigin)
	}
	if cfg.ImageFetchTimeout != 30*time.Second {
		t.Fatalf("expected fallback fetch timeout, got %v", cfg.ImageFetchTimeout)
	}
}

func TestLoadAcceptsZeroTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "0")

	cfg := Load()
	if cfg.LLMTemperature != 0 {
		t.Fatalf("expected temperature 0, got %v", cfg.LLMTemperature)
	}
}
