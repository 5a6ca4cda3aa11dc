package llm

import (
	"testing"
	"time"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"LECTERN_PROVIDER", "LECTERN_GEMINI_API_KEY", "LECTERN_OPENAI_API_KEY",
		"LECTERN_ANTHROPIC_API_KEY", "LECTERN_VOICE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != "gemini" {
		t.Fatalf("expected gemini default, got %q", cfg.Provider)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.InitialWait != 1*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("default config without an API key must not validate")
	}
}

func TestDiscoverConfig_PriorityOrder(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected discovery to succeed")
	}
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("gemini should win discovery, got %q", cfg.Provider)
	}
}

func TestDiscoverConfig_FallsThrough(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "a-key")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected discovery to succeed")
	}
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "a-key" {
		t.Fatalf("unexpected discovery result: %+v", cfg)
	}
}

func TestDiscoverConfig_NoKeys(t *testing.T) {
	clearProviderEnv(t)

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected discovery to fail with no keys set")
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("LECTERN_PROVIDER", "openai")
	t.Setenv("LECTERN_OPENAI_API_KEY", "o-key")
	t.Setenv("LECTERN_OPENAI_MODEL", "gpt-custom")
	t.Setenv("LECTERN_VOICE", "nova")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" {
		t.Fatalf("expected openai, got %q", cfg.Provider)
	}
	if cfg.OpenAI.Model != "gpt-custom" || cfg.OpenAI.Voice != "nova" {
		t.Fatalf("unexpected openai config: %+v", cfg.OpenAI)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
