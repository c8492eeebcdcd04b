package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("MAX_ATTEMPTS", "")
	t.Setenv("PROVIDER_SUBSTITUTIONS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.MaxAttempts != 2 {
		t.Fatalf("MaxAttempts mismatch: got %d", cfg.MaxAttempts)
	}
	if cfg.BaselineProvider != "flux" {
		t.Fatalf("BaselineProvider mismatch: got %q", cfg.BaselineProvider)
	}
	if got := cfg.ProviderSubstitutions["nanobanana"]; got != "turbo" {
		t.Fatalf("default substitution mismatch: got %q", got)
	}
	if cfg.GenerationBudget != 25*time.Second || cfg.ProviderTimeout != 15*time.Second {
		t.Fatalf("timeouts mismatch: budget %s provider %s", cfg.GenerationBudget, cfg.ProviderTimeout)
	}
	if !cfg.ProceduralFallback {
		t.Fatalf("procedural fallback should default to enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigGoogleKeyAlias(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", " alias-key ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "alias-key" {
		t.Fatalf("GeminiAPIKey mismatch: got %q", cfg.GeminiAPIKey)
	}
}

func TestLoadConfigClampsAttempts(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "9")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts should clamp to 3, got %d", cfg.MaxAttempts)
	}

	t.Setenv("MAX_ATTEMPTS", "0")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxAttempts != 1 {
		t.Fatalf("MaxAttempts should clamp to 1, got %d", cfg.MaxAttempts)
	}
}

func TestLoadConfigRejectsShortBudget(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "20")
	t.Setenv("GENERATION_BUDGET_SECONDS", "10")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for budget shorter than provider timeout")
	}
}

func TestParseSubstitutions(t *testing.T) {
	got, err := ParseSubstitutions(" NanoBanana = turbo , imagen=flux,")
	if err != nil {
		t.Fatalf("ParseSubstitutions returned error: %v", err)
	}
	if got["nanobanana"] != "turbo" || got["imagen"] != "flux" || len(got) != 2 {
		t.Fatalf("unexpected substitutions: %#v", got)
	}

	for _, bad := range []string{"nanobanana", "=turbo", "flux=flux"} {
		if _, err := ParseSubstitutions(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseSubstitutionsNone(t *testing.T) {
	got, err := ParseSubstitutions("none")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %#v err %v", got, err)
	}
}
