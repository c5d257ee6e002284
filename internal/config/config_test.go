package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.LLM.MaxTokens != 4096 {
		t.Errorf("default max_tokens = %d, want 4096", cfg.LLM.MaxTokens)
	}
	if cfg.Orchestrator.MaxIterations != 10 {
		t.Errorf("default max_iterations = %d, want 10", cfg.Orchestrator.MaxIterations)
	}
	if cfg.Events.SubjectPrefix != "overseer.task" {
		t.Errorf("default subject_prefix = %q", cfg.Events.SubjectPrefix)
	}
	if cfg.Telemetry.Protocol != "noop" {
		t.Errorf("default telemetry protocol = %q", cfg.Telemetry.Protocol)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overseer.toml")
	content := `[llm]
provider = "anthropic"
model = "claude-sonnet-4-5"
max_tokens = 2048

[orchestrator]
max_iterations = 5

[events]
enabled = true
url = "nats://localhost:4222"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-sonnet-4-5" {
		t.Errorf("llm config = %+v", cfg.LLM)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d, want 2048", cfg.LLM.MaxTokens)
	}
	if cfg.Orchestrator.MaxIterations != 5 {
		t.Errorf("max_iterations = %d, want 5", cfg.Orchestrator.MaxIterations)
	}
	if !cfg.Events.Enabled || cfg.Events.URL != "nats://localhost:4222" {
		t.Errorf("events config = %+v", cfg.Events)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Events.SubjectPrefix != "overseer.task" {
		t.Errorf("subject_prefix = %q, want default", cfg.Events.SubjectPrefix)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("LoadFile succeeded on missing file")
	}
}

func TestGetAPIKey(t *testing.T) {
	cfg := New()
	cfg.LLM.Provider = "anthropic"
	t.Setenv("ANTHROPIC_API_KEY", "key-from-default-env")
	if got := cfg.GetAPIKey(); got != "key-from-default-env" {
		t.Errorf("GetAPIKey() = %q", got)
	}

	cfg.LLM.APIKeyEnv = "CUSTOM_KEY_ENV"
	t.Setenv("CUSTOM_KEY_ENV", "key-from-custom-env")
	if got := cfg.GetAPIKey(); got != "key-from-custom-env" {
		t.Errorf("GetAPIKey() with api_key_env = %q", got)
	}
}

func TestDefaultAPIKeyEnv(t *testing.T) {
	cases := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"google":    "GOOGLE_API_KEY",
		"mistral":   "MISTRAL_API_KEY",
		"groq":      "GROQ_API_KEY",
		"unknown":   "",
	}
	for provider, want := range cases {
		if got := DefaultAPIKeyEnv(provider); got != want {
			t.Errorf("DefaultAPIKeyEnv(%q) = %q, want %q", provider, got, want)
		}
	}
}
