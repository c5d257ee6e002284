// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the orchestrator configuration.
type Config struct {
	Agent        AgentConfig        `toml:"agent"`
	LLM          LLMConfig          `toml:"llm"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Roles        RolesConfig        `toml:"roles"`
	Events       EventsConfig       `toml:"events"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
}

// AgentConfig contains identification settings.
type AgentConfig struct {
	ID string `toml:"id"`
}

// LLMConfig contains LLM provider settings. Retry policy is delegated to
// the provider layer.
type LLMConfig struct {
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	APIKeyEnv    string `toml:"api_key_env"`
	MaxTokens    int    `toml:"max_tokens"`
	BaseURL      string `toml:"base_url"`      // Custom API endpoint (OpenRouter, LiteLLM, Ollama, LMStudio)
	MaxRetries   int    `toml:"max_retries"`   // Max retry attempts (default 5)
	RetryBackoff string `toml:"retry_backoff"` // Max backoff duration (default "60s")
}

// OrchestratorConfig contains workflow settings.
type OrchestratorConfig struct {
	MaxIterations int `toml:"max_iterations"` // Supervisor visit ceiling per task
}

// RolesConfig points at optional per-role profile overrides.
type RolesConfig struct {
	ProfilesPath string `toml:"profiles_path"` // YAML file with prompt/capability overrides
}

// EventsConfig contains NATS event publishing settings.
type EventsConfig struct {
	Enabled       bool   `toml:"enabled"`
	URL           string `toml:"url"`            // NATS server URL
	SubjectPrefix string `toml:"subject_prefix"` // Subject prefix (default "overseer.task")
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"` // OTLP endpoint (e.g., localhost:4317)
	Protocol string `toml:"protocol"` // grpc (default) or http
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		LLM: LLMConfig{
			MaxTokens: 4096,
		},
		Orchestrator: OrchestratorConfig{
			MaxIterations: 10,
		},
		Events: EventsConfig{
			SubjectPrefix: "overseer.task",
		},
		Telemetry: TelemetryConfig{
			Protocol: "noop",
		},
	}
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from overseer.toml in the current
// directory, falling back to defaults when the file is absent.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, "overseer.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}
	return LoadFile(path)
}

// GetAPIKey returns the API key from the configured environment variable.
// If api_key_env is not set, uses the default env var for the provider.
func (c *Config) GetAPIKey() string {
	envVar := c.LLM.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	case "mistral":
		return "MISTRAL_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return ""
	}
}
