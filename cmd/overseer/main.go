// Package main is the entry point for the overseer CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vinayprograms/agentkit/llm"
	"github.com/vinayprograms/agentkit/telemetry"

	"github.com/vinayprograms/overseer/internal/agent"
	"github.com/vinayprograms/overseer/internal/config"
	"github.com/vinayprograms/overseer/internal/events"
	"github.com/vinayprograms/overseer/internal/report"
	"github.com/vinayprograms/overseer/internal/supervisor"
	"github.com/vinayprograms/overseer/internal/task"
	"github.com/vinayprograms/overseer/internal/workflow"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Load .env for API keys and related env vars
	_ = godotenv.Load()
}

func main() {
	_, ctx := parseCLI()
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Run executes a single task end to end and prints the final report.
func (c *RunCmd) Run() error {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.MaxIterations > 0 {
		cfg.Orchestrator.MaxIterations = c.MaxIterations
	}
	if c.Profiles != "" {
		cfg.Roles.ProfilesPath = c.Profiles
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	profiles, err := agent.LoadProfiles(cfg.Roles.ProfilesPath)
	if err != nil {
		return err
	}

	registry := agent.NewRegistry()
	for _, role := range agent.Workers() {
		if err := registry.Register(agent.NewWorker(role, provider, profiles[role])); err != nil {
			return err
		}
	}

	// Telemetry exporter
	var telem telemetry.Exporter
	if cfg.Telemetry.Enabled {
		telem, err = telemetry.NewExporter(cfg.Telemetry.Protocol, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("creating telemetry exporter: %w", err)
		}
	} else {
		telem = telemetry.NewNoopExporter()
	}
	defer telem.Close()

	// Optional NATS event publishing
	var pub *events.Publisher
	if cfg.Events.Enabled {
		pub, err = events.Connect(cfg.Events.URL, cfg.Events.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("connecting event publisher: %w", err)
		}
		defer pub.Close()
	}

	sup := supervisor.New(supervisor.NewLLMProvider(provider), registry.WorkerRoles())
	graph := workflow.NewGraph(sup, registry)
	gen := report.New(!c.Plain)
	engine := workflow.NewEngine(graph, task.NewStore(), gen, pub, cfg.Orchestrator.MaxIterations)

	final := engine.Submit(context.Background(), c.ID, c.Query, c.Type)

	if c.JSON {
		out, err := json.MarshalIndent(final, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding final state: %w", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(final.FinalReport)
	}

	if final.Status == task.StatusFailed {
		return fmt.Errorf("task %s failed", final.TaskID)
	}
	return nil
}

// Run lists roles and capabilities.
func (c *RolesCmd) Run() error {
	fmt.Printf("%-12s %s\n", "ROLE", "CAPABILITIES")
	roles := append([]agent.Role{agent.RoleSupervisor}, agent.Workers()...)
	for _, role := range roles {
		caps := ""
		for i, tag := range agent.Capabilities(role) {
			if i > 0 {
				caps += ", "
			}
			caps += tag
		}
		fmt.Printf("%-12s %s\n", role, caps)
	}
	return nil
}

// Run prints version information.
func (c *VersionCmd) Run() error {
	fmt.Printf("overseer version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}

// loadConfig loads the config file, falling back to defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadDefault()
}

// buildProvider constructs the LLM provider shared by the supervisor's
// decision source and the built-in workers.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	providerName := cfg.LLM.Provider
	if providerName == "" && cfg.LLM.Model != "" {
		providerName = llm.InferProviderFromModel(cfg.LLM.Model)
	}
	if providerName == "" {
		return nil, fmt.Errorf("no LLM provider configured (set [llm] in overseer.toml)")
	}

	provider, err := llm.NewProvider(llm.ProviderConfig{
		Provider:    providerName,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.GetAPIKey(),
		MaxTokens:   cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
		RetryConfig: parseRetryConfig(cfg.LLM.MaxRetries, cfg.LLM.RetryBackoff),
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return provider, nil
}

// parseRetryConfig converts config retry fields to the provider's format.
func parseRetryConfig(maxRetries int, backoffStr string) llm.RetryConfig {
	cfg := llm.RetryConfig{
		MaxRetries: maxRetries,
	}
	if backoffStr != "" {
		if d, err := time.ParseDuration(backoffStr); err == nil {
			cfg.MaxBackoff = d
		}
	}
	return cfg
}
