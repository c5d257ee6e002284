package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes how a role behaves: its system prompt and the
// capability tags reported for introspection.
type Profile struct {
	Prompt       string   `yaml:"prompt"`
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// defaultPrompts are the built-in system prompts per worker role.
var defaultPrompts = map[Role]string{
	RoleResearcher: "You are a research agent. Gather relevant, accurate information " +
		"for the given query. Cite facts plainly and flag anything you could not verify.",
	RoleAnalyst: "You are an analysis agent. Examine the provided data, identify " +
		"patterns, and produce concise insights grounded in that data.",
	RoleWriter: "You are a writing agent. Produce clear, well-structured content " +
		"for the given query using the supplied context.",
	RoleReviewer: "You are a review agent. Assess the provided work for quality, " +
		"accuracy, and completeness, and state whether it meets the original request.",
}

// DefaultProfiles returns the built-in profile per worker role.
func DefaultProfiles() map[Role]Profile {
	out := make(map[Role]Profile, len(defaultPrompts))
	for role, prompt := range defaultPrompts {
		out[role] = Profile{Prompt: prompt, Capabilities: Capabilities(role)}
	}
	return out
}

// LoadProfiles reads per-role profile overrides from a YAML file and
// merges them over the defaults. Roles absent from the file keep their
// built-in prompt and capabilities.
func LoadProfiles(path string) (map[Role]Profile, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading role profiles: %w", err)
	}

	var overrides map[string]Profile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing role profiles: %w", err)
	}

	for name, p := range overrides {
		role := Role(name)
		if !Valid(role) {
			return nil, fmt.Errorf("unknown role %q in %s", name, path)
		}
		merged := profiles[role]
		if p.Prompt != "" {
			merged.Prompt = p.Prompt
		}
		if len(p.Capabilities) > 0 {
			merged.Capabilities = p.Capabilities
		}
		profiles[role] = merged
	}
	return profiles, nil
}
