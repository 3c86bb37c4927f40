package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAgentNotFound is returned by the config builders when the requested
// agent id does not exist. Lookup operations never return it; they report a
// miss through their boolean result instead.
var ErrAgentNotFound = errors.New("agent not found")

// ProviderConfig is the resolved runtime configuration of one agent for one
// provider, ready for an adapter factory to consume.
type ProviderConfig struct {
	AgentID      string
	Label        string
	Model        string
	Temperature  *float32 // nil when neither runtime block sets one
	Instructions string   // trimmed persona, used verbatim as system instructions
	ToolIDs      []string
	KBScopes     []KBScope
}

// Agent returns the agent with the given id, or false when no such agent
// exists. It never fails; listing/filtering callers decide how to treat a miss.
func (r *AgentRegistry) Agent(id string) (*AgentDefinition, bool) {
	r.ensureIndex()
	agent, ok := r.agentsByID[id]
	return agent, ok
}

// Tool returns the tool definition with the given id, or false on a miss.
func (r *AgentRegistry) Tool(id string) (*ToolDefinition, bool) {
	r.ensureIndex()
	tool, ok := r.toolsByID[id]
	return tool, ok
}

// AllAgents returns every agent in registry order.
func (r *AgentRegistry) AllAgents() []*AgentDefinition {
	agents := make([]*AgentDefinition, 0, len(r.Agents))
	for i := range r.Agents {
		agents = append(agents, &r.Agents[i])
	}
	return agents
}

// AgentsByGroup returns the agents belonging to the given group. Unknown
// groups yield an empty slice.
func (r *AgentRegistry) AgentsByGroup(group string) []*AgentDefinition {
	var agents []*AgentDefinition
	for i := range r.Agents {
		if r.Agents[i].Group == group {
			agents = append(agents, &r.Agents[i])
		}
	}
	return agents
}

// AgentKBScopes returns the knowledge-base scopes of the given agent. Unknown
// agent ids yield an empty slice.
func (r *AgentRegistry) AgentKBScopes(id string) []KBScope {
	agent, ok := r.Agent(id)
	if !ok {
		return nil
	}
	return agent.KBScopes
}

// OpenAIConfig resolves the OpenAI runtime configuration for an agent. Unlike
// the plain lookups it fails for an unknown id: callers on this path are
// building a runtime and have no sensible default.
func (r *AgentRegistry) OpenAIConfig(id string) (*ProviderConfig, error) {
	agent, ok := r.Agent(id)
	if !ok {
		return nil, fmt.Errorf("agent %q: %w", id, ErrAgentNotFound)
	}
	rt := agent.Runtime.OpenAI
	if rt == nil {
		return nil, fmt.Errorf("agent %q has no openai runtime configuration", id)
	}
	return &ProviderConfig{
		AgentID:      agent.ID,
		Label:        agent.Label,
		Model:        rt.Model,
		Temperature:  rt.Temperature,
		Instructions: strings.TrimSpace(agent.Persona),
		ToolIDs:      rt.Tools,
		KBScopes:     agent.KBScopes,
	}, nil
}

// GeminiConfig resolves the Gemini runtime configuration for an agent. When
// the Gemini block does not set a temperature the OpenAI-configured value is
// used instead.
func (r *AgentRegistry) GeminiConfig(id string) (*ProviderConfig, error) {
	agent, ok := r.Agent(id)
	if !ok {
		return nil, fmt.Errorf("agent %q: %w", id, ErrAgentNotFound)
	}
	rt := agent.Runtime.Gemini
	if rt == nil {
		return nil, fmt.Errorf("agent %q has no gemini runtime configuration", id)
	}
	temperature := rt.Temperature
	if temperature == nil && agent.Runtime.OpenAI != nil {
		temperature = agent.Runtime.OpenAI.Temperature
	}
	return &ProviderConfig{
		AgentID:      agent.ID,
		Label:        agent.Label,
		Model:        rt.Model,
		Temperature:  temperature,
		Instructions: strings.TrimSpace(agent.Persona),
		ToolIDs:      rt.Tools,
		KBScopes:     agent.KBScopes,
	}, nil
}

// Stats summarizes the registry contents for diagnostics and admin UIs.
type Stats struct {
	TotalAgents int            `json:"total_agents"`
	TotalTools  int            `json:"total_tools"`
	Groups      map[string]int `json:"groups"`
	Models      map[string]int `json:"models"`
	Version     int            `json:"version"`
}

// RegistryStats counts agents per group and per OpenAI model.
func (r *AgentRegistry) RegistryStats() Stats {
	stats := Stats{
		TotalAgents: len(r.Agents),
		TotalTools:  len(r.Tools),
		Groups:      make(map[string]int),
		Models:      make(map[string]int),
		Version:     r.Version,
	}
	for _, agent := range r.Agents {
		stats.Groups[agent.Group]++
		if agent.Runtime.OpenAI != nil {
			stats.Models[agent.Runtime.OpenAI.Model]++
		}
	}
	return stats
}
