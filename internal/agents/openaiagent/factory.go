package openaiagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

// ErrUnknownTool is returned when a tool-invocation callback names a tool this
// factory does not recognize. A model should never call an undeclared tool, so
// this indicates a declaration/implementation mismatch and is never recovered.
var ErrUnknownTool = errors.New("unknown tool")

// defaultTemperature applies when the registry sets no temperature for the
// agent's runtime.
const defaultTemperature float32 = 0.1

// Agent is a ready-to-run OpenAI agent configuration built from the registry.
type Agent struct {
	ID           string
	Label        string
	Model        string
	Instructions string // trimmed persona, verbatim
	Temperature  float32
	Tools        []openai.Tool
}

// Factory builds OpenAI-native agent configurations from the registry and
// routes their tool invocations into the deep-search orchestrator. It holds
// no retrieval logic of its own; scope filtering and ranking live in the
// orchestrator so the semantics cannot drift between providers.
type Factory struct {
	reg    *registry.AgentRegistry
	search *deepsearch.Orchestrator
	log    *logger.Logger
}

// NewFactory creates a Factory.
func NewFactory(reg *registry.AgentRegistry, search *deepsearch.Orchestrator, log *logger.Logger) *Factory {
	return &Factory{
		reg:    reg,
		search: search,
		log:    log,
	}
}

// CreateAgent resolves the agent's OpenAI runtime into a runnable
// configuration. It fails for an unknown agent id; the error carries the id.
func (f *Factory) CreateAgent(agentID string) (*Agent, error) {
	cfg, err := f.reg.OpenAIConfig(agentID)
	if err != nil {
		return nil, err
	}

	temperature := defaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &Agent{
		ID:           cfg.AgentID,
		Label:        cfg.Label,
		Model:        cfg.Model,
		Instructions: cfg.Instructions,
		Temperature:  temperature,
		Tools:        f.buildTools(cfg.ToolIDs),
	}, nil
}

// buildTools translates the agent's declared tool ids into OpenAI tool
// declarations. Only the knowledge-base search kind is translated; unknown
// kinds are skipped so the registry can list tools this adapter does not
// implement yet.
func (f *Factory) buildTools(toolIDs []string) []openai.Tool {
	var tools []openai.Tool
	for _, toolID := range toolIDs {
		def, ok := f.reg.Tool(toolID)
		if !ok {
			f.log.Warn(fmt.Sprintf("Skipping undeclared tool %q", toolID))
			continue
		}
		switch def.Kind {
		case registry.ToolKindRAGSearch:
			if def.Implementation.OpenAI == nil {
				continue
			}
			tools = append(tools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        def.Implementation.OpenAI.ToolName,
					Description: def.Description,
					Parameters:  searchToolParameters(),
				},
			})
		default:
			// Tool kinds without an OpenAI runtime produce no declaration.
		}
	}
	return tools
}

// searchToolParameters is the fixed JSON-schema parameter block of the
// knowledge-base search tool: a single required query string.
func searchToolParameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query to run against the knowledge base.",
			},
		},
		"required": []string{"query"},
	}
}

// toolCallArgs is the argument object of a knowledge-base search invocation.
type toolCallArgs struct {
	Query string `json:"query"`
}

// HandleToolCall routes a model's tool invocation back into the deep-search
// orchestrator using the agent's configured scope list, and formats the
// results into the plain-text block the model consumes.
func (f *Factory) HandleToolCall(ctx context.Context, agentID, toolName string, rawArgs json.RawMessage) (string, error) {
	cfg, err := f.reg.OpenAIConfig(agentID)
	if err != nil {
		return "", err
	}

	if !f.recognizesTool(cfg.ToolIDs, toolName) {
		return "", fmt.Errorf("%w: %q for agent %q", ErrUnknownTool, toolName, agentID)
	}

	var args toolCallArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments for tool %q: %w", toolName, err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("tool %q requires a non-empty query", toolName)
	}

	results, err := f.search.Search(ctx, args.Query, cfg.KBScopes, nil)
	if err != nil {
		return "", err
	}
	return deepsearch.FormatResultsForPrompt(results), nil
}

// recognizesTool reports whether toolName is the OpenAI name of a
// knowledge-base search tool the agent declares.
func (f *Factory) recognizesTool(toolIDs []string, toolName string) bool {
	for _, toolID := range toolIDs {
		def, ok := f.reg.Tool(toolID)
		if !ok || def.Kind != registry.ToolKindRAGSearch || def.Implementation.OpenAI == nil {
			continue
		}
		if def.Implementation.OpenAI.ToolName == toolName {
			return true
		}
	}
	return false
}

// ListAvailableAgents returns every agent in the registry. It never fails.
func (f *Factory) ListAvailableAgents() []*registry.AgentDefinition {
	return f.reg.AllAgents()
}

// AgentsByGroup returns the agents in the given group; unknown groups yield
// an empty collection.
func (f *Factory) AgentsByGroup(group string) []*registry.AgentDefinition {
	return f.reg.AgentsByGroup(group)
}
