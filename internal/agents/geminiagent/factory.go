package geminiagent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

// ErrUnknownTool is returned when a function-call callback names a function
// this factory does not recognize. Never recovered: it indicates a mismatch
// between what was declared to the model and what the adapter implements.
var ErrUnknownTool = errors.New("unknown tool")

// defaultTemperature applies when neither the Gemini nor the OpenAI runtime
// block sets a temperature for the agent.
const defaultTemperature float32 = 0.1

// Agent is a ready-to-run Gemini agent configuration built from the registry.
type Agent struct {
	ID           string
	Label        string
	Model        string
	Instructions string // trimmed persona, verbatim
	Temperature  float32
	Tools        []*genai.FunctionDeclaration
}

// Factory builds Gemini-native agent configurations from the registry and
// routes their function calls into the deep-search orchestrator. Retrieval
// semantics live in the orchestrator, defined exactly once for all providers.
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

// CreateAgent resolves the agent's Gemini runtime into a runnable
// configuration. The registry falls the temperature back to the OpenAI value
// when the Gemini block does not set one. Fails for an unknown agent id; the
// error carries the id.
func (f *Factory) CreateAgent(agentID string) (*Agent, error) {
	cfg, err := f.reg.GeminiConfig(agentID)
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
		Tools:        f.buildDeclarations(cfg.ToolIDs),
	}, nil
}

// buildDeclarations translates the agent's declared tool ids into Gemini
// function declarations. Only the knowledge-base search kind is translated;
// unknown kinds are skipped rather than erroring.
func (f *Factory) buildDeclarations(toolIDs []string) []*genai.FunctionDeclaration {
	var declarations []*genai.FunctionDeclaration
	for _, toolID := range toolIDs {
		def, ok := f.reg.Tool(toolID)
		if !ok {
			f.log.Warn(fmt.Sprintf("Skipping undeclared tool %q", toolID))
			continue
		}
		switch def.Kind {
		case registry.ToolKindRAGSearch:
			if def.Implementation.Gemini == nil {
				continue
			}
			declarations = append(declarations, &genai.FunctionDeclaration{
				Name:        def.Implementation.Gemini.FunctionName,
				Description: def.Description,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "The search query to run against the knowledge base.",
						},
					},
					Required: []string{"query"},
				},
			})
		default:
			// Tool kinds without a Gemini runtime produce no declaration.
		}
	}
	return declarations
}

// HandleToolCall routes a model function call back into the deep-search
// orchestrator using the agent's configured scope list. Args is the argument
// map of the genai function call.
func (f *Factory) HandleToolCall(ctx context.Context, agentID, toolName string, args map[string]interface{}) (string, error) {
	cfg, err := f.reg.GeminiConfig(agentID)
	if err != nil {
		return "", err
	}

	if !f.recognizesTool(cfg.ToolIDs, toolName) {
		return "", fmt.Errorf("%w: %q for agent %q", ErrUnknownTool, toolName, agentID)
	}

	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("tool %q requires a non-empty query", toolName)
	}

	results, err := f.search.Search(ctx, query, cfg.KBScopes, nil)
	if err != nil {
		return "", err
	}
	return deepsearch.FormatResultsForPrompt(results), nil
}

// recognizesTool reports whether toolName is the Gemini function name of a
// knowledge-base search tool the agent declares.
func (f *Factory) recognizesTool(toolIDs []string, toolName string) bool {
	for _, toolID := range toolIDs {
		def, ok := f.reg.Tool(toolID)
		if !ok || def.Kind != registry.ToolKindRAGSearch || def.Implementation.Gemini == nil {
			continue
		}
		if def.Implementation.Gemini.FunctionName == toolName {
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
