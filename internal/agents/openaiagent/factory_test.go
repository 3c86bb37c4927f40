package openaiagent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
	"Atlas_KB/pkg/logger"
)

const factoryRegistryYAML = `
version: 1
tools:
  - id: deep_search_kb
    kind: rag_search
    description: "Search the knowledge base."
    implementation:
      openai:
        tool_name: deep_search_knowledge_base
      gemini:
        function_name: deepSearchKnowledgeBase
  - id: web_fetch
    kind: web_fetch
    description: "Fetch a web page."
agents:
  - id: ifrs_advisor
    label: "IFRS Advisor"
    group: accounting
    persona: "You are an IFRS advisor."
    runtime:
      openai:
        model: gpt-4o-mini
        temperature: 0.2
        tools: [deep_search_kb, web_fetch]
      gemini:
        model: gemini-2.0-flash
        tools: [deep_search_kb, web_fetch]
    kb_scopes:
      - tool: deep_search_kb
        category: IFRS
        jurisdictions: [GLOBAL]
        max_results: 10
      - tool: deep_search_kb
        category: BIG4
        tags_any: [ifrs]
        max_results: 5
  - id: bare_agent
    label: "Bare Agent"
    group: misc
    persona: "No tools."
    runtime:
      openai:
        model: gpt-4o-mini
        tools: []
      gemini:
        model: gemini-2.0-flash
        tools: []
`

func newTestFactory(t *testing.T, search deepsearch.SearchFunc) *Factory {
	t.Helper()
	reg, err := registry.Parse([]byte(factoryRegistryYAML))
	if err != nil {
		t.Fatalf("failed to parse test registry: %v", err)
	}
	log := logger.New("openaiagent_test", "")
	return NewFactory(reg, deepsearch.NewOrchestrator(search, log), log)
}

func noopSearch(ctx context.Context, params deepsearch.SearchParams) ([]deepsearch.Result, error) {
	return nil, nil
}

func TestCreateAgent(t *testing.T) {
	f := newTestFactory(t, noopSearch)

	agent, err := f.CreateAgent("ifrs_advisor")
	if err != nil {
		t.Fatalf("CreateAgent returned error: %v", err)
	}
	if agent.Model != "gpt-4o-mini" || agent.Temperature != 0.2 {
		t.Errorf("unexpected runtime: model=%q temperature=%v", agent.Model, agent.Temperature)
	}
	if agent.Instructions != "You are an IFRS advisor." {
		t.Errorf("unexpected instructions: %q", agent.Instructions)
	}

	// Only the rag_search tool translates; web_fetch has no OpenAI shape here.
	if len(agent.Tools) != 1 {
		t.Fatalf("expected 1 tool declaration, got %d", len(agent.Tools))
	}
	tool := agent.Tools[0]
	if tool.Type != openai.ToolTypeFunction {
		t.Errorf("unexpected tool type %q", tool.Type)
	}
	if tool.Function.Name != "deep_search_knowledge_base" {
		t.Errorf("unexpected function name %q", tool.Function.Name)
	}
}

func TestCreateAgentDefaultTemperature(t *testing.T) {
	f := newTestFactory(t, noopSearch)

	agent, err := f.CreateAgent("bare_agent")
	if err != nil {
		t.Fatalf("CreateAgent returned error: %v", err)
	}
	if agent.Temperature != defaultTemperature {
		t.Errorf("temperature: got %v, want %v", agent.Temperature, defaultTemperature)
	}
	if len(agent.Tools) != 0 {
		t.Errorf("expected no tool declarations, got %d", len(agent.Tools))
	}
}

func TestCreateAgentUnknownID(t *testing.T) {
	f := newTestFactory(t, noopSearch)

	_, err := f.CreateAgent("ghost")
	if !errors.Is(err, registry.ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should carry the requested id: %v", err)
	}
}

func TestHandleToolCall(t *testing.T) {
	var calls []deepsearch.SearchParams
	search := func(ctx context.Context, params deepsearch.SearchParams) ([]deepsearch.Result, error) {
		calls = append(calls, params)
		return []deepsearch.Result{{
			ID:      "doc-" + params.Category,
			Content: "guidance",
			Metadata: deepsearch.ResultMetadata{
				Source:     "kb",
				Similarity: 0.8,
			},
		}}, nil
	}
	f := newTestFactory(t, search)

	args, _ := json.Marshal(map[string]string{"query": "revenue recognition"})
	out, err := f.HandleToolCall(context.Background(), "ifrs_advisor", "deep_search_knowledge_base", args)
	if err != nil {
		t.Fatalf("HandleToolCall returned error: %v", err)
	}

	// Both configured scopes must be searched.
	if len(calls) != 2 {
		t.Fatalf("expected 2 scope searches, got %d", len(calls))
	}
	if calls[0].Category != "IFRS" || calls[1].Category != "BIG4" {
		t.Errorf("unexpected scope order: %q, %q", calls[0].Category, calls[1].Category)
	}
	if calls[0].Query != "revenue recognition" {
		t.Errorf("query not forwarded: %q", calls[0].Query)
	}

	if !strings.HasPrefix(out, "## Knowledge Base Results") {
		t.Errorf("output missing header:\n%s", out)
	}
}

func TestHandleToolCallUnknownTool(t *testing.T) {
	f := newTestFactory(t, noopSearch)

	args, _ := json.Marshal(map[string]string{"query": "q"})
	_, err := f.HandleToolCall(context.Background(), "ifrs_advisor", "mystery_tool", args)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "mystery_tool") || !strings.Contains(err.Error(), "ifrs_advisor") {
		t.Errorf("error should name the tool and agent: %v", err)
	}
}

func TestHandleToolCallBadArgs(t *testing.T) {
	f := newTestFactory(t, noopSearch)

	if _, err := f.HandleToolCall(context.Background(), "ifrs_advisor", "deep_search_knowledge_base", json.RawMessage(`{]`)); err == nil {
		t.Error("expected error for malformed arguments")
	}
	if _, err := f.HandleToolCall(context.Background(), "ifrs_advisor", "deep_search_knowledge_base", json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for missing query")
	}
}

func TestListAvailableAgents(t *testing.T) {
	f := newTestFactory(t, noopSearch)

	if got := len(f.ListAvailableAgents()); got != 2 {
		t.Errorf("ListAvailableAgents returned %d agents, want 2", got)
	}
	if got := len(f.AgentsByGroup("accounting")); got != 1 {
		t.Errorf("AgentsByGroup(accounting) returned %d agents, want 1", got)
	}
}
