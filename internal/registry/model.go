package registry

// ToolKindRAGSearch is the only tool kind the provider adapters currently
// translate into a callable declaration. The registry may list other kinds;
// adapters skip what they do not implement.
const ToolKindRAGSearch = "rag_search"

// OpenAIToolNaming carries the provider-specific name of a tool on OpenAI.
type OpenAIToolNaming struct {
	ToolName string `yaml:"tool_name"`
}

// GeminiToolNaming carries the provider-specific name of a tool on Gemini.
type GeminiToolNaming struct {
	FunctionName string `yaml:"function_name"`
}

// ToolImplementation maps a tool onto the per-provider naming used when the
// tool is declared to a model.
type ToolImplementation struct {
	OpenAI *OpenAIToolNaming `yaml:"openai,omitempty"`
	Gemini *GeminiToolNaming `yaml:"gemini,omitempty"`
}

// ToolDefaultParams holds retrieval defaults a tool suggests to its callers.
type ToolDefaultParams struct {
	MaxResults    int     `yaml:"max_results"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// ToolDefinition describes one callable tool in the registry. Immutable once
// loaded.
type ToolDefinition struct {
	ID             string             `yaml:"id"`
	Kind           string             `yaml:"kind"`
	Description    string             `yaml:"description"`
	Implementation ToolImplementation `yaml:"implementation"`
	DefaultParams  ToolDefaultParams  `yaml:"default_params"`
}

// KBScope is a filtered slice of the knowledge base an agent is allowed to
// search. An agent may declare several scopes; all of them are queried on a
// deep search, they are not alternatives.
type KBScope struct {
	Tool          string   `yaml:"tool"`     // must reference a known tool id
	Category      string   `yaml:"category"` // single category filter
	Jurisdictions []string `yaml:"jurisdictions,omitempty"`
	TagsAny       []string `yaml:"tags_any,omitempty"` // match-any tag filter
	MaxResults    int      `yaml:"max_results"`
	MinSimilarity float64  `yaml:"min_similarity"`
}

// ProviderRuntime is the per-provider model configuration of an agent.
type ProviderRuntime struct {
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature,omitempty"`
	Tools       []string `yaml:"tools"` // tool ids, must all exist in the registry
}

// AgentRuntime groups the runtime blocks for both supported providers.
type AgentRuntime struct {
	OpenAI *ProviderRuntime `yaml:"openai"`
	Gemini *ProviderRuntime `yaml:"gemini"`
}

// AgentDefinition describes one specialist agent: persona, model parameters
// and the knowledge-base scopes it may search.
type AgentDefinition struct {
	ID       string       `yaml:"id"`
	Label    string       `yaml:"label"`
	Group    string       `yaml:"group"`
	Persona  string       `yaml:"persona"` // used verbatim as system instructions
	Runtime  AgentRuntime `yaml:"runtime"`
	KBScopes []KBScope    `yaml:"kb_scopes,omitempty"`
}

// AgentRegistry is the top-level aggregate loaded from the definition file.
// It is read-only after load; concurrent reads are safe by construction.
type AgentRegistry struct {
	Version int               `yaml:"version"`
	Tools   []ToolDefinition  `yaml:"tools"`
	Agents  []AgentDefinition `yaml:"agents"`

	toolsByID  map[string]*ToolDefinition
	agentsByID map[string]*AgentDefinition
}

// buildIndex populates the lookup maps. On duplicate ids the first entry
// wins; Validate reports the duplicates.
func (r *AgentRegistry) buildIndex() {
	r.toolsByID = make(map[string]*ToolDefinition, len(r.Tools))
	for i := range r.Tools {
		t := &r.Tools[i]
		if _, exists := r.toolsByID[t.ID]; !exists {
			r.toolsByID[t.ID] = t
		}
	}
	r.agentsByID = make(map[string]*AgentDefinition, len(r.Agents))
	for i := range r.Agents {
		a := &r.Agents[i]
		if _, exists := r.agentsByID[a.ID]; !exists {
			r.agentsByID[a.ID] = a
		}
	}
}

func (r *AgentRegistry) ensureIndex() {
	if r.toolsByID == nil || r.agentsByID == nil {
		r.buildIndex()
	}
}
