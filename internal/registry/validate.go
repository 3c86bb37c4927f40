package registry

import (
	"fmt"
	"strings"
)

// ValidationResult reports every integrity violation found in a registry.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks the registry invariants without failing fast: duplicate
// agent ids, missing required agent fields, and tool references that do not
// resolve. It returns the full list of violations so a single pass surfaces
// every problem for operator feedback.
func (r *AgentRegistry) Validate() ValidationResult {
	var errs []string

	toolIDs := make(map[string]bool, len(r.Tools))
	for _, t := range r.Tools {
		toolIDs[t.ID] = true
	}

	seen := make(map[string]bool, len(r.Agents))
	for i, agent := range r.Agents {
		ref := agent.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i)
		}

		// Duplicate ids: one error per repeated occurrence.
		if agent.ID != "" {
			if seen[agent.ID] {
				errs = append(errs, fmt.Sprintf("duplicate agent id %q", agent.ID))
			}
			seen[agent.ID] = true
		}

		// Required fields: one error per offending agent, listing everything
		// that is missing.
		var missing []string
		if agent.ID == "" {
			missing = append(missing, "id")
		}
		if agent.Label == "" {
			missing = append(missing, "label")
		}
		if agent.Group == "" {
			missing = append(missing, "group")
		}
		if strings.TrimSpace(agent.Persona) == "" {
			missing = append(missing, "persona")
		}
		if agent.Runtime.OpenAI == nil {
			missing = append(missing, "runtime.openai")
		}
		if agent.Runtime.Gemini == nil {
			missing = append(missing, "runtime.gemini")
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Sprintf("agent %q is missing required fields: %s", ref, strings.Join(missing, ", ")))
		}

		// Tool references: one error per unresolved reference.
		if agent.Runtime.OpenAI != nil {
			for _, toolID := range agent.Runtime.OpenAI.Tools {
				if !toolIDs[toolID] {
					errs = append(errs, fmt.Sprintf("agent %q references unknown tool %q in runtime.openai", ref, toolID))
				}
			}
		}
		if agent.Runtime.Gemini != nil {
			for _, toolID := range agent.Runtime.Gemini.Tools {
				if !toolIDs[toolID] {
					errs = append(errs, fmt.Sprintf("agent %q references unknown tool %q in runtime.gemini", ref, toolID))
				}
			}
		}
		for _, scope := range agent.KBScopes {
			if !toolIDs[scope.Tool] {
				errs = append(errs, fmt.Sprintf("agent %q kb_scope references unknown tool %q", ref, scope.Tool))
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
