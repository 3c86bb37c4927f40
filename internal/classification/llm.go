package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"Atlas_KB/internal/llm"
)

// ModelResult is the structured output the model classifier expects back.
type ModelResult struct {
	Category          string   `json:"category"`
	JurisdictionCode  string   `json:"jurisdiction_code"`
	Tags              []string `json:"tags"`
	SourceType        string   `json:"source_type"`
	VerificationLevel string   `json:"verification_level"`
	Confidence        float64  `json:"confidence"`
}

// ModelClassifier escalates hard web sources to a completion model. The
// prompt pins the controlled vocabularies so the model cannot invent new
// categories or jurisdiction codes.
type ModelClassifier struct {
	client llm.Client
}

// NewModelClassifier creates a ModelClassifier on top of a completion client.
func NewModelClassifier(client llm.Client) *ModelClassifier {
	return &ModelClassifier{client: client}
}

// Classify asks the model to classify the source, passing the heuristic
// result along as a possibly-wrong hint. Any transport failure, malformed
// JSON, or out-of-vocabulary answer is an error; the caller falls back to the
// heuristic result.
func (m *ModelClassifier) Classify(ctx context.Context, input Input, hint WebSourceClassification) (*ModelResult, error) {
	raw, err := m.client.Generate(ctx, m.buildPrompt(input, hint))
	if err != nil {
		return nil, fmt.Errorf("model classification failed: %w", err)
	}

	result, err := parseModelResult(raw)
	if err != nil {
		return nil, fmt.Errorf("model classification returned unusable output: %w", err)
	}
	return result, nil
}

func (m *ModelClassifier) buildPrompt(input Input, hint WebSourceClassification) string {
	var b strings.Builder
	b.WriteString("You classify web sources for an accounting and audit knowledge base.\n\n")
	fmt.Fprintf(&b, "URL: %s\n", input.URL)
	if input.PageTitle != "" {
		fmt.Fprintf(&b, "Page title: %s\n", input.PageTitle)
	}
	if input.PageSnippet != "" {
		fmt.Fprintf(&b, "Page snippet: %s\n", input.PageSnippet)
	}
	fmt.Fprintf(&b, "\nA rule-based pass suggested category %q and jurisdiction %q, but it may be incorrect.\n\n", hint.Category, hint.JurisdictionCode)
	fmt.Fprintf(&b, "Pick category from: %s\n", strings.Join(Categories, ", "))
	fmt.Fprintf(&b, "Pick jurisdiction_code from: %s\n", strings.Join(Jurisdictions, ", "))
	fmt.Fprintf(&b, "Pick source_type from: %s\n", strings.Join(SourceTypes, ", "))
	fmt.Fprintf(&b, "Pick verification_level from: %s\n", strings.Join(VerificationLevels, ", "))
	b.WriteString("\nRespond with only a JSON object of this exact shape:\n")
	b.WriteString(`{"category": "...", "jurisdiction_code": "...", "tags": ["..."], "source_type": "...", "verification_level": "...", "confidence": 0-100}`)
	b.WriteString("\n")
	return b.String()
}

// parseModelResult decodes the model output, tolerating a markdown code fence
// around the JSON, and checks the answer against the controlled vocabularies.
func parseModelResult(raw string) (*ModelResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result ModelResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	result.Category = strings.ToUpper(strings.TrimSpace(result.Category))
	result.JurisdictionCode = strings.ToUpper(strings.TrimSpace(result.JurisdictionCode))

	if result.Category != "" && !contains(Categories, result.Category) {
		return nil, fmt.Errorf("category %q is outside the controlled vocabulary", result.Category)
	}
	if result.JurisdictionCode != "" && !contains(Jurisdictions, result.JurisdictionCode) {
		return nil, fmt.Errorf("jurisdiction_code %q is outside the controlled vocabulary", result.JurisdictionCode)
	}
	if result.Confidence < 0 || result.Confidence > 100 {
		return nil, fmt.Errorf("confidence %.1f is outside [0, 100]", result.Confidence)
	}
	return &result, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
