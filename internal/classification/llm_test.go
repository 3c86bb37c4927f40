package classification

import (
	"context"
	"strings"
	"testing"
)

func TestParseModelResult(t *testing.T) {
	raw := `{"category":"tax","jurisdiction_code":"rw","tags":["vat"],"source_type":"tax_authority","verification_level":"primary","confidence":70}`
	got, err := parseModelResult(raw)
	if err != nil {
		t.Fatalf("parseModelResult returned error: %v", err)
	}
	if got.Category != "TAX" || got.JurisdictionCode != "RW" {
		t.Errorf("category/jurisdiction not normalized: %+v", got)
	}
	if got.Confidence != 70 {
		t.Errorf("confidence: got %v, want 70", got.Confidence)
	}
}

func TestParseModelResultCodeFence(t *testing.T) {
	raw := "```json\n{\"category\":\"IFRS\",\"jurisdiction_code\":\"GLOBAL\",\"tags\":[],\"confidence\":88}\n```"
	got, err := parseModelResult(raw)
	if err != nil {
		t.Fatalf("parseModelResult returned error: %v", err)
	}
	if got.Category != "IFRS" {
		t.Errorf("category: got %q, want IFRS", got.Category)
	}
}

func TestParseModelResultRejects(t *testing.T) {
	cases := map[string]string{
		"prose":                 "probably an IFRS site",
		"unknown category":      `{"category":"FANCY_NEW","confidence":50}`,
		"unknown jurisdiction":  `{"category":"TAX","jurisdiction_code":"XX","confidence":50}`,
		"confidence above 100":  `{"category":"TAX","confidence":150}`,
		"negative confidence":   `{"category":"TAX","confidence":-1}`,
		"wrong confidence type": `{"category":"TAX","confidence":"high"}`,
	}
	for name, raw := range cases {
		if _, err := parseModelResult(raw); err == nil {
			t.Errorf("%s: expected error for %q", name, raw)
		}
	}
}

func TestBuildPromptPinsVocabularies(t *testing.T) {
	m := NewModelClassifier(nil)
	prompt := m.buildPrompt(
		Input{URL: "https://example.mt/doc", PageTitle: "VAT Guidance", PageSnippet: "Rates applicable from 2025."},
		WebSourceClassification{Category: CategoryUnknown, JurisdictionCode: "MT"},
	)

	for _, want := range []string{
		"https://example.mt/doc",
		"VAT Guidance",
		"Rates applicable from 2025.",
		"may be incorrect",
		strings.Join(Categories, ", "),
		strings.Join(Jurisdictions, ", "),
		strings.Join(SourceTypes, ", "),
		strings.Join(VerificationLevels, ", "),
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestModelClassifierWrapsClientError(t *testing.T) {
	client := &fakeLLM{err: context.DeadlineExceeded}
	m := NewModelClassifier(client)

	_, err := m.Classify(context.Background(), Input{URL: "https://x.example"}, WebSourceClassification{})
	if err == nil {
		t.Fatal("expected error from failing client")
	}
	if !strings.Contains(err.Error(), "model classification failed") {
		t.Errorf("unexpected error message: %v", err)
	}
}
