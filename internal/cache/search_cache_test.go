package cache

import (
	"strings"
	"testing"

	"Atlas_KB/internal/deepsearch"
	"Atlas_KB/internal/registry"
)

func TestKeyDeterministic(t *testing.T) {
	scopes := []registry.KBScope{{Tool: "kb", Category: "IFRS", Jurisdictions: []string{"GLOBAL"}}}

	a := Key("ifrs_advisor", "revenue", scopes, nil)
	b := Key("ifrs_advisor", "revenue", scopes, nil)
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "atlas:deepsearch:") {
		t.Errorf("key missing namespace prefix: %q", a)
	}
}

func TestKeyVariesWithInputs(t *testing.T) {
	scopes := []registry.KBScope{{Tool: "kb", Category: "IFRS"}}
	base := Key("ifrs_advisor", "revenue", scopes, nil)

	if Key("other_agent", "revenue", scopes, nil) == base {
		t.Error("key must vary with agent id")
	}
	if Key("ifrs_advisor", "leases", scopes, nil) == base {
		t.Error("key must vary with query")
	}
	if Key("ifrs_advisor", "revenue", []registry.KBScope{{Tool: "kb", Category: "TAX"}}, nil) == base {
		t.Error("key must vary with scopes")
	}
	mc := 3
	if Key("ifrs_advisor", "revenue", scopes, &deepsearch.Overrides{MatchCount: &mc}) == base {
		t.Error("key must vary with overrides")
	}
}
