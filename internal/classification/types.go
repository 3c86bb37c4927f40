package classification

// Source tells which classifier stage produced a classification.
type Source string

const (
	SourceHeuristic Source = "HEURISTIC"
	SourceLLM       Source = "LLM"
	SourceMixed     Source = "MIXED"
	SourceManual    Source = "MANUAL"
)

const (
	// CategoryUnknown is the sentinel for sources the classifiers cannot place.
	CategoryUnknown = "UNKNOWN"
	// JurisdictionGlobal is the default jurisdiction code.
	JurisdictionGlobal = "GLOBAL"
)

// Controlled vocabularies. The model classifier prompt enumerates these and
// its output is rejected when it strays outside them.
var (
	Categories = []string{
		"IFRS", "ISA", "TAX", "ETHICS", "BIG4", "PRO",
		"US_GAAP", "REG", "CORP", "AML", "LAW", CategoryUnknown,
	}
	Jurisdictions = []string{
		JurisdictionGlobal, "RW", "MT", "US", "UK", "EU",
		"CA", "KE", "UG", "TZ", "ZA",
	}
	SourceTypes = []string{
		"ifrs_foundation", "iaasb", "acca", "cpa", "oecd", "tax_authority",
		"gaap", "gazette", "regulatory_pdf", "company_policy", "big_four", "academic",
	}
	VerificationLevels = []string{"primary", "secondary", "tertiary"}
	SourcePriorities   = []string{"authoritative", "regulatory", "interpretive", "supplementary"}
)

// WebSourceClassification is the classification of one web source. Callers
// persist it if desired; this subsystem keeps no state per call.
type WebSourceClassification struct {
	Category          string   `json:"category"`
	JurisdictionCode  string   `json:"jurisdiction_code"`
	Tags              []string `json:"tags"`
	Confidence        float64  `json:"confidence"` // 0..100
	Source            Source   `json:"source"`
	SourceType        string   `json:"source_type,omitempty"`
	VerificationLevel string   `json:"verification_level,omitempty"`
	SourcePriority    string   `json:"source_priority,omitempty"`
}

// Input is one web source to classify: the URL plus whatever page context the
// caller has on hand.
type Input struct {
	URL         string `json:"url"`
	PageTitle   string `json:"page_title,omitempty"`
	PageSnippet string `json:"page_snippet,omitempty"`
}
