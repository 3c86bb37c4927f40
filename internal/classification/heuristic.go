package classification

import (
	"net/url"
	"strings"
	"sync"
)

const (
	// ruleMatchConfidence is the confidence assigned when a domain rule matches.
	ruleMatchConfidence = 85
	// tldFallbackConfidence is the confidence assigned when only the top-level
	// domain could be mapped to a jurisdiction.
	tldFallbackConfidence = 20
)

// DomainRule maps a registrable domain to a classification. An exact host
// match anywhere in the table wins over a dot-separated suffix match, so a
// rule for "ifrs.org" covers "www.ifrs.org" without shadowing a dedicated
// subdomain rule.
type DomainRule struct {
	Domain            string
	Category          string
	JurisdictionCode  string
	Tags              []string
	SourceType        string
	VerificationLevel string
	SourcePriority    string
}

// tldJurisdictions maps country-code TLDs to jurisdiction codes for the
// low-confidence fallback path.
var tldJurisdictions = map[string]string{
	".rw": "RW",
	".mt": "MT",
	".uk": "UK",
	".ca": "CA",
	".us": "US",
	".eu": "EU",
	".ke": "KE",
	".ug": "UG",
	".tz": "TZ",
	".za": "ZA",
}

// defaultDomainRules is the seed rule table covering the standard setters,
// regulators, professional bodies and major firms the knowledge base tracks.
func defaultDomainRules() []DomainRule {
	return []DomainRule{
		// Global standard setters.
		{Domain: "ifrs.org", Category: "IFRS", JurisdictionCode: "GLOBAL", Tags: []string{"ifrs", "ias", "standards", "financial-reporting"}, SourceType: "ifrs_foundation", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "iaasb.org", Category: "ISA", JurisdictionCode: "GLOBAL", Tags: []string{"isa", "audit", "standards", "assurance"}, SourceType: "iaasb", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "ifac.org", Category: "IFRS", JurisdictionCode: "GLOBAL", Tags: []string{"ifac", "profession", "standards"}, SourceType: "ifrs_foundation", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "ethicsboard.org", Category: "ETHICS", JurisdictionCode: "GLOBAL", Tags: []string{"iesba", "ethics", "code-of-conduct"}, SourceType: "iaasb", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "oecd.org", Category: "TAX", JurisdictionCode: "GLOBAL", Tags: []string{"oecd", "tax", "beps", "transfer-pricing"}, SourceType: "oecd", VerificationLevel: "primary", SourcePriority: "authoritative"},
		// Big four.
		{Domain: "kpmg.com", Category: "BIG4", JurisdictionCode: "GLOBAL", Tags: []string{"kpmg", "ifrs", "audit", "tax", "insights"}, SourceType: "big_four", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "pwc.com", Category: "BIG4", JurisdictionCode: "GLOBAL", Tags: []string{"pwc", "audit", "tax", "consulting"}, SourceType: "big_four", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "viewpoint.pwc.com", Category: "BIG4", JurisdictionCode: "GLOBAL", Tags: []string{"pwc", "ifrs", "us-gaap", "accounting"}, SourceType: "big_four", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "iasplus.com", Category: "IFRS", JurisdictionCode: "GLOBAL", Tags: []string{"deloitte", "ifrs", "ias", "updates"}, SourceType: "big_four", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "deloitte.com", Category: "BIG4", JurisdictionCode: "GLOBAL", Tags: []string{"deloitte", "audit", "consulting"}, SourceType: "big_four", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "ey.com", Category: "BIG4", JurisdictionCode: "GLOBAL", Tags: []string{"ey", "ifrs", "audit", "tax"}, SourceType: "big_four", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		// Professional bodies.
		{Domain: "accaglobal.com", Category: "PRO", JurisdictionCode: "GLOBAL", Tags: []string{"acca", "exams", "technical", "cpd"}, SourceType: "acca", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "aicpa.org", Category: "PRO", JurisdictionCode: "US", Tags: []string{"aicpa", "cpa", "us-gaap"}, SourceType: "cpa", VerificationLevel: "primary", SourcePriority: "regulatory"},
		{Domain: "aicpa-cima.com", Category: "PRO", JurisdictionCode: "GLOBAL", Tags: []string{"aicpa", "cima", "management-accounting"}, SourceType: "cpa", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		{Domain: "cpacanada.ca", Category: "PRO", JurisdictionCode: "CA", Tags: []string{"cpa-canada", "canadian-gaap"}, SourceType: "cpa", VerificationLevel: "primary", SourcePriority: "regulatory"},
		{Domain: "icaew.com", Category: "PRO", JurisdictionCode: "UK", Tags: []string{"icaew", "uk-gaap", "audit"}, SourceType: "acca", VerificationLevel: "primary", SourcePriority: "regulatory"},
		{Domain: "cimaglobal.com", Category: "PRO", JurisdictionCode: "GLOBAL", Tags: []string{"cima", "management-accounting"}, SourceType: "acca", VerificationLevel: "secondary", SourcePriority: "interpretive"},
		// US standards and regulators.
		{Domain: "fasb.org", Category: "US_GAAP", JurisdictionCode: "US", Tags: []string{"us-gaap", "fasb", "accounting-standards"}, SourceType: "gaap", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "sec.gov", Category: "REG", JurisdictionCode: "US", Tags: []string{"sec", "securities", "edgar", "regulation"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "authoritative"},
		// Rwanda.
		{Domain: "rra.gov.rw", Category: "TAX", JurisdictionCode: "RW", Tags: []string{"rwanda", "tax", "rra", "vat", "income-tax"}, SourceType: "tax_authority", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "rdb.rw", Category: "CORP", JurisdictionCode: "RW", Tags: []string{"rwanda", "company", "investment", "registration"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "regulatory"},
		{Domain: "bnr.rw", Category: "REG", JurisdictionCode: "RW", Tags: []string{"rwanda", "banking", "regulation", "monetary-policy"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "regulatory"},
		// Malta.
		{Domain: "cfr.gov.mt", Category: "TAX", JurisdictionCode: "MT", Tags: []string{"malta", "tax", "cfr", "vat", "income-tax"}, SourceType: "tax_authority", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "mbr.mt", Category: "CORP", JurisdictionCode: "MT", Tags: []string{"malta", "company-registry", "mbr"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "regulatory"},
		{Domain: "mfsa.mt", Category: "REG", JurisdictionCode: "MT", Tags: []string{"malta", "mfsa", "financial", "regulation"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "mfsa.com.mt", Category: "REG", JurisdictionCode: "MT", Tags: []string{"malta", "mfsa", "financial", "regulation"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "fiaumalta.org", Category: "AML", JurisdictionCode: "MT", Tags: []string{"aml", "kyc", "fiau", "malta"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "mia.org.mt", Category: "PRO", JurisdictionCode: "MT", Tags: []string{"malta", "mia", "accountants", "cpd"}, SourceType: "acca", VerificationLevel: "primary", SourcePriority: "regulatory"},
		// East and South African revenue authorities.
		{Domain: "kra.go.ke", Category: "TAX", JurisdictionCode: "KE", Tags: []string{"kenya", "tax", "kra"}, SourceType: "tax_authority", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "ura.go.ug", Category: "TAX", JurisdictionCode: "UG", Tags: []string{"uganda", "tax", "ura"}, SourceType: "tax_authority", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "tra.go.tz", Category: "TAX", JurisdictionCode: "TZ", Tags: []string{"tanzania", "tax", "tra"}, SourceType: "tax_authority", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "sars.gov.za", Category: "TAX", JurisdictionCode: "ZA", Tags: []string{"south-africa", "tax", "sars"}, SourceType: "tax_authority", VerificationLevel: "primary", SourcePriority: "authoritative"},
		// EU.
		{Domain: "ec.europa.eu", Category: "REG", JurisdictionCode: "EU", Tags: []string{"eu", "regulation", "directive"}, SourceType: "regulatory_pdf", VerificationLevel: "primary", SourcePriority: "authoritative"},
		{Domain: "eur-lex.europa.eu", Category: "LAW", JurisdictionCode: "EU", Tags: []string{"eu", "law", "legislation"}, SourceType: "gazette", VerificationLevel: "primary", SourcePriority: "authoritative"},
	}
}

// HeuristicClassifier classifies web sources from their URL alone using a
// domain rule table. Deterministic: the same URL always produces the same
// classification for a given rule set. Safe for concurrent use.
type HeuristicClassifier struct {
	mu    sync.RWMutex
	rules []DomainRule
}

// NewHeuristicClassifier creates a classifier seeded with the default rules.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{rules: defaultDomainRules()}
}

// ClassifyByHeuristic classifies rawURL. Precedence is exact domain match,
// then suffix match, then TLD fallback, then unknown. Unparseable URLs
// classify as unknown with zero confidence rather than erroring.
func (h *HeuristicClassifier) ClassifyByHeuristic(rawURL string) WebSourceClassification {
	host := hostOf(rawURL)
	if host == "" {
		return WebSourceClassification{
			Category:         CategoryUnknown,
			JurisdictionCode: JurisdictionGlobal,
			Tags:             []string{},
			Confidence:       0,
			Source:           SourceHeuristic,
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if rule := h.matchRule(host); rule != nil {
		return WebSourceClassification{
			Category:          rule.Category,
			JurisdictionCode:  rule.JurisdictionCode,
			Tags:              append([]string(nil), rule.Tags...),
			Confidence:        ruleMatchConfidence,
			Source:            SourceHeuristic,
			SourceType:        rule.SourceType,
			VerificationLevel: rule.VerificationLevel,
			SourcePriority:    rule.SourcePriority,
		}
	}

	for tld, jurisdiction := range tldJurisdictions {
		if strings.HasSuffix(host, tld) {
			return WebSourceClassification{
				Category:         CategoryUnknown,
				JurisdictionCode: jurisdiction,
				Tags:             []string{},
				Confidence:       tldFallbackConfidence,
				Source:           SourceHeuristic,
			}
		}
	}

	return WebSourceClassification{
		Category:         CategoryUnknown,
		JurisdictionCode: JurisdictionGlobal,
		Tags:             []string{},
		Confidence:       0,
		Source:           SourceHeuristic,
	}
}

// matchRule scans the whole table for an exact host match before falling back
// to suffix matching, so a dedicated subdomain rule beats a broader rule for
// its parent domain regardless of table position. Callers hold the read lock.
func (h *HeuristicClassifier) matchRule(host string) *DomainRule {
	for i := range h.rules {
		if host == h.rules[i].Domain {
			return &h.rules[i]
		}
	}
	for i := range h.rules {
		if strings.HasSuffix(host, "."+h.rules[i].Domain) {
			return &h.rules[i]
		}
	}
	return nil
}

// AddDomainRule registers an extra rule at runtime. Adding a rule whose domain
// is already present is a silent no-op, so repeated registration from config
// reloads stays idempotent.
func (h *HeuristicClassifier) AddDomainRule(rule DomainRule) {
	domain := strings.ToLower(strings.TrimSpace(rule.Domain))
	if domain == "" {
		return
	}
	rule.Domain = domain

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.rules {
		if existing.Domain == domain {
			return
		}
	}
	h.rules = append(h.rules, rule)
}

// DomainRules returns a copy of the active rule table.
func (h *HeuristicClassifier) DomainRules() []DomainRule {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]DomainRule(nil), h.rules...)
}

// hostOf extracts the lowercased hostname from rawURL, or "" when the URL
// cannot be parsed into something with a host.
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
